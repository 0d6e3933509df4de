package stream

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/robert-malhotra/go-assembler/assembler"
	"github.com/robert-malhotra/go-assembler/internal/filter"
)

// Sink writes assembled subjects to a directory, one file per subject.
type Sink struct {
	dir     string
	limit   int
	logger  *zap.Logger
	filters *filter.Pipeline
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithFilters runs the array payloads of every subject file through p.
func WithFilters(p *filter.Pipeline) SinkOption {
	return func(s *Sink) {
		s.filters = p
	}
}

// NewSink returns a Sink writing into dir with at most limit concurrent
// writes. A limit below one uses GOMAXPROCS.
func NewSink(dir string, limit int, logger *zap.Logger, opts ...SinkOption) *Sink {
	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sink{dir: dir, limit: limit, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file a subject is written to.
func (s *Sink) Path(subject int) string {
	return filepath.Join(s.dir, fmt.Sprintf("subject-%05d.msgpack", subject))
}

// WriteSubjects writes every subject. The arrays must not be modified until
// it returns.
func (s *Sink) WriteSubjects(ctx context.Context, subjects map[int]assembler.Entries) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for subject, entries := range subjects {
		subject, entries := subject, entries
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return s.write(subject, entries)
		})
	}
	return g.Wait()
}

func (s *Sink) write(subject int, entries assembler.Entries) error {
	rec := NewSubjectRecord(subject, entries)
	if err := rec.Filter(s.filters); err != nil {
		return fmt.Errorf("filtering subject %d: %w", subject, err)
	}
	b, err := msgpack.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("encoding subject %d: %w", subject, err)
	}

	path := s.Path(subject)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("writing subject %d: %w", subject, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing subject %d: %w", subject, err)
	}
	s.logger.Debug("wrote subject", zap.Int("subject", subject), zap.String("path", path), zap.Int("bytes", len(b)))
	return nil
}

// ReadSubject reads a file written by a Sink.
func ReadSubject(path string) (SubjectRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return SubjectRecord{}, err
	}
	var rec SubjectRecord
	if err := msgpack.Unmarshal(b, &rec); err != nil {
		return SubjectRecord{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return rec, nil
}
