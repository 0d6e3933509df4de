package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-assembler/assembler"
	"github.com/robert-malhotra/go-assembler/indexexpr"
	"github.com/robert-malhotra/go-assembler/internal/stream"
	"github.com/robert-malhotra/go-assembler/ndarray"
)

const (
	shapeFlag     = "shape"
	subjectsFlag  = "subjects"
	batchSizeFlag = "batch-size"
	planesFlag    = "planes"
)

type synthConfig struct {
	Output    string
	Shape     []int
	Subjects  int
	BatchSize int
	Planes    bool
}

func newSynthCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write a synthetic slice stream",
		Long: `Writes a batch stream of single-channel slices cut from synthetic ramp volumes.
With --planes the volumes are sliced along every dimension, for the plane assembler.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			log, err := newLogger(v)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			cfg := synthConfig{
				Output:    v.GetString("synth." + outputFlag),
				Shape:     v.GetIntSlice("synth." + shapeFlag),
				Subjects:  v.GetInt("synth." + subjectsFlag),
				BatchSize: v.GetInt("synth." + batchSizeFlag),
				Planes:    v.GetBool("synth." + planesFlag),
			}

			f, err := os.Create(cfg.Output)
			if err != nil {
				return err
			}
			n, err := synthesize(f, cfg)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			log.Info("wrote stream", zap.String("path", cfg.Output), zap.Int("batches", n))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String(outputFlag, "stream.msgpack", "stream file to write")
	flags.IntSlice(shapeFlag, []int{4, 4, 4}, "subject shape")
	flags.Int(subjectsFlag, 2, "number of subjects")
	flags.Int(batchSizeFlag, 4, "chunks per batch")
	flags.Bool(planesFlag, false, "slice along every dimension instead of the first only")
	for _, name := range []string{outputFlag, shapeFlag, subjectsFlag, batchSizeFlag, planesFlag} {
		mustBindPFlag(v, "synth."+name, flags.Lookup(name))
	}
	return cmd
}

// subjectVolume is the synthetic prediction of a subject: a ramp over the
// volume, offset by 1000 per subject, with one channel.
func subjectVolume(subject int, shape []int) *ndarray.Array {
	vol := ndarray.Zeros(append(slices.Clone(shape), 1)...)
	for i := range vol.Data() {
		vol.Data()[i] = float64(1000*subject + i)
	}
	return vol
}

type chunk struct {
	subject int
	expr    indexexpr.Expr
	data    *ndarray.Array
}

// sliceVolume cuts vol along dim into chunks of shape (shape without dim, 1).
func sliceVolume(subject int, vol *ndarray.Array, shape []int, dim int) ([]chunk, error) {
	sliceShape := append(slices.Delete(slices.Clone(shape), dim, dim+1), 1)

	chunks := make([]chunk, 0, shape[dim])
	for i := 0; i < shape[dim]; i++ {
		start := make([]int, len(shape))
		count := slices.Clone(shape)
		start[dim], count[dim] = i, 1

		region, err := vol.Region(start, count)
		if err != nil {
			return nil, err
		}
		data, err := region.Reshape(sliceShape...)
		if err != nil {
			return nil, err
		}

		expr := make(indexexpr.Expr, len(shape))
		for d := range expr {
			expr[d] = indexexpr.Full()
		}
		expr[dim] = indexexpr.Index(i)
		chunks = append(chunks, chunk{subject: subject, expr: expr, data: data})
	}
	return chunks, nil
}

func synthesize(w io.Writer, cfg synthConfig) (int, error) {
	if len(cfg.Shape) == 0 {
		return 0, errors.New("shape must have at least one dimension")
	}
	for _, d := range cfg.Shape {
		if d < 1 {
			return 0, fmt.Errorf("invalid shape %v", cfg.Shape)
		}
	}
	if cfg.Subjects < 1 || cfg.BatchSize < 1 {
		return 0, fmt.Errorf("need at least one subject and a positive batch size, got %d and %d", cfg.Subjects, cfg.BatchSize)
	}

	planes := []int{0}
	if cfg.Planes {
		planes = planes[:0]
		for d := range cfg.Shape {
			planes = append(planes, d)
		}
	}

	var all []chunk
	for subject := 0; subject < cfg.Subjects; subject++ {
		vol := subjectVolume(subject, cfg.Shape)
		for _, dim := range planes {
			chunks, err := sliceVolume(subject, vol, cfg.Shape, dim)
			if err != nil {
				return 0, err
			}
			all = append(all, chunks...)
		}
	}

	// Chunks of one batch share a shape, so a batch also ends where the
	// slice shape changes.
	var groups [][]chunk
	for _, c := range all {
		n := len(groups)
		if n == 0 || len(groups[n-1]) == cfg.BatchSize || !slices.Equal(groups[n-1][0].data.Shape(), c.data.Shape()) {
			groups = append(groups, nil)
			n++
		}
		groups[n-1] = append(groups[n-1], c)
	}

	enc := stream.NewEncoder(w)
	for i, group := range groups {
		entries, batch := packBatch(cfg.Shape, group)
		if err := enc.WriteBatch(entries, batch, i == len(groups)-1); err != nil {
			return i, err
		}
	}
	return len(groups), enc.Flush()
}

func packBatch(shape []int, group []chunk) (assembler.Entries, *assembler.Batch) {
	batch := &assembler.Batch{}
	chunkShape := group[0].data.Shape()
	data := make([]float64, 0, len(group)*group[0].data.Len())
	for _, c := range group {
		batch.SubjectIndices = append(batch.SubjectIndices, c.subject)
		batch.IndexExprs = append(batch.IndexExprs, indexexpr.FromExpr(c.expr))
		batch.Shapes = append(batch.Shapes, slices.Clone(shape))
		data = append(data, c.data.Data()...)
	}
	arr := ndarray.MustNew(append([]int{len(group)}, chunkShape...), data)
	return assembler.Wrap(arr), batch
}
