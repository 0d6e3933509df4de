package filter

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

const defaultDeflateLevel = 6

// Deflate implements zlib compression.
type Deflate struct {
	level int
}

// NewDeflate creates a DEFLATE filter. A negative level uses the default.
func NewDeflate(level int) (*Deflate, error) {
	if level < 0 {
		level = defaultDeflateLevel
	}
	if level > zlib.BestCompression {
		return nil, fmt.Errorf("deflate: level %d out of range 0-9", level)
	}
	return &Deflate{level: level}, nil
}

func (f *Deflate) Spec() string {
	return fmt.Sprintf("deflate:%d", f.level)
}

func (f *Deflate) Encode(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, f.level)
	if err != nil {
		return nil, fmt.Errorf("zlib writer: %w", err)
	}
	if _, err := w.Write(input); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	return buf.Bytes(), nil
}

func (f *Deflate) Decode(input []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("zlib reader: %w", err)
	}
	defer r.Close()

	output, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zlib decompress: %w", err)
	}
	return output, nil
}
