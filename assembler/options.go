package assembler

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/robert-malhotra/go-assembler/indexexpr"
	"github.com/robert-malhotra/go-assembler/ndarray"
	"github.com/robert-malhotra/go-assembler/transform"
)

// ZeroFunc allocates the accumulator for one entry of a new subject. shape
// already includes the channel dimension.
type ZeroFunc func(shape []int, key string, batch *Batch, idx int) *ndarray.Array

// SampleParams is the input of a SampleFunc.
type SampleParams struct {
	Key        string
	Data       *ndarray.Array
	Batch      *Batch
	BatchIndex int
}

// SampleFunc prepares one entry of one chunk for writing and returns the data
// together with the expression placing it.
type SampleFunc func(p SampleParams) (*ndarray.Array, indexexpr.Expr, error)

// MergeFunc combines the per-plane arrays of one entry.
type MergeFunc func(planes []*ndarray.Array) (*ndarray.Array, error)

// CorrectionFunc builds the transform that fits chunks of a plane to the
// required in-plane shape.
type CorrectionFunc func(shape []int, entries []string) transform.Transform

// Zeros is the default ZeroFunc.
func Zeros(shape []int, _ string, _ *Batch, _ int) *ndarray.Array {
	return ndarray.Zeros(shape...)
}

// DefaultSample passes the data through and resolves the chunk's expression.
func DefaultSample(p SampleParams) (*ndarray.Array, indexexpr.Expr, error) {
	expr, err := p.Batch.IndexExprs[p.BatchIndex].Resolve()
	if err != nil {
		return nil, nil, err
	}
	return p.Data, expr, nil
}

// MeanMerge averages the planes elementwise.
func MeanMerge(planes []*ndarray.Array) (*ndarray.Array, error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("%w: no planes to merge", ErrShapeMismatch)
	}

	out := planes[0].Clone()
	for i, p := range planes[1:] {
		if !squeezedEqual(out.Shape(), p.Shape()) || out.Len() != p.Len() {
			return nil, fmt.Errorf("%w: plane %d has shape %v, plane 0 has %v", ErrShapeMismatch, i+1, p.Shape(), out.Shape())
		}
		floats.Add(out.Data(), p.Data())
	}
	floats.Scale(1/float64(len(planes)), out.Data())
	return out, nil
}

// SizeCorrection is the default CorrectionFunc.
func SizeCorrection(shape []int, entries []string) transform.Transform {
	return transform.NewSizeCorrection(shape, entries)
}

// Option configures an assembler. Options that do not apply to an assembler
// are ignored by it.
type Option func(*options)

type options struct {
	zero       ZeroFunc
	sample     SampleFunc
	merge      MergeFunc
	correction CorrectionFunc
	logger     *zap.Logger
}

func defaultOptions() *options {
	return &options{
		zero:       Zeros,
		sample:     DefaultSample,
		merge:      MeanMerge,
		correction: SizeCorrection,
		logger:     zap.NewNop(),
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithZeroFunc sets how accumulators are allocated.
func WithZeroFunc(fn ZeroFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.zero = fn
		}
	}
}

// WithSampleFunc sets the per-sample hook of a BasicAssembler.
// PlaneAssembler derives its hooks from the size correction instead.
func WithSampleFunc(fn SampleFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.sample = fn
		}
	}
}

// WithMergeFunc sets how PlaneAssembler combines planes.
func WithMergeFunc(fn MergeFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.merge = fn
		}
	}
}

// WithSizeCorrection sets the transform PlaneAssembler applies per plane.
func WithSizeCorrection(fn CorrectionFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.correction = fn
		}
	}
}

// WithLogger sets the logger. Assemblers only log at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
