package assembler

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-assembler/indexexpr"
	"github.com/robert-malhotra/go-assembler/ndarray"
)

// stack joins samples of equal shape along a new leading batch dimension.
func stack(t testing.TB, samples ...*ndarray.Array) *ndarray.Array {
	t.Helper()
	require.NotEmpty(t, samples)

	shape := samples[0].Shape()
	data := make([]float64, 0, len(samples)*samples[0].Len())
	for _, s := range samples {
		require.Equal(t, shape, s.Shape())
		data = append(data, s.Data()...)
	}
	return ndarray.MustNew(append([]int{len(samples)}, shape...), data)
}

// newBatch builds batch metadata with one shape shared by every chunk.
func newBatch(subjects []int, exprs []indexexpr.Expr, shape ...int) *Batch {
	shapes := make([][]int, len(subjects))
	for i := range shapes {
		shapes[i] = slices.Clone(shape)
	}
	return &Batch{
		SubjectIndices: subjects,
		IndexExprs:     indexexpr.Refs(exprs...),
		Shapes:         shapes,
	}
}

// filled returns an array whose element values are produced by fn from the
// flat offset.
func filled(fn func(i int) float64, shape ...int) *ndarray.Array {
	a := ndarray.Zeros(shape...)
	for i := range a.Data() {
		a.Data()[i] = fn(i)
	}
	return a
}

func ramp(offset float64, shape ...int) *ndarray.Array {
	return filled(func(i int) float64 { return offset + float64(i) }, shape...)
}

func bare(t testing.TB, e Entries) *ndarray.Array {
	t.Helper()
	a, ok := e.Bare()
	require.True(t, ok, "expected a bare prediction, got keys %v", e.Keys())
	return a
}
