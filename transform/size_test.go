package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-assembler/indexexpr"
	"github.com/robert-malhotra/go-assembler/ndarray"
)

func ramp(shape ...int) *ndarray.Array {
	a := ndarray.Zeros(shape...)
	for i := range a.Data() {
		a.Data()[i] = float64(i)
	}
	return a
}

func TestSizeCorrectionCrop(t *testing.T) {
	c := NewSizeCorrection([]int{2, 2}, []string{"pred"})

	out, err := c.Apply(Sample{Entries: map[string]*ndarray.Array{"pred": ramp(4, 4, 1)}}, false)
	require.NoError(t, err)

	got := out.Entries["pred"]
	require.Equal(t, []int{2, 2, 1}, got.Shape())
	require.Equal(t, []float64{5, 6, 9, 10}, got.Data())
}

func TestSizeCorrectionPad(t *testing.T) {
	c := NewSizeCorrection([]int{4, Keep}, []string{"pred"}, WithPadValue(-1))

	out, err := c.Apply(Sample{Entries: map[string]*ndarray.Array{"pred": ramp(1, 3, 1)}}, false)
	require.NoError(t, err)

	got := out.Entries["pred"]
	require.Equal(t, []int{4, 3, 1}, got.Shape())
	require.Equal(t, []float64{-1, -1, -1, 0, 1, 2, -1, -1, -1, -1, -1, -1}, got.Data())
}

func TestSizeCorrectionUnchangedIsSameArray(t *testing.T) {
	in := ramp(3, 3, 2)
	c := NewSizeCorrection([]int{3, 3}, []string{"pred"})

	out, err := c.Apply(Sample{Entries: map[string]*ndarray.Array{"pred": in}}, false)
	require.NoError(t, err)
	require.Same(t, in, out.Entries["pred"])
}

func TestSizeCorrectionMissingEntry(t *testing.T) {
	c := NewSizeCorrection([]int{2}, []string{"pred", "aux"})
	sample := Sample{Entries: map[string]*ndarray.Array{"pred": ramp(2, 1)}}

	_, err := c.Apply(sample, false)
	require.ErrorIs(t, err, ErrMissingEntry)

	out, err := c.Apply(sample, true)
	require.NoError(t, err)
	require.Len(t, out.Entries, 1)
}

func TestSizeCorrectionRankError(t *testing.T) {
	c := NewSizeCorrection([]int{2, 2, 2}, []string{"pred"})
	_, err := c.Apply(Sample{Entries: map[string]*ndarray.Array{"pred": ramp(2, 2)}}, false)
	require.ErrorIs(t, err, ErrRank)
}

func TestSizeCorrectionRewritesIndex(t *testing.T) {
	c := NewSizeCorrection([]int{5, 6}, nil)
	in := indexexpr.New(indexexpr.Full(), indexexpr.Index(2), indexexpr.Full())

	out, err := c.Apply(Sample{Index: in}, false)
	require.NoError(t, err)
	require.Equal(t, indexexpr.New(indexexpr.Range(0, 5), indexexpr.Index(2), indexexpr.Range(0, 6)), out.Index)

	// The input expression is left alone.
	require.Equal(t, indexexpr.KindFull, in[0].Kind)
}

func TestCompose(t *testing.T) {
	double := Func(func(s Sample, _ bool) (Sample, error) {
		for _, a := range s.Entries {
			for i := range a.Data() {
				a.Data()[i] *= 2
			}
		}
		return s, nil
	})
	crop := NewSizeCorrection([]int{1}, []string{"pred"})

	out, err := Compose(crop, double).Apply(Sample{Entries: map[string]*ndarray.Array{"pred": ramp(3)}}, false)
	require.NoError(t, err)
	require.Equal(t, []float64{2}, out.Entries["pred"].Data())
}
