package assembler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-assembler/indexexpr"
	"github.com/robert-malhotra/go-assembler/ndarray"
	"github.com/robert-malhotra/go-assembler/transform"
)

// planeChunks returns the rows (plane 0) or columns (plane 1) of a 3x3
// subject, each filled with value.
func planeChunks(t *testing.T, subject, plane int, value float64) (Entries, *Batch) {
	t.Helper()

	var exprs []indexexpr.Expr
	var samples []*ndarray.Array
	for i := 0; i < 3; i++ {
		if plane == 0 {
			exprs = append(exprs, indexexpr.New(indexexpr.Index(i)))
		} else {
			exprs = append(exprs, indexexpr.New(indexexpr.Full(), indexexpr.Index(i)))
		}
		samples = append(samples, ndarray.Full(value, 3, 1))
	}
	return Wrap(stack(t, samples...)), newBatch([]int{subject, subject, subject}, exprs, 3, 3)
}

func TestPlaneAssemblerMeanMerge(t *testing.T) {
	a := NewPlane()

	rows, rowBatch := planeChunks(t, 0, 0, 2)
	cols, colBatch := planeChunks(t, 0, 1, 4)

	require.NoError(t, a.AddBatch(rows, rowBatch, false))
	require.Empty(t, a.SubjectsReady())
	require.NoError(t, a.AddBatch(cols, colBatch, true))
	require.Equal(t, []int{0}, a.SubjectsReady())
	require.Equal(t, []int{0, 1}, a.Planes())

	got, err := a.GetAssembledSubject(0)
	require.NoError(t, err)
	require.True(t, ndarray.Full(3, 3, 3, 1).Equal(bare(t, got)), "got %v", bare(t, got).Data())
	require.Empty(t, a.SubjectsReady())

	_, err = a.GetAssembledSubject(0)
	require.ErrorIs(t, err, ErrState)
}

func TestPlaneAssemblerReadyIsIntersection(t *testing.T) {
	a := NewPlane()

	add := func(subject, plane int, last bool) {
		e, b := planeChunks(t, subject, plane, 1)
		require.NoError(t, a.AddBatch(e, b, last))
	}

	add(0, 0, false)
	add(0, 1, false)
	require.Empty(t, a.SubjectsReady())

	// Subject 1 starting in plane 0 completes subject 0 there only.
	add(1, 0, false)
	require.Empty(t, a.SubjectsReady())

	add(1, 1, false)
	require.Equal(t, []int{0}, a.SubjectsReady())

	// An empty last batch flushes every plane.
	empty := Wrap(ndarray.Zeros(0, 3, 1))
	require.NoError(t, a.AddBatch(empty, newBatch([]int{}, nil, 3, 3), true))
	require.Equal(t, []int{0, 1}, a.SubjectsReady())
}

func TestPlaneAssemblerCustomMerge(t *testing.T) {
	maxMerge := func(planes []*ndarray.Array) (*ndarray.Array, error) {
		out := planes[0].Clone()
		for _, p := range planes[1:] {
			for i, v := range p.Data() {
				out.Data()[i] = max(out.Data()[i], v)
			}
		}
		return out, nil
	}
	a := NewPlane(WithMergeFunc(maxMerge))

	rows, rowBatch := planeChunks(t, 0, 0, 2)
	cols, colBatch := planeChunks(t, 0, 1, 7)
	require.NoError(t, a.AddBatch(rows, rowBatch, false))
	require.NoError(t, a.AddBatch(cols, colBatch, true))

	got, err := a.GetAssembledSubject(0)
	require.NoError(t, err)
	require.True(t, ndarray.Full(7, 3, 3, 1).Equal(bare(t, got)))
}

func TestPlaneAssemblerCropsPaddedChunks(t *testing.T) {
	a := NewPlane()

	// Rows predicted on a padded grid of five; the border must be cropped.
	padded := func() *ndarray.Array {
		return ndarray.MustNew([]int{5, 1}, []float64{99, 1, 1, 1, 99})
	}
	batch := newBatch([]int{0, 0, 0}, []indexexpr.Expr{
		indexexpr.New(indexexpr.Index(0)),
		indexexpr.New(indexexpr.Index(1)),
		indexexpr.New(indexexpr.Index(2)),
	}, 3, 3)

	require.NoError(t, a.AddBatch(Wrap(stack(t, padded(), padded(), padded())), batch, true))

	got, err := a.GetAssembledSubject(0)
	require.NoError(t, err)
	require.True(t, ndarray.Full(1, 3, 3, 1).Equal(bare(t, got)), "got %v", bare(t, got).Data())
}

func TestPlaneAssemblerSlab(t *testing.T) {
	a := NewPlane()

	slab := ramp(0, 2, 2, 2, 1)
	batch := newBatch([]int{4}, []indexexpr.Expr{indexexpr.New(indexexpr.Range(0, 2))}, 2, 2, 2)
	require.NoError(t, a.AddBatch(Wrap(stack(t, slab)), batch, true))
	require.Equal(t, []int{4}, a.SubjectsReady())

	got, err := a.GetAssembledSubject(4)
	require.NoError(t, err)
	require.True(t, slab.Equal(bare(t, got)))
}

func TestPlaneAssemblerMergeFailureKeepsSubject(t *testing.T) {
	failing := func([]*ndarray.Array) (*ndarray.Array, error) {
		return nil, ErrShapeMismatch
	}
	a := NewPlane(WithMergeFunc(failing))

	rows, rowBatch := planeChunks(t, 0, 0, 1)
	require.NoError(t, a.AddBatch(rows, rowBatch, true))

	_, err := a.GetAssembledSubject(0)
	require.ErrorIs(t, err, ErrShapeMismatch)
	require.Equal(t, []int{0}, a.SubjectsReady())
}

func TestPlaneAssemblerRejectedChunkAddsNoPlane(t *testing.T) {
	a := NewPlane()

	rows, rowBatch := planeChunks(t, 0, 0, 1)
	require.NoError(t, a.AddBatch(rows, rowBatch, false))

	// Column 9 of a 3x3 subject.
	batch := newBatch([]int{0}, []indexexpr.Expr{indexexpr.New(indexexpr.Full(), indexexpr.Index(9))}, 3, 3)
	err := a.AddBatch(Wrap(ramp(0, 1, 3, 1)), batch, false)
	require.ErrorIs(t, err, indexexpr.ErrBounds)
	require.Equal(t, []int{0}, a.Planes())

	empty := Wrap(ndarray.Zeros(0, 3, 1))
	require.NoError(t, a.AddBatch(empty, newBatch([]int{}, nil, 3, 3), true))
	require.Equal(t, []int{0}, a.SubjectsReady())
}

func TestPlaneAssemblerRangeNarrowsInPlaneShape(t *testing.T) {
	var corrected [][]int
	a := NewPlane(WithSizeCorrection(func(shape []int, entries []string) transform.Transform {
		corrected = append(corrected, shape)
		return SizeCorrection(shape, entries)
	}))

	// Columns 1 and 2 of row 0 in a 2x4 subject.
	patch := ndarray.MustNew([]int{2, 1}, []float64{5, 6})
	batch := newBatch([]int{0}, []indexexpr.Expr{indexexpr.New(indexexpr.Index(0), indexexpr.Range(1, 3))}, 2, 4)
	require.NoError(t, a.AddBatch(Wrap(stack(t, patch)), batch, true))
	require.Equal(t, [][]int{{2}}, corrected)

	got, err := a.GetAssembledSubject(0)
	require.NoError(t, err)
	require.Equal(t, []int{2, 4, 1}, bare(t, got).Shape())
	require.Equal(t, []float64{0, 5, 6, 0, 0, 0, 0, 0}, bare(t, got).Data())
}

func TestPlaneAssemblerMissingMetadata(t *testing.T) {
	a := NewPlane()
	err := a.AddBatch(Wrap(ramp(0, 1, 3, 1)), &Batch{SubjectIndices: []int{0}, Shapes: [][]int{{3, 3}}}, false)
	require.ErrorIs(t, err, ErrConfiguration)

	_, err = a.GetAssembledSubject(0)
	require.ErrorIs(t, err, ErrState)
}

func TestMeanMerge(t *testing.T) {
	got, err := MeanMerge([]*ndarray.Array{ndarray.Full(1, 2, 2), ndarray.Full(2, 2, 2), ndarray.Full(6, 2, 2)})
	require.NoError(t, err)
	require.True(t, ndarray.Full(3, 2, 2).Equal(got))

	_, err = MeanMerge(nil)
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = MeanMerge([]*ndarray.Array{ndarray.Zeros(2, 2), ndarray.Zeros(3)})
	require.ErrorIs(t, err, ErrShapeMismatch)
}
