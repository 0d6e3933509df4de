package assembler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-assembler/ndarray"
)

func TestFlatAssemblerImmediateReadiness(t *testing.T) {
	a := NewFlat()

	batch := &Batch{SubjectIndices: []int{10, 11}}
	require.NoError(t, a.AddBatch(Wrap(ramp(0, 2, 2, 2, 1)), batch, false))
	require.Equal(t, []int{10, 11}, a.SubjectsReady())

	second, err := a.GetAssembledSubject(11)
	require.NoError(t, err)
	require.True(t, ramp(4, 2, 2, 1).Equal(bare(t, second)))
	require.Equal(t, []int{10}, a.SubjectsReady())

	first, err := a.GetAssembledSubject(10)
	require.NoError(t, err)
	require.True(t, ramp(0, 2, 2, 1).Equal(bare(t, first)))

	_, err = a.GetAssembledSubject(10)
	require.ErrorIs(t, err, ErrState)
}

func TestFlatAssemblerOverwrites(t *testing.T) {
	a := NewFlat()

	require.NoError(t, a.AddBatch(Entries{"a": ndarray.Full(1, 1, 2), "b": ndarray.Full(2, 1, 2)}, &Batch{SubjectIndices: []int{0}}, false))
	require.NoError(t, a.AddBatch(Entries{"a": ndarray.Full(3, 1, 2)}, &Batch{SubjectIndices: []int{0}}, false))
	require.Equal(t, []int{0}, a.SubjectsReady())

	got, err := a.GetAssembledSubject(0)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, got.Keys())
	require.Equal(t, []float64{3, 3}, got["a"].Data())
	require.Equal(t, []float64{2, 2}, got["b"].Data())
}

func TestFlatAssemblerMissingSubjects(t *testing.T) {
	err := NewFlat().AddBatch(Wrap(ramp(0, 1, 2)), &Batch{}, false)
	require.ErrorIs(t, err, ErrConfiguration)
}
