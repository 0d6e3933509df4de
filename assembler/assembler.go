package assembler

import (
	"fmt"
	"slices"

	"github.com/robert-malhotra/go-assembler/indexexpr"
	"github.com/robert-malhotra/go-assembler/ndarray"
)

// DefaultKey names the entry of a bare prediction array.
const DefaultKey = "__prediction"

// Assembler rebuilds whole subjects from batches of chunks.
type Assembler interface {
	// AddBatch writes every chunk of the batch. When last is true all open
	// subjects are flushed to the ready set afterwards.
	AddBatch(entries Entries, batch *Batch, last bool) error
	// GetAssembledSubject removes a subject and hands its arrays to the caller.
	GetAssembledSubject(subject int) (Entries, error)
	// SubjectsReady returns a snapshot of the subjects awaiting retrieval,
	// in the order they became ready.
	SubjectsReady() []int
}

var (
	_ Assembler = (*BasicAssembler)(nil)
	_ Assembler = (*PlaneAssembler)(nil)
	_ Assembler = (*FlatAssembler)(nil)
)

// Batch holds the per-chunk metadata extracted alongside a batch. Each slice
// has one element per chunk; a nil slice means the field was not extracted.
type Batch struct {
	SubjectIndices []int
	IndexExprs     []indexexpr.Ref
	// Shapes are the subject shapes without the channel dimension.
	Shapes [][]int
}

type field uint8

const (
	fieldSubjects field = 1 << iota
	fieldIndexExprs
	fieldShapes
)

// size validates that the required fields are present and agree in length.
func (b *Batch) size(required field) (int, error) {
	if b == nil {
		return 0, fmt.Errorf("%w: batch metadata is nil", ErrConfiguration)
	}

	n := -1
	check := func(f field, name string, present bool, length int) error {
		if required&f == 0 {
			return nil
		}
		if !present {
			return fmt.Errorf("%w: batch is missing %q (enable its extraction upstream)", ErrConfiguration, name)
		}
		if n >= 0 && length != n {
			return fmt.Errorf("%w: %q has %d entries, expected %d", ErrConfiguration, name, length, n)
		}
		n = length
		return nil
	}

	if err := check(fieldSubjects, "subject_index", b.SubjectIndices != nil, len(b.SubjectIndices)); err != nil {
		return 0, err
	}
	if err := check(fieldIndexExprs, "index_expr", b.IndexExprs != nil, len(b.IndexExprs)); err != nil {
		return 0, err
	}
	if err := check(fieldShapes, "shape", b.Shapes != nil, len(b.Shapes)); err != nil {
		return 0, err
	}
	return max(n, 0), nil
}

// Entries maps output names to arrays. In a batch each array carries a
// leading batch dimension; in an assembled subject it does not.
type Entries map[string]*ndarray.Array

// Wrap stores a bare array under DefaultKey.
func Wrap(a *ndarray.Array) Entries {
	return Entries{DefaultKey: a}
}

// Bare returns the array when DefaultKey is the only entry.
func (e Entries) Bare() (*ndarray.Array, bool) {
	if len(e) != 1 {
		return nil, false
	}
	a, ok := e[DefaultKey]
	return a, ok
}

// Keys returns the entry names in sorted order.
func (e Entries) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// checkEntries validates that every entry has at least minRank dimensions and
// a leading dimension equal to the batch size.
func checkEntries(e Entries, batchSize, minRank int) error {
	if len(e) == 0 {
		return fmt.Errorf("%w: no entries to assemble", ErrShapeMismatch)
	}
	for _, key := range e.Keys() {
		a := e[key]
		if a == nil {
			return fmt.Errorf("%w: entry %q is nil", ErrShapeMismatch, key)
		}
		if a.Rank() < minRank {
			return fmt.Errorf("%w: entry %q has shape %v, need at least %d dimensions", ErrShapeMismatch, key, a.Shape(), minRank)
		}
		if a.Dim(0) != batchSize {
			return fmt.Errorf("%w: entry %q has %d samples, batch has %d", ErrShapeMismatch, key, a.Dim(0), batchSize)
		}
	}
	return nil
}

// squeezedEqual compares shapes ignoring dimensions of size one.
func squeezedEqual(a, b []int) bool {
	squeeze := func(s []int) []int {
		out := make([]int, 0, len(s))
		for _, d := range s {
			if d != 1 {
				out = append(out, d)
			}
		}
		return out
	}
	return slices.Equal(squeeze(a), squeeze(b))
}
