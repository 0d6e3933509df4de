package transform

import (
	"fmt"
	"maps"
	"slices"

	"github.com/robert-malhotra/go-assembler/indexexpr"
	"github.com/robert-malhotra/go-assembler/ndarray"
)

// Keep leaves a dimension of a SizeCorrection shape untouched.
const Keep = -1

// SizeOption configures a SizeCorrection.
type SizeOption func(*SizeCorrection)

// WithPadValue sets the value written into padded borders (default 0).
func WithPadValue(v float64) SizeOption {
	return func(c *SizeCorrection) {
		c.padValue = v
	}
}

// SizeCorrection center-crops or pads the leading dimensions of each entry to
// a fixed shape. Trailing dimensions past the shape (channels) are kept.
//
// The sample's index expression is rewritten to the corrected shape: Full
// selectors mapped onto a corrected dimension become explicit ranges
// [0, size), so the expression selects exactly the corrected data.
type SizeCorrection struct {
	shape    []int
	entries  []string
	padValue float64
}

// NewSizeCorrection returns a SizeCorrection to shape for the named entries.
func NewSizeCorrection(shape []int, entries []string, opts ...SizeOption) *SizeCorrection {
	c := &SizeCorrection{
		shape:   slices.Clone(shape),
		entries: slices.Clone(entries),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Shape returns the target shape.
func (c *SizeCorrection) Shape() []int {
	return slices.Clone(c.shape)
}

func (c *SizeCorrection) Apply(s Sample, tolerateMissing bool) (Sample, error) {
	out := Sample{Entries: maps.Clone(s.Entries), Index: s.Index}
	if out.Entries == nil {
		out.Entries = map[string]*ndarray.Array{}
	}

	for _, name := range c.entries {
		arr, ok := out.Entries[name]
		if !ok {
			if tolerateMissing {
				continue
			}
			return Sample{}, fmt.Errorf("%w: %q", ErrMissingEntry, name)
		}

		corrected, err := c.correct(arr)
		if err != nil {
			return Sample{}, fmt.Errorf("correcting size of %q: %w", name, err)
		}
		out.Entries[name] = corrected
	}

	if s.Index != nil {
		out.Index = c.rewriteIndex(s.Index)
	}
	return out, nil
}

func (c *SizeCorrection) correct(arr *ndarray.Array) (*ndarray.Array, error) {
	if len(c.shape) > arr.Rank() {
		return nil, fmt.Errorf("%w: shape %v, entry %v", ErrRank, c.shape, arr.Shape())
	}

	current := arr.Shape()
	target := slices.Clone(current)
	cropStart := make([]int, len(current))
	padStart := make([]int, len(current))
	count := slices.Clone(current)
	changed := false

	for d, size := range c.shape {
		if size == Keep || size == current[d] {
			continue
		}
		changed = true
		target[d] = size
		if size < current[d] {
			diff := current[d] - size
			cropStart[d] = diff / 2
			count[d] = size
		} else {
			diff := size - current[d]
			padStart[d] = diff / 2
		}
	}
	if !changed {
		return arr, nil
	}

	block, err := arr.Region(cropStart, count)
	if err != nil {
		return nil, err
	}
	out := ndarray.Full(c.padValue, target...)
	if err := out.SetRegion(padStart, count, block); err != nil {
		return nil, err
	}
	return out, nil
}

// rewriteIndex maps each non-Index selector onto the next data dimension and
// resolves Full selectors over corrected dimensions to explicit ranges.
func (c *SizeCorrection) rewriteIndex(e indexexpr.Expr) indexexpr.Expr {
	out := slices.Clone(e)
	dataDim := 0
	for i, sel := range out {
		if sel.Kind == indexexpr.KindIndex {
			continue
		}
		if sel.Kind == indexexpr.KindFull && dataDim < len(c.shape) && c.shape[dataDim] != Keep {
			out[i] = indexexpr.Range(0, c.shape[dataDim])
		}
		dataDim++
	}
	return out
}
