// Package transform holds per-sample transforms applied to chunk data and
// its index expression before the chunk is written into a subject.
package transform

import (
	"errors"

	"github.com/robert-malhotra/go-assembler/indexexpr"
	"github.com/robert-malhotra/go-assembler/ndarray"
)

var (
	ErrMissingEntry = errors.New("entry not extracted")
	ErrRank         = errors.New("shape has more dimensions than entry")
)

// Sample is one chunk: named arrays plus the expression placing them.
type Sample struct {
	Entries map[string]*ndarray.Array
	Index   indexexpr.Expr
}

// Transform rewrites a sample. When tolerateMissing is true, configured
// entries absent from the sample are skipped instead of reported with
// ErrMissingEntry.
type Transform interface {
	Apply(s Sample, tolerateMissing bool) (Sample, error)
}

// Func adapts a function to Transform.
type Func func(s Sample, tolerateMissing bool) (Sample, error)

func (f Func) Apply(s Sample, tolerateMissing bool) (Sample, error) {
	return f(s, tolerateMissing)
}

// Compose applies transforms in order.
func Compose(ts ...Transform) Transform {
	return Func(func(s Sample, tolerateMissing bool) (Sample, error) {
		var err error
		for _, t := range ts {
			if s, err = t.Apply(s, tolerateMissing); err != nil {
				return Sample{}, err
			}
		}
		return s, nil
	})
}
