// Package indexexpr describes where a chunk belongs inside a subject array.
//
// An [Expr] is an ordered list of per-dimension [Selector]s. A selector either
// takes the whole dimension ([Full]), a half-open span ([Range]), or a single
// position that collapses the dimension ([Index]). Dimensions beyond the end
// of the expression are taken whole.
//
// Upstream extractors may hand expressions over in encoded form. [Ref] carries
// either a live expression or its msgpack bytes, decided once where the batch
// is built, and decodes on demand.
package indexexpr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDecode = errors.New("cannot decode index expression")
	ErrBounds = errors.New("index expression out of bounds")
)

// Kind identifies the form of a Selector.
type Kind uint8

const (
	KindFull Kind = iota
	KindRange
	KindIndex
)

func (k Kind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindRange:
		return "range"
	case KindIndex:
		return "index"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Selector selects along one dimension. For KindRange, Start and End bound a
// half-open span. For KindIndex, Start is the position.
type Selector struct {
	Kind  Kind `msgpack:"k"`
	Start int  `msgpack:"s,omitempty"`
	End   int  `msgpack:"e,omitempty"`
}

func Full() Selector {
	return Selector{Kind: KindFull}
}

func Range(start, end int) Selector {
	return Selector{Kind: KindRange, Start: start, End: end}
}

func Index(i int) Selector {
	return Selector{Kind: KindIndex, Start: i}
}

// Width returns the number of positions selected, given the dimension size.
func (s Selector) Width(size int) int {
	switch s.Kind {
	case KindRange:
		return s.End - s.Start
	case KindIndex:
		return 1
	default:
		return size
	}
}

func (s Selector) String() string {
	switch s.Kind {
	case KindRange:
		return fmt.Sprintf("%d:%d", s.Start, s.End)
	case KindIndex:
		return fmt.Sprintf("%d", s.Start)
	default:
		return ":"
	}
}

// Expr is an ordered list of selectors, one per leading dimension.
type Expr []Selector

// New builds an expression from selectors.
func New(sels ...Selector) Expr {
	return Expr(sels)
}

// PlaneDimension returns the first dimension whose selector is not Full,
// or -1 if every selector is Full.
func (e Expr) PlaneDimension() int {
	for i, s := range e {
		if s.Kind != KindFull {
			return i
		}
	}
	return -1
}

// Region converts the expression to a start/count pair over shape. shape may
// be longer than the expression; the extra dimensions are taken whole.
func (e Expr) Region(shape []int) (start, count []int, err error) {
	if len(e) > len(shape) {
		return nil, nil, fmt.Errorf("%w: expression %v has %d selectors for shape %v", ErrBounds, e, len(e), shape)
	}

	start = make([]int, len(e))
	count = make([]int, len(e))
	for d, s := range e {
		switch s.Kind {
		case KindFull:
			start[d], count[d] = 0, shape[d]
		case KindRange:
			if s.Start < 0 || s.End < s.Start || s.End > shape[d] {
				return nil, nil, fmt.Errorf("%w: range %v in dimension %d of size %d", ErrBounds, s, d, shape[d])
			}
			start[d], count[d] = s.Start, s.End-s.Start
		case KindIndex:
			if s.Start < 0 || s.Start >= shape[d] {
				return nil, nil, fmt.Errorf("%w: index %d in dimension %d of size %d", ErrBounds, s.Start, d, shape[d])
			}
			start[d], count[d] = s.Start, 1
		default:
			return nil, nil, fmt.Errorf("unknown selector kind %v in dimension %d", s.Kind, d)
		}
	}
	return start, count, nil
}

// SelectedShape returns the shape of the data the expression selects from an
// array of the given shape: ranges keep their width, indices drop their
// dimension and full selectors keep the whole size.
func (e Expr) SelectedShape(shape []int) ([]int, error) {
	if len(e) > len(shape) {
		return nil, fmt.Errorf("%w: expression %v has %d selectors for shape %v", ErrBounds, e, len(e), shape)
	}

	out := make([]int, 0, len(shape))
	for d, size := range shape {
		if d >= len(e) {
			out = append(out, size)
			continue
		}
		if e[d].Kind == KindIndex {
			continue
		}
		out = append(out, e[d].Width(size))
	}
	return out, nil
}

func (e Expr) String() string {
	parts := make([]string, len(e))
	for i, s := range e {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
