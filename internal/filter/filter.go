package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownFilter is returned for a spec naming no registered filter.
var ErrUnknownFilter = errors.New("unknown filter")

// Filter is the interface implemented by all filters.
type Filter interface {
	// Spec returns the spec that recreates the filter.
	Spec() string

	// Encode transforms raw data to its encoded form.
	Encode(input []byte) ([]byte, error)

	// Decode transforms encoded data back to raw form.
	Decode(input []byte) ([]byte, error)
}

// Registry maps filter names to constructors. The argument is the number
// after the colon of a spec, or -1 if the spec has none.
var Registry = map[string]func(arg int) (Filter, error){
	"deflate":    func(arg int) (Filter, error) { return NewDeflate(arg) },
	"shuffle":    func(arg int) (Filter, error) { return NewShuffle(arg) },
	"fletcher32": func(arg int) (Filter, error) { return NewFletcher32(), nil },
}

// New creates a filter from a spec such as "deflate" or "deflate:9".
func New(spec string) (Filter, error) {
	name, rawArg, hasArg := strings.Cut(strings.TrimSpace(spec), ":")
	constructor, ok := Registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, spec)
	}

	arg := -1
	if hasArg {
		n, err := strconv.Atoi(rawArg)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid argument in filter spec %q", spec)
		}
		arg = n
	}
	return constructor(arg)
}
