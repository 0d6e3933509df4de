package ndarray

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Array is a dense n-dimensional float64 array in row-major order.
type Array struct {
	shape []int
	data  []float64
}

// New wraps data with the given shape. The buffer is used as is, not copied.
func New(shape []int, data []float64) (*Array, error) {
	for d, n := range shape {
		if n < 0 {
			return nil, fmt.Errorf("%w: negative size %d in dimension %d", ErrShape, n, d)
		}
	}
	if want := NumElements(shape); len(data) != want {
		return nil, fmt.Errorf("%w: shape %v needs %d elements, got %d", ErrShape, shape, want, len(data))
	}
	return &Array{shape: slices.Clone(shape), data: data}, nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(shape []int, data []float64) *Array {
	a, err := New(shape, data)
	if err != nil {
		panic(err)
	}
	return a
}

// Zeros returns a zero-filled array.
func Zeros(shape ...int) *Array {
	return &Array{shape: slices.Clone(shape), data: make([]float64, NumElements(shape))}
}

// Full returns an array with every element set to value.
func Full(value float64, shape ...int) *Array {
	a := Zeros(shape...)
	if value != 0 {
		for i := range a.data {
			a.data[i] = value
		}
	}
	return a
}

// NumElements returns the product of the dimensions. A rank-0 shape holds one element.
func NumElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Shape returns a copy of the dimensions.
func (a *Array) Shape() []int {
	return slices.Clone(a.shape)
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int {
	return len(a.shape)
}

// Dim returns the size of dimension d. Negative d counts from the end.
func (a *Array) Dim(d int) int {
	if d < 0 {
		d += len(a.shape)
	}
	return a.shape[d]
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.data)
}

// Data returns the backing buffer.
func (a *Array) Data() []float64 {
	return a.data
}

// At returns the element at the given coordinates.
func (a *Array) At(idx ...int) float64 {
	return a.data[a.offset(idx)]
}

// Set stores v at the given coordinates.
func (a *Array) Set(v float64, idx ...int) {
	a.data[a.offset(idx)] = v
}

func (a *Array) offset(idx []int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("ndarray: %d indices for rank %d array", len(idx), len(a.shape)))
	}
	off := 0
	for d, i := range idx {
		if i < 0 || i >= a.shape[d] {
			panic(fmt.Sprintf("ndarray: index %d out of range for dimension %d of size %d", i, d, a.shape[d]))
		}
		off = off*a.shape[d] + i
	}
	return off
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	return &Array{shape: slices.Clone(a.shape), data: slices.Clone(a.data)}
}

// Reshape returns a view with a new shape over the same buffer.
func (a *Array) Reshape(shape ...int) (*Array, error) {
	if NumElements(shape) != len(a.data) {
		return nil, fmt.Errorf("%w: cannot reshape %v to %v", ErrShape, a.shape, shape)
	}
	return &Array{shape: slices.Clone(shape), data: a.data}, nil
}

// Index returns a copy of the sub-array at position i of the leading dimension.
// For a batch of shape (B, ..., C) this yields the sample of shape (..., C).
func (a *Array) Index(i int) (*Array, error) {
	if len(a.shape) == 0 {
		return nil, fmt.Errorf("%w: cannot index a scalar", ErrShape)
	}
	if i < 0 || i >= a.shape[0] {
		return nil, fmt.Errorf("%w: index %d for leading dimension of size %d", ErrBounds, i, a.shape[0])
	}
	n := NumElements(a.shape[1:])
	return &Array{
		shape: slices.Clone(a.shape[1:]),
		data:  slices.Clone(a.data[i*n : (i+1)*n]),
	}, nil
}

// Equal reports whether both arrays have the same shape and elements.
func (a *Array) Equal(b *Array) bool {
	return slices.Equal(a.shape, b.shape) && floats.Equal(a.data, b.data)
}

// EqualApprox is like Equal but compares elements within tol.
func (a *Array) EqualApprox(b *Array, tol float64) bool {
	return slices.Equal(a.shape, b.shape) && floats.EqualApprox(a.data, b.data, tol)
}

func (a *Array) String() string {
	return fmt.Sprintf("Array%v", a.shape)
}
