package ndarray

import "fmt"

// strides returns the element stride of each dimension in row-major order.
func strides(shape []int) []int {
	s := make([]int, len(shape))
	if len(shape) == 0 {
		return s
	}
	s[len(shape)-1] = 1
	for d := len(shape) - 2; d >= 0; d-- {
		s[d] = s[d+1] * shape[d+1]
	}
	return s
}

// normalizeRegion extends start/count to the full rank and validates bounds.
func (a *Array) normalizeRegion(start, count []int) ([]int, []int, error) {
	ndims := len(a.shape)
	if len(start) != len(count) {
		return nil, nil, fmt.Errorf("%w: start has %d dimensions, count has %d", ErrShape, len(start), len(count))
	}
	if len(start) > ndims {
		return nil, nil, fmt.Errorf("%w: region of rank %d on array of rank %d", ErrShape, len(start), ndims)
	}

	fullStart := make([]int, ndims)
	fullCount := make([]int, ndims)
	for d := 0; d < ndims; d++ {
		if d < len(start) {
			fullStart[d], fullCount[d] = start[d], count[d]
		} else {
			fullStart[d], fullCount[d] = 0, a.shape[d]
		}
		if fullStart[d] < 0 || fullCount[d] < 0 || fullStart[d]+fullCount[d] > a.shape[d] {
			return nil, nil, fmt.Errorf("%w: dimension %d, start=%d, count=%d, size=%d",
				ErrBounds, d, fullStart[d], fullCount[d], a.shape[d])
		}
	}
	return fullStart, fullCount, nil
}

// Region copies the block described by start and count into a new array of
// shape count (extended by the unselected trailing dimensions).
func (a *Array) Region(start, count []int) (*Array, error) {
	start, count, err := a.normalizeRegion(start, count)
	if err != nil {
		return nil, err
	}

	out := Zeros(count...)
	if len(a.shape) == 0 {
		out.data[0] = a.data[0]
		return out, nil
	}
	if out.Len() == 0 {
		return out, nil
	}

	copyRegion(a.data, out.data, start, count, strides(a.shape), strides(count), true, 0, 0, 0)
	return out, nil
}

// SetRegion writes src into the block described by start and count. src must
// hold exactly as many elements as the block; its own shape is not
// interpreted beyond that, so collapsed dimensions of size one may be absent.
func (a *Array) SetRegion(start, count []int, src *Array) error {
	start, count, err := a.normalizeRegion(start, count)
	if err != nil {
		return err
	}
	if n := NumElements(count); n != src.Len() {
		return fmt.Errorf("%w: region %v holds %d elements, source %v has %d", ErrShape, count, n, src.shape, src.Len())
	}
	if len(a.shape) == 0 {
		a.data[0] = src.data[0]
		return nil
	}
	if src.Len() == 0 {
		return nil
	}

	copyRegion(a.data, src.data, start, count, strides(a.shape), strides(count), false, 0, 0, 0)
	return nil
}

// copyRegion walks the region dimension by dimension. At the innermost
// dimension the row is contiguous in both buffers and is copied as a block.
// When extract is true, data flows from the array buffer into the packed
// buffer, otherwise from the packed buffer into the array buffer.
func copyRegion(
	array, packed []float64,
	start, count []int,
	arrayStrides, packedStrides []int,
	extract bool,
	arrayIdx, packedIdx int,
	dim int,
) {
	if dim == len(count)-1 {
		from := arrayIdx + start[dim]*arrayStrides[dim]
		row := count[dim]
		if extract {
			copy(packed[packedIdx:packedIdx+row], array[from:from+row])
		} else {
			copy(array[from:from+row], packed[packedIdx:packedIdx+row])
		}
		return
	}

	for i := 0; i < count[dim]; i++ {
		copyRegion(
			array, packed,
			start, count,
			arrayStrides, packedStrides,
			extract,
			arrayIdx+(start[dim]+i)*arrayStrides[dim],
			packedIdx+i*packedStrides[dim],
			dim+1,
		)
	}
}
