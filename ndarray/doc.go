// Package ndarray provides a dense, row-major float64 array used to hold
// chunk predictions and assembled subjects.
//
// An [Array] is a flat []float64 buffer plus a shape. Element (i0, i1, ..., in)
// lives at offset sum(ik * stride[k]) where the innermost dimension has stride 1.
//
// # Regions
//
// Rectangular sub-blocks are addressed by a start and a count per dimension,
// the same start/count form HDF5 uses for hyperslab selections. A start or
// count shorter than the array rank leaves the trailing dimensions fully
// selected, so a region over the spatial dimensions of an image implicitly
// covers its channel dimension.
//
//   - [Array.Region] copies a region out into a new array.
//   - [Array.SetRegion] copies an array into a region in place.
//
// Both walk the outer dimensions recursively and copy the innermost
// dimension as one contiguous block.
//
// # Ownership
//
// Arrays are not safe for concurrent mutation. [Array.Data] exposes the
// backing buffer without copying; [Array.Shape] returns a copy.
package ndarray
