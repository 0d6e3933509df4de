package filter

import "fmt"

// float64 payloads
const defaultShuffleSize = 8

// Shuffle implements the byte shuffle filter.
// Encoded data is organized as [all byte 0s][all byte 1s]...[all byte N-1s].
type Shuffle struct {
	elemSize int
}

// NewShuffle creates a shuffle filter for elements of elemSize bytes. A
// negative size uses the default.
func NewShuffle(elemSize int) (*Shuffle, error) {
	if elemSize < 0 {
		elemSize = defaultShuffleSize
	}
	if elemSize == 0 {
		return nil, fmt.Errorf("shuffle: element size must be positive")
	}
	return &Shuffle{elemSize: elemSize}, nil
}

func (f *Shuffle) Spec() string {
	return fmt.Sprintf("shuffle:%d", f.elemSize)
}

func (f *Shuffle) Encode(input []byte) ([]byte, error) {
	return f.permute(input, true), nil
}

func (f *Shuffle) Decode(input []byte) ([]byte, error) {
	return f.permute(input, false), nil
}

// permute moves byte j of element i between i*elemSize+j and j*numElems+i.
// Trailing bytes that do not fill an element stay in place.
func (f *Shuffle) permute(input []byte, shuffle bool) []byte {
	numElems := len(input) / f.elemSize
	if f.elemSize <= 1 || numElems == 0 {
		return input
	}

	output := make([]byte, len(input))
	for i := 0; i < numElems; i++ {
		for j := 0; j < f.elemSize; j++ {
			if shuffle {
				output[j*numElems+i] = input[i*f.elemSize+j]
			} else {
				output[i*f.elemSize+j] = input[j*numElems+i]
			}
		}
	}
	tail := numElems * f.elemSize
	copy(output[tail:], input[tail:])
	return output
}
