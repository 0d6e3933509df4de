package filter

import (
	"encoding/binary"
	"fmt"
)

// Fletcher32Filter appends a Fletcher-32 checksum on encode and verifies it
// on decode.
type Fletcher32Filter struct{}

// NewFletcher32 creates a Fletcher-32 filter.
func NewFletcher32() *Fletcher32Filter {
	return &Fletcher32Filter{}
}

func (f *Fletcher32Filter) Spec() string {
	return "fletcher32"
}

func (f *Fletcher32Filter) Encode(input []byte) ([]byte, error) {
	output := make([]byte, len(input)+4)
	copy(output, input)
	binary.LittleEndian.PutUint32(output[len(input):], Fletcher32(input))
	return output, nil
}

// Decode verifies the checksum stored in the last 4 bytes and returns the
// data without it.
func (f *Fletcher32Filter) Decode(input []byte) ([]byte, error) {
	if len(input) < 4 {
		return nil, fmt.Errorf("fletcher32: input too short for checksum")
	}

	data := input[:len(input)-4]
	stored := binary.LittleEndian.Uint32(input[len(input)-4:])
	if computed := Fletcher32(data); stored != computed {
		return nil, fmt.Errorf("fletcher32: checksum mismatch (stored=0x%08x, computed=0x%08x)",
			stored, computed)
	}
	return data, nil
}

// Fletcher32 computes the Fletcher-32 checksum of data, read as 16-bit
// little-endian words. An odd trailing byte is padded with zero.
func Fletcher32(data []byte) uint32 {
	var sum1, sum2 uint32

	i := 0
	for ; i+1 < len(data); i += 2 {
		word := uint32(data[i]) | uint32(data[i+1])<<8
		sum1 = (sum1 + word) % 65535
		sum2 = (sum2 + sum1) % 65535
	}
	if i < len(data) {
		sum1 = (sum1 + uint32(data[i])) % 65535
		sum2 = (sum2 + sum1) % 65535
	}

	return (sum2 << 16) | sum1
}
