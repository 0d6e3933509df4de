// Package stream encodes batch streams and assembled subjects with msgpack.
//
// A batch stream file is a sequence of [BatchRecord] values, each carrying the
// predictions of one batch and its metadata. Index expressions travel in
// their encoded form and are handed to the assembler as encoded references.
// Assembled subjects are written one [SubjectRecord] per file by a [Sink].
package stream

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/robert-malhotra/go-assembler/assembler"
	"github.com/robert-malhotra/go-assembler/indexexpr"
	"github.com/robert-malhotra/go-assembler/internal/filter"
	"github.com/robert-malhotra/go-assembler/ndarray"
)

// ArrayRecord is the wire form of an ndarray. A filtered record carries its
// elements as little-endian float64 bytes in Payload instead of Data.
type ArrayRecord struct {
	Shape   []int     `msgpack:"shape"`
	Data    []float64 `msgpack:"data,omitempty"`
	Payload []byte    `msgpack:"payload,omitempty"`
}

func newArrayRecord(a *ndarray.Array) ArrayRecord {
	return ArrayRecord{Shape: a.Shape(), Data: a.Data()}
}

// Array converts the record back into an array.
func (r ArrayRecord) Array() (*ndarray.Array, error) {
	return ndarray.New(r.Shape, r.Data)
}

// BatchRecord is one batch of a stream.
type BatchRecord struct {
	Last           bool                   `msgpack:"last"`
	SubjectIndices []int                  `msgpack:"subject_indices"`
	IndexExprs     [][]byte               `msgpack:"index_exprs"`
	Shapes         [][]int                `msgpack:"shapes"`
	Entries        map[string]ArrayRecord `msgpack:"entries"`
}

// NewBatchRecord captures a batch for encoding.
func NewBatchRecord(entries assembler.Entries, batch *assembler.Batch, last bool) (BatchRecord, error) {
	rec := BatchRecord{
		Last:           last,
		SubjectIndices: batch.SubjectIndices,
		Shapes:         batch.Shapes,
		Entries:        encodeEntries(entries),
	}
	if batch.IndexExprs != nil {
		rec.IndexExprs = make([][]byte, len(batch.IndexExprs))
		for i, ref := range batch.IndexExprs {
			b, err := ref.Bytes()
			if err != nil {
				return BatchRecord{}, fmt.Errorf("batch index %d: %w", i, err)
			}
			rec.IndexExprs[i] = b
		}
	}
	return rec, nil
}

// Batch returns the assembler input held by the record. Index expressions
// stay encoded until the assembler resolves them.
func (r BatchRecord) Batch() (assembler.Entries, *assembler.Batch, error) {
	entries, err := decodeEntries(r.Entries)
	if err != nil {
		return nil, nil, err
	}

	batch := &assembler.Batch{
		SubjectIndices: r.SubjectIndices,
		Shapes:         r.Shapes,
	}
	if r.IndexExprs != nil {
		batch.IndexExprs = make([]indexexpr.Ref, len(r.IndexExprs))
		for i, b := range r.IndexExprs {
			batch.IndexExprs[i] = indexexpr.FromBytes(b)
		}
	}
	return entries, batch, nil
}

// SubjectRecord is one assembled subject. Filters lists the pipeline specs
// applied to the payloads of its entries, if any.
type SubjectRecord struct {
	Subject int                    `msgpack:"subject"`
	Filters []string               `msgpack:"filters,omitempty"`
	Entries map[string]ArrayRecord `msgpack:"entries"`
}

// NewSubjectRecord captures an assembled subject for encoding.
func NewSubjectRecord(subject int, entries assembler.Entries) SubjectRecord {
	return SubjectRecord{Subject: subject, Entries: encodeEntries(entries)}
}

// Filter moves the data of every entry through p into its payload.
func (r *SubjectRecord) Filter(p *filter.Pipeline) error {
	if p.Empty() {
		return nil
	}
	for key, rec := range r.Entries {
		payload, err := p.Encode(packFloats(rec.Data))
		if err != nil {
			return fmt.Errorf("entry %q: %w", key, err)
		}
		r.Entries[key] = ArrayRecord{Shape: rec.Shape, Payload: payload}
	}
	r.Filters = p.Specs()
	return nil
}

// Decode converts the record back into assembler entries, undoing its
// filters.
func (r SubjectRecord) Decode() (assembler.Entries, error) {
	if len(r.Filters) == 0 {
		return decodeEntries(r.Entries)
	}

	p, err := filter.NewPipeline(r.Filters...)
	if err != nil {
		return nil, err
	}
	recs := make(map[string]ArrayRecord, len(r.Entries))
	for key, rec := range r.Entries {
		raw, err := p.Decode(rec.Payload)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		data, err := unpackFloats(raw)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		recs[key] = ArrayRecord{Shape: rec.Shape, Data: data}
	}
	return decodeEntries(recs)
}

func packFloats(data []float64) []byte {
	b := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(b[8*i:], math.Float64bits(v))
	}
	return b
}

func unpackFloats(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("payload of %d bytes is not a float64 sequence", len(b))
	}
	data := make([]float64, len(b)/8)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return data, nil
}

func encodeEntries(entries assembler.Entries) map[string]ArrayRecord {
	out := make(map[string]ArrayRecord, len(entries))
	for key, a := range entries {
		out[key] = newArrayRecord(a)
	}
	return out
}

func decodeEntries(recs map[string]ArrayRecord) (assembler.Entries, error) {
	out := make(assembler.Entries, len(recs))
	for key, rec := range recs {
		a, err := rec.Array()
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		out[key] = a
	}
	return out, nil
}
