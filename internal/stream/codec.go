package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/robert-malhotra/go-assembler/assembler"
)

// Encoder writes batch records to a stream.
type Encoder struct {
	w   *bufio.Writer
	enc *msgpack.Encoder
	n   int
}

// NewEncoder returns an Encoder writing to w. Call Flush when done.
func NewEncoder(w io.Writer) *Encoder {
	bw := bufio.NewWriter(w)
	return &Encoder{w: bw, enc: msgpack.NewEncoder(bw)}
}

// WriteBatch encodes one batch.
func (e *Encoder) WriteBatch(entries assembler.Entries, batch *assembler.Batch, last bool) error {
	rec, err := NewBatchRecord(entries, batch, last)
	if err != nil {
		return fmt.Errorf("batch %d: %w", e.n, err)
	}
	if err := e.enc.Encode(&rec); err != nil {
		return fmt.Errorf("encoding batch %d: %w", e.n, err)
	}
	e.n++
	return nil
}

// Flush flushes buffered data.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

// Decoder reads batch records from a stream.
type Decoder struct {
	dec *msgpack.Decoder
	n   int
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: msgpack.NewDecoder(bufio.NewReader(r))}
}

// Next decodes the next record. It returns io.EOF after the last record.
func (d *Decoder) Next() (BatchRecord, error) {
	var rec BatchRecord
	if err := d.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return BatchRecord{}, io.EOF
		}
		return BatchRecord{}, fmt.Errorf("decoding batch %d: %w", d.n, err)
	}
	d.n++
	return rec, nil
}
