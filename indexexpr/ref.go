package indexexpr

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode serializes the expression with msgpack.
func (e Expr) Encode() ([]byte, error) {
	b, err := msgpack.Marshal([]Selector(e))
	if err != nil {
		return nil, fmt.Errorf("encoding index expression %v: %w", e, err)
	}
	return b, nil
}

// Decode parses an expression produced by Encode.
func Decode(b []byte) (Expr, error) {
	var sels []Selector
	if err := msgpack.Unmarshal(b, &sels); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	for d, s := range sels {
		if s.Kind > KindIndex {
			return nil, fmt.Errorf("%w: unknown selector kind %d in dimension %d", ErrDecode, s.Kind, d)
		}
	}
	return Expr(sels), nil
}

// Ref is an index expression that is either live or still encoded.
type Ref struct {
	expr    Expr
	encoded []byte
	isBytes bool
}

// FromExpr wraps a live expression.
func FromExpr(e Expr) Ref {
	return Ref{expr: e}
}

// FromBytes wraps an encoded expression.
func FromBytes(b []byte) Ref {
	return Ref{encoded: b, isBytes: true}
}

// Encoded reports whether the reference holds bytes.
func (r Ref) Encoded() bool {
	return r.isBytes
}

// Resolve returns the live expression, decoding if needed.
func (r Ref) Resolve() (Expr, error) {
	if !r.isBytes {
		return r.expr, nil
	}
	return Decode(r.encoded)
}

// Bytes returns the encoded form, encoding if needed.
func (r Ref) Bytes() ([]byte, error) {
	if r.isBytes {
		return r.encoded, nil
	}
	return r.expr.Encode()
}

// Refs wraps each expression with FromExpr.
func Refs(exprs ...Expr) []Ref {
	refs := make([]Ref, len(exprs))
	for i, e := range exprs {
		refs[i] = FromExpr(e)
	}
	return refs
}
