package ndarray

import "errors"

var (
	ErrShape  = errors.New("shape mismatch")
	ErrBounds = errors.New("region out of bounds")
)
