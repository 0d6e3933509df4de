package assembler

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrConfiguration reports batch metadata the assembler needs but the
	// upstream extraction did not produce.
	ErrConfiguration = errors.New("assembler configuration error")
	// ErrState reports a protocol misuse, such as retrieving a subject that
	// was never seen or was already retrieved.
	ErrState = errors.New("assembler state error")
	// ErrOutOfOrder reports a chunk for a subject that was already flushed.
	// The stream must deliver each subject's chunks contiguously.
	ErrOutOfOrder = fmt.Errorf("%w: subject resumed after it was flushed", ErrState)
	// ErrShapeMismatch reports chunk data that does not fit its placement.
	ErrShapeMismatch = errors.New("shape mismatch")
)
