package wiiext

import (
	"fmt"
)

// ErrInvalidInputData is returned when a block was read successfully but its
// length does not match any known report shape, or an identity block is malformed.
var ErrInvalidInputData = fmt.Errorf("invalid input data")

// ErrDestroyed is returned by a driver whose bus was handed back with Destroy.
var ErrDestroyed = fmt.Errorf("driver destroyed")

// TransportError wraps a failure reported by the underlying bus.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
