package form

import (
	"errors"

	"github.com/muurk/wave/internal/painter"
)

var (
	// ErrInvalidPath is returned when a path does not resolve to a leaf.
	ErrInvalidPath = errors.New("invalid path")

	// ErrIndexOutOfRange is returned when a list index does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidValue is returned when a value has the wrong type or range
	// for the addressed field.
	ErrInvalidValue = errors.New("invalid value")

	// ErrMalformedParams is returned by Load for params that cannot be
	// represented on the wire.
	ErrMalformedParams = painter.ErrMalformedParams
)

// IsContractViolation reports errors that indicate a wiring bug rather
// than bad user input.
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrInvalidPath) || errors.Is(err, ErrIndexOutOfRange)
}
