package fft

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned when an engine is requested for a size that is
// not a power of two of at least 2.
var ErrInvalidSize = errors.New("fft size must be a power of two >= 2")

var errBufferLength = errors.New("buffer length does not match engine size")

func validateSize(size int) error {
	if size < 2 || size&(size-1) != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	return nil
}

func checkLen(buf []complex128, size int) error {
	if len(buf) != size {
		return fmt.Errorf("%w: got %d, want %d", errBufferLength, len(buf), size)
	}
	return nil
}
