package window

import (
	"errors"
	"fmt"
)

var (
	// ErrLength reports a window length below the minimum of 2.
	ErrLength = errors.New("window length must be >= 2")
	// ErrMismatchedLength reports slices of different lengths.
	ErrMismatchedLength = errors.New("samples and coefficients must have same length")

	errEmptyCoeffs = errors.New("window coefficients must not be empty")
)

func validateLength(size int) error {
	if size < 2 {
		return fmt.Errorf("%w: %d", ErrLength, size)
	}
	return nil
}

func errInvalidHop(hop, size int) error {
	return fmt.Errorf("window hop must be in [1, %d]: %d", size, hop)
}
