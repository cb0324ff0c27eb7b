// Package window generates the raised-cosine (Hann) weighting shared by the
// STFT analysis and synthesis stages.
package window

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// Generate returns symmetric Hann coefficients
//
//	w[n] = 0.5 * (1 - cos(2*pi*n / (length-1)))
//
// so that w[0] and w[length-1] are zero. It returns nil for length < 2.
func Generate(length int) []float64 {
	if length < 2 {
		return nil
	}

	out := make([]float64, length)
	scale := 2 * math.Pi / float64(length-1)
	for n := range out {
		out[n] = 0.5 * (1 - math.Cos(scale*float64(n)))
	}

	return out
}

// Hann returns Hann window coefficients, or an error for length < 2.
func Hann(length int) ([]float64, error) {
	if err := validateLength(length); err != nil {
		return nil, err
	}

	return Generate(length), nil
}

// Apply writes samples[j]*coeffs[j] into dst. All three slices must have the
// same length; dst may alias samples.
func Apply(dst, samples, coeffs []float64) error {
	if len(samples) != len(coeffs) || len(dst) != len(coeffs) {
		return ErrMismatchedLength
	}

	vecmath.MulBlock(dst, samples, coeffs)

	return nil
}

// OverlapAddGain returns the gain an analysis-and-synthesis windowed
// overlap-add applies at each offset j in [0, hop):
//
//	g[j] = sum over m of w[j+m*hop]^2
//
// The envelope repeats with period hop across the steady-state interior of
// the output signal.
func OverlapAddGain(coeffs []float64, hop int) ([]float64, error) {
	if len(coeffs) == 0 {
		return nil, errEmptyCoeffs
	}

	if hop <= 0 || hop > len(coeffs) {
		return nil, errInvalidHop(hop, len(coeffs))
	}

	gain := make([]float64, hop)
	for j := range gain {
		for n := j; n < len(coeffs); n += hop {
			gain[j] += coeffs[n] * coeffs[n]
		}
	}

	return gain, nil
}
