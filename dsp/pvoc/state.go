package pvoc

import (
	"errors"
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-pvoc/dsp/core"
)

const twoPi = 2 * math.Pi

var (
	// ErrInvalidStretch reports a stretch factor that is not finite and positive.
	ErrInvalidStretch = errors.New("pvoc stretch factor must be positive and finite")
	// ErrFrameLength reports a frame whose length differs from the window size.
	ErrFrameLength = errors.New("pvoc frame length must equal window size")
)

// PhaseState carries per-bin phase tracking across consecutive frames.
type PhaseState struct {
	windowSize int
	hopSize    int
	stretch    float64

	omega     []float64
	lastPhase []float64
	sumPhase  []float64

	re  []float64
	im  []float64
	mag []float64
}

// NewPhaseState returns zeroed phase state for the given geometry.
func NewPhaseState(windowSize, hopSize int, stretch float64) (*PhaseState, error) {
	if windowSize < 2 || !core.IsPowerOfTwo(windowSize) {
		return nil, fmt.Errorf("pvoc window size must be power-of-two and >= 2: %d", windowSize)
	}

	if hopSize <= 0 {
		return nil, fmt.Errorf("pvoc hop size must be > 0: %d", hopSize)
	}

	if !core.IsFinitePositive(stretch) {
		return nil, fmt.Errorf("%w: %f", ErrInvalidStretch, stretch)
	}

	s := &PhaseState{
		windowSize: windowSize,
		hopSize:    hopSize,
		stretch:    stretch,
		omega:      make([]float64, windowSize),
		lastPhase:  make([]float64, windowSize),
		sumPhase:   make([]float64, windowSize),
		re:         make([]float64, windowSize),
		im:         make([]float64, windowSize),
		mag:        make([]float64, windowSize),
	}

	for k := range s.omega {
		s.omega[k] = twoPi * float64(k) / float64(windowSize)
	}

	return s, nil
}

// Stretch returns the time-stretch factor applied to each phase advance.
func (s *PhaseState) Stretch() float64 { return s.stretch }

// Reset clears phase tracking state.
func (s *PhaseState) Reset() {
	core.Zero(s.lastPhase)
	core.Zero(s.sumPhase)
}

// Step processes one analysis frame into out. frame and out must both have
// windowSize bins; they may be the same slice.
func (s *PhaseState) Step(frame, out []complex128) error {
	if len(frame) != s.windowSize || len(out) != s.windowSize {
		return fmt.Errorf("%w: got %d/%d, want %d", ErrFrameLength, len(frame), len(out), s.windowSize)
	}

	for k, c := range frame {
		s.re[k] = real(c)
		s.im[k] = imag(c)
	}

	vecmath.Magnitude(s.mag, s.re, s.im)

	hop := float64(s.hopSize)
	advance := hop * s.stretch

	for k := range frame {
		phase := math.Atan2(s.im[k], s.re[k])
		delta := PrincipalArgument(phase - s.lastPhase[k])
		trueFreq := s.omega[k] + delta/hop

		s.sumPhase[k] += trueFreq * advance
		s.lastPhase[k] = phase

		sin, cos := math.Sincos(s.sumPhase[k])
		out[k] = complex(s.mag[k]*cos, s.mag[k]*sin)
	}

	return nil
}

// PrincipalArgument maps x to its representative modulo 2*pi nearest zero,
// x - 2*pi*round(x/(2*pi)).
func PrincipalArgument(x float64) float64 {
	return x - twoPi*math.Round(x/twoPi)
}
