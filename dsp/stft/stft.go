package stft

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-pvoc/dsp/core"
	"github.com/cwbudde/algo-pvoc/dsp/fft"
	"github.com/cwbudde/algo-pvoc/dsp/window"
)

const gainFloor = 1e-12

// ErrFrameLength reports a spectrum frame whose length differs from the
// window size.
var ErrFrameLength = errors.New("stft frame length must equal window size")

// Transformer holds the window and FFT engine for one window/hop geometry.
//
// A Transformer is not safe for concurrent use.
type Transformer struct {
	windowSize int
	hopSize    int
	compensate bool

	backend fft.Backend
	engine  fft.Engine
	window  []float64

	frame   []float64
	scratch []complex128
	norm    []float64
}

// New creates a Transformer. windowSize must be a power of two >= 2 and
// hopSize must be in [1, windowSize].
func New(windowSize, hopSize int, opts ...Option) (*Transformer, error) {
	if windowSize < 2 || !core.IsPowerOfTwo(windowSize) {
		return nil, fmt.Errorf("stft window size must be power-of-two and >= 2: %d", windowSize)
	}

	if hopSize <= 0 || hopSize > windowSize {
		return nil, fmt.Errorf("stft hop size must be in [1, %d]: %d", windowSize, hopSize)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	engine, err := fft.NewEngine(cfg.backend, windowSize)
	if err != nil {
		return nil, fmt.Errorf("stft: %w", err)
	}

	coeffs, err := window.Hann(windowSize)
	if err != nil {
		return nil, fmt.Errorf("stft: %w", err)
	}

	return &Transformer{
		windowSize: windowSize,
		hopSize:    hopSize,
		compensate: cfg.compensate,
		backend:    cfg.backend,
		engine:     engine,
		window:     coeffs,
		frame:      make([]float64, windowSize),
		scratch:    make([]complex128, windowSize),
	}, nil
}

// WindowSize returns the frame length in samples.
func (t *Transformer) WindowSize() int { return t.windowSize }

// HopSize returns the frame advance in samples.
func (t *Transformer) HopSize() int { return t.hopSize }

// Backend returns the FFT backend in use.
func (t *Transformer) Backend() fft.Backend { return t.backend }

// Window returns a copy of the analysis/synthesis window.
func (t *Transformer) Window() []float64 {
	return append([]float64(nil), t.window...)
}

// Analyze returns the spectra of every whole window that fits in signal,
// in time order. A signal shorter than one window yields an empty sequence.
func (t *Transformer) Analyze(signal []float64) ([][]complex128, error) {
	count := FrameCount(len(signal), t.windowSize, t.hopSize)
	frames := make([][]complex128, 0, count)

	for i := 0; i+t.windowSize <= len(signal); i += t.hopSize {
		if err := window.Apply(t.frame, signal[i:i+t.windowSize], t.window); err != nil {
			return nil, fmt.Errorf("stft: %w", err)
		}

		spectrum := make([]complex128, t.windowSize)
		for j, v := range t.frame {
			spectrum[j] = complex(v, 0)
		}

		if err := t.engine.Forward(spectrum); err != nil {
			return nil, fmt.Errorf("stft: frame %d: %w", len(frames), err)
		}

		frames = append(frames, spectrum)
	}

	return frames, nil
}

// Synthesize inverse-transforms frames and overlap-adds the windowed real
// parts at hop spacing. The result has len(frames)*hop + windowSize samples.
// frames is not modified.
func (t *Transformer) Synthesize(frames [][]complex128) ([]float64, error) {
	out := make([]float64, OutputLength(len(frames), t.windowSize, t.hopSize))

	var norm []float64
	if t.compensate {
		t.norm = core.EnsureLen(t.norm, len(out))
		core.Zero(t.norm)
		norm = t.norm
	}

	for i, frame := range frames {
		if len(frame) != t.windowSize {
			return nil, fmt.Errorf("%w: frame %d has %d bins, want %d", ErrFrameLength, i, len(frame), t.windowSize)
		}

		copy(t.scratch, frame)

		if err := t.engine.Inverse(t.scratch); err != nil {
			return nil, fmt.Errorf("stft: frame %d: %w", i, err)
		}

		pos := i * t.hopSize
		for j, w := range t.window {
			out[pos+j] += real(t.scratch[j]) * w
			if norm != nil {
				norm[pos+j] += w * w
			}
		}
	}

	for i := range norm {
		if norm[i] > gainFloor {
			out[i] /= norm[i]
		}
	}

	return out, nil
}

// FrameCount returns the number of frames Analyze produces for a signal of
// the given length: floor((length-windowSize)/hop)+1, or 0 when the signal
// is shorter than one window.
func FrameCount(length, windowSize, hop int) int {
	if hop <= 0 || windowSize <= 0 || length < windowSize {
		return 0
	}
	return (length-windowSize)/hop + 1
}

// OutputLength returns the length Synthesize produces for frames frames.
func OutputLength(frames, windowSize, hop int) int {
	return frames*hop + windowSize
}

// Analyze is a one-shot helper around [New] and [Transformer.Analyze].
func Analyze(signal []float64, windowSize, hopSize int, opts ...Option) ([][]complex128, error) {
	t, err := New(windowSize, hopSize, opts...)
	if err != nil {
		return nil, err
	}
	return t.Analyze(signal)
}

// Synthesize is a one-shot helper around [New] and [Transformer.Synthesize].
func Synthesize(frames [][]complex128, windowSize, hopSize int, opts ...Option) ([]float64, error) {
	t, err := New(windowSize, hopSize, opts...)
	if err != nil {
		return nil, err
	}
	return t.Synthesize(frames)
}
