package stretch

import (
	"github.com/cwbudde/algo-pvoc/dsp/core"
	"github.com/cwbudde/algo-pvoc/dsp/fft"
)

const (
	DefaultSampleRate = 44100.0
	DefaultWindowSize = 1024
	DefaultStretch    = 1.5

	MinStretch = 0.25
	MaxStretch = 4.0
)

// Config holds the tunable parameters of a [TimeStretcher].
type Config struct {
	// SampleRate is metadata only; the algorithm does not depend on it.
	SampleRate float64
	WindowSize int
	HopSize    int
	Stretch    float64
	Backend    fft.Backend

	// GainCompensation divides the synthesized output by the overlap-added
	// squared window. Off by default, leaving the ~1.5x Hann overlap gain.
	GainCompensation bool
	// FixedSynthesisHop synthesizes at the analysis hop, so only phase
	// advance is scaled and the output duration does not change.
	FixedSynthesisHop bool
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns a 1024-sample window, quarter-window hop and a
// stretch of 1.5.
func DefaultConfig() Config {
	return Config{
		SampleRate: DefaultSampleRate,
		WindowSize: DefaultWindowSize,
		HopSize:    DefaultWindowSize / 4,
		Stretch:    DefaultStretch,
		Backend:    fft.BackendRadix2,
	}
}

// WithSampleRate sets the sample-rate metadata.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if core.IsFinitePositive(sampleRate) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithWindowSize sets the frame size and resets the hop to a quarter of it.
func WithWindowSize(size int) Option {
	return func(cfg *Config) {
		if size >= 2 && core.IsPowerOfTwo(size) {
			cfg.WindowSize = size
			cfg.HopSize = max(size/4, 1)
		}
	}
}

// WithHopSize sets the analysis hop. Apply it after WithWindowSize.
func WithHopSize(hop int) Option {
	return func(cfg *Config) {
		if hop > 0 {
			cfg.HopSize = hop
		}
	}
}

// WithStretch sets the time-stretch factor.
func WithStretch(stretch float64) Option {
	return func(cfg *Config) {
		if core.IsFinitePositive(stretch) {
			cfg.Stretch = stretch
		}
	}
}

// WithBackend selects the FFT backend.
func WithBackend(b fft.Backend) Option {
	return func(cfg *Config) {
		cfg.Backend = b
	}
}

// WithGainCompensation enables overlap-add gain normalization.
func WithGainCompensation() Option {
	return func(cfg *Config) {
		cfg.GainCompensation = true
	}
}

// WithFixedSynthesisHop keeps the synthesis hop equal to the analysis hop.
func WithFixedSynthesisHop() Option {
	return func(cfg *Config) {
		cfg.FixedSynthesisHop = true
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
