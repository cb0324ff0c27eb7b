package stft

import "github.com/cwbudde/algo-pvoc/dsp/fft"

// Option configures a [Transformer].
type Option func(*config)

type config struct {
	backend    fft.Backend
	compensate bool
}

func defaultConfig() config {
	return config{backend: fft.BackendRadix2}
}

// WithBackend selects the FFT backend used for every frame.
func WithBackend(b fft.Backend) Option {
	return func(c *config) {
		c.backend = b
	}
}

// WithGainCompensation normalizes synthesized output by the overlap-added
// squared window, restoring unity gain away from the signal edges.
func WithGainCompensation() Option {
	return func(c *config) {
		c.compensate = true
	}
}
