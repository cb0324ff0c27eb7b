package fft

import dspfft "github.com/mjibson/go-dsp/fft"

// goDSPEngine delegates to go-dsp, which allocates a fresh result per call.
type goDSPEngine struct {
	size int
}

func newGoDSPEngine(size int) *goDSPEngine {
	return &goDSPEngine{size: size}
}

func (e *goDSPEngine) Size() int { return e.size }

func (e *goDSPEngine) Forward(buf []complex128) error {
	if err := checkLen(buf, e.size); err != nil {
		return err
	}

	copy(buf, dspfft.FFT(buf))

	return nil
}

func (e *goDSPEngine) Inverse(buf []complex128) error {
	if err := checkLen(buf, e.size); err != nil {
		return err
	}

	copy(buf, dspfft.IFFT(buf))

	return nil
}
