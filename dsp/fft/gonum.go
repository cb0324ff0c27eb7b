package fft

import "gonum.org/v1/gonum/dsp/fourier"

type gonumEngine struct {
	fft *fourier.CmplxFFT
	tmp []complex128
}

func newGonumEngine(size int) *gonumEngine {
	return &gonumEngine{fft: fourier.NewCmplxFFT(size), tmp: make([]complex128, size)}
}

func (e *gonumEngine) Size() int { return len(e.tmp) }

func (e *gonumEngine) Forward(buf []complex128) error {
	if err := checkLen(buf, len(e.tmp)); err != nil {
		return err
	}

	e.fft.Coefficients(e.tmp, buf)
	copy(buf, e.tmp)

	return nil
}

// Inverse rescales the result: gonum's Sequence is not normalized.
func (e *gonumEngine) Inverse(buf []complex128) error {
	if err := checkLen(buf, len(e.tmp)); err != nil {
		return err
	}

	e.fft.Sequence(e.tmp, buf)

	scale := 1 / float64(len(buf))
	for i, v := range e.tmp {
		buf[i] = complex(real(v)*scale, imag(v)*scale)
	}

	return nil
}
