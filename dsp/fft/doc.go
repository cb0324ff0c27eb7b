// Package fft provides the complex discrete Fourier transform used by the
// STFT and phase-vocoder packages.
//
// [Transform] and [InverseTransform] are the reference radix-2
// decimation-in-time implementation. They operate in place on buffers whose
// length is a power of two; other lengths produce undefined results and are
// expected to be rejected by the caller ahead of time.
//
// [Engine] abstracts over interchangeable backends with the same in-place
// contract:
//
//   - BackendRadix2: the recursive reference transform (default)
//   - BackendPlan: precomputed algo-fft plans
//   - BackendGonum: gonum dsp/fourier
//   - BackendGoDSP: mjibson/go-dsp
//
// Every backend normalizes the inverse transform by 1/N.
package fft
