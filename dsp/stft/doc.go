// Package stft implements the windowed short-time Fourier transform and its
// overlap-add inverse.
//
// Analysis slices a signal into frames of windowSize samples advanced by
// hopSize, applies a symmetric Hann window, and transforms each frame.
// Synthesis inverse-transforms each frame, applies the same window again,
// and sums the results at hopSize spacing.
//
// By default synthesis applies no overlap-add gain correction: with a Hann
// window at 75% overlap the reconstructed level is about 1.5x the input.
// [WithGainCompensation] divides the result by the summed squared window.
package stft
