// Package stretch changes the duration of a mono signal without changing its
// pitch.
//
// [TimeStretcher] chains the STFT analysis, the phase vocoder, and
// overlap-add synthesis. A stretch factor above 1 slows the signal down;
// below 1 speeds it up. The whole signal is processed in one batch.
package stretch
