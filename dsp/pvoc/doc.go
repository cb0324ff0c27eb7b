// Package pvoc re-times a sequence of STFT spectra with the phase-vocoder
// technique.
//
// For every bin the instantaneous frequency is estimated from the
// frame-to-frame phase difference, and a running synthesis phase is advanced
// at that frequency scaled by the stretch factor. Magnitudes pass through
// unchanged.
//
// The running state lives in a [PhaseState] owned by a single pass, so
// independent passes never interfere.
package pvoc
