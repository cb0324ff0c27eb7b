package pvoc

import "fmt"

// Vocode returns a re-timed copy of frames. Each output frame keeps the
// input magnitudes; phases advance at the estimated bin frequency times
// hopSize*stretch. frames is not modified.
func Vocode(frames [][]complex128, windowSize, hopSize int, stretch float64) ([][]complex128, error) {
	state, err := NewPhaseState(windowSize, hopSize, stretch)
	if err != nil {
		return nil, err
	}

	out := make([][]complex128, len(frames))
	for i, frame := range frames {
		out[i] = make([]complex128, windowSize)
		if err := state.Step(frame, out[i]); err != nil {
			return nil, fmt.Errorf("pvoc: frame %d: %w", i, err)
		}
	}

	return out, nil
}
