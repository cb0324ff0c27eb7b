package fft

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// planEngine wraps a precomputed algo-fft plan.
type planEngine struct {
	plan *algofft.Plan[complex128]
	out  []complex128
}

func newPlanEngine(size int) (*planEngine, error) {
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("fft: failed to create plan: %w", err)
	}

	return &planEngine{plan: plan, out: make([]complex128, size)}, nil
}

func (e *planEngine) Size() int { return len(e.out) }

func (e *planEngine) Forward(buf []complex128) error {
	if err := checkLen(buf, len(e.out)); err != nil {
		return err
	}

	if err := e.plan.Forward(buf, buf); err != nil {
		return fmt.Errorf("fft: forward transform failed: %w", err)
	}

	return nil
}

func (e *planEngine) Inverse(buf []complex128) error {
	if err := checkLen(buf, len(e.out)); err != nil {
		return err
	}

	if err := e.plan.Inverse(e.out, buf); err != nil {
		return fmt.Errorf("fft: inverse transform failed: %w", err)
	}

	copy(buf, e.out)

	return nil
}
