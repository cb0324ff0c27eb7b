package stretch

import (
	"context"
	"fmt"
	"math"

	"github.com/cwbudde/algo-pvoc/dsp/core"
	"github.com/cwbudde/algo-pvoc/dsp/fft"
	"github.com/cwbudde/algo-pvoc/dsp/pvoc"
	"github.com/cwbudde/algo-pvoc/dsp/stft"
)

// TimeStretcher performs phase-vocoder time stretching.
//
// This processor is mono, one-shot buffer oriented, and not thread-safe.
type TimeStretcher struct {
	cfg          Config
	synthesisHop int

	analysis  *stft.Transformer
	synthesis *stft.Transformer
}

// New creates a time stretcher from DefaultConfig and opts.
func New(opts ...Option) (*TimeStretcher, error) {
	return NewWithConfig(ApplyOptions(opts...))
}

// NewWithConfig creates a time stretcher from an explicit config.
func NewWithConfig(cfg Config) (*TimeStretcher, error) {
	s := &TimeStretcher{cfg: cfg}

	if err := s.rebuildState(); err != nil {
		return nil, err
	}

	return s, nil
}

// Config returns a copy of the current configuration.
func (s *TimeStretcher) Config() Config { return s.cfg }

// SampleRate returns the sample-rate metadata in Hz.
func (s *TimeStretcher) SampleRate() float64 { return s.cfg.SampleRate }

// WindowSize returns the FFT frame size.
func (s *TimeStretcher) WindowSize() int { return s.cfg.WindowSize }

// HopSize returns the analysis hop in samples.
func (s *TimeStretcher) HopSize() int { return s.cfg.HopSize }

// SynthesisHop returns the overlap-add hop in samples.
func (s *TimeStretcher) SynthesisHop() int { return s.synthesisHop }

// Stretch returns the requested stretch factor.
func (s *TimeStretcher) Stretch() float64 { return s.cfg.Stretch }

// EffectiveStretch returns the factor applied to each bin's phase advance.
// Unless the synthesis hop is fixed it is quantized to SynthesisHop/HopSize,
// so that phase advance matches overlap-add spacing.
func (s *TimeStretcher) EffectiveStretch() float64 {
	if s.cfg.FixedSynthesisHop {
		return s.cfg.Stretch
	}

	return float64(s.synthesisHop) / float64(s.cfg.HopSize)
}

// Backend returns the FFT backend.
func (s *TimeStretcher) Backend() fft.Backend { return s.cfg.Backend }

// SetSampleRate updates sample-rate metadata.
func (s *TimeStretcher) SetSampleRate(sampleRate float64) error {
	if !core.IsFinitePositive(sampleRate) {
		return fmt.Errorf("time stretcher sample rate must be positive and finite: %f", sampleRate)
	}

	s.cfg.SampleRate = sampleRate

	return nil
}

// SetStretch updates the stretch factor.
func (s *TimeStretcher) SetStretch(stretch float64) error {
	if err := validateStretch(stretch, s.cfg.FixedSynthesisHop); err != nil {
		return err
	}

	if core.NearlyEqual(stretch, s.cfg.Stretch, 0) {
		return nil
	}

	prev := s.cfg
	s.cfg.Stretch = stretch

	if err := s.rebuildState(); err != nil {
		s.cfg = prev
		return err
	}

	return nil
}

// SetWindowSize updates the frame size and resets the hop to a quarter of it.
func (s *TimeStretcher) SetWindowSize(size int) error {
	if size < 2 || !core.IsPowerOfTwo(size) {
		return fmt.Errorf("time stretcher window size must be power-of-two and >= 2: %d", size)
	}

	prev := s.cfg
	s.cfg.WindowSize = size
	s.cfg.HopSize = max(size/4, 1)

	if err := s.rebuildState(); err != nil {
		s.cfg = prev
		return err
	}

	return nil
}

// SetHopSize updates the analysis hop.
func (s *TimeStretcher) SetHopSize(hop int) error {
	if hop <= 0 || hop > s.cfg.WindowSize {
		return fmt.Errorf("time stretcher hop size must be in [1, %d]: %d", s.cfg.WindowSize, hop)
	}

	prev := s.cfg
	s.cfg.HopSize = hop

	if err := s.rebuildState(); err != nil {
		s.cfg = prev
		return err
	}

	return nil
}

// OutputLength returns the number of samples Process produces for an input
// of n samples.
func (s *TimeStretcher) OutputLength(n int) int {
	frames := stft.FrameCount(n, s.cfg.WindowSize, s.cfg.HopSize)

	return stft.OutputLength(frames, s.cfg.WindowSize, s.synthesisHop)
}

// Process time-stretches input. Input shorter than one window produces no
// frames and yields WindowSize zero samples. input is not modified.
func (s *TimeStretcher) Process(input []float64) ([]float64, error) {
	return s.ProcessContext(context.Background(), input)
}

// ProcessContext is Process with cancellation checked between stages.
func (s *TimeStretcher) ProcessContext(ctx context.Context, input []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frames, err := s.analysis.Analyze(input)
	if err != nil {
		return nil, fmt.Errorf("time stretcher: analysis failed: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vocoded, err := pvoc.Vocode(frames, s.cfg.WindowSize, s.cfg.HopSize, s.EffectiveStretch())
	if err != nil {
		return nil, fmt.Errorf("time stretcher: phase vocoder failed: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := s.synthesis.Synthesize(vocoded)
	if err != nil {
		return nil, fmt.Errorf("time stretcher: synthesis failed: %w", err)
	}

	return out, nil
}

func (s *TimeStretcher) validate() error {
	if !core.IsFinitePositive(s.cfg.SampleRate) {
		return fmt.Errorf("time stretcher sample rate must be positive and finite: %f", s.cfg.SampleRate)
	}

	if s.cfg.WindowSize < 2 || !core.IsPowerOfTwo(s.cfg.WindowSize) {
		return fmt.Errorf("time stretcher window size must be power-of-two and >= 2: %d", s.cfg.WindowSize)
	}

	if s.cfg.HopSize <= 0 || s.cfg.HopSize > s.cfg.WindowSize {
		return fmt.Errorf("time stretcher hop size must be in [1, %d]: %d", s.cfg.WindowSize, s.cfg.HopSize)
	}

	return validateStretch(s.cfg.Stretch, s.cfg.FixedSynthesisHop)
}

func (s *TimeStretcher) rebuildState() error {
	if err := s.validate(); err != nil {
		return err
	}

	synthesisHop := s.cfg.HopSize
	if !s.cfg.FixedSynthesisHop {
		synthesisHop = max(int(math.Round(float64(s.cfg.HopSize)*s.cfg.Stretch)), 1)
	}

	if synthesisHop > s.cfg.WindowSize {
		return fmt.Errorf("time stretcher synthesis hop %d exceeds window size %d; reduce stretch or hop",
			synthesisHop, s.cfg.WindowSize)
	}

	opts := []stft.Option{stft.WithBackend(s.cfg.Backend)}
	if s.cfg.GainCompensation {
		opts = append(opts, stft.WithGainCompensation())
	}

	analysis, err := stft.New(s.cfg.WindowSize, s.cfg.HopSize, opts...)
	if err != nil {
		return fmt.Errorf("time stretcher: %w", err)
	}

	synthesis, err := stft.New(s.cfg.WindowSize, synthesisHop, opts...)
	if err != nil {
		return fmt.Errorf("time stretcher: %w", err)
	}

	s.synthesisHop = synthesisHop
	s.analysis = analysis
	s.synthesis = synthesis

	return nil
}

// validateStretch bounds the stretch factor. MaxStretch only applies when the
// synthesis hop scales with the factor.
func validateStretch(stretch float64, fixedHop bool) error {
	if !core.IsFinitePositive(stretch) || stretch < MinStretch {
		return fmt.Errorf("time stretch factor must be finite and >= %g: %f", MinStretch, stretch)
	}

	if !fixedHop && stretch > MaxStretch {
		return fmt.Errorf("time stretch factor must be in [%g, %g]: %f", MinStretch, MaxStretch, stretch)
	}

	return nil
}
