package stretch

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-pvoc/dsp/fft"
	"github.com/cwbudde/algo-pvoc/internal/testutil"
)

const (
	testSampleRate = 8000.0
	testWindow     = 256
	// 12 cycles per window: bin-centred and a multiple of four bins, so the
	// tone sits on a bin whose expected phase advance per quarter-window hop
	// is a whole number of turns.
	testBin  = 12
	testFreq = testBin * testSampleRate / testWindow
)

func TestNewDefaults(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := s.WindowSize(); got != DefaultWindowSize {
		t.Fatalf("WindowSize() = %d, want %d", got, DefaultWindowSize)
	}

	if got := s.HopSize(); got != DefaultWindowSize/4 {
		t.Fatalf("HopSize() = %d, want %d", got, DefaultWindowSize/4)
	}

	if got := s.Stretch(); got != DefaultStretch {
		t.Fatalf("Stretch() = %f, want %f", got, DefaultStretch)
	}

	if got := s.SampleRate(); got != DefaultSampleRate {
		t.Fatalf("SampleRate() = %f, want %f", got, DefaultSampleRate)
	}

	if got := s.SynthesisHop(); got != 384 {
		t.Fatalf("SynthesisHop() = %d, want 384", got)
	}

	if got := s.EffectiveStretch(); got != 1.5 {
		t.Fatalf("EffectiveStretch() = %f, want 1.5", got)
	}

	if got := s.Backend(); got != fft.BackendRadix2 {
		t.Fatalf("Backend() = %v, want radix2", got)
	}
}

func TestApplyOptions(t *testing.T) {
	cfg := ApplyOptions(
		WithSampleRate(48000),
		WithWindowSize(2048),
		WithHopSize(256),
		WithStretch(0.75),
		WithBackend(fft.BackendPlan),
		WithGainCompensation(),
		WithFixedSynthesisHop(),
	)

	want := Config{
		SampleRate:        48000,
		WindowSize:        2048,
		HopSize:           256,
		Stretch:           0.75,
		Backend:           fft.BackendPlan,
		GainCompensation:  true,
		FixedSynthesisHop: true,
	}

	if cfg != want {
		t.Fatalf("cfg = %#v, want %#v", cfg, want)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyOptions(
		WithSampleRate(0),
		WithWindowSize(1000),
		WithHopSize(-1),
		WithStretch(math.NaN()),
		nil,
	)

	if def := DefaultConfig(); cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}

func TestNewWithConfigValidates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "window not power of two", mutate: func(c *Config) { c.WindowSize = 1000 }},
		{name: "zero hop", mutate: func(c *Config) { c.HopSize = 0 }},
		{name: "hop beyond window", mutate: func(c *Config) { c.HopSize = c.WindowSize + 1 }},
		{name: "stretch too small", mutate: func(c *Config) { c.Stretch = 0.1 }},
		{name: "stretch too large", mutate: func(c *Config) { c.Stretch = 5 }},
		{name: "bad sample rate", mutate: func(c *Config) { c.SampleRate = math.Inf(1) }},
		{name: "synthesis hop beyond window", mutate: func(c *Config) { c.HopSize = c.WindowSize / 2; c.Stretch = 3 }},
		{name: "unknown backend", mutate: func(c *Config) { c.Backend = fft.Backend(99) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			if _, err := NewWithConfig(cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSettersValidateAndKeepState(t *testing.T) {
	s, err := New(WithWindowSize(testWindow))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := s.SetStretch(0); err == nil {
		t.Fatal("expected error for zero stretch")
	}

	if err := s.SetWindowSize(300); err == nil {
		t.Fatal("expected error for non power-of-two window")
	}

	if err := s.SetHopSize(0); err == nil {
		t.Fatal("expected error for zero hop")
	}

	if err := s.SetHopSize(testWindow / 2); err != nil {
		t.Fatalf("SetHopSize() error = %v", err)
	}

	// 128 * 3 exceeds the window, so the change must be rejected atomically.
	if err := s.SetStretch(3); err == nil {
		t.Fatal("expected error for synthesis hop beyond window")
	}

	if s.Stretch() != DefaultStretch || s.SynthesisHop() != 192 {
		t.Fatalf("state changed after failed SetStretch: stretch=%f hop=%d", s.Stretch(), s.SynthesisHop())
	}

	if err := s.SetSampleRate(-1); err == nil {
		t.Fatal("expected error for negative sample rate")
	}

	if err := s.SetSampleRate(22050); err != nil || s.SampleRate() != 22050 {
		t.Fatalf("SetSampleRate() error = %v, rate = %f", err, s.SampleRate())
	}

	if err := s.SetWindowSize(512); err != nil {
		t.Fatalf("SetWindowSize() error = %v", err)
	}

	if s.HopSize() != 128 || s.SynthesisHop() != 192 {
		t.Fatalf("hops = %d/%d, want 128/192", s.HopSize(), s.SynthesisHop())
	}

	if err := s.SetStretch(1.3); err != nil {
		t.Fatalf("SetStretch() error = %v", err)
	}

	if got, want := s.EffectiveStretch(), 166.0/128.0; got != want {
		t.Fatalf("EffectiveStretch() = %f, want %f", got, want)
	}
}

func TestProcessUnitStretchKeepsFrequencyAndLength(t *testing.T) {
	s, err := New(WithSampleRate(testSampleRate), WithWindowSize(testWindow), WithStretch(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	input := testutil.DeterministicSine(testFreq, testSampleRate, 0.5, 4096)

	out, err := s.Process(input)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(out) != s.OutputLength(len(input)) {
		t.Fatalf("len(out) = %d, want %d", len(out), s.OutputLength(len(input)))
	}

	if d := len(out) - len(input); d < 0 || d > s.HopSize() {
		t.Fatalf("len(out) = %d, input %d: duration changed", len(out), len(input))
	}

	testutil.RequireFinite(t, out)

	mid := len(out) / 2
	if got := testutil.DominantBin(out[mid-testWindow/2 : mid+testWindow/2]); got != testBin {
		t.Fatalf("dominant bin = %d, want %d", got, testBin)
	}

	interior := out[testWindow : len(out)-testWindow]
	if testutil.RMS(interior) < 0.5*testutil.RMS(input) {
		t.Fatalf("output level %f too low vs input %f", testutil.RMS(interior), testutil.RMS(input))
	}
}

func TestProcessDoubleStretchScalesDuration(t *testing.T) {
	s, err := New(WithSampleRate(testSampleRate), WithWindowSize(testWindow), WithStretch(2))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	input := testutil.DeterministicSine(testFreq, testSampleRate, 0.5, 4096)

	out, err := s.Process(input)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	frames := (len(input)-testWindow)/s.HopSize() + 1
	if want := frames*s.SynthesisHop() + testWindow; len(out) != want {
		t.Fatalf("len(out) = %d, want %d", len(out), want)
	}

	ratio := float64(len(out)) / float64(len(input))
	if math.Abs(ratio-2) > 0.1 {
		t.Fatalf("duration ratio = %f, want ~2", ratio)
	}

	mid := len(out) / 2
	if got := testutil.DominantBin(out[mid-testWindow/2 : mid+testWindow/2]); got != testBin {
		t.Fatalf("dominant bin = %d, want %d (pitch must not change)", got, testBin)
	}
}

func TestProcessCompressesDuration(t *testing.T) {
	s, err := New(WithWindowSize(testWindow), WithStretch(0.5))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	input := testutil.DeterministicNoise(3, 0.5, 8192)

	out, err := s.Process(input)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	ratio := float64(len(out)) / float64(len(input))
	if math.Abs(ratio-0.5) > 0.05 {
		t.Fatalf("duration ratio = %f, want ~0.5", ratio)
	}
}

func TestProcessFixedSynthesisHopKeepsDuration(t *testing.T) {
	s, err := New(WithWindowSize(testWindow), WithStretch(1.5), WithFixedSynthesisHop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if s.SynthesisHop() != s.HopSize() || s.EffectiveStretch() != 1.5 {
		t.Fatalf("hop=%d synth=%d eff=%f", s.HopSize(), s.SynthesisHop(), s.EffectiveStretch())
	}

	input := testutil.DeterministicNoise(8, 0.3, 2048)

	out, err := s.Process(input)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if d := len(out) - len(input); d < 0 || d > s.HopSize() {
		t.Fatalf("len(out) = %d for input %d", len(out), len(input))
	}
}

func TestFixedSynthesisHopAllowsStretchBeyondMax(t *testing.T) {
	s, err := New(WithWindowSize(testWindow), WithStretch(MaxStretch+1), WithFixedSynthesisHop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if s.SynthesisHop() != s.HopSize() {
		t.Fatalf("SynthesisHop() = %d, want %d", s.SynthesisHop(), s.HopSize())
	}

	if err := s.SetStretch(2 * MaxStretch); err != nil {
		t.Fatalf("SetStretch(%g) error = %v", 2*MaxStretch, err)
	}

	if err := s.SetStretch(MinStretch / 2); err == nil {
		t.Fatal("expected error below MinStretch")
	}

	input := testutil.DeterministicNoise(9, 0.3, 1024)

	out, err := s.Process(input)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if got, want := len(out), s.OutputLength(len(input)); got != want {
		t.Fatalf("len(out) = %d, want %d", got, want)
	}

	testutil.RequireFinite(t, out)

	scaled, err := New(WithWindowSize(testWindow))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := scaled.SetStretch(MaxStretch + 1); err == nil {
		t.Fatal("expected error above MaxStretch with scaled synthesis hop")
	}
}

func TestProcessSilence(t *testing.T) {
	for _, stretch := range []float64{0.5, 1, 1.5, 2} {
		s, err := New(WithWindowSize(testWindow), WithStretch(stretch))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		out, err := s.Process(make([]float64, 2048))
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}

		for i, v := range out {
			if math.Abs(v) > 1e-12 {
				t.Fatalf("stretch=%v out[%d] = %v, want 0", stretch, i, v)
			}
		}
	}
}

func TestProcessShortInput(t *testing.T) {
	s, err := New(WithWindowSize(testWindow))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, n := range []int{0, 10, testWindow - 1} {
		out, err := s.Process(testutil.Ones(n))
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}

		if len(out) != testWindow {
			t.Fatalf("n=%d: len(out) = %d, want %d", n, len(out), testWindow)
		}

		for i, v := range out {
			if v != 0 {
				t.Fatalf("n=%d: out[%d] = %v, want 0", n, i, v)
			}
		}
	}
}

func TestProcessBackendsAgree(t *testing.T) {
	input := testutil.DeterministicNoise(21, 0.5, 2048)

	// An integer stretch keeps a +/-pi unwrap tie (DC and Nyquist bins of a
	// real signal) from turning backend round-off into a sign flip.
	ref, err := New(WithWindowSize(testWindow), WithStretch(2))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	want, err := ref.Process(input)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	for _, b := range fft.Backends() {
		t.Run(b.String(), func(t *testing.T) {
			s, err := New(WithWindowSize(testWindow), WithStretch(2), WithBackend(b))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			got, err := s.Process(input)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}

			diff, err := testutil.MaxAbsDiff(got, want)
			if err != nil {
				t.Fatalf("MaxAbsDiff() error = %v", err)
			}

			if diff > 1e-6 {
				t.Fatalf("max abs diff vs radix2 = %g, want <= 1e-6", diff)
			}
		})
	}
}

func TestProcessDoesNotMutateInput(t *testing.T) {
	s, err := New(WithWindowSize(testWindow))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	input := testutil.DeterministicNoise(6, 1, 1024)
	before := append([]float64(nil), input...)

	if _, err := s.Process(input); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, input, before, 0)
}

func TestProcessContextCanceled(t *testing.T) {
	s, err := New(WithWindowSize(testWindow))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ProcessContext(ctx, make([]float64, 1024)); !errors.Is(err, context.Canceled) {
		t.Fatalf("ProcessContext() error = %v, want context.Canceled", err)
	}
}
