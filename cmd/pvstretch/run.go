package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-pvoc/codec/flacfile"
	"github.com/cwbudde/algo-pvoc/codec/pcm"
	"github.com/cwbudde/algo-pvoc/codec/wavfile"
	"github.com/cwbudde/algo-pvoc/dsp/fft"
	"github.com/cwbudde/algo-pvoc/dsp/stretch"
)

const (
	exitOK    = 0
	exitError = 1
)

const (
	formatRaw  = "raw"
	formatWAV  = "wav"
	formatFLAC = "flac"
)

var errUsage = errors.New("usage")

type options struct {
	sampleRate int
	window     int
	hop        int
	stretch    float64
	backend    fft.Backend
	normalize  bool
	fixedHop   bool
	inPath     string
	outPath    string
	inFormat   string
	outFormat  string
	verbose    bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	log := logrus.New()
	log.SetOutput(stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	opts, err := parseArgs(args, stderr)
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return exitError
	}

	if opts.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := process(context.Background(), log, opts, stdin, stdout); err != nil {
		log.WithError(err).Error("time stretch failed")
		return exitError
	}

	return exitOK
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("pvstretch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts    options
		backend string
	)

	fs.IntVar(&opts.window, "window", stretch.DefaultWindowSize, "window size in samples (power of two)")
	fs.IntVar(&opts.hop, "hop", 0, "analysis hop in samples (default window/4)")
	fs.Float64Var(&opts.stretch, "stretch", stretch.DefaultStretch, "time-stretch factor (>1 slows down)")
	fs.StringVar(&backend, "fft", fft.BackendRadix2.String(), "fft backend: radix2, plan, gonum, godsp")
	fs.BoolVar(&opts.normalize, "normalize", false, "compensate the overlap-add window gain")
	fs.BoolVar(&opts.fixedHop, "fixed-hop", false, "synthesize at the analysis hop (duration unchanged)")
	fs.StringVar(&opts.inPath, "in", "-", "input file, - for stdin")
	fs.StringVar(&opts.outPath, "out", "-", "output file, - for stdout")
	fs.StringVar(&opts.inFormat, "in-format", formatRaw, "input format: raw, wav, flac")
	fs.StringVar(&opts.outFormat, "out-format", formatRaw, "output format: raw, wav")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: pvstretch [flags] <sample_rate>\n\n")
		fmt.Fprintf(stderr, "Time-stretches mono 16-bit PCM audio while preserving pitch.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, errUsage
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return opts, errUsage
	}

	rate, err := strconv.Atoi(fs.Arg(0))
	if err != nil || rate <= 0 {
		fs.Usage()
		return opts, errUsage
	}
	opts.sampleRate = rate

	if opts.hop < 0 {
		return opts, fmt.Errorf("hop must be positive, or 0 for window/4: %d", opts.hop)
	}

	opts.backend, err = fft.ParseBackend(backend)
	if err != nil {
		return opts, err
	}

	opts.inFormat = strings.ToLower(opts.inFormat)
	opts.outFormat = strings.ToLower(opts.outFormat)

	switch opts.inFormat {
	case formatRaw, formatWAV, formatFLAC:
	default:
		return opts, fmt.Errorf("unknown input format %q", opts.inFormat)
	}

	switch opts.outFormat {
	case formatRaw:
	case formatWAV:
		if opts.outPath == "-" {
			return opts, errors.New("wav output needs a seekable file: set -out")
		}
	default:
		return opts, fmt.Errorf("unknown output format %q", opts.outFormat)
	}

	return opts, nil
}

func process(ctx context.Context, log *logrus.Logger, opts options, stdin io.Reader, stdout io.Writer) error {
	stretchOpts := []stretch.Option{
		stretch.WithSampleRate(float64(opts.sampleRate)),
		stretch.WithWindowSize(opts.window),
		stretch.WithStretch(opts.stretch),
		stretch.WithBackend(opts.backend),
	}
	if opts.hop > 0 {
		stretchOpts = append(stretchOpts, stretch.WithHopSize(opts.hop))
	}
	if opts.normalize {
		stretchOpts = append(stretchOpts, stretch.WithGainCompensation())
	}
	if opts.fixedHop {
		stretchOpts = append(stretchOpts, stretch.WithFixedSynthesisHop())
	}

	cfg := stretch.ApplyOptions(stretchOpts...)
	if cfg.WindowSize != opts.window || cfg.Stretch != opts.stretch {
		return fmt.Errorf("invalid window %d or stretch %g", opts.window, opts.stretch)
	}

	stretcher, err := stretch.NewWithConfig(cfg)
	if err != nil {
		return err
	}

	input, err := readInput(log, opts, stdin)
	if err != nil {
		return err
	}

	fields := logrus.Fields{
		"samples":       len(input),
		"window":        stretcher.WindowSize(),
		"hop":           stretcher.HopSize(),
		"synthesis_hop": stretcher.SynthesisHop(),
		"stretch":       stretcher.EffectiveStretch(),
		"backend":       stretcher.Backend().String(),
	}
	log.WithFields(fields).Debug("processing")

	start := time.Now()

	output, err := stretcher.ProcessContext(ctx, input)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"samples": len(output),
		"elapsed": time.Since(start).String(),
	}).Debug("processed")

	if clipped := countClipped(output); clipped > 0 {
		log.WithFields(logrus.Fields{
			"clipped": clipped,
			"samples": len(output),
		}).Warn("output exceeds full scale and will be clamped; try -normalize")
	}

	return writeOutput(opts, stdout, output)
}

func readInput(log *logrus.Logger, opts options, stdin io.Reader) ([]float64, error) {
	r := stdin
	if opts.inPath != "-" {
		f, err := os.Open(opts.inPath)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var (
		samples []float64
		rate    int
		err     error
	)

	switch opts.inFormat {
	case formatWAV:
		samples, rate, err = wavfile.Read(r)
	case formatFLAC:
		samples, rate, err = flacfile.Read(r)
	default:
		samples, err = pcm.Decode(r)
		rate = opts.sampleRate
	}

	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	if rate != opts.sampleRate {
		log.WithFields(logrus.Fields{
			"container_rate": rate,
			"argument_rate":  opts.sampleRate,
		}).Warn("sample rate argument differs from input container")
	}

	return samples, nil
}

func writeOutput(opts options, stdout io.Writer, samples []float64) error {
	if opts.outFormat == formatWAV {
		f, err := os.Create(opts.outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}

		if err := wavfile.Write(f, samples, opts.sampleRate); err != nil {
			_ = f.Close()
			return err
		}

		return f.Close()
	}

	w := stdout
	if opts.outPath != "-" {
		f, err := os.Create(opts.outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	return pcm.Encode(w, samples)
}

func countClipped(samples []float64) int {
	n := 0
	for _, v := range samples {
		if v > 1 || v < -1 {
			n++
		}
	}
	return n
}
