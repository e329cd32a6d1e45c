// Command tapdelay renders an impulse through a multi-tap delay and prints
// the resulting echo pattern.
//
// Usage:
//
//	tapdelay [flags]
//
// Examples:
//
//	tapdelay
//	tapdelay -delay 125 -decay 0.5 -mix 0.5
//	tapdelay -taps "0, 0.5:0.6, 0.75:0.3" -duration 3
//	tapdelay -mod-rate 0.5 -mod-depth 20 -hermite
//	tapdelay -spectrum 16
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-tapdelay/dsp/control"
	"github.com/cwbudde/algo-tapdelay/dsp/effects/multitap"
	"github.com/cwbudde/algo-tapdelay/dsp/interp"
	"github.com/cwbudde/algo-tapdelay/internal/logging"
)

func main() {
	def := multitap.DefaultConfig()

	delayMs := flag.Float64("delay", 250, "delay time in milliseconds")
	decay := flag.Float64("decay", 0.7, "feedback per pass, 0..1")
	mix := flag.Float64("mix", 0.25, "dry/wet ratio, 0 = dry only, 1 = wet only")
	maxDelay := flag.Int("max", def.MaxDelayMs, "maximum delay time in milliseconds")
	rate := flag.Int("rate", def.SampleRate, "sample rate in Hz")
	taps := flag.String("taps", "", `tap list, e.g. "0.5, 0.66:0.7" (empty = single tap at the full delay)`)
	duration := flag.Float64("duration", 2, "rendered length in seconds")
	amplitude := flag.Int("amplitude", 16000, "impulse amplitude on the 16-bit scale")
	threshold := flag.Float64("threshold", -60, "echo detection threshold in dB below the peak")
	spacing := flag.Int("spacing", 1, "merge echoes closer than this many frames")
	hermite := flag.Bool("hermite", false, "use Hermite instead of linear interpolation for fractional taps")
	noSmooth := flag.Bool("no-smooth", false, "apply decay and mix changes without ramping")
	modRate := flag.Float64("mod-rate", 0, "delay modulation rate in Hz (0 = off)")
	modDepth := flag.Float64("mod-depth", 0, "delay modulation depth in milliseconds")
	spectrum := flag.Int("spectrum", 0, "print the magnitude response at this many frequencies (0 = off)")
	fftSize := flag.Int("fft", 0, "FFT size for -spectrum (0 = fit the rendered length)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error (default $LOG_LEVEL or warn)")
	logFormat := flag.String("log-format", "", "log format: console or json (default $LOG_FORMAT or console)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tapdelay [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders an impulse through a multi-tap delay and prints the echoes.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tapdelay -delay 125 -decay 0.5 -mix 0.5\n")
		fmt.Fprintf(os.Stderr, "  tapdelay -taps \"0, 0.5:0.6\" -duration 3\n")
		fmt.Fprintf(os.Stderr, "  tapdelay -spectrum 16\n")
	}
	flag.Parse()

	logCfg := logging.Config{Level: *logLevel, Format: *logFormat}.
		Merge(logging.ConfigFromEnv()).
		Merge(logging.Config{Level: "warn"})
	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	tapList, err := multitap.ParseTaps(*taps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	cfg := def
	cfg.MaxDelayMs = *maxDelay
	cfg.SampleRate = *rate
	cfg.DelayMs = control.Constant(*delayMs)
	cfg.Decay = control.Constant(*decay)
	cfg.Mix = control.Constant(*mix)
	cfg.Taps = tapList

	if *modRate > 0 && *modDepth > 0 {
		lfo, err := control.NewLFO(*modRate, *modDepth, *delayMs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
		cfg.DelayMs = lfo
	}

	opts := []multitap.Option{
		multitap.WithLogger(logger),
		multitap.WithSmoothing(!*noSmooth),
	}
	if *hermite {
		opts = append(opts, multitap.WithInterpolation(interp.Hermite))
	}

	job := renderJob{
		cfg:       cfg,
		opts:      opts,
		amplitude: *amplitude,
		frames:    int(*duration * float64(*rate)),
	}
	resp, err := job.render()
	if err != nil {
		logger.Error("render failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	report := analysis{
		sampleRate: float64(*rate),
		threshold:  *threshold,
		spacing:    *spacing,
	}
	if err := report.print(os.Stdout, resp, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *spectrum > 0 {
		if err := printSpectrum(os.Stdout, resp, *fftSize, float64(*rate), *spectrum); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}
