package multitap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-tapdelay/dsp/control"
	"github.com/cwbudde/algo-tapdelay/dsp/interp"
	"github.com/cwbudde/algo-tapdelay/dsp/pcm"
)

const (
	minMaxDelayMs = 1
	maxMaxDelayMs = 4000
)

// Config holds construction parameters of a Delay.
type Config struct {
	MaxDelayMs    int           // upper bound of the delay time, [1, 4000]
	DelayMs       control.Input // delay time; nil selects the default
	Decay         control.Input // feedback per pass, clamped to [0, 1]
	Mix           control.Input // 0 = dry only, 1 = wet only
	Taps          []Tap         // nil selects the implicit full-delay tap
	BufferSize    int           // bytes per staging buffer
	SampleRate    int
	BitsPerSample int // 8 or 16
	SamplesSigned bool
	Channels      int // 1 or 2
}

// DefaultConfig returns the documented defaults: 500 ms maximum, 250 ms
// delay, decay 0.7, mix 0.25, 512-byte buffers, 8 kHz signed 16-bit mono.
func DefaultConfig() Config {
	return Config{
		MaxDelayMs:    500,
		DelayMs:       control.Constant(250),
		Decay:         control.Constant(0.7),
		Mix:           control.Constant(0.25),
		BufferSize:    512,
		SampleRate:    8000,
		BitsPerSample: 16,
		SamplesSigned: true,
		Channels:      1,
	}
}

// Format returns the output PCM format described by the config.
func (c Config) Format() pcm.Format {
	return pcm.Format{BitsPerSample: c.BitsPerSample, Signed: c.SamplesSigned, Channels: c.Channels}
}

// MaxDelayFrames returns the ring capacity in frames.
func (c Config) MaxDelayFrames() int {
	n := c.MaxDelayMs * c.SampleRate / 1000
	if n < 1 {
		n = 1
	}
	return n
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.DelayMs == nil {
		c.DelayMs = def.DelayMs
	}
	if c.Decay == nil {
		c.Decay = def.Decay
	}
	if c.Mix == nil {
		c.Mix = def.Mix
	}
}

func (c Config) validate() error {
	if c.MaxDelayMs < minMaxDelayMs || c.MaxDelayMs > maxMaxDelayMs {
		return fmt.Errorf("%w: max delay must be in [%d, %d] ms: %d",
			ErrConfiguration, minMaxDelayMs, maxMaxDelayMs, c.MaxDelayMs)
	}
	if c.SampleRate < 1 {
		return fmt.Errorf("%w: sample rate must be >= 1: %d", ErrConfiguration, c.SampleRate)
	}
	if err := c.Format().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if fb := c.Format().FrameBytes(); c.BufferSize < fb {
		return fmt.Errorf("%w: buffer size must hold at least one frame (%d bytes): %d",
			ErrConfiguration, fb, c.BufferSize)
	}
	inputs := []struct {
		name string
		in   control.Input
	}{
		{"delay_ms", c.DelayMs},
		{"decay", c.Decay},
		{"mix", c.Mix},
	}
	for _, p := range inputs {
		if !control.IsFinite(p.in) {
			return fmt.Errorf("%w: %s must be a finite value or a signal", ErrConfiguration, p.name)
		}
	}
	if err := validateTaps(c.Taps); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return nil
}

type options struct {
	logger    *zap.Logger
	mode      interp.Mode
	smoothing bool
}

// Option configures optional Delay behaviour.
type Option func(*options)

// WithLogger sets the logger for lifecycle events. Nothing is logged per
// sample.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithInterpolation selects how fractional tap lags are read. The default
// is linear interpolation.
func WithInterpolation(mode interp.Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithSmoothing enables or disables per-block ramping of decay and mix.
// Smoothing is on by default.
func WithSmoothing(enabled bool) Option {
	return func(o *options) {
		o.smoothing = enabled
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), mode: interp.Linear, smoothing: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
