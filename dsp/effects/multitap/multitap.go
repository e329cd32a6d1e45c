package multitap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-tapdelay/dsp/buffer"
	"github.com/cwbudde/algo-tapdelay/dsp/control"
	"github.com/cwbudde/algo-tapdelay/dsp/delay"
	"github.com/cwbudde/algo-tapdelay/dsp/pcm"
)

// Delay is a multi-tap delay effect. It owns its delay ring, tap table and
// staging buffers; a playing source is borrowed until it ends, Stop is
// called or another source replaces it.
type Delay struct {
	cfg    Config
	format pcm.Format
	log    *zap.Logger

	ring    *delay.Ring
	taps    *tapTable
	params  *controller
	player  player
	staging *buffer.Staging
	dry     *buffer.Block
	wet     *buffer.Block
	frame   []float64

	blockFrames int
	blocks      uint64
	produced    uint64
	closed      bool
}

// New creates a Delay. Invalid parameters return an error wrapping
// ErrConfiguration and no Delay is created.
func New(cfg Config, opts ...Option) (*Delay, error) {
	cfg.applyDefaults()
	o := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		o.logger.Warn("rejected delay configuration", zap.Error(err))
		return nil, err
	}

	format := cfg.Format()
	ring, err := delay.NewRing(cfg.MaxDelayFrames(), cfg.Channels, delay.WithMode(o.mode))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	d := &Delay{
		cfg:         cfg,
		format:      format,
		log:         o.logger,
		ring:        ring,
		params:      newController(cfg, o.smoothing),
		staging:     buffer.NewStaging(cfg.BufferSize),
		frame:       make([]float64, cfg.Channels),
		blockFrames: cfg.BufferSize / format.FrameBytes(),
	}
	d.ring.SetWindow(d.params.window)
	d.taps = newTapTable(cfg.Taps, d.ring.Window())
	d.dry = buffer.NewBlock(d.blockFrames, cfg.Channels)
	d.wet = buffer.NewBlock(d.blockFrames, cfg.Channels)

	d.log.Debug("delay created",
		zap.Int("max_delay_ms", cfg.MaxDelayMs),
		zap.Int("max_delay_frames", ring.Cap()),
		zap.Int("sample_rate", cfg.SampleRate),
		zap.Stringer("format", format),
		zap.Int("block_frames", d.blockFrames))
	return d, nil
}

// Format returns the output PCM format.
func (d *Delay) Format() pcm.Format { return d.format }

// SampleRate returns the sample rate in Hz.
func (d *Delay) SampleRate() int { return d.cfg.SampleRate }

// MaxDelayMs returns the configured maximum delay time.
func (d *Delay) MaxDelayMs() int { return d.cfg.MaxDelayMs }

// MaxDelayFrames returns the ring capacity in frames.
func (d *Delay) MaxDelayFrames() int { return d.ring.Cap() }

// BlockFrames returns the largest block Read produces.
func (d *Delay) BlockFrames() int { return d.blockFrames }

// Window returns the active delay length in frames as of the last block.
func (d *Delay) Window() int { return d.ring.Window() }

// DelayMs returns the delay time input.
func (d *Delay) DelayMs() control.Input { return d.params.delayMs.input }

// CurrentDelayMs returns the delay time resolved for the last block.
func (d *Delay) CurrentDelayMs() float64 { return d.params.delayMs.value }

// SetDelayMs sets the delay time in milliseconds. Values beyond the
// configured maximum are clamped when resolved.
func (d *Delay) SetDelayMs(in control.Input) error {
	if !control.IsFinite(in) {
		return fmt.Errorf("%w: delay_ms must be a finite value or a signal", ErrInvalidParameter)
	}
	d.params.delayMs.input = in
	return nil
}

// Decay returns the decay input.
func (d *Delay) Decay() control.Input { return d.params.decay.input }

// CurrentDecay returns the decay resolved for the last block.
func (d *Delay) CurrentDecay() float64 { return d.params.decay.value }

// SetDecay sets the feedback factor, clamped to [0, 1] when resolved.
func (d *Delay) SetDecay(in control.Input) error {
	if !control.IsFinite(in) {
		return fmt.Errorf("%w: decay must be a finite value or a signal", ErrInvalidParameter)
	}
	d.params.decay.input = in
	return nil
}

// Mix returns the mix input.
func (d *Delay) Mix() control.Input { return d.params.mix.input }

// CurrentMix returns the mix resolved for the last block.
func (d *Delay) CurrentMix() float64 { return d.params.mix.value }

// SetMix sets the dry/wet ratio, clamped to [0, 1] when resolved.
func (d *Delay) SetMix(in control.Input) error {
	if !control.IsFinite(in) {
		return fmt.Errorf("%w: mix must be a finite value or a signal", ErrInvalidParameter)
	}
	d.params.mix.input = in
	return nil
}

// Taps returns the explicit taps with levels always present, or nil when
// the implicit full-delay tap is in use.
func (d *Delay) Taps() []Tap {
	return d.taps.snapshot()
}

// SetTaps replaces the tap set. Calling it without taps restores the
// implicit full-delay tap. On error the previous taps stay in place.
func (d *Delay) SetTaps(taps ...Tap) error {
	if err := validateTaps(taps); err != nil {
		return err
	}
	d.taps = newTapTable(taps, d.ring.Window())
	return nil
}

// State returns the playback state.
func (d *Delay) State() State { return d.player.state }

// Playing reports whether a source is playing or looping.
func (d *Delay) Playing() bool { return d.player.state != Idle }

// Play starts src, replacing any sample currently playing. With loop set
// the source restarts whenever it ends. src must be 8 or 16 bit, mono or
// stereo, at the delay's sample rate; otherwise the error wraps
// pcm.ErrFormatMismatch and playback is unchanged.
func (d *Delay) Play(src pcm.Source, loop bool) error {
	if d.closed {
		return ErrClosed
	}
	if src == nil {
		return fmt.Errorf("%w: nil source", ErrInvalidParameter)
	}
	if d.feeds(src) {
		return fmt.Errorf("%w: source chain would feed the delay back into itself", ErrInvalidParameter)
	}
	f := src.Format()
	if err := f.Validate(); err != nil {
		return err
	}
	if rate := src.SampleRate(); rate != d.cfg.SampleRate {
		return fmt.Errorf("%w: source sample rate %d Hz, delay runs at %d Hz",
			pcm.ErrFormatMismatch, rate, d.cfg.SampleRate)
	}

	d.player.start(src, loop)
	d.log.Debug("playback started", zap.Stringer("source_format", f), zap.Bool("loop", loop))
	return nil
}

// feeds reports whether reading src would end up reading d.
func (d *Delay) feeds(src pcm.Source) bool {
	for s, ok := src.(*Delay); ok; s, ok = s.player.src.(*Delay) {
		if s == d {
			return true
		}
	}
	return false
}

// Stop halts dry input and releases the source. Echoes already in the
// ring keep playing. Stopping an idle delay does nothing.
func (d *Delay) Stop() {
	if d.player.state == Idle {
		return
	}
	d.player.release()
	d.log.Debug("playback stopped")
}

// Reset clears the echo history and restarts the output timeline.
// Playback state and previously returned blocks are left as is.
func (d *Delay) Reset() {
	d.ring.Reset()
	d.blocks = 0
	d.produced = 0
}

// Close stops playback and marks the delay unusable. Further Play and Read
// calls return ErrClosed.
func (d *Delay) Close() error {
	if d.closed {
		return nil
	}
	d.Stop()
	d.closed = true
	d.log.Debug("delay closed")
	return nil
}

// Read produces the next block of min(maxFrames, BlockFrames()) frames in
// the output format. The returned slice stays valid until the second
// following Read. The status is always pcm.MoreData since echoes outlive
// any source. A failing source ends playback; its error is returned along
// with the produced block.
func (d *Delay) Read(maxFrames int) ([]byte, pcm.Status, error) {
	if d.closed {
		return nil, pcm.Done, ErrClosed
	}
	n := maxFrames
	if n > d.blockFrames {
		n = d.blockFrames
	}
	if n <= 0 {
		return nil, pcm.MoreData, nil
	}
	out := d.staging.Next()

	b := control.Block{
		Index:      d.blocks,
		Start:      d.produced,
		Frames:     n,
		SampleRate: float64(d.cfg.SampleRate),
	}
	if d.params.update(b) {
		d.ring.SetWindow(d.params.window)
		d.taps.resolve(d.ring.Window())
	}

	dry := d.dry.Frames(n)
	filled, ev, err := d.player.fill(dry, d.cfg.Channels)
	d.dry.ZeroFrames(filled, n)
	d.logEvent(ev, err)

	wet := d.wet.Frames(n)
	d.process(dry, wet, n)
	size := pcm.Encode(out, wet, d.format)

	d.blocks++
	d.produced += uint64(n)
	return out[:size], pcm.MoreData, err
}

func (d *Delay) logEvent(ev fillEvent, err error) {
	if err != nil {
		d.log.Warn("source failed, playback stopped", zap.Error(err))
		return
	}
	var msg string
	switch ev {
	case eventEnded:
		msg = "source exhausted"
	case eventLooped:
		msg = "source looped"
	case eventStalled:
		msg = "looping source is empty, playback stopped"
	default:
		return
	}
	if ce := d.log.Check(zap.DebugLevel, msg); ce != nil {
		ce.Write(zap.Uint64("frame", d.produced))
	}
}
