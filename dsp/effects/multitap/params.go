package multitap

import (
	"math"

	"github.com/cwbudde/algo-tapdelay/dsp/control"
	"github.com/cwbudde/algo-tapdelay/dsp/core"
)

// param is one dynamic input together with its last sanitised value.
type param struct {
	input control.Input
	value float64
	lo    float64
	hi    float64
}

// resolve polls the input and clamps the result. NaN keeps the previous
// value.
func (p *param) resolve(b control.Block) float64 {
	v := p.input.Resolve(b)
	if math.IsNaN(v) {
		return p.value
	}
	p.value = core.Clamp(v, p.lo, p.hi)
	return p.value
}

// controller resolves delay time, decay and mix once per block and tracks
// the active window length.
type controller struct {
	delayMs param
	decay   param
	mix     param

	sampleRate float64
	maxFrames  int
	window     int
	smoothing  bool

	// decay and mix ramp from *From to the resolved value across a block
	decayFrom float64
	mixFrom   float64
}

func newController(cfg Config, smoothing bool) *controller {
	rate := float64(cfg.SampleRate)
	maxMs := float64(cfg.MaxDelayMs)
	// one frame is the shortest representable delay
	minMs := math.Min(1000/rate, maxMs)

	c := &controller{
		delayMs:    param{input: cfg.DelayMs, lo: minMs, hi: maxMs, value: maxMs},
		decay:      param{input: cfg.Decay, lo: 0, hi: 1},
		mix:        param{input: cfg.Mix, lo: 0, hi: 1},
		sampleRate: rate,
		maxFrames:  cfg.MaxDelayFrames(),
		smoothing:  smoothing,
	}
	c.update(control.Block{SampleRate: rate})
	c.decayFrom = c.decay.value
	c.mixFrom = c.mix.value
	return c
}

// update resolves all inputs for block b and reports whether the window
// length changed.
func (c *controller) update(b control.Block) bool {
	c.decayFrom = c.decay.value
	c.mixFrom = c.mix.value

	ms := c.delayMs.resolve(b)
	c.decay.resolve(b)
	c.mix.resolve(b)

	if !c.smoothing {
		c.decayFrom = c.decay.value
		c.mixFrom = c.mix.value
	}

	window := core.ClampInt(int(math.Round(ms*c.sampleRate/1000)), 1, c.maxFrames)
	if window == c.window {
		return false
	}
	c.window = window
	return true
}

// at returns decay and mix for frame i of an n-frame block.
func (c *controller) at(i, n int) (decay, mix float64) {
	if c.decayFrom == c.decay.value && c.mixFrom == c.mix.value {
		return c.decay.value, c.mix.value
	}
	t := float64(i+1) / float64(n)
	decay = c.decayFrom + t*(c.decay.value-c.decayFrom)
	mix = c.mixFrom + t*(c.mix.value-c.mixFrom)
	return decay, mix
}
