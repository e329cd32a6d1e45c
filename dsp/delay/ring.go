package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-tapdelay/dsp/core"
	"github.com/cwbudde/algo-tapdelay/dsp/interp"
)

// Ring is a multichannel circular delay buffer with a fixed capacity.
//
// Lags are counted in frames behind the write cursor: lag 0 is the most
// recently written frame and lag Window()-1 is the oldest frame of the
// active window.
type Ring struct {
	data     []float64
	channels int
	capacity int
	window   int
	writePos int
	mode     interp.Mode
}

// Option configures a Ring.
type Option func(*Ring)

// WithMode selects the fractional read algorithm.
func WithMode(mode interp.Mode) Option {
	return func(r *Ring) {
		r.mode = mode
	}
}

// NewRing returns a zero-filled ring holding capacity frames of channels
// samples each. The active window starts at the full capacity.
func NewRing(capacity, channels int, opts ...Option) (*Ring, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("delay capacity must be > 0: %d", capacity)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("delay channel count must be > 0: %d", channels)
	}
	r := &Ring{
		data:     make([]float64, capacity*channels),
		channels: channels,
		capacity: capacity,
		window:   capacity,
		mode:     interp.Linear,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Cap returns the capacity in frames.
func (r *Ring) Cap() int {
	return r.capacity
}

// Channels returns the number of samples per frame.
func (r *Ring) Channels() int {
	return r.channels
}

// Mode returns the fractional read algorithm.
func (r *Ring) Mode() interp.Mode {
	return r.mode
}

// Window returns the active window length in frames.
func (r *Ring) Window() int {
	return r.window
}

// SetWindow sets the active window, clamped to [1, Cap()], and returns the
// value in effect. Stored history is left untouched.
func (r *Ring) SetWindow(frames int) int {
	if frames < 1 {
		frames = 1
	}
	if frames > r.capacity {
		frames = r.capacity
	}
	r.window = frames
	return frames
}

// Write stores one frame at the cursor and advances it.
// frame must hold at least Channels() samples.
func (r *Ring) Write(frame []float64) {
	base := r.writePos * r.channels
	copy(r.data[base:base+r.channels], frame[:r.channels])
	r.writePos++
	if r.writePos >= r.capacity {
		r.writePos = 0
	}
}

// Read returns channel ch of the frame lag frames behind the newest one.
// lag is clamped to [0, Cap()-1].
func (r *Ring) Read(ch, lag int) float64 {
	if lag < 0 {
		lag = 0
	} else if lag >= r.capacity {
		lag = r.capacity - 1
	}
	idx := r.writePos - 1 - lag
	if idx < 0 {
		idx += r.capacity
	}
	return r.data[idx*r.channels+ch]
}

// ReadFractional reads a fractional lag using the configured interpolation
// mode. Lags between two frames blend the newer (floor) and older (ceil)
// neighbours.
func (r *Ring) ReadFractional(ch int, lag float64) float64 {
	if lag <= 0 || math.IsNaN(lag) {
		return r.Read(ch, 0)
	}
	maxLag := float64(r.capacity - 1)
	if lag >= maxLag {
		return r.Read(ch, r.capacity-1)
	}

	p := int(lag)
	t := lag - float64(p)
	if t == 0 {
		return r.Read(ch, p)
	}

	if r.mode == interp.Hermite {
		return interp.Hermite4(t,
			r.Read(ch, p-1),
			r.Read(ch, p),
			r.Read(ch, p+1),
			r.Read(ch, p+2))
	}
	return interp.Linear2(t, r.Read(ch, p), r.Read(ch, p+1))
}

// Reset clears stored history and rewinds the cursor. The window is kept.
func (r *Ring) Reset() {
	core.Zero(r.data)
	r.writePos = 0
}
