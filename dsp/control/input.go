package control

import (
	"math"
	"strconv"
)

// Block identifies the processing block an Input is resolved for.
type Block struct {
	Index      uint64  // blocks produced so far
	Start      uint64  // output frames produced before this block
	Frames     int     // frames in this block
	SampleRate float64 // Hz
}

// Time returns the block start in seconds.
func (b Block) Time() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Start) / b.SampleRate
}

// Input resolves to a scalar for a processing block.
type Input interface {
	Resolve(b Block) float64
}

// Constant is a fixed value.
type Constant float64

// Resolve returns the constant.
func (c Constant) Resolve(Block) float64 { return float64(c) }

func (c Constant) String() string {
	return strconv.FormatFloat(float64(c), 'g', -1, 64)
}

// Func adapts a function to Input.
type Func func(b Block) float64

// Resolve calls f.
func (f Func) Resolve(b Block) float64 { return f(b) }

// IsFinite reports whether in can be resolved: not nil, not a nil Func or
// pointer, and finite when it is a Constant. Time-varying inputs are
// otherwise accepted as-is; their values are sanitised by the consumer on
// every block.
func IsFinite(in Input) bool {
	switch v := in.(type) {
	case nil:
		return false
	case Constant:
		f := float64(v)
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	case Func:
		return v != nil
	case *LFO:
		return v != nil
	case *Ramp:
		return v != nil
	default:
		return true
	}
}
