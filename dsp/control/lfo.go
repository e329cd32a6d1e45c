package control

import (
	"fmt"
	"math"
)

// Waveform selects the LFO shape.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Saw
	Square
)

func (w Waveform) String() string {
	switch w {
	case Triangle:
		return "triangle"
	case Saw:
		return "saw"
	case Square:
		return "square"
	default:
		return "sine"
	}
}

// LFO is a low-frequency oscillator evaluated at the start of each block:
// Offset + Scale*wave(Rate*t + Phase), with wave in [-1, 1] and Phase in
// cycles.
type LFO struct {
	Waveform Waveform
	Rate     float64 // Hz
	Scale    float64
	Offset   float64
	Phase    float64
}

// NewLFO returns a sine LFO. rate must be finite and >= 0.
func NewLFO(rate, scale, offset float64) (*LFO, error) {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("lfo rate must be finite and >= 0: %f", rate)
	}
	if math.IsNaN(scale) || math.IsInf(scale, 0) || math.IsNaN(offset) || math.IsInf(offset, 0) {
		return nil, fmt.Errorf("lfo scale and offset must be finite: %f, %f", scale, offset)
	}
	return &LFO{Waveform: Sine, Rate: rate, Scale: scale, Offset: offset}, nil
}

// Resolve evaluates the oscillator at the block start.
func (l *LFO) Resolve(b Block) float64 {
	cycles := l.Rate*b.Time() + l.Phase
	_, frac := math.Modf(cycles)
	if frac < 0 {
		frac++
	}
	return l.Offset + l.Scale*wave(l.Waveform, frac)
}

func (l *LFO) String() string {
	return fmt.Sprintf("%g±%g (%s, %g Hz)", l.Offset, l.Scale, l.Waveform, l.Rate)
}

// wave returns the waveform value at phase p in [0, 1).
func wave(w Waveform, p float64) float64 {
	switch w {
	case Triangle:
		if p < 0.25 {
			return 4 * p
		}
		if p < 0.75 {
			return 2 - 4*p
		}
		return 4*p - 4
	case Saw:
		return 2*p - 1
	case Square:
		if p < 0.5 {
			return 1
		}
		return -1
	default:
		return math.Sin(2 * math.Pi * p)
	}
}

// Ramp moves linearly from From to To over Seconds of output time and then
// holds To.
type Ramp struct {
	From    float64
	To      float64
	Seconds float64
}

// Resolve evaluates the ramp at the block start.
func (r Ramp) Resolve(b Block) float64 {
	if r.Seconds <= 0 {
		return r.To
	}
	t := b.Time() / r.Seconds
	if t >= 1 {
		return r.To
	}
	return r.From + t*(r.To-r.From)
}
