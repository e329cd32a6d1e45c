package buffer

import "github.com/cwbudde/algo-tapdelay/dsp/core"

// Block is a fixed-capacity interleaved float64 frame buffer.
type Block struct {
	samples  []float64
	channels int
}

// NewBlock returns a zero-filled Block holding frames frames of channels
// samples. Negative sizes are treated as zero.
func NewBlock(frames, channels int) *Block {
	if frames < 0 {
		frames = 0
	}
	if channels < 1 {
		channels = 1
	}
	return &Block{samples: make([]float64, frames*channels), channels: channels}
}

// Frames returns the first n frames as a slice of the backing array.
// n is clamped to the capacity.
func (b *Block) Frames(n int) []float64 {
	if n < 0 {
		n = 0
	}
	if m := b.Cap(); n > m {
		n = m
	}
	return b.samples[:n*b.channels]
}

// Cap returns the capacity in frames.
func (b *Block) Cap() int {
	return len(b.samples) / b.channels
}

// Channels returns the number of samples per frame.
func (b *Block) Channels() int {
	return b.channels
}

// Zero sets all samples to 0.
func (b *Block) Zero() {
	core.Zero(b.samples)
}

// ZeroFrames sets frames in [start, end) to 0.
// Indices are clamped to valid bounds.
func (b *Block) ZeroFrames(start, end int) {
	if start < 0 {
		start = 0
	}
	if m := b.Cap(); end > m {
		end = m
	}
	if start >= end {
		return
	}
	core.Zero(b.samples[start*b.channels : end*b.channels])
}
