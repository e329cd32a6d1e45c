package pcm

import (
	"errors"
	"fmt"
)

// ErrFormatMismatch reports a PCM format the adapter cannot handle or a
// source whose format does not match its consumer.
var ErrFormatMismatch = errors.New("pcm: format mismatch")

// Working range of decoded samples.
const (
	MinSample = -32768.0
	MaxSample = 32767.0
)

// Format describes an interleaved PCM layout.
type Format struct {
	BitsPerSample int
	Signed        bool
	Channels      int
}

// Validate checks that the format is one the adapter supports.
func (f Format) Validate() error {
	if f.BitsPerSample != 8 && f.BitsPerSample != 16 {
		return fmt.Errorf("%w: bits per sample must be 8 or 16: %d", ErrFormatMismatch, f.BitsPerSample)
	}
	if f.Channels != 1 && f.Channels != 2 {
		return fmt.Errorf("%w: channel count must be 1 or 2: %d", ErrFormatMismatch, f.Channels)
	}
	return nil
}

// BytesPerSample returns the size of one sample of one channel.
func (f Format) BytesPerSample() int {
	return f.BitsPerSample / 8
}

// FrameBytes returns the size of one interleaved frame.
func (f Format) FrameBytes() int {
	return f.BytesPerSample() * f.Channels
}

func (f Format) String() string {
	sign := "u"
	if f.Signed {
		sign = "s"
	}
	return fmt.Sprintf("%s%d/%dch", sign, f.BitsPerSample, f.Channels)
}
