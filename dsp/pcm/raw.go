package pcm

import (
	"errors"
	"fmt"
)

// RawSample is an in-memory Source over interleaved PCM bytes.
type RawSample struct {
	data       []byte
	format     Format
	sampleRate int
	pos        int
}

// NewRawSample wraps data without copying. data must hold whole frames.
func NewRawSample(data []byte, format Format, sampleRate int) (*RawSample, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if sampleRate < 1 {
		return nil, fmt.Errorf("raw sample rate must be >= 1: %d", sampleRate)
	}
	if len(data)%format.FrameBytes() != 0 {
		return nil, fmt.Errorf("raw sample length %d is not a multiple of frame size %d",
			len(data), format.FrameBytes())
	}
	return &RawSample{data: data, format: format, sampleRate: sampleRate}, nil
}

// NewRawSampleFromInt16 encodes interleaved signed 16-bit samples.
func NewRawSampleFromInt16(samples []int16, channels, sampleRate int) (*RawSample, error) {
	if channels <= 0 || len(samples)%channels != 0 {
		return nil, errors.New("raw sample length must be a multiple of the channel count")
	}
	data := make([]byte, 2*len(samples))
	for i, v := range samples {
		u := uint16(v)
		data[2*i] = byte(u)
		data[2*i+1] = byte(u >> 8)
	}
	return NewRawSample(data, Format{BitsPerSample: 16, Signed: true, Channels: channels}, sampleRate)
}

// Format returns the PCM layout of the sample.
func (s *RawSample) Format() Format { return s.format }

// SampleRate returns the sample rate in Hz.
func (s *RawSample) SampleRate() int { return s.sampleRate }

// Frames returns the total length in frames.
func (s *RawSample) Frames() int { return len(s.data) / s.format.FrameBytes() }

// Reset rewinds to the first frame.
func (s *RawSample) Reset() { s.pos = 0 }

// Read returns up to maxFrames frames and Done once the end is reached.
func (s *RawSample) Read(maxFrames int) ([]byte, Status, error) {
	if maxFrames < 0 {
		maxFrames = 0
	}
	end := s.pos + maxFrames*s.format.FrameBytes()
	if end > len(s.data) {
		end = len(s.data)
	}
	block := s.data[s.pos:end]
	s.pos = end
	if s.pos >= len(s.data) {
		return block, Done, nil
	}
	return block, MoreData, nil
}
