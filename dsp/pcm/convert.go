package pcm

import "math"

// Decode converts interleaved PCM frames from src (in format in) into dst as
// working samples with outChannels samples per frame. It returns the number
// of frames decoded, bounded by both src and dst.
func Decode(dst []float64, src []byte, in Format, outChannels int) int {
	frameBytes := in.FrameBytes()
	if frameBytes == 0 || outChannels <= 0 {
		return 0
	}
	frames := len(src) / frameBytes
	if n := len(dst) / outChannels; n < frames {
		frames = n
	}

	bps := in.BytesPerSample()
	for f := 0; f < frames; f++ {
		frame := src[f*frameBytes : (f+1)*frameBytes]
		out := dst[f*outChannels : (f+1)*outChannels]
		for c := range out {
			inCh := c
			if inCh >= in.Channels {
				inCh = in.Channels - 1
			}
			out[c] = decodeSample(frame[inCh*bps:], in)
		}
	}
	return frames
}

func decodeSample(b []byte, in Format) float64 {
	if in.BitsPerSample == 16 {
		u := uint16(b[0]) | uint16(b[1])<<8
		if in.Signed {
			return float64(int16(u))
		}
		return float64(int(u) - 32768)
	}
	if in.Signed {
		return float64(int(int8(b[0])) << 8)
	}
	return float64((int(b[0]) - 128) << 8)
}

// Encode converts working samples to PCM in format out, hard clipping to the
// working range. It returns the number of bytes written, bounded by both src
// and dst.
func Encode(dst []byte, src []float64, out Format) int {
	bps := out.BytesPerSample()
	if bps == 0 {
		return 0
	}
	n := len(src)
	if m := len(dst) / bps; m < n {
		n = m
	}

	for i := 0; i < n; i++ {
		v := Quantize(src[i])
		if bps == 2 {
			var u uint16
			if out.Signed {
				u = uint16(int16(v))
			} else {
				u = uint16(v + 32768)
			}
			dst[2*i] = byte(u)
			dst[2*i+1] = byte(u >> 8)
			continue
		}
		if out.Signed {
			dst[i] = byte(int8(v >> 8))
		} else {
			dst[i] = byte((v >> 8) + 128)
		}
	}
	return n * bps
}

// Quantize rounds a working sample to the nearest 16-bit value, clipping to
// [MinSample, MaxSample]. NaN maps to silence.
func Quantize(v float64) int {
	if v != v {
		return 0
	}
	if v <= MinSample {
		return int(MinSample)
	}
	if v >= MaxSample {
		return int(MaxSample)
	}
	return int(math.Round(v))
}
