package echo

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-tapdelay/dsp/core"
)

// MagnitudeResponse returns |H(k)| for bins 0..fftSize/2 of resp. Shorter
// responses are zero padded. Longer responses are cut to fftSize samples
// and the final eighth is faded out with Taper to limit truncation ripple.
// An fftSize of 0 selects the next power of two that holds resp.
func MagnitudeResponse(resp []float64, fftSize int) ([]float64, error) {
	if len(resp) == 0 {
		return nil, ErrEmptyResponse
	}

	if fftSize == 0 {
		fftSize = nextPow2(len(resp))
		if fftSize < 2 {
			fftSize = 2
		}
	}

	if fftSize < 2 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFFTSize, fftSize)
	}

	frame := make([]float64, fftSize)
	n := core.CopyInto(frame, resp)
	if len(resp) > fftSize {
		Taper(frame[:n], 0.125)
	}

	in := make([]complex128, fftSize)
	for i, v := range frame {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("echo: fft plan: %w", err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("echo: fft: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)

	for k := 0; k < bins; k++ {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}

	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	return mag, nil
}

// Taper fades out the final fraction of buf in place with a half Hann
// window ending at zero. fraction is clamped to [0, 1].
func Taper(buf []float64, fraction float64) {
	if fraction <= 0 || len(buf) == 0 {
		return
	}

	if fraction > 1 {
		fraction = 1
	}

	m := int(math.Ceil(fraction * float64(len(buf))))
	tail := buf[len(buf)-m:]

	w := make([]float64, m)
	for j := range w {
		w[j] = 0.5 * (1 + math.Cos(math.Pi*float64(j+1)/float64(m)))
	}

	vecmath.MulBlockInPlace(tail, w)
}

// BinFrequency returns the centre frequency in Hz of bin k.
func BinFrequency(k, fftSize int, sampleRate float64) float64 {
	if fftSize <= 0 {
		return 0
	}

	return float64(k) * sampleRate / float64(fftSize)
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
