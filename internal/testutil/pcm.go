package testutil

import "math"

// Int16 rounds s to 16-bit samples, saturating at the type limits.
func Int16(s []float64) []int16 {
	out := make([]int16, len(s))
	for i, v := range s {
		r := math.Round(v)
		switch {
		case r > math.MaxInt16:
			r = math.MaxInt16
		case r < math.MinInt16:
			r = math.MinInt16
		}
		out[i] = int16(r)
	}
	return out
}

// ImpulsePCM returns n frames of silence with amp at frame 0.
func ImpulsePCM(amp int16, n int) []int16 {
	out := make([]int16, n)
	if n > 0 {
		out[0] = amp
	}
	return out
}

// DCPCM returns n frames of the constant v.
func DCPCM(v int16, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = v
	}
	return out
}
