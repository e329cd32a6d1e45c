package echo

import (
	"errors"
	"math"
)

// Errors returned by echo analysis functions.
var (
	ErrEmptyResponse     = errors.New("echo: impulse response is empty")
	ErrInvalidSampleRate = errors.New("echo: sample rate must be positive")
	ErrTooFewEchoes      = errors.New("echo: at least two echoes are required")
	ErrNoDecay           = errors.New("echo: insufficient decay for RT calculation")
	ErrInvalidFFTSize    = errors.New("echo: FFT size must be a power of two >= 2")
)

// Echo is one arrival in an impulse response.
type Echo struct {
	Index   int     // sample index of the arrival
	Level   float64 // signed sample value at Index
	LevelDB float64 // level relative to the strongest arrival in dB
}

// FindEchoes returns arrivals whose magnitude reaches thresholdRatio times
// the response peak, in index order. Arrivals closer than minSpacing
// samples are merged into the stronger one. A minSpacing below 1 is
// treated as 1.
func FindEchoes(resp []float64, minSpacing int, thresholdRatio float64) []Echo {
	if minSpacing < 1 {
		minSpacing = 1
	}

	peak := 0.0
	for _, v := range resp {
		if av := math.Abs(v); av > peak {
			peak = av
		}
	}
	if peak == 0 {
		return nil
	}

	threshold := peak * thresholdRatio
	var echoes []Echo

	for i, v := range resp {
		av := math.Abs(v)
		if av == 0 || av < threshold {
			continue
		}

		e := Echo{Index: i, Level: v, LevelDB: 20 * math.Log10(av/peak)}
		if n := len(echoes); n > 0 && i-echoes[n-1].Index < minSpacing {
			if av > math.Abs(echoes[n-1].Level) {
				echoes[n-1] = e
			}
			continue
		}
		echoes = append(echoes, e)
	}

	return echoes
}

// RepeatDecay returns the geometric mean of the magnitude ratio between
// consecutive echoes. For a feedback delay with a single tap this is the
// decay factor.
func RepeatDecay(echoes []Echo) (float64, error) {
	if len(echoes) < 2 {
		return 0, ErrTooFewEchoes
	}

	var sumDB float64
	for i := 1; i < len(echoes); i++ {
		sumDB += echoes[i].LevelDB - echoes[i-1].LevelDB
	}

	return math.Pow(10, sumDB/float64(len(echoes)-1)/20), nil
}

// Spacing returns the mean distance in samples between consecutive echoes.
func Spacing(echoes []Echo) (float64, error) {
	if len(echoes) < 2 {
		return 0, ErrTooFewEchoes
	}

	return float64(echoes[len(echoes)-1].Index-echoes[0].Index) / float64(len(echoes)-1), nil
}
