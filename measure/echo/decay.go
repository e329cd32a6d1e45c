package echo

import "math"

// Default detection settings used by Analyze.
const (
	DefaultThreshold  = 0.001 // -60 dB below the strongest arrival
	DefaultMinSpacing = 1
)

// Metrics holds the analysis of one impulse response.
type Metrics struct {
	PeakIndex   int     // sample index of the strongest arrival
	Echoes      []Echo  // arrivals above the threshold
	Spacing     float64 // mean echo spacing in seconds, 0 with fewer than two echoes
	RepeatDecay float64 // mean level ratio between echoes, 0 with fewer than two echoes
	RT60        float64 // reverberation time in seconds (T30, else T20), 0 without decay
	EDT         float64 // early decay time in seconds (0 to -10 dB)
	CenterTime  float64 // energy centroid in seconds
}

// Analyzer computes echo metrics from impulse responses.
type Analyzer struct {
	SampleRate float64
	// Threshold is the detection level relative to the strongest arrival.
	Threshold float64
	// MinSpacing merges arrivals closer than this many samples.
	MinSpacing int
}

// NewAnalyzer creates an analyzer with the default detection settings.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{
		SampleRate: sampleRate,
		Threshold:  DefaultThreshold,
		MinSpacing: DefaultMinSpacing,
	}
}

// Analyze computes all metrics of resp.
func (a *Analyzer) Analyze(resp []float64) (Metrics, error) {
	if len(resp) == 0 {
		return Metrics{}, ErrEmptyResponse
	}

	if a.SampleRate <= 0 {
		return Metrics{}, ErrInvalidSampleRate
	}

	m := Metrics{
		PeakIndex:  findPeak(resp),
		Echoes:     FindEchoes(resp, a.MinSpacing, a.Threshold),
		CenterTime: a.centerTime(resp),
	}

	if spacing, err := Spacing(m.Echoes); err == nil {
		m.Spacing = spacing / a.SampleRate
	}

	if decay, err := RepeatDecay(m.Echoes); err == nil {
		m.RepeatDecay = decay
	}

	schroeder := schroederIntegral(resp)
	m.EDT = a.reverbTime(schroeder, 0, -10)

	m.RT60 = a.reverbTime(schroeder, -5, -35)
	if m.RT60 == 0 {
		m.RT60 = a.reverbTime(schroeder, -5, -25)
	}

	return m, nil
}

// SchroederIntegral computes the Schroeder backward integration of the
// squared response in dB relative to the total energy.
//
//	S(t) = 10*log10( ∫_t^∞ h²(τ) dτ / ∫_0^∞ h²(τ) dτ )
func (a *Analyzer) SchroederIntegral(resp []float64) ([]float64, error) {
	if len(resp) == 0 {
		return nil, ErrEmptyResponse
	}

	return schroederIntegral(resp), nil
}

func schroederIntegral(resp []float64) []float64 {
	n := len(resp)
	result := make([]float64, n)

	var cumSum float64
	for i := n - 1; i >= 0; i-- {
		cumSum += resp[i] * resp[i]
		result[i] = cumSum
	}

	totalEnergy := result[0]
	if totalEnergy <= 0 {
		for i := range result {
			result[i] = -200
		}

		return result
	}

	for i := range result {
		ratio := result[i] / totalEnergy
		if ratio <= 0 {
			result[i] = -200 // floor
		} else {
			result[i] = 10 * math.Log10(ratio)
		}
	}

	return result
}

// RT60 computes the time for a 60 dB decay, extrapolated from T30 when the
// response decays far enough and from T20 otherwise.
func (a *Analyzer) RT60(resp []float64) (float64, error) {
	if len(resp) == 0 {
		return 0, ErrEmptyResponse
	}

	if a.SampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	schroeder := schroederIntegral(resp)

	if rt := a.reverbTime(schroeder, -5, -35); rt > 0 {
		return rt, nil
	}

	if rt := a.reverbTime(schroeder, -5, -25); rt > 0 {
		return rt, nil
	}

	return 0, ErrNoDecay
}

// reverbTime fits a line to the Schroeder curve between startDB and endDB
// and extrapolates it to -60 dB.
func (a *Analyzer) reverbTime(schroeder []float64, startDB, endDB float64) float64 {
	if len(schroeder) == 0 || a.SampleRate <= 0 {
		return 0
	}

	startIdx := -1
	endIdx := -1

	for i, v := range schroeder {
		if startIdx < 0 && v <= startDB {
			startIdx = i
		}

		if startIdx >= 0 && v <= endDB {
			endIdx = i
			break
		}
	}

	if startIdx < 0 || endIdx <= startIdx {
		return 0
	}

	var sumX, sumY, sumXX, sumXY float64

	for i := startIdx; i <= endIdx; i++ {
		x := float64(i - startIdx)
		y := schroeder[i]
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
	}

	nf := float64(endIdx - startIdx + 1)

	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}

	// dB per sample
	slope := (nf*sumXY - sumX*sumY) / denom
	if slope >= 0 {
		return 0
	}

	return -60.0 / (slope * a.SampleRate)
}

// CenterTime computes the temporal energy centroid of resp in seconds.
func (a *Analyzer) CenterTime(resp []float64) (float64, error) {
	if len(resp) == 0 {
		return 0, ErrEmptyResponse
	}

	if a.SampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	return a.centerTime(resp), nil
}

func (a *Analyzer) centerTime(resp []float64) float64 {
	var numerator, denominator float64

	for i, v := range resp {
		e := v * v
		numerator += float64(i) / a.SampleRate * e
		denominator += e
	}

	if denominator <= 0 {
		return 0
	}

	return numerator / denominator
}

// findPeak returns the index of the absolute maximum.
func findPeak(resp []float64) int {
	peakIdx := 0
	peakVal := 0.0

	for i, v := range resp {
		if av := math.Abs(v); av > peakVal {
			peakVal = av
			peakIdx = i
		}
	}

	return peakIdx
}
