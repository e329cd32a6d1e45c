// Package echo analyses impulse responses rendered through delay effects.
//
// It locates discrete echo arrivals, estimates the per-repeat level change,
// derives decay times from the Schroeder backward integral and computes the
// magnitude response of the rendered tail:
//
//   - FindEchoes: arrivals above a threshold relative to the strongest one
//   - RepeatDecay: geometric mean level ratio between consecutive arrivals
//   - Analyzer.RT60, Analyzer.EDT: decay times from the Schroeder curve
//   - MagnitudeResponse: |H(f)| of the response via FFT
//
// # Usage
//
//	a := echo.NewAnalyzer(8000)
//	m, err := a.Analyze(response)
//	fmt.Printf("%d echoes, %.2f per repeat, RT60 = %.2f s\n",
//		len(m.Echoes), m.RepeatDecay, m.RT60)
package echo
