package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/cwbudde/algo-tapdelay/dsp/core"
	"github.com/cwbudde/algo-tapdelay/dsp/effects/multitap"
	"github.com/cwbudde/algo-tapdelay/dsp/pcm"
	"github.com/cwbudde/algo-tapdelay/measure/echo"
)

// renderJob plays a single-frame impulse through a delay.
type renderJob struct {
	cfg       multitap.Config
	opts      []multitap.Option
	amplitude int
	frames    int
}

// render returns the mono response normalised to the impulse amplitude.
func (j renderJob) render() ([]float64, error) {
	if j.amplitude < 1 || j.amplitude > math.MaxInt16 {
		return nil, fmt.Errorf("amplitude must be in [1, %d]: %d", math.MaxInt16, j.amplitude)
	}
	if j.frames < 1 {
		return nil, fmt.Errorf("rendered length must be at least one frame: %d", j.frames)
	}

	d, err := multitap.New(j.cfg, j.opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = d.Close() }()

	src, err := pcm.NewRawSampleFromInt16([]int16{int16(j.amplitude)}, 1, j.cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	if err := d.Play(src, false); err != nil {
		return nil, err
	}

	format := d.Format()
	channels := format.Channels
	block := make([]float64, d.BlockFrames()*channels)
	resp := make([]float64, 0, j.frames)
	scale := 1 / float64(j.amplitude)

	for len(resp) < j.frames {
		data, _, err := d.Read(j.frames - len(resp))
		if err != nil {
			return nil, err
		}
		n := pcm.Decode(block, data, format, channels)
		if n == 0 {
			return nil, errors.New("delay produced an empty block")
		}
		for f := 0; f < n; f++ {
			resp = append(resp, block[f*channels]*scale)
		}
	}
	return resp, nil
}

// analysis prints the echo table and summary of a response.
type analysis struct {
	sampleRate float64
	threshold  float64 // dB below the peak
	spacing    int
}

func (a analysis) print(w io.Writer, resp []float64, cfg multitap.Config) error {
	analyzer := echo.NewAnalyzer(a.sampleRate)
	analyzer.Threshold = core.DBToLinear(-math.Abs(a.threshold))
	analyzer.MinSpacing = a.spacing

	m, err := analyzer.Analyze(resp)
	if err != nil {
		return err
	}

	taps := "full delay"
	if len(cfg.Taps) > 0 {
		taps = multitap.FormatTaps(cfg.Taps)
	}
	if _, err := fmt.Fprintf(w, "delay %v ms, decay %v, mix %v, taps %s, %d Hz\n\n",
		cfg.DelayMs, cfg.Decay, cfg.Mix, taps, cfg.SampleRate); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Echo\tFrame\tTime [ms]\tLevel\tLevel [dB]\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "----\t-----\t---------\t-----\t----------\n"); err != nil {
		return err
	}
	for i, e := range m.Echoes {
		if _, err := fmt.Fprintf(tw, "%d\t%d\t%.2f\t%.4f\t%.2f\n",
			i,
			e.Index,
			float64(e.Index)*1000/a.sampleRate,
			e.Level,
			e.LevelDB,
		); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "\nspacing %.2f ms, decay per repeat %.4f, RT60 %.3f s, EDT %.3f s\n",
		m.Spacing*1000, m.RepeatDecay, m.RT60, m.EDT)
	return err
}

// printSpectrum prints the magnitude response at points evenly spaced bins
// starting at DC.
func printSpectrum(w io.Writer, resp []float64, fftSize int, sampleRate float64, points int) error {
	mag, err := echo.MagnitudeResponse(resp, fftSize)
	if err != nil {
		return err
	}
	size := 2 * (len(mag) - 1)

	if points > len(mag) {
		points = len(mag)
	}
	step := 1
	if points > 1 {
		step = (len(mag) - 1) / (points - 1)
		if step < 1 {
			step = 1
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "\nFreq [Hz]\tMagnitude [dB]\n---------\t--------------\n"); err != nil {
		return err
	}
	for k, n := 0, 0; k < len(mag) && n < points; k, n = k+step, n+1 {
		if _, err := fmt.Fprintf(tw, "%.1f\t%.2f\n",
			echo.BinFrequency(k, size, sampleRate), core.LinearToDB(mag[k])); err != nil {
			return err
		}
	}
	return tw.Flush()
}
