package multitap

import (
	"github.com/cwbudde/algo-tapdelay/dsp/core"
	"github.com/cwbudde/algo-tapdelay/dsp/pcm"
)

// feedbackLimit bounds what is written back into the ring so that taps
// summing constructively at decay 1 cannot run away to Inf.
const feedbackLimit = 8 * -pcm.MinSample

// process runs the delay recurrence over n interleaved frames of dry input
// and writes the mixed result into out.
func (d *Delay) process(dry, out []float64, n int) {
	channels := d.cfg.Channels
	taps := d.taps.active()
	lags := d.taps.lags

	for f := 0; f < n; f++ {
		decay, mix := d.params.at(f, n)
		base := f * channels
		for ch := 0; ch < channels; ch++ {
			var tapSum float64
			for i, tap := range taps {
				tapSum += tap.Level * d.ring.ReadFractional(ch, lags[i])
			}

			x := dry[base+ch]
			in := core.Clamp(x+tapSum*decay, -feedbackLimit, feedbackLimit)
			d.frame[ch] = core.FlushDenormals(in)
			out[base+ch] = x*(1-mix) + tapSum*mix
		}
		d.ring.Write(d.frame)
	}
}
