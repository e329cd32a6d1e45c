package multitap

import (
	"testing"

	"github.com/cwbudde/algo-tapdelay/dsp/control"
	"github.com/cwbudde/algo-tapdelay/dsp/pcm"
)

// testConfig is a 1 kHz mono configuration where delay_ms equals frames.
func testConfig(delayMs, decay, mix float64) Config {
	cfg := DefaultConfig()
	cfg.MaxDelayMs = 100
	cfg.SampleRate = 1000
	cfg.DelayMs = control.Constant(delayMs)
	cfg.Decay = control.Constant(decay)
	cfg.Mix = control.Constant(mix)
	return cfg
}

func newTestDelay(t *testing.T, cfg Config, opts ...Option) *Delay {
	t.Helper()
	d, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d
}

func rawSource(t *testing.T, samples []int16, channels, rate int) *pcm.RawSample {
	t.Helper()
	s, err := pcm.NewRawSampleFromInt16(samples, channels, rate)
	if err != nil {
		t.Fatalf("NewRawSampleFromInt16() error = %v", err)
	}
	return s
}

// render pulls frames frames from d and decodes them to working samples.
func render(t *testing.T, d *Delay, frames int) []float64 {
	t.Helper()
	ch := d.Format().Channels
	out := make([]float64, 0, frames*ch)
	tmp := make([]float64, d.BlockFrames()*ch)
	for remaining := frames; remaining > 0; {
		block, status, err := d.Read(remaining)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if status != pcm.MoreData {
			t.Fatalf("Read() status = %v, want more-data", status)
		}
		n := pcm.Decode(tmp, block, d.Format(), ch)
		if n == 0 {
			t.Fatal("Read() returned an empty block")
		}
		out = append(out, tmp[:n*ch]...)
		remaining -= n
	}
	return out
}
