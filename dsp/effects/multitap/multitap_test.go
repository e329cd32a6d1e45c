package multitap

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-tapdelay/dsp/control"
	"github.com/cwbudde/algo-tapdelay/dsp/core"
	"github.com/cwbudde/algo-tapdelay/dsp/interp"
	"github.com/cwbudde/algo-tapdelay/dsp/pcm"
	"github.com/cwbudde/algo-tapdelay/internal/testutil"
)

// --- construction ---

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "max delay zero", mutate: func(c *Config) { c.MaxDelayMs = 0 }},
		{name: "max delay too long", mutate: func(c *Config) { c.MaxDelayMs = 4001 }},
		{name: "sample rate", mutate: func(c *Config) { c.SampleRate = 0 }},
		{name: "bits", mutate: func(c *Config) { c.BitsPerSample = 24 }},
		{name: "channels", mutate: func(c *Config) { c.Channels = 3 }},
		{name: "buffer size", mutate: func(c *Config) { c.BufferSize = 1 }},
		{name: "nan decay", mutate: func(c *Config) { c.Decay = control.Constant(math.NaN()) }},
		{name: "inf delay", mutate: func(c *Config) { c.DelayMs = control.Constant(math.Inf(1)) }},
		{name: "nil lfo mix", mutate: func(c *Config) { c.Mix = (*control.LFO)(nil) }},
		{name: "nil func decay", mutate: func(c *Config) { c.Decay = control.Func(nil) }},
		{name: "tap", mutate: func(c *Config) { c.Taps = []Tap{{Position: 0.5, Level: 2}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			d, err := New(cfg)
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("New() error = %v, want ErrConfiguration", err)
			}
			if d != nil {
				t.Fatal("New() returned a delay alongside an error")
			}
		})
	}
}

func TestNewBadBitsIsFormatMismatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BitsPerSample = 12
	if _, err := New(cfg); !errors.Is(err, pcm.ErrFormatMismatch) {
		t.Fatalf("New() error = %v, want it to wrap pcm.ErrFormatMismatch", err)
	}
}

func TestNewDefaults(t *testing.T) {
	d := newTestDelay(t, DefaultConfig())

	if d.Window() != 2000 {
		t.Fatalf("Window() = %d, want 2000", d.Window())
	}
	if d.MaxDelayFrames() != 4000 {
		t.Fatalf("MaxDelayFrames() = %d, want 4000", d.MaxDelayFrames())
	}
	if d.BlockFrames() != 256 {
		t.Fatalf("BlockFrames() = %d, want 256", d.BlockFrames())
	}
	if d.Taps() != nil {
		t.Fatalf("Taps() = %v, want nil", d.Taps())
	}
	if d.Playing() || d.State() != Idle {
		t.Fatalf("new delay is %v, want idle", d.State())
	}
	if d.CurrentDecay() != 0.7 || d.CurrentMix() != 0.25 || d.CurrentDelayMs() != 250 {
		t.Fatalf("decay=%v mix=%v delay=%v", d.CurrentDecay(), d.CurrentMix(), d.CurrentDelayMs())
	}
}

func TestNewNilInputsUseDefaults(t *testing.T) {
	d := newTestDelay(t, Config{
		MaxDelayMs:    500,
		BufferSize:    64,
		SampleRate:    8000,
		BitsPerSample: 8,
		Channels:      2,
	})

	if d.CurrentDelayMs() != 250 || d.CurrentDecay() != 0.7 || d.CurrentMix() != 0.25 {
		t.Fatalf("delay=%v decay=%v mix=%v", d.CurrentDelayMs(), d.CurrentDecay(), d.CurrentMix())
	}
	if d.BlockFrames() != 32 {
		t.Fatalf("BlockFrames() = %d, want 32", d.BlockFrames())
	}
}

// --- parameters ---

func TestDelayAboveMaximumClamps(t *testing.T) {
	d := newTestDelay(t, DefaultConfig())

	if err := d.SetDelayMs(control.Constant(600)); err != nil {
		t.Fatalf("SetDelayMs() error = %v", err)
	}
	render(t, d, 1)

	if d.CurrentDelayMs() != 500 {
		t.Fatalf("CurrentDelayMs() = %v, want 500", d.CurrentDelayMs())
	}
	if d.Window() != d.MaxDelayFrames() {
		t.Fatalf("Window() = %d, want %d", d.Window(), d.MaxDelayFrames())
	}
}

func TestSettersRejectInvalidInputs(t *testing.T) {
	d := newTestDelay(t, DefaultConfig())
	before := d.DelayMs()

	setters := map[string]func(control.Input) error{
		"delay_ms": d.SetDelayMs,
		"decay":    d.SetDecay,
		"mix":      d.SetMix,
	}
	for name, set := range setters {
		for _, in := range []control.Input{
			nil,
			control.Constant(math.NaN()),
			control.Constant(math.Inf(-1)),
			control.Func(nil),
			(*control.LFO)(nil),
		} {
			if err := set(in); !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("%s: set(%v) error = %v, want ErrInvalidParameter", name, in, err)
			}
		}
	}

	if d.DelayMs() != before {
		t.Fatal("rejected assignment changed delay_ms")
	}
}

func TestSetParametersAcceptSignals(t *testing.T) {
	d := newTestDelay(t, DefaultConfig())
	lfo, err := control.NewLFO(2, 100, 250)
	if err != nil {
		t.Fatal(err)
	}

	if err := d.SetDelayMs(lfo); err != nil {
		t.Fatalf("SetDelayMs(lfo) error = %v", err)
	}
	if d.DelayMs() != control.Input(lfo) {
		t.Fatal("DelayMs() does not return the bound signal")
	}

	for i := 0; i < 40; i++ {
		render(t, d, d.BlockFrames())
		if w := d.Window(); w < 1200 || w > 2800 {
			t.Fatalf("block %d: window %d outside the LFO range", i, w)
		}
	}
}

// --- taps ---

func TestSetTapsRoundTrip(t *testing.T) {
	d := newTestDelay(t, DefaultConfig())

	if err := d.SetTaps(At(0.5)); err != nil {
		t.Fatalf("SetTaps() error = %v", err)
	}
	got := d.Taps()
	if len(got) != 1 || got[0] != (Tap{Position: 0.5, Level: 1}) {
		t.Fatalf("Taps() = %v, want [{0.5 1}]", got)
	}

	if err := d.SetTaps(); err != nil {
		t.Fatalf("SetTaps() error = %v", err)
	}
	if d.Taps() != nil {
		t.Fatalf("Taps() = %v, want nil after clearing", d.Taps())
	}
}

func TestSetTapsRejectsInvalidAndKeepsPrevious(t *testing.T) {
	d := newTestDelay(t, DefaultConfig())
	if err := d.SetTaps(At(0.25), Tap{Position: 1, Level: 0.5}); err != nil {
		t.Fatal(err)
	}

	for _, bad := range []Tap{{Position: -0.1, Level: 1}, {Position: 0.5, Level: 1.01}} {
		if err := d.SetTaps(At(0.5), bad); !errors.Is(err, ErrInvalidTap) {
			t.Fatalf("SetTaps(%v) error = %v, want ErrInvalidTap", bad, err)
		}
	}

	got := d.Taps()
	if len(got) != 2 || got[0] != At(0.25) || got[1] != (Tap{Position: 1, Level: 0.5}) {
		t.Fatalf("Taps() = %v, previous taps lost", got)
	}
}

func TestTapPositionsAcrossWindows(t *testing.T) {
	for _, window := range []int{1, 2, 7, 50} {
		for _, tc := range []struct {
			position float64
			echoAt   int
		}{
			{position: 0, echoAt: window},
			{position: 1, echoAt: 1},
		} {
			cfg := testConfig(float64(window), 0, 1)
			cfg.Taps = []Tap{At(tc.position)}
			d := newTestDelay(t, cfg)
			if err := d.Play(rawSource(t, testutil.ImpulsePCM(1000, 1), 1, 1000), false); err != nil {
				t.Fatal(err)
			}

			out := render(t, d, 80)
			for i, v := range out {
				want := 0.0
				if i == tc.echoAt {
					want = 1000
				}
				if v != want {
					t.Fatalf("window %d position %v: frame %d = %v, want %v",
						window, tc.position, i, v, want)
				}
			}
		}
	}
}

func TestFractionalTapInterpolates(t *testing.T) {
	// window 4 => position 0.5 sits at lag 1.5
	cfg := testConfig(4, 0, 1)
	cfg.Taps = []Tap{At(0.5)}
	d := newTestDelay(t, cfg)
	if err := d.Play(rawSource(t, testutil.ImpulsePCM(1000, 1), 1, 1000), false); err != nil {
		t.Fatal(err)
	}

	out := render(t, d, 6)
	want := []float64{0, 0, 500, 500, 0, 0}
	testutil.RequireSliceNearlyEqual(t, out, want, 0)
}

func TestHermiteInterpolationOption(t *testing.T) {
	cfg := testConfig(40, 0.6, 0.5)
	cfg.Taps = []Tap{At(0.3), {Position: 0.71, Level: 0.5}}
	samples := testutil.Int16(testutil.DeterministicSine(1, 13, 500, 400))

	renderWith := func(opts ...Option) []float64 {
		d := newTestDelay(t, cfg, opts...)
		if err := d.Play(rawSource(t, samples, 1, 1000), false); err != nil {
			t.Fatal(err)
		}
		return render(t, d, 600)
	}

	linear := renderWith()
	hermite := renderWith(WithInterpolation(interp.Hermite))
	testutil.RequireFinite(t, hermite)
	if peak := testutil.MaxAbs(hermite); peak == 0 || peak > pcm.MaxSample {
		t.Fatalf("peak = %v", peak)
	}

	diff, err := testutil.MaxAbsDiff(linear, hermite)
	if err != nil {
		t.Fatal(err)
	}
	if diff == 0 {
		t.Fatal("Hermite interpolation rendered the same output as linear")
	}
}

// --- mixing ---

func TestMixZeroPassesDryUnchanged(t *testing.T) {
	cfg := testConfig(20, 0.9, 0)
	cfg.Taps = []Tap{At(0), At(0.5), {Position: 1, Level: 0.3}}
	d := newTestDelay(t, cfg)

	noise := testutil.Int16(testutil.DeterministicNoise(7, 8000, 300))
	if err := d.Play(rawSource(t, noise, 1, 1000), false); err != nil {
		t.Fatal(err)
	}

	out := render(t, d, len(noise))
	for i := range noise {
		if out[i] != float64(noise[i]) {
			t.Fatalf("frame %d = %v, want dry %d", i, out[i], noise[i])
		}
	}
}

func TestMixOneRemovesDry(t *testing.T) {
	d := newTestDelay(t, testConfig(10, 0.5, 1))
	if err := d.Play(rawSource(t, testutil.ImpulsePCM(1000, 1), 1, 1000), false); err != nil {
		t.Fatal(err)
	}

	out := render(t, d, 35)
	want := make([]float64, 35)
	want[10], want[20], want[30] = 1000, 500, 250
	testutil.RequireSliceNearlyEqual(t, out, want, 0)
}

func TestZeroDecayTailEndsWithinWindow(t *testing.T) {
	cfg := testConfig(20, 0, 0.5)
	cfg.Taps = []Tap{At(0), At(0.4), {Position: 0.9, Level: 0.6}}
	d := newTestDelay(t, cfg)

	noise := testutil.Int16(testutil.DeterministicNoise(3, 12000, 150))
	if err := d.Play(rawSource(t, noise, 1, 1000), false); err != nil {
		t.Fatal(err)
	}
	render(t, d, len(noise))
	if d.Playing() {
		t.Fatal("delay still playing after the source ended")
	}

	render(t, d, d.Window())
	tail := render(t, d, 200)
	testutil.RequireSilent(t, tail, 0, len(tail))
}

// The echo scenario: an impulse at 8 kHz with a 250 ms delay, decay 0.5 and
// mix 0.5 repeats every 2000 frames at half the previous level.
func TestImpulseEchoCadence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Decay = control.Constant(0.5)
	cfg.Mix = control.Constant(0.5)
	d := newTestDelay(t, cfg)

	if err := d.Play(rawSource(t, testutil.ImpulsePCM(16000, 2001), 1, 8000), false); err != nil {
		t.Fatal(err)
	}

	out := render(t, d, 12000)
	echoes := map[int]float64{0: 8000, 2000: 8000, 4000: 4000, 6000: 2000, 8000: 1000, 10000: 500}
	for i, v := range out {
		want := echoes[i]
		if v != want {
			t.Fatalf("frame %d = %v, want %v", i, v, want)
		}
		if math.Abs(v) >= pcm.MaxSample {
			t.Fatalf("frame %d clipped: %v", i, v)
		}
	}
}

func TestPlaybackEndsAndTailContinues(t *testing.T) {
	d := newTestDelay(t, testConfig(20, 0.5, 0.5))
	if err := d.Play(rawSource(t, testutil.DCPCM(1000, 10), 1, 1000), false); err != nil {
		t.Fatal(err)
	}

	out := render(t, d, 10)
	if d.Playing() {
		t.Fatal("Playing() = true after the source was exhausted")
	}
	out = append(out, render(t, d, 40)...)

	for i, v := range out {
		var want float64
		switch {
		case i < 10:
			want = 500 // dry only
		case i >= 20 && i < 30:
			want = 500 // first echo, no renewed dry
		case i >= 40:
			want = 250
		}
		if v != want {
			t.Fatalf("frame %d = %v, want %v", i, v, want)
		}
	}
}

// Taps at both ends of the window on periodic input follow the recurrence
// exactly.
func TestTwoTapRecurrenceMatchesReference(t *testing.T) {
	const (
		window = 8
		decay  = 0.5
		mix    = 0.5
		frames = 400
	)
	cfg := testConfig(window, decay, mix)
	cfg.Taps = []Tap{{Position: 0, Level: 1}, {Position: 1, Level: 1}}
	d := newTestDelay(t, cfg)

	x := testutil.Int16(testutil.DeterministicSine(1, 16, 1000, frames))
	if err := d.Play(rawSource(t, x, 1, 1000), false); err != nil {
		t.Fatal(err)
	}
	got := render(t, d, frames)

	history := make([]float64, frames)
	at := func(n int) float64 {
		if n < 0 {
			return 0
		}
		return history[n]
	}
	for n := 0; n < frames; n++ {
		var tapSum float64
		tapSum += 1 * at(n-window)
		tapSum += 1 * at(n-1)
		dry := float64(x[n])
		history[n] = core.FlushDenormals(core.Clamp(dry+tapSum*decay, -feedbackLimit, feedbackLimit))
		want := float64(pcm.Quantize(dry*(1-mix) + tapSum*mix))
		if got[n] != want {
			t.Fatalf("frame %d = %v, want %v", n, got[n], want)
		}
	}
}

func TestFeedbackStaysBounded(t *testing.T) {
	cfg := testConfig(5, 1, 1)
	cfg.Taps = []Tap{At(0), At(0.5), At(1)}
	d := newTestDelay(t, cfg)
	if err := d.Play(rawSource(t, testutil.DCPCM(30000, 500), 1, 1000), true); err != nil {
		t.Fatal(err)
	}

	out := render(t, d, 5000)
	testutil.RequireFinite(t, out)
	if peak := testutil.MaxAbs(out); peak > pcm.MaxSample+1 {
		t.Fatalf("output peak %v exceeds the working range", peak)
	}
	for lag := 0; lag < d.MaxDelayFrames(); lag++ {
		if v := math.Abs(d.ring.Read(0, lag)); v > feedbackLimit {
			t.Fatalf("ring lag %d holds %v beyond the feedback limit", lag, v)
		}
	}
}

func TestMixChangeRampsAcrossBlock(t *testing.T) {
	d := newTestDelay(t, testConfig(100, 0.5, 0))
	if err := d.Play(rawSource(t, testutil.DCPCM(1000, 90), 1, 1000), false); err != nil {
		t.Fatal(err)
	}
	render(t, d, 10)

	if err := d.SetMix(control.Constant(1)); err != nil {
		t.Fatal(err)
	}
	out := render(t, d, 20)

	if out[0] <= 900 {
		t.Fatalf("first frame after change = %v, want close to dry", out[0])
	}
	if out[19] != 0 {
		t.Fatalf("last frame of the ramp = %v, want 0", out[19])
	}
	for i := 1; i < len(out); i++ {
		if out[i] > out[i-1] {
			t.Fatalf("ramp not monotonic at %d: %v > %v", i, out[i], out[i-1])
		}
	}
}

func TestMixChangeWithoutSmoothingSnaps(t *testing.T) {
	d := newTestDelay(t, testConfig(100, 0.5, 0), WithSmoothing(false))
	if err := d.Play(rawSource(t, testutil.DCPCM(1000, 90), 1, 1000), false); err != nil {
		t.Fatal(err)
	}
	render(t, d, 10)

	if err := d.SetMix(control.Constant(1)); err != nil {
		t.Fatal(err)
	}
	out := render(t, d, 20)
	testutil.RequireSilent(t, out, 0, len(out))
}

// --- formats ---

func TestUnsigned8BitOutput(t *testing.T) {
	cfg := testConfig(10, 0.5, 0)
	cfg.BitsPerSample = 8
	cfg.SamplesSigned = false
	d := newTestDelay(t, cfg)

	if err := d.Play(rawSource(t, []int16{-32768, -256, 0, 256, 32767}, 1, 1000), false); err != nil {
		t.Fatal(err)
	}
	block, _, err := d.Read(5)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 127, 128, 129, 255}
	if string(block) != string(want) {
		t.Fatalf("block = %v, want %v", block, want)
	}
}

func TestMonoSourceIntoStereoDelay(t *testing.T) {
	cfg := testConfig(10, 0.5, 0.5)
	cfg.Channels = 2
	d := newTestDelay(t, cfg)

	if err := d.Play(rawSource(t, testutil.ImpulsePCM(1000, 1), 1, 1000), false); err != nil {
		t.Fatal(err)
	}
	out := render(t, d, 15)
	if len(out) != 30 {
		t.Fatalf("len = %d, want 30 interleaved samples", len(out))
	}
	for f := 0; f < 15; f++ {
		if out[2*f] != out[2*f+1] {
			t.Fatalf("frame %d: left %v right %v differ", f, out[2*f], out[2*f+1])
		}
	}
	if out[0] != 500 || out[20] != 500 {
		t.Fatalf("dry=%v echo=%v, want 500 and 500", out[0], out[20])
	}
}

func TestStereoSourceIntoMonoDelayKeepsLeft(t *testing.T) {
	d := newTestDelay(t, testConfig(10, 0.5, 0))
	if err := d.Play(rawSource(t, []int16{100, -100, 200, -200}, 2, 1000), false); err != nil {
		t.Fatal(err)
	}
	out := render(t, d, 2)
	testutil.RequireSliceNearlyEqual(t, out, []float64{100, 200}, 0)
}

// --- block production ---

func TestReadBlockSizes(t *testing.T) {
	d := newTestDelay(t, DefaultConfig())

	for _, tc := range []struct {
		ask, want int
	}{
		{ask: 10, want: 20},
		{ask: 256, want: 512},
		{ask: 1000, want: 512},
		{ask: 0, want: 0},
		{ask: -3, want: 0},
	} {
		block, status, err := d.Read(tc.ask)
		if err != nil || status != pcm.MoreData {
			t.Fatalf("Read(%d): status=%v err=%v", tc.ask, status, err)
		}
		if len(block) != tc.want {
			t.Fatalf("Read(%d) = %d bytes, want %d", tc.ask, len(block), tc.want)
		}
	}
}

func TestReadDoubleBuffers(t *testing.T) {
	d := newTestDelay(t, testConfig(10, 0.5, 0))
	if err := d.Play(rawSource(t, []int16{1000, 2000}, 1, 1000), false); err != nil {
		t.Fatal(err)
	}

	first, _, _ := d.Read(1)
	saved := append([]byte(nil), first...)
	second, _, _ := d.Read(1)

	if string(first) != string(saved) {
		t.Fatal("previous block was overwritten by the next Read")
	}
	if &first[0] == &second[0] {
		t.Fatal("consecutive blocks share a buffer")
	}
}

func TestResetKeepsReturnedBlock(t *testing.T) {
	d := newTestDelay(t, testConfig(10, 0.5, 0))
	if err := d.Play(rawSource(t, testutil.DCPCM(1000, 20), 1, 1000), false); err != nil {
		t.Fatal(err)
	}

	block, _, err := d.Read(4)
	if err != nil {
		t.Fatal(err)
	}
	saved := append([]byte(nil), block...)
	d.Reset()

	if string(block) != string(saved) {
		t.Fatalf("Reset changed the returned block: got %v, want %v", block, saved)
	}
	next, _, _ := d.Read(4)
	if &next[0] == &block[0] {
		t.Fatal("Read after Reset reused the block returned before it")
	}
}

func TestEmptyReadKeepsAlternation(t *testing.T) {
	d := newTestDelay(t, testConfig(10, 0.5, 0))

	first, _, _ := d.Read(1)
	if block, _, _ := d.Read(0); len(block) != 0 {
		t.Fatalf("Read(0) = %d bytes, want 0", len(block))
	}
	second, _, _ := d.Read(1)
	if &first[0] == &second[0] {
		t.Fatal("Read(0) consumed a staging buffer")
	}
}

func TestReadDoesNotAllocate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Taps = []Tap{At(0), At(0.37), {Position: 0.8, Level: 0.4}}
	d := newTestDelay(t, cfg)
	if err := d.Play(rawSource(t, testutil.Int16(testutil.DeterministicNoise(11, 10000, 1000)), 1, 8000), true); err != nil {
		t.Fatal(err)
	}
	lfo, err := control.NewLFO(0.5, 50, 200)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SetDelayMs(lfo); err != nil {
		t.Fatal(err)
	}

	allocs := testing.AllocsPerRun(50, func() {
		if _, _, err := d.Read(d.BlockFrames()); err != nil {
			t.Fatal(err)
		}
	})
	if allocs != 0 {
		t.Fatalf("Read allocates %v times per call", allocs)
	}
}

func TestResetClearsHistory(t *testing.T) {
	d := newTestDelay(t, testConfig(10, 0.5, 1))
	if err := d.Play(rawSource(t, testutil.ImpulsePCM(1000, 1), 1, 1000), false); err != nil {
		t.Fatal(err)
	}
	render(t, d, 5)
	d.Reset()

	out := render(t, d, 40)
	testutil.RequireSilent(t, out, 0, len(out))
}

func TestClose(t *testing.T) {
	d := newTestDelay(t, DefaultConfig())
	if err := d.Play(rawSource(t, testutil.ImpulsePCM(1, 10), 1, 8000), true); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if d.Playing() {
		t.Fatal("closed delay still playing")
	}
	if _, _, err := d.Read(8); !errors.Is(err, ErrClosed) {
		t.Fatalf("Read() after Close error = %v, want ErrClosed", err)
	}
	if err := d.Play(rawSource(t, testutil.ImpulsePCM(1, 10), 1, 8000), false); !errors.Is(err, ErrClosed) {
		t.Fatalf("Play() after Close error = %v, want ErrClosed", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
