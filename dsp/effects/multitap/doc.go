// Package multitap implements a multi-tap delay: a source sample plays
// through the effect while any number of taps read echoes out of one shared
// delay ring, combined with decayed feedback and a dry/wet mix.
//
// A [Delay] is a pull-model [pcm.Source]: the owning pipeline calls Read for
// each block and receives PCM in the configured output format. Parameters
// (delay time, decay, mix) are [control.Input] values resolved once per
// block. Taps, parameters and playback can be changed between Read calls;
// a change is observed from the next block on.
//
// Per frame and channel the engine computes
//
//	tap_sum = Σ level·ring(lag(position))
//	ring   <- dry + tap_sum·decay
//	out     = dry·(1-mix) + tap_sum·mix
//
// A tap at position 1 reads the most recently written frame; position 0
// reads the oldest frame of the active window, i.e. the full delay time.
// Without explicit taps a single full-delay tap at unity level is used,
// which gives the classic echo whose repeats fall by decay each pass.
//
// Read performs no allocation and runs in time proportional to block size
// times tap count. A Delay is not safe for concurrent use.
package multitap
