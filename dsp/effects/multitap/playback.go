package multitap

import (
	"fmt"

	"github.com/cwbudde/algo-tapdelay/dsp/pcm"
)

// State is the playback state of a Delay.
type State int

const (
	// Idle means no dry signal is injected; echoes keep sounding.
	Idle State = iota
	// Playing means a source plays once.
	Playing
	// Looping means a source restarts when it ends.
	Looping
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Looping:
		return "looping"
	default:
		return "idle"
	}
}

// player feeds dry frames from a borrowed source.
type player struct {
	state State
	src   pcm.Source

	format     pcm.Format
	frameBytes int
	pending    []byte // unread whole frames of the last source block
	srcDone    bool   // the last block was reported as final
	rewound    bool   // the source was reset and has not produced frames since
}

func (p *player) start(src pcm.Source, loop bool) {
	src.Reset()
	p.src = src
	p.format = src.Format()
	p.frameBytes = p.format.FrameBytes()
	p.pending = nil
	p.srcDone = false
	p.rewound = false
	p.state = Playing
	if loop {
		p.state = Looping
	}
}

// release returns to Idle and drops the source reference.
func (p *player) release() {
	p.state = Idle
	p.src = nil
	p.pending = nil
	p.srcDone = false
	p.rewound = false
}

// fillEvent describes what happened to the source during fill.
type fillEvent int

const (
	eventNone fillEvent = iota
	eventEnded
	eventLooped
	eventStalled
)

// fill decodes up to len(dst)/channels frames of dry signal into dst and
// returns how many frames were written. Frames beyond that are left for the
// caller to silence.
func (p *player) fill(dst []float64, channels int) (filled int, ev fillEvent, err error) {
	frames := len(dst) / channels
	for filled < frames && p.state != Idle {
		if len(p.pending) == 0 {
			if p.srcDone {
				if p.state != Looping {
					p.release()
					return filled, eventEnded, nil
				}
				if p.rewound {
					// looping a source that yields nothing
					p.release()
					return filled, eventStalled, nil
				}
				p.src.Reset()
				p.srcDone = false
				p.rewound = true
				ev = eventLooped
			}

			block, status, rerr := p.src.Read(frames - filled)
			if rerr != nil {
				p.release()
				return filled, eventEnded, fmt.Errorf("multitap: source read: %w", rerr)
			}
			p.pending = block[:len(block)-len(block)%p.frameBytes]
			p.srcDone = status == pcm.Done
			if len(p.pending) == 0 && !p.srcDone {
				// underrun; the rest of this block stays silent
				return filled, ev, nil
			}
			continue
		}

		n := pcm.Decode(dst[filled*channels:], p.pending, p.format, channels)
		p.pending = p.pending[n*p.frameBytes:]
		p.rewound = false
		filled += n
	}

	if p.state == Playing && p.srcDone && len(p.pending) == 0 {
		p.release()
		ev = eventEnded
	}
	return filled, ev, nil
}
