package multitap

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tap reads the delay ring at Position within the active window (0 = full
// delay, 1 = most recent frame) and scales the read by Level.
type Tap struct {
	Position float64
	Level    float64
}

// At returns a unity-level tap at position.
func At(position float64) Tap {
	return Tap{Position: position, Level: 1}
}

func (t Tap) validate() error {
	if !inUnit(t.Position) || !inUnit(t.Level) {
		return fmt.Errorf("%w: position=%v level=%v", ErrInvalidTap, t.Position, t.Level)
	}
	return nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1 && !math.IsNaN(v)
}

func validateTaps(taps []Tap) error {
	for i, t := range taps {
		if err := t.validate(); err != nil {
			return fmt.Errorf("tap %d: %w", i, err)
		}
	}
	return nil
}

// ParseTaps parses a comma separated tap list. Each entry is either a bare
// position ("0.5", unity level) or "position:level" ("0.66:0.7").
func ParseTaps(s string) ([]Tap, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	taps := make([]Tap, 0, len(fields))
	for i, f := range fields {
		posText, levelText, hasLevel := strings.Cut(strings.TrimSpace(f), ":")
		pos, err := strconv.ParseFloat(strings.TrimSpace(posText), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: tap %d: %w", ErrInvalidTap, i, err)
		}
		tap := At(pos)
		if hasLevel {
			level, err := strconv.ParseFloat(strings.TrimSpace(levelText), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: tap %d: %w", ErrInvalidTap, i, err)
			}
			tap.Level = level
		}
		if err := tap.validate(); err != nil {
			return nil, fmt.Errorf("tap %d: %w", i, err)
		}
		taps = append(taps, tap)
	}
	return taps, nil
}

// FormatTaps renders taps in the form accepted by ParseTaps.
func FormatTaps(taps []Tap) string {
	parts := make([]string, len(taps))
	for i, t := range taps {
		parts[i] = strconv.FormatFloat(t.Position, 'g', -1, 64) + ":" +
			strconv.FormatFloat(t.Level, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

var implicitTaps = []Tap{{Position: 0, Level: 1}}

// tapTable holds the explicit taps (nil for the implicit default) and
// their lags for the current window.
type tapTable struct {
	explicit []Tap
	lags     []float64
}

func newTapTable(taps []Tap, window int) *tapTable {
	t := &tapTable{}
	if len(taps) > 0 {
		t.explicit = append([]Tap(nil), taps...)
	}
	t.lags = make([]float64, len(t.active()))
	t.resolve(window)
	return t
}

func (t *tapTable) active() []Tap {
	if t.explicit == nil {
		return implicitTaps
	}
	return t.explicit
}

// resolve maps positions to lags for a window of window frames. Lag 0 is
// the newest frame and window-1 the oldest one in the window.
func (t *tapTable) resolve(window int) {
	span := float64(window - 1)
	if span < 0 {
		span = 0
	}
	for i, tap := range t.active() {
		t.lags[i] = (1 - tap.Position) * span
	}
}

// snapshot returns a copy of the explicit taps, nil for the default.
func (t *tapTable) snapshot() []Tap {
	if t.explicit == nil {
		return nil
	}
	return append([]Tap(nil), t.explicit...)
}
