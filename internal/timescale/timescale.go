// Package timescale maps the seconds-per-year slider onto orbital periods.
//
// The slider counts how many real seconds one simulated Earth year lasts.
// At 365.25 one real second is one simulated day, which the UI labels 1x.
// The special realtime setting runs the simulation at wall-clock speed.
package timescale

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	MinSecondsPerYear     = 1
	MaxSecondsPerYear     = 1825
	DefaultSecondsPerYear = 365

	DaysPerYear   = 365.25
	SecondsPerDay = 86400

	// RealtimeSecondsPerYear is the length of a Julian year in seconds.
	RealtimeSecondsPerYear = DaysPerYear * SecondsPerDay
)

// RealtimeName is the slider's special value.
const RealtimeName = "realtime"

// ErrOutOfRange is returned by Parse for slider values outside 1-1825.
var ErrOutOfRange = errors.New("time scale out of range")

// Scale is a slider position. The zero value is not valid; use New or Default.
type Scale struct {
	secondsPerYear int
	realtime       bool
}

// New returns a slider position, clamped to the slider's range.
func New(secondsPerYear int) Scale {
	if secondsPerYear < MinSecondsPerYear {
		secondsPerYear = MinSecondsPerYear
	} else if secondsPerYear > MaxSecondsPerYear {
		secondsPerYear = MaxSecondsPerYear
	}
	return Scale{secondsPerYear: secondsPerYear}
}

// Default returns the starting slider position.
func Default() Scale {
	return New(DefaultSecondsPerYear)
}

// Realtime returns the wall-clock setting.
func Realtime() Scale {
	return Scale{secondsPerYear: MaxSecondsPerYear, realtime: true}
}

// Parse reads either "realtime" or an integer slider value.
func Parse(s string) (Scale, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == RealtimeName {
		return Realtime(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Scale{}, fmt.Errorf("parse time scale %q: %w", s, err)
	}
	if n < MinSecondsPerYear || n > MaxSecondsPerYear {
		return Scale{}, fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, n, MinSecondsPerYear, MaxSecondsPerYear)
	}
	return New(n), nil
}

// IsRealtime reports whether the slider sits on the realtime setting.
func (s Scale) IsRealtime() bool {
	return s.realtime
}

// SliderValue returns the slider's integer position. Realtime reports the
// top of the range, which is where the control sits.
func (s Scale) SliderValue() int {
	if s.secondsPerYear == 0 {
		return DefaultSecondsPerYear
	}
	return s.secondsPerYear
}

// SecondsPerYear returns how many real seconds one simulated year lasts.
func (s Scale) SecondsPerYear() float64 {
	if s.realtime {
		return RealtimeSecondsPerYear
	}
	return float64(s.SliderValue())
}

// Step moves the slider by delta. Stepping up past the top of the range
// enters realtime; stepping down from realtime returns to the range.
func (s Scale) Step(delta int) Scale {
	if s.realtime {
		if delta < 0 {
			return New(MaxSecondsPerYear + 1 + delta)
		}
		return s
	}
	next := s.SliderValue() + delta
	if next > MaxSecondsPerYear {
		return Realtime()
	}
	return New(next)
}

// OrbitalPeriod converts a period in Earth years to simulated seconds per
// revolution. Zero stays zero.
func (s Scale) OrbitalPeriod(years float64) float64 {
	return years * s.SecondsPerYear()
}

// Multiplier returns simulated days per real second.
func (s Scale) Multiplier() float64 {
	return DaysPerYear / s.SecondsPerYear()
}

// SimSecondsPerRealSecond returns how much simulated time passes per real second.
func (s Scale) SimSecondsPerRealSecond() float64 {
	return RealtimeSecondsPerYear / s.SecondsPerYear()
}

// Label renders the speed relative to one simulated day per real second.
func (s Scale) Label() string {
	if s.realtime {
		return RealtimeName
	}
	m := s.Multiplier()
	if m >= 10 {
		return fmt.Sprintf("%.0fx", m)
	}
	return fmt.Sprintf("%.1fx", m)
}

func (s Scale) String() string {
	if s.realtime {
		return RealtimeName
	}
	return strconv.Itoa(s.SliderValue())
}
