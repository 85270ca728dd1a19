package player

import (
	"fmt"
	"math"
	"strconv"
)

// Rate is a supported playback speed multiplier.
type Rate float64

// Rates lists the supported playback rates in menu order.
var Rates = []Rate{0.5, 1, 1.5, 2}

// String formats the rate as "1.5x".
func (r Rate) String() string {
	return strconv.FormatFloat(float64(r), 'f', -1, 64) + "x"
}

// Valid reports whether r is one of Rates.
func (r Rate) Valid() bool {
	for _, v := range Rates {
		if v == r {
			return true
		}
	}
	return false
}

// State is the playback state mirrored from the element.
type State struct {
	Ready       bool
	Playing     bool
	CurrentTime float64
	// Duration is zero while unknown.
	Duration float64
	// Progress is a percent in [0, 100]. Before the first time update it
	// holds the resume percent.
	Progress   float64
	Rate       Rate
	Fullscreen bool
}

// DurationKnown reports whether the duration is a usable positive number.
func (s State) DurationKnown() bool {
	return validDuration(s.Duration)
}

// Ended reports whether playback reached the end of the media.
func (s State) Ended() bool {
	return s.DurationKnown() && s.Duration-s.CurrentTime < 0.5
}

func validDuration(d float64) bool {
	return d > 0 && !math.IsNaN(d) && !math.IsInf(d, 0)
}

// progressPercent returns round(current/duration*100) clamped to [0, 100],
// and false when the duration is unknown.
func progressPercent(current, duration float64) (float64, bool) {
	if !validDuration(duration) || math.IsNaN(current) {
		return 0, false
	}
	p := math.Round(current / duration * 100)
	return math.Max(0, math.Min(100, p)), true
}

// clampTime bounds t to the media, or to >= 0 when the duration is unknown.
func clampTime(t, duration float64) float64 {
	if t < 0 || math.IsNaN(t) {
		return 0
	}
	if validDuration(duration) && t > duration {
		return duration
	}
	return t
}

// FormatTime formats seconds as [h:]mm:ss. Invalid or negative input
// formats as "00:00".
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "00:00"
	}
	s := int(seconds)
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}
