package player

import (
	"math"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Skip distances used by the controls.
const (
	TapSkip   = 10.0
	ShortSkip = 60.0
	LongSkip  = 600.0
)

// Direction is the side a skip feedback is shown on.
type Direction int

const (
	Backward Direction = iota
	Forward
)

// SkipFeedback is the transient acknowledgment shown after a skip.
type SkipFeedback struct {
	Direction Direction
	Label     string
	Visible   bool
}

// Feedback returns the current skip feedback.
func (c *Controller) Feedback() SkipFeedback {
	return c.feedback
}

// SkipLabel formats a skip distance: "+10s", "-1m", "+10m".
func SkipLabel(delta float64) string {
	sign := "-"
	if delta > 0 {
		sign = "+"
	}
	abs := math.Abs(delta)
	if abs >= 60 {
		return sign + strconv.Itoa(int(abs/60)) + "m"
	}
	return sign + strconv.FormatFloat(abs, 'f', -1, 64) + "s"
}

// TogglePlay pauses when playing and requests playback otherwise. The
// playing state only changes when the element reports it.
func (c *Controller) TogglePlay() tea.Cmd {
	if c.element != nil {
		var err error
		if c.state.Playing {
			err = c.element.Pause()
		} else {
			err = c.element.Play()
		}
		if err != nil {
			c.log.Debug("toggle play request failed", "playing", c.state.Playing, "error", err)
		}
	}
	return c.showControls()
}

// Skip seeks by delta seconds relative to the current time and shows the
// skip feedback. Bounds are left to the element.
func (c *Controller) Skip(delta float64) tea.Cmd {
	if c.element != nil {
		if err := c.element.SeekBy(delta); err != nil {
			c.log.Warn("skip failed", "delta", delta, "error", err)
		}
	}
	c.state.CurrentTime = clampTime(c.state.CurrentTime+delta, c.state.Duration)

	dir := Forward
	if delta < 0 {
		dir = Backward
	}
	c.feedbackGen++
	c.feedback = SkipFeedback{Direction: dir, Label: SkipLabel(delta), Visible: true}
	gen := c.feedbackGen

	return tea.Batch(
		tea.Tick(c.settings.FeedbackDuration, func(time.Time) tea.Msg {
			return clearFeedbackMsg{gen: gen}
		}),
		c.showControls(),
	)
}

// SeekAbsolute seeks to percent of the duration. It does nothing while
// the duration is unknown.
func (c *Controller) SeekAbsolute(percent float64) tea.Cmd {
	if !c.state.DurationKnown() || math.IsNaN(percent) {
		return nil
	}
	percent = math.Max(0, math.Min(100, percent))
	target := percent / 100 * c.state.Duration
	if c.element != nil {
		if err := c.element.SeekTo(target); err != nil {
			c.log.Warn("seek failed", "target", target, "error", err)
		}
	}
	c.state.CurrentTime = target
	c.state.Progress = math.Round(percent)
	return c.showControls()
}

// seekRelative applies a scrub offset without skip feedback.
func (c *Controller) seekRelative(delta float64) {
	if delta == 0 || c.element == nil {
		return
	}
	if err := c.element.SeekBy(delta); err != nil {
		c.log.Warn("scrub seek failed", "delta", delta, "error", err)
		return
	}
	c.state.CurrentTime = clampTime(c.state.CurrentTime+delta, c.state.Duration)
}

// SetPlaybackRate applies rate to the element and closes the speed menu.
func (c *Controller) SetPlaybackRate(rate Rate) tea.Cmd {
	if !rate.Valid() {
		c.log.Warn("unsupported playback rate", "rate", float64(rate))
		return nil
	}
	if c.element != nil {
		if err := c.element.SetRate(float64(rate)); err != nil {
			c.log.Warn("setting playback rate failed", "rate", float64(rate), "error", err)
		}
	}
	c.state.Rate = rate
	c.menuOpen = false
	return c.showControls()
}

// ToggleSpeedMenu opens or closes the speed menu.
func (c *Controller) ToggleSpeedMenu() tea.Cmd {
	c.menuOpen = !c.menuOpen
	return c.showControls()
}

// MenuOpen reports whether the speed menu is open.
func (c *Controller) MenuOpen() bool {
	return c.menuOpen
}
