package player

import (
	tea "github.com/charmbracelet/bubbletea"
)

// onTimeUpdate mirrors the element position into state and reports
// progress to the caller once per update. Nothing is reported before the
// source is ready or while the resume seek is outstanding, so a saved
// position is never overwritten by the element's initial zero.
func (c *Controller) onTimeUpdate(msg TimeUpdateMsg) tea.Cmd {
	c.state.CurrentTime = clampTime(msg.Current, 0)
	if validDuration(msg.Duration) {
		c.state.Duration = msg.Duration
	}
	c.applyResume()
	if !c.state.Ready || c.pendingResume {
		return nil
	}

	percent, ok := progressPercent(c.state.CurrentTime, c.state.Duration)
	if !ok {
		return nil
	}
	c.state.Progress = percent
	if c.onProgress != nil {
		c.onProgress(percent)
	}
	return nil
}

// onPlaying applies the element's play or pause signal. The element is
// the only authority on whether playback is running.
func (c *Controller) onPlaying(playing bool) tea.Cmd {
	if c.state.Playing == playing {
		return nil
	}
	c.state.Playing = playing
	return c.showControls()
}
