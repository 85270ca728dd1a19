package player

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ControlsVisible reports whether the control overlay is shown. Controls
// never hide while paused or not ready.
func (c *Controller) ControlsVisible() bool {
	return c.controlsShown || !c.state.Playing || !c.state.Ready
}

// showControls shows the overlay and restarts the hide timer. The timer
// only runs while playing.
func (c *Controller) showControls() tea.Cmd {
	c.controlsShown = true
	c.hideGen++
	if !c.state.Playing || !c.state.Ready {
		return nil
	}
	gen := c.hideGen
	return tea.Tick(c.settings.HideDelay, func(time.Time) tea.Msg {
		return hideControlsMsg{gen: gen}
	})
}

func (c *Controller) onHideControls(msg hideControlsMsg) {
	if msg.gen != c.hideGen || !c.state.Playing || !c.state.Ready {
		return
	}
	c.controlsShown = false
}
