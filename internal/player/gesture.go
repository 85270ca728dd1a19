package player

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Zone is a horizontal tap zone of the player surface.
type Zone int

const (
	ZoneLeft Zone = iota
	ZoneCenter
	ZoneRight
)

func (z Zone) String() string {
	switch z {
	case ZoneLeft:
		return "left"
	case ZoneRight:
		return "right"
	default:
		return "center"
	}
}

// gestureSession tracks one pointer interaction from press to release.
type gestureSession struct {
	active      bool
	start       Pointer
	zone        Zone
	region      region
	button      *button
	scrubbing   bool
	scrubOffset float64
}

// Scrub returns the live scrub offset in seconds while a drag-to-seek is
// in progress.
func (c *Controller) Scrub() (offset float64, active bool) {
	return c.gesture.scrubOffset, c.gesture.scrubbing
}

// zoneAt classifies a horizontal pixel position.
func (c *Controller) zoneAt(x float64) Zone {
	width := float64(c.width) * c.settings.CellWidth
	if width <= 0 {
		return ZoneCenter
	}
	side := width * c.settings.ZoneFraction
	switch {
	case x < side:
		return ZoneLeft
	case x >= width-side:
		return ZoneRight
	default:
		return ZoneCenter
	}
}

// handleMouse converts terminal mouse events into pointer messages.
func (c *Controller) handleMouse(msg tea.MouseMsg) tea.Cmd {
	p := Pointer{
		X: (float64(msg.X) + 0.5) * c.settings.CellWidth,
		Y: (float64(msg.Y) + 0.5) * c.settings.CellHeight,
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return c.showControls()
		}
		return c.pointerDown(p)
	case tea.MouseActionRelease:
		return c.pointerUp(p)
	case tea.MouseActionMotion:
		if c.gesture.active {
			return c.pointerMove(p)
		}
		return c.showControls()
	}
	return nil
}

func (c *Controller) pointerDown(p Pointer) tea.Cmd {
	show := c.showControls()
	reg, btn := c.hitTest(p)
	c.gesture = gestureSession{
		active: true,
		start:  p,
		zone:   c.zoneAt(p.X),
		region: reg,
		button: btn,
	}
	if reg == regionBar {
		return tea.Batch(show, c.SeekAbsolute(c.barPercent(p.X)))
	}
	return show
}

func (c *Controller) pointerMove(p Pointer) tea.Cmd {
	show := c.showControls()
	g := &c.gesture
	if !g.active {
		return show
	}

	switch g.region {
	case regionBar:
		return tea.Batch(show, c.SeekAbsolute(c.barPercent(p.X)))
	case regionSurface:
		if !p.Touch && !c.settings.MouseScrub {
			return show
		}
		dx := p.X - g.start.X
		if !g.scrubbing && math.Abs(dx) > c.settings.ScrubDeadZone {
			g.scrubbing = true
		}
		if g.scrubbing {
			g.scrubOffset = math.Trunc(dx / c.settings.ScrubPxPerSecond)
		}
	}
	return show
}

func (c *Controller) pointerUp(p Pointer) tea.Cmd {
	g := c.gesture
	c.gesture = gestureSession{}
	show := c.showControls()
	if !g.active {
		return show
	}

	switch g.region {
	case regionChrome:
		if _, btn := c.hitTest(p); btn != nil && g.button != nil && btn.label == g.button.label {
			return tea.Batch(show, btn.action(c))
		}
	case regionSurface:
		if g.scrubbing {
			c.seekRelative(g.scrubOffset)
			return show
		}
		if c.zoneAt(p.X) != g.zone {
			return show
		}
		return tea.Batch(show, c.tap(g.zone))
	}
	return show
}

// tap routes one tap. Center taps toggle at once. Side taps wait out the
// tap window for a second tap, which turns the pair into a skip and
// cancels the pending toggle.
func (c *Controller) tap(zone Zone) tea.Cmd {
	if zone == ZoneCenter {
		return c.TogglePlay()
	}

	now := c.now()
	last, ok := c.lastTap[zone]
	c.lastTap[zone] = now
	if ok && now.Sub(last) < c.settings.TapWindow {
		delete(c.pending, zone)
		delta := TapSkip
		if zone == ZoneLeft {
			delta = -TapSkip
		}
		return c.Skip(delta)
	}

	c.tapSeq++
	seq := c.tapSeq
	c.pending[zone] = seq
	return tea.Tick(c.settings.TapWindow, func(time.Time) tea.Msg {
		return tapTimeoutMsg{zone: zone, seq: seq}
	})
}

func (c *Controller) onTapTimeout(msg tapTimeoutMsg) tea.Cmd {
	if seq, ok := c.pending[msg.zone]; !ok || seq != msg.seq {
		return nil
	}
	delete(c.pending, msg.zone)
	return c.TogglePlay()
}
