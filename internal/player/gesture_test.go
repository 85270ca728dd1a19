package player

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Pixel positions on the 800px wide harness surface.
const (
	leftX   = 100
	centerX = 400
	rightX  = 700
)

func TestZoneAt(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	tests := []struct {
		x    float64
		want Zone
	}{
		{0, ZoneLeft},
		{239, ZoneLeft},
		{240, ZoneCenter},
		{559, ZoneCenter},
		{560, ZoneRight},
		{799, ZoneRight},
	}
	for _, tt := range tests {
		if got := h.c.zoneAt(tt.x); got != tt.want {
			t.Errorf("zoneAt(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestDoubleTapLeftSkipsBackOnce(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(100)

	first := h.tapAt(leftX)
	assert.NotNil(t, first, "single tap waits for the tap window")
	seq := h.c.pending[ZoneLeft]

	h.clock.advance(200 * time.Millisecond)
	h.tapAt(leftX)

	assert.Equal(t, []float64{-10}, h.el.relativeSeeks())
	assert.Equal(t, "-10s", h.c.Feedback().Label)
	assert.Empty(t, h.c.pending)

	h.send(tapTimeoutMsg{zone: ZoneLeft, seq: seq})
	assert.Zero(t, h.el.plays)
	assert.Zero(t, h.el.pauses)
}

func TestSingleTapLeftTogglesAfterWindow(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(100)

	h.tapAt(leftX)
	assert.Zero(t, h.el.plays, "toggle is deferred")

	h.clock.advance(300 * time.Millisecond)
	h.send(tapTimeoutMsg{zone: ZoneLeft, seq: h.c.pending[ZoneLeft]})
	assert.Equal(t, 1, h.el.plays)
	assert.Empty(t, h.el.seeks)
}

func TestRapidRightTapsSkipForward(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(100)

	h.tapAt(rightX)
	h.clock.advance(250 * time.Millisecond)
	h.tapAt(rightX)

	assert.Equal(t, []float64{10}, h.el.relativeSeeks())
	assert.Zero(t, h.el.plays)
	assert.Equal(t, Forward, h.c.Feedback().Direction)
}

func TestSeparateSingleTapsEachToggle(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(100)

	h.tapAt(rightX)
	h.clock.advance(300 * time.Millisecond)
	h.send(tapTimeoutMsg{zone: ZoneRight, seq: h.c.pending[ZoneRight]})

	h.clock.advance(100 * time.Millisecond)
	h.tapAt(rightX)
	h.clock.advance(300 * time.Millisecond)
	h.send(tapTimeoutMsg{zone: ZoneRight, seq: h.c.pending[ZoneRight]})

	assert.Equal(t, 2, h.el.plays)
	assert.Empty(t, h.el.seeks)
}

func TestTapsInDifferentZonesDoNotPair(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(100)

	h.tapAt(leftX)
	h.clock.advance(100 * time.Millisecond)
	h.tapAt(rightX)

	assert.Empty(t, h.el.seeks)
	assert.Len(t, h.c.pending, 2)
}

func TestCenterTapTogglesImmediately(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(100)

	h.tapAt(centerX)
	assert.Equal(t, 1, h.el.plays)
	assert.Empty(t, h.c.pending)

	h.clock.advance(100 * time.Millisecond)
	h.tapAt(centerX)
	assert.Equal(t, 2, h.el.plays, "center has no double-tap meaning")
	assert.Empty(t, h.el.seeks)
}

func TestTouchScrubCommitsOnRelease(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(300)
	h.send(TimeUpdateMsg{Current: 100, Duration: 300})

	h.send(PointerDownMsg{X: 300, Y: surfaceY, Touch: true})
	h.send(PointerMoveMsg{X: 330, Y: surfaceY, Touch: true})
	_, active := h.c.Scrub()
	assert.False(t, active, "inside the dead zone")

	h.send(PointerMoveMsg{X: 341, Y: surfaceY, Touch: true})
	offset, active := h.c.Scrub()
	assert.True(t, active)
	assert.Equal(t, 5.0, offset)

	h.send(PointerMoveMsg{X: 380, Y: surfaceY, Touch: true})
	offset, _ = h.c.Scrub()
	assert.Equal(t, 10.0, offset)
	assert.Empty(t, h.el.seeks, "scrub never commits before release")

	h.send(PointerUpMsg{X: 380, Y: surfaceY, Touch: true})
	assert.Equal(t, []float64{10}, h.el.relativeSeeks())
	assert.InDelta(t, 110, h.c.State().CurrentTime, 0.001)
	assert.Zero(t, h.el.plays, "scrub suppresses the tap")
	assert.Empty(t, h.c.pending)
	assert.False(t, h.c.Feedback().Visible)

	_, active = h.c.Scrub()
	assert.False(t, active)
}

func TestScrubBackward(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(300)

	h.send(PointerDownMsg{X: 500, Y: surfaceY, Touch: true})
	h.send(PointerMoveMsg{X: 400, Y: surfaceY, Touch: true})
	h.send(PointerUpMsg{X: 400, Y: surfaceY, Touch: true})

	assert.Equal(t, []float64{-12}, h.el.relativeSeeks())
}

func TestSmallDragStillTaps(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(100)

	h.send(PointerDownMsg{X: leftX, Y: surfaceY, Touch: true})
	h.send(PointerMoveMsg{X: leftX + 20, Y: surfaceY, Touch: true})
	h.send(PointerUpMsg{X: leftX + 20, Y: surfaceY, Touch: true})

	assert.Empty(t, h.el.seeks)
	assert.Contains(t, h.c.pending, ZoneLeft)
}

func TestMouseDragWithoutMouseScrub(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.c.settings.MouseScrub = false
	h.ready(100)

	h.send(PointerDownMsg{X: leftX, Y: surfaceY})
	h.send(PointerMoveMsg{X: centerX, Y: surfaceY})
	_, active := h.c.Scrub()
	assert.False(t, active)

	h.send(PointerUpMsg{X: centerX, Y: surfaceY})
	assert.Empty(t, h.el.seeks)
	assert.Zero(t, h.el.plays, "press and release in different zones is not a tap")
	assert.Empty(t, h.c.pending)
}

func TestProgressBarSeeksAbsolute(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(200)

	// Bar row 26 spans columns 1..98, i.e. 8px..792px.
	barY := 26.5 * 16
	h.send(PointerDownMsg{X: 400, Y: barY})
	h.send(PointerMoveMsg{X: 8 + 784*0.25, Y: barY})
	h.send(PointerUpMsg{X: 8 + 784*0.25, Y: barY})

	assert.Equal(t, []float64{100, 50}, h.el.absoluteSeeks())
	assert.Empty(t, h.c.pending, "the bar is not a tap zone")
	assert.Zero(t, h.el.plays)
}

func TestProgressBarDragOffBarKeepsSeeking(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(200)

	barY := 26.5 * 16
	h.send(PointerDownMsg{X: 400, Y: barY})
	h.send(PointerMoveMsg{X: 900, Y: surfaceY})

	assert.Equal(t, []float64{100, 200}, h.el.absoluteSeeks())
}

func TestInteractionShowsControls(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(100)
	h.send(PlayMsg{})
	h.send(hideControlsMsg{gen: h.c.hideGen})
	require.False(t, h.c.ControlsVisible())

	h.tapAt(centerX)
	assert.True(t, h.c.ControlsVisible())
}

func TestHiddenControlsStayClickable(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(200)
	h.send(PlayMsg{})
	h.send(hideControlsMsg{gen: h.c.hideGen})
	require.False(t, h.c.ControlsVisible())

	h.send(PointerDownMsg{X: 400, Y: 26.5 * 16})
	assert.True(t, h.c.ControlsVisible())
	assert.Equal(t, []float64{100}, h.el.absoluteSeeks(), "a press on the hidden bar seeks")
	assert.Zero(t, h.el.pauses)
}

func TestMouseEventsDriveGestures(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(100)

	h.send(tea.MouseMsg{X: 5, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.send(tea.MouseMsg{X: 5, Y: 10, Action: tea.MouseActionRelease})
	h.clock.advance(150 * time.Millisecond)
	h.send(tea.MouseMsg{X: 5, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.send(tea.MouseMsg{X: 5, Y: 10, Action: tea.MouseActionRelease})

	assert.Equal(t, []float64{-10}, h.el.relativeSeeks())
}

func TestMouseWheelIsNotATap(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(100)

	h.send(tea.MouseMsg{X: 50, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	h.send(tea.MouseMsg{X: 50, Y: 10, Action: tea.MouseActionRelease})
	assert.Zero(t, h.el.plays)
}

func clickButton(t *testing.T, h *harness, buttons []button, label string, row int) {
	t.Helper()
	for _, b := range buttons {
		if b.label == label {
			h.send(tea.MouseMsg{X: b.x, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
			h.send(tea.MouseMsg{X: b.x, Y: row, Action: tea.MouseActionRelease})
			return
		}
	}
	t.Fatalf("no button %q", label)
}

func TestControlButtons(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(3000)

	clickButton(t, h, h.c.controlButtons(), "[+1m]", 27)
	clickButton(t, h, h.c.controlButtons(), "[-10m]", 27)
	assert.Equal(t, []float64{60, -600}, h.el.relativeSeeks())

	clickButton(t, h, h.c.controlButtons(), "[⚙ 1x]", 27)
	require.True(t, h.c.MenuOpen())
	clickButton(t, h, h.c.menuButtons(), "[2x]", 28)
	assert.Equal(t, Rate(2), h.c.State().Rate)
	assert.False(t, h.c.MenuOpen())

	clickButton(t, h, h.c.topButtons(), "[⟳ reload]", 0)
	assert.Len(t, h.el.loads, 2)
}

func TestButtonPressReleasedElsewhereDoesNothing(t *testing.T) {
	h := newHarness(t, "clip.mp4", 0)
	h.ready(3000)

	var plus button
	for _, b := range h.c.controlButtons() {
		if b.label == "[+1m]" {
			plus = b
		}
	}
	h.send(tea.MouseMsg{X: plus.x, Y: 27, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.send(tea.MouseMsg{X: 50, Y: 27, Action: tea.MouseActionRelease})
	assert.Empty(t, h.el.seeks)
}
