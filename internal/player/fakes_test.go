package player

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"cinebox/internal/media"
)

type seekCall struct {
	absolute bool
	value    float64
}

type fakeElement struct {
	loads   []string
	plays   int
	pauses  int
	seeks   []seekCall
	rates   []float64
	playErr error
	// seekErr rejects seeks without recording them.
	seekErr error
}

func (f *fakeElement) Load(url string) error { f.loads = append(f.loads, url); return nil }
func (f *fakeElement) Play() error           { f.plays++; return f.playErr }
func (f *fakeElement) Pause() error          { f.pauses++; return nil }
func (f *fakeElement) SeekTo(s float64) error {
	if f.seekErr != nil {
		return f.seekErr
	}
	f.seeks = append(f.seeks, seekCall{absolute: true, value: s})
	return nil
}
func (f *fakeElement) SeekBy(d float64) error {
	if f.seekErr != nil {
		return f.seekErr
	}
	f.seeks = append(f.seeks, seekCall{value: d})
	return nil
}
func (f *fakeElement) SetRate(r float64) error { f.rates = append(f.rates, r); return nil }

func (f *fakeElement) relativeSeeks() []float64 {
	var out []float64
	for _, s := range f.seeks {
		if !s.absolute {
			out = append(out, s.value)
		}
	}
	return out
}

func (f *fakeElement) absoluteSeeks() []float64 {
	var out []float64
	for _, s := range f.seeks {
		if s.absolute {
			out = append(out, s.value)
		}
	}
	return out
}

type nativeElement struct {
	fakeElement
	nativeCalls int
}

func (n *nativeElement) EnterNativeFullscreen() error { n.nativeCalls++; return nil }

type fakeSession struct {
	id        string
	destroyed bool
	engine    *fakeEngine
}

func (s *fakeSession) ID() string { return s.id }
func (s *fakeSession) Destroy() {
	if !s.destroyed {
		s.destroyed = true
		s.engine.active--
	}
}

type fakeEngine struct {
	sessions []*fakeSession
	active   int
	err      error
}

func (e *fakeEngine) Attach(url string, el Element) (StreamSession, error) {
	if e.err != nil {
		return nil, e.err
	}
	s := &fakeSession{id: fmt.Sprintf("session-%d", len(e.sessions)+1), engine: e}
	e.sessions = append(e.sessions, s)
	e.active++
	return s, nil
}

func (e *fakeEngine) last() *fakeSession {
	return e.sessions[len(e.sessions)-1]
}

type fakeContainer struct {
	enters, exits  int
	locks, unlocks int
	enterErr       error
	lockErr        error
}

func (f *fakeContainer) RequestFullscreen() error { f.enters++; return f.enterErr }
func (f *fakeContainer) ExitFullscreen() error    { f.exits++; return nil }
func (f *fakeContainer) LockOrientation(Orientation) error {
	f.locks++
	return f.lockErr
}
func (f *fakeContainer) UnlockOrientation() error { f.unlocks++; return nil }

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	c        *Controller
	el       *fakeElement
	engine   *fakeEngine
	clock    *fakeClock
	progress []float64
}

// newHarness builds a controller on a 100x30 terminal. Pixels are 8x16
// per cell, so the surface is 800px wide and the side zones end at 240px
// and start at 560px.
func newHarness(t *testing.T, url string, initialPercent float64) *harness {
	t.Helper()
	h := &harness{
		el:     &fakeElement{},
		engine: &fakeEngine{},
		clock:  &fakeClock{t: time.Unix(1700000000, 0)},
	}
	h.c = New(Options{
		Source:         media.NewSource(url),
		InitialPercent: initialPercent,
		OnProgress:     func(p float64) { h.progress = append(h.progress, p) },
		Title:          "Test Movie",
		Element:        h.el,
		Engine:         h.engine,
		Now:            h.clock.now,
	})
	h.c.Init()
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.c.Update(msg)
	return cmd
}

// ready makes a progressive source ready with the given duration.
func (h *harness) ready(duration float64) {
	h.send(MetadataLoadedMsg{Duration: duration})
}

// surfaceY is a pixel row inside the gesture surface.
const surfaceY = 10 * 16

func (h *harness) tapAt(x float64) tea.Cmd {
	h.send(PointerDownMsg{X: x, Y: surfaceY})
	return h.send(PointerUpMsg{X: x, Y: surfaceY})
}
