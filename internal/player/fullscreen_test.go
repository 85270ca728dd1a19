package player

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinebox/internal/media"
)

type fullscreenOnly struct {
	enters int
}

func (f *fullscreenOnly) RequestFullscreen() error { f.enters++; return nil }
func (f *fullscreenOnly) ExitFullscreen() error    { return nil }

func newFullscreenController(container any, el Element) *Controller {
	return New(Options{Source: media.NewSource("clip.mp4"), Element: el, Container: container})
}

func runFullscreen(t *testing.T, c *Controller) fullscreenResultMsg {
	t.Helper()
	cmd := c.ToggleFullscreen()
	require.NotNil(t, cmd)
	msg, ok := cmd().(fullscreenResultMsg)
	require.True(t, ok)
	c.Update(msg)
	return msg
}

func TestFullscreenSurvivesOrientationLockFailure(t *testing.T) {
	container := &fakeContainer{lockErr: errors.New("orientation lock not allowed")}
	c := newFullscreenController(container, &fakeElement{})

	res := runFullscreen(t, c)
	assert.Error(t, res.err, "the failure is reported for logging")
	assert.Equal(t, 1, container.enters)
	assert.Equal(t, 1, container.locks)
	assert.False(t, c.State().Fullscreen, "state waits for the platform signal")

	c.Update(FullscreenChangeMsg{Active: true})
	assert.True(t, c.State().Fullscreen)
}

func TestFullscreenExitUnlocksOrientation(t *testing.T) {
	container := &fakeContainer{}
	c := newFullscreenController(container, &fakeElement{})
	c.Update(FullscreenChangeMsg{Active: true})

	res := runFullscreen(t, c)
	assert.NoError(t, res.err)
	assert.Equal(t, 1, container.exits)
	assert.Equal(t, 1, container.unlocks)
	assert.True(t, c.State().Fullscreen)

	c.Update(FullscreenChangeMsg{Active: false})
	assert.False(t, c.State().Fullscreen)
}

func TestFullscreenEnterFailureSkipsLock(t *testing.T) {
	container := &fakeContainer{enterErr: errors.New("denied")}
	c := newFullscreenController(container, &fakeElement{})

	res := runFullscreen(t, c)
	assert.Error(t, res.err)
	assert.Zero(t, container.locks)
}

func TestFullscreenFallsBackToElement(t *testing.T) {
	el := &nativeElement{}
	c := newFullscreenController(nil, el)

	res := runFullscreen(t, c)
	assert.NoError(t, res.err)
	assert.Equal(t, 1, el.nativeCalls)
}

func TestFullscreenUnsupported(t *testing.T) {
	c := newFullscreenController(nil, &fakeElement{})

	res := runFullscreen(t, c)
	assert.ErrorIs(t, res.err, ErrNoFullscreen)
	assert.False(t, c.State().Fullscreen)
}

func TestMissingOrientationIsNoop(t *testing.T) {
	container := &fullscreenOnly{}
	c := newFullscreenController(container, &fakeElement{})

	res := runFullscreen(t, c)
	assert.NoError(t, res.err)
	assert.Equal(t, 1, container.enters)
}
