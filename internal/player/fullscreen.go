package player

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"
)

// fullscreenCaps is the probed fullscreen and orientation support.
type fullscreenCaps struct {
	enter       func() error
	exit        func() error
	orientation OrientationLocker
	// containerLevel is false for the element-only fallback, which does
	// not lock orientation.
	containerLevel bool
}

// probeCapabilities picks the container fullscreen API, falls back to the
// element's native fullscreen, and replaces missing pieces with no-ops
// that report ErrNoFullscreen.
func probeCapabilities(container any, element Element, log hclog.Logger) fullscreenCaps {
	caps := fullscreenCaps{
		enter:       func() error { return ErrNoFullscreen },
		exit:        func() error { return ErrNoFullscreen },
		orientation: noopOrientation{},
	}

	if fs, ok := container.(Fullscreener); ok {
		caps.enter = fs.RequestFullscreen
		caps.exit = fs.ExitFullscreen
		caps.containerLevel = true
	} else if native, ok := element.(NativeFullscreener); ok {
		caps.enter = native.EnterNativeFullscreen
		log.Debug("container fullscreen unavailable, using element fallback")
	} else {
		log.Debug("fullscreen unavailable")
	}

	if ol, ok := container.(OrientationLocker); ok {
		caps.orientation = ol
	} else if ol, ok := element.(OrientationLocker); ok {
		caps.orientation = ol
	}
	return caps
}

type noopOrientation struct{}

func (noopOrientation) LockOrientation(Orientation) error { return nil }
func (noopOrientation) UnlockOrientation() error          { return nil }

// ToggleFullscreen enters or leaves fullscreen. The request runs off the
// event loop; the fullscreen state changes only when the container
// reports it. Failures are logged, never surfaced.
func (c *Controller) ToggleFullscreen() tea.Cmd {
	caps := c.fs
	if c.state.Fullscreen {
		return func() tea.Msg {
			err := caps.exit()
			if uerr := caps.orientation.UnlockOrientation(); uerr != nil {
				err = errors.Join(err, fmt.Errorf("unlocking orientation: %w", uerr))
			}
			return fullscreenResultMsg{op: "exit", err: err}
		}
	}

	return func() tea.Msg {
		if err := caps.enter(); err != nil {
			return fullscreenResultMsg{op: "enter", err: err}
		}
		if !caps.containerLevel {
			return fullscreenResultMsg{op: "enter"}
		}
		if err := caps.orientation.LockOrientation(Landscape); err != nil {
			return fullscreenResultMsg{op: "lock orientation", err: err}
		}
		return fullscreenResultMsg{op: "enter"}
	}
}
