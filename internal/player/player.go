// Package player implements the movie player control surface: a bubbletea
// model that drives a media element, mirrors its native events into
// playback state and routes pointer and keyboard gestures into transport
// commands.
//
// The media element and the fullscreen container are interfaces. Optional
// platform features are discovered once with type assertions and replaced
// by no-ops when missing.
package player

import "errors"

// Element is the media element the controller drives. Commands are
// requests: their effect is observed through the native event messages,
// never assumed.
type Element interface {
	// Load sets url as the element's source.
	Load(url string) error
	// Play requests playback. A platform rejection is reported
	// asynchronously as PlayRejectedMsg.
	Play() error
	Pause() error
	SeekTo(seconds float64) error
	SeekBy(deltaSeconds float64) error
	SetRate(rate float64) error
}

// StreamEngine attaches adaptive-manifest sources to an element.
type StreamEngine interface {
	// Attach starts a session for url bound to el. The session reports
	// ManifestParsedMsg or a StreamErrorMsg carrying its ID.
	Attach(url string, el Element) (StreamSession, error)
}

// StreamSession is one attached adaptive stream.
type StreamSession interface {
	ID() string
	// Destroy releases the session and returns once it can no longer
	// touch the element.
	Destroy()
}

// Fullscreener is a container that can enter and leave fullscreen.
type Fullscreener interface {
	RequestFullscreen() error
	ExitFullscreen() error
}

// NativeFullscreener is an element with its own fullscreen entry point,
// used when the container cannot go fullscreen.
type NativeFullscreener interface {
	EnterNativeFullscreen() error
}

// Orientation is a screen orientation lock target.
type Orientation int

const (
	Landscape Orientation = iota
	Portrait
)

func (o Orientation) String() string {
	if o == Portrait {
		return "portrait"
	}
	return "landscape"
}

// OrientationLocker can lock the screen orientation.
type OrientationLocker interface {
	LockOrientation(o Orientation) error
	UnlockOrientation() error
}

// BitrateCapper is an element that can cap adaptive stream bitrate.
type BitrateCapper interface {
	CapBitrate(bitsPerSecond int) error
}

// ErrNoFullscreen is returned when neither the container nor the element
// can go fullscreen.
var ErrNoFullscreen = errors.New("fullscreen is not supported")
