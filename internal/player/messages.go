package player

import "cinebox/internal/media"

// Native element events. They are delivered in arrival order on the
// controller's event channel.

// TimeUpdateMsg reports the element's playback position.
type TimeUpdateMsg struct {
	Current  float64
	Duration float64
}

// PlayMsg reports that the element started playing.
type PlayMsg struct{}

// PauseMsg reports that the element paused.
type PauseMsg struct{}

// MetadataLoadedMsg reports that a directly loaded source has metadata.
type MetadataLoadedMsg struct {
	Duration float64
}

// LoadErrorMsg reports that the element failed to load its source.
type LoadErrorMsg struct {
	Err error
}

// PlayRejectedMsg reports that a play request was refused.
type PlayRejectedMsg struct {
	Err error
}

// FullscreenChangeMsg reports the container's fullscreen state.
type FullscreenChangeMsg struct {
	Active bool
}

// ElementClosedMsg reports that the element went away (window closed).
type ElementClosedMsg struct {
	Err error
}

// Stream engine events.

// ManifestParsedMsg reports that a stream session's manifest is ready.
// Duration is zero when the manifest does not describe a finite stream.
type ManifestParsedMsg struct {
	SessionID string
	Duration  float64
}

// StreamErrorMsg reports a stream session failure.
type StreamErrorMsg struct {
	SessionID string
	Fatal     bool
	Err       error
}

// SourceMsg switches the controller to a new source.
type SourceMsg struct {
	Source         media.Source
	InitialPercent float64
}

// Pointer is a pointer position in pixels relative to the player surface.
type Pointer struct {
	X, Y  float64
	Touch bool
}

// PointerDownMsg starts a pointer interaction.
type PointerDownMsg Pointer

// PointerMoveMsg moves a pressed pointer.
type PointerMoveMsg Pointer

// PointerUpMsg ends a pointer interaction.
type PointerUpMsg Pointer

// PointerHoverMsg moves a pointer with no button pressed.
type PointerHoverMsg Pointer

// Internal timer and command results. Timers carry the generation or
// sequence number they were scheduled with; stale ones are ignored.

type tapTimeoutMsg struct {
	zone Zone
	seq  uint64
}

type hideControlsMsg struct {
	gen uint64
}

type clearFeedbackMsg struct {
	gen uint64
}

type fullscreenResultMsg struct {
	op  string
	err error
}

// nativeMsg wraps a message read from the event channel so Update knows
// to keep listening.
type nativeMsg struct {
	msg any
}
