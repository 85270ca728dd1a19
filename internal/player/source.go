package player

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"cinebox/internal/media"
)

// SetSource switches to src. The previous stream session is released
// before the new source is attached, and state resets to not ready.
func (c *Controller) SetSource(src media.Source, initialPercent float64) tea.Cmd {
	c.source = src
	c.initialPercent = initialPercent
	c.state.Progress = initialPercent
	c.attach()
	return tea.Batch(c.startSpinner(), c.showControls())
}

// Reload re-attaches the current source, resuming from the current
// progress when it is known.
func (c *Controller) Reload() tea.Cmd {
	percent := c.initialPercent
	if c.state.Ready && c.state.DurationKnown() {
		percent = c.state.Progress
	}
	c.log.Info("reloading source", "url", c.source.URL, "resume_percent", percent)
	return c.SetSource(c.source, percent)
}

// attach tears down the previous source and attaches the current one
// exactly once.
func (c *Controller) attach() {
	c.teardown()
	c.closed = false

	c.state.Ready = false
	c.state.Playing = false
	c.state.CurrentTime = 0
	c.state.Duration = 0
	c.readyMarked = false
	c.loadFailed = false
	c.mediaLoaded = false
	c.pendingResume = c.initialPercent > 0

	if c.element == nil {
		c.log.Error("no media element to attach source to")
		c.loadFailed = true
		return
	}

	src := c.source
	if src.URL == "" {
		c.log.Error("empty source URL")
		c.loadFailed = true
		return
	}

	if src.Kind == media.Adaptive && c.engine != nil {
		session, err := c.engine.Attach(src.URL, c.element)
		if err != nil {
			c.log.Error("attaching stream failed", "url", src.URL, "error", err)
			c.loadFailed = true
			return
		}
		c.session = session
		c.log.Debug("stream session attached", "session", session.ID(), "url", src.URL)
		return
	}

	if err := c.element.Load(src.URL); err != nil {
		c.log.Error("loading source failed", "url", src.URL, "error", err)
		c.loadFailed = true
		return
	}
	c.log.Debug("source loaded directly", "url", src.URL, "kind", src.Kind)
}

// teardown releases the stream session and cancels pending timers.
func (c *Controller) teardown() {
	if c.session != nil {
		c.log.Debug("destroying stream session", "session", c.session.ID())
		c.session.Destroy()
		c.session = nil
	}

	c.hideGen++
	c.feedbackGen++
	c.feedback = SkipFeedback{}
	c.pending = make(map[Zone]uint64)
	c.lastTap = make(map[Zone]time.Time)
	c.gesture = gestureSession{}
}

func (c *Controller) onManifestParsed(msg ManifestParsedMsg) tea.Cmd {
	if c.session == nil || msg.SessionID != c.session.ID() {
		c.log.Debug("ignoring manifest from stale session", "session", msg.SessionID)
		return nil
	}
	if validDuration(msg.Duration) {
		c.state.Duration = msg.Duration
	}
	return c.markReady()
}

func (c *Controller) onMetadataLoaded(msg MetadataLoadedMsg) tea.Cmd {
	c.mediaLoaded = true
	if validDuration(msg.Duration) {
		c.state.Duration = msg.Duration
	}
	if c.session != nil {
		// Adaptive sources become ready on the manifest; metadata only
		// fills in the duration.
		c.applyResume()
		return nil
	}
	return c.markReady()
}

func (c *Controller) onStreamError(msg StreamErrorMsg) {
	if c.session == nil || msg.SessionID != c.session.ID() {
		return
	}
	if !msg.Fatal {
		c.log.Warn("stream error", "session", msg.SessionID, "error", msg.Err)
		return
	}
	c.log.Error("fatal stream error", "session", msg.SessionID, "error", msg.Err)
	c.session.Destroy()
	c.session = nil
	c.fail()
}

func (c *Controller) onLoadError(msg LoadErrorMsg) {
	err := msg.Err
	if err == nil {
		err = errors.New("unknown load error")
	}
	c.log.Error("source failed to load", "url", c.source.URL, "error", err)
	c.fail()
}

// fail leaves the controller not ready until the source is reloaded.
func (c *Controller) fail() {
	c.loadFailed = true
	c.state.Ready = false
	c.state.Playing = false
}

// markReady marks the current source ready once and applies the resume
// position.
func (c *Controller) markReady() tea.Cmd {
	if c.readyMarked || c.loadFailed {
		return nil
	}
	c.readyMarked = true
	c.state.Ready = true
	c.log.Debug("source ready", "duration", c.state.Duration)
	c.applyResume()
	return c.showControls()
}

// applyResume seeks to the resume percent once the source is ready, the
// element has loaded the file and the duration is known. A failed seek
// stays pending and is retried on the next time update.
func (c *Controller) applyResume() {
	if !c.pendingResume || !c.state.Ready || !c.mediaLoaded || !c.state.DurationKnown() {
		return
	}
	target := c.initialPercent / 100 * c.state.Duration
	if err := c.element.SeekTo(target); err != nil {
		c.log.Warn("resume seek failed", "target", target, "error", err)
		return
	}
	c.pendingResume = false
	c.state.CurrentTime = clampTime(target, c.state.Duration)
	c.log.Debug("resumed playback", "percent", c.initialPercent, "target", target)
}

func (c *Controller) startSpinner() tea.Cmd {
	if c.spinning {
		return nil
	}
	c.spinning = true
	return c.spinner.Tick
}
