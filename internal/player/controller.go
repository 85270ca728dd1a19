package player

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"

	"cinebox/internal/media"
)

// Settings holds the gesture and timer thresholds.
type Settings struct {
	TapWindow        time.Duration
	HideDelay        time.Duration
	FeedbackDuration time.Duration
	// ZoneFraction is the width of each side tap zone as a fraction of
	// the surface width.
	ZoneFraction float64
	// ScrubDeadZone is the horizontal drag distance in pixels before a
	// drag turns into a scrub.
	ScrubDeadZone    float64
	ScrubPxPerSecond float64
	// CellWidth and CellHeight convert terminal cells to pixels.
	CellWidth  float64
	CellHeight float64
	// MouseScrub treats mouse drags like touch drags.
	MouseScrub bool
}

// DefaultSettings returns the stock thresholds.
func DefaultSettings() Settings {
	return Settings{
		TapWindow:        300 * time.Millisecond,
		HideDelay:        3500 * time.Millisecond,
		FeedbackDuration: 600 * time.Millisecond,
		ZoneFraction:     0.30,
		ScrubDeadZone:    40,
		ScrubPxPerSecond: 8,
		CellWidth:        8,
		CellHeight:       16,
		MouseScrub:       true,
	}
}

// Options configures a Controller.
type Options struct {
	Source media.Source
	// InitialPercent is applied once after the source is ready.
	InitialPercent float64
	// OnProgress receives the progress percent on every time update with
	// a known duration.
	OnProgress func(percent float64)
	Title      string

	Element Element
	// Engine attaches adaptive sources. Without one, adaptive sources are
	// loaded directly into the element.
	Engine StreamEngine
	// Container is the fullscreen container. It may be nil.
	Container any
	// Events carries native element and stream engine messages.
	Events <-chan tea.Msg

	Settings Settings
	Logger   hclog.Logger
	Now      func() time.Time
}

// Controller is the player control surface.
type Controller struct {
	source         media.Source
	initialPercent float64
	onProgress     func(float64)
	title          string

	element Element
	engine  StreamEngine
	events  <-chan tea.Msg
	fs      fullscreenCaps

	settings Settings
	log      hclog.Logger
	now      func() time.Time

	state State

	// source loader
	session       StreamSession
	readyMarked   bool
	loadFailed    bool
	pendingResume bool
	// mediaLoaded is set once the element reports metadata for the
	// current file. Seeks sent earlier are dropped by the element.
	mediaLoaded bool

	// gesture router
	gesture gestureSession
	lastTap map[Zone]time.Time
	pending map[Zone]uint64
	tapSeq  uint64

	// visibility and feedback timers
	controlsShown bool
	hideGen       uint64
	feedback      SkipFeedback
	feedbackGen   uint64

	menuOpen bool
	width    int
	height   int
	keys     keyMap
	help     help.Model
	bar      progress.Model
	spinner  spinner.Model
	spinning bool
	closed   bool
}

// New creates a controller. The source is attached by Init.
func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Settings == (Settings{}) {
		opts.Settings = DefaultSettings()
	}

	c := &Controller{
		source:         opts.Source,
		initialPercent: opts.InitialPercent,
		onProgress:     opts.OnProgress,
		title:          opts.Title,
		element:        opts.Element,
		engine:         opts.Engine,
		events:         opts.Events,
		settings:       opts.Settings,
		log:            opts.Logger,
		now:            opts.Now,
		state:          State{Rate: 1, Progress: opts.InitialPercent},
		lastTap:        make(map[Zone]time.Time),
		pending:        make(map[Zone]uint64),
		controlsShown:  true,
		keys:           newKeyMap(),
		help:           help.New(),
		bar:            newProgressBar(),
		spinner:        newSpinner(),
	}
	c.fs = probeCapabilities(opts.Container, opts.Element, c.log)
	return c
}

// State returns a snapshot of the playback state.
func (c *Controller) State() State {
	return c.state
}

// Source returns the attached source.
func (c *Controller) Source() media.Source {
	return c.source
}

// Init attaches the source and starts listening for native events.
func (c *Controller) Init() tea.Cmd {
	c.attach()
	c.spinning = true
	return tea.Batch(c.listen(), c.spinner.Tick)
}

// listen reads the next message from the event channel.
func (c *Controller) listen() tea.Cmd {
	if c.events == nil {
		return nil
	}
	events := c.events
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return nativeMsg{msg: msg}
	}
}

// Update implements tea.Model.
func (c *Controller) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m, ok := msg.(nativeMsg); ok {
		cmd := c.handle(m.msg)
		return c, tea.Batch(cmd, c.listen())
	}
	return c, c.handle(msg)
}

func (c *Controller) handle(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case TimeUpdateMsg:
		return c.onTimeUpdate(msg)
	case PlayMsg:
		return c.onPlaying(true)
	case PauseMsg:
		return c.onPlaying(false)
	case MetadataLoadedMsg:
		return c.onMetadataLoaded(msg)
	case ManifestParsedMsg:
		return c.onManifestParsed(msg)
	case StreamErrorMsg:
		c.onStreamError(msg)
	case LoadErrorMsg:
		c.onLoadError(msg)
	case PlayRejectedMsg:
		c.log.Debug("play request rejected", "error", msg.Err)
	case FullscreenChangeMsg:
		c.state.Fullscreen = msg.Active
		return c.showControls()
	case fullscreenResultMsg:
		if msg.err != nil {
			c.log.Warn("fullscreen request failed", "op", msg.op, "error", msg.err)
		}
	case ElementClosedMsg:
		if msg.Err != nil {
			c.log.Warn("media element closed", "error", msg.Err)
		}
		c.Close()
		return tea.Quit
	case SourceMsg:
		return c.SetSource(msg.Source, msg.InitialPercent)

	case PointerDownMsg:
		return c.pointerDown(Pointer(msg))
	case PointerMoveMsg:
		return c.pointerMove(Pointer(msg))
	case PointerUpMsg:
		return c.pointerUp(Pointer(msg))
	case PointerHoverMsg:
		return c.showControls()
	case tea.MouseMsg:
		return c.handleMouse(msg)
	case tea.KeyMsg:
		return c.handleKey(msg)
	case tea.WindowSizeMsg:
		c.resize(msg.Width, msg.Height)

	case tapTimeoutMsg:
		return c.onTapTimeout(msg)
	case hideControlsMsg:
		c.onHideControls(msg)
	case clearFeedbackMsg:
		if msg.gen == c.feedbackGen {
			c.feedback.Visible = false
		}
	case spinner.TickMsg:
		if c.state.Ready {
			c.spinning = false
			return nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return cmd
	}
	return nil
}

// Close tears down the source and cancels every pending timer.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.teardown()
}
