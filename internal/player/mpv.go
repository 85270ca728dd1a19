package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"
)

// Property observer ids.
const (
	obsTimePos = iota + 1
	obsDuration
	obsPause
	obsFullscreen
)

const (
	socketWait  = 5 * time.Second
	callTimeout = 5 * time.Second
)

// MPVOptions configures the mpv element.
type MPVOptions struct {
	// Path is the mpv binary.
	Path  string
	Title string
	// SubFile is a subtitle URL or path added to every loaded file.
	SubFile string
	// TimeUpdateInterval coalesces time-pos changes into TimeUpdateMsg.
	TimeUpdateInterval time.Duration
	Logger             hclog.Logger
}

// MPV is a media element backed by an mpv process controlled over its
// JSON IPC socket. Its window is the fullscreen container.
//
// mpv is started with exec.Command and an explicit argument slice, and
// the socket lives in a private temp dir.
type MPV struct {
	opts      MPVOptions
	log       hclog.Logger
	events    chan<- tea.Msg
	cmd       *exec.Cmd
	conn      net.Conn
	socketDir string

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan mpvReply

	// read loop only
	position float64
	duration float64
	lastEmit time.Time

	quit      chan struct{}
	exited    chan struct{}
	closeOnce sync.Once
}

type mpvReply struct {
	Data  json.RawMessage
	Error string
}

type mpvMessage struct {
	Event     string          `json:"event"`
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	RequestID int64           `json:"request_id"`
	Error     string          `json:"error"`
	Reason    string          `json:"reason"`
	FileError string          `json:"file_error"`
}

// StartMPV launches an idle mpv window and connects to its IPC socket.
// Native events are sent to events until Close.
func StartMPV(ctx context.Context, opts MPVOptions, events chan<- tea.Msg) (*MPV, error) {
	if opts.Path == "" {
		opts.Path = "mpv"
	}
	if opts.TimeUpdateInterval <= 0 {
		opts.TimeUpdateInterval = 250 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	// Randomized socket dir prevents symlink attacks.
	socketDir, err := os.MkdirTemp("", "cinebox-mpv-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir for mpv socket: %w", err)
	}
	socketPath := filepath.Join(socketDir, "socket")

	args := []string{
		"--idle=yes",
		"--force-window=yes",
		"--keep-open=yes",
		"--pause=yes",
		"--no-terminal",
		"--input-ipc-server=" + socketPath,
	}
	if opts.Title != "" {
		args = append(args, "--force-media-title="+opts.Title)
	}

	cmd := exec.Command(opts.Path, args...)
	if err := cmd.Start(); err != nil {
		os.RemoveAll(socketDir)
		return nil, fmt.Errorf("starting mpv: %w", err)
	}

	m := &MPV{
		opts:      opts,
		log:       opts.Logger.Named("mpv"),
		events:    events,
		cmd:       cmd,
		socketDir: socketDir,
		pending:   make(map[int64]chan mpvReply),
		quit:      make(chan struct{}),
		exited:    make(chan struct{}),
	}
	go m.wait()

	conn, err := m.dial(ctx, socketPath)
	if err != nil {
		m.Close()
		return nil, err
	}
	m.conn = conn
	go m.readLoop()

	for id, name := range map[int]string{
		obsTimePos:    "time-pos",
		obsDuration:   "duration",
		obsPause:      "pause",
		obsFullscreen: "fullscreen",
	} {
		if err := m.send("observe_property", id, name); err != nil {
			m.Close()
			return nil, fmt.Errorf("observing %s: %w", name, err)
		}
	}

	m.log.Debug("mpv started", "pid", cmd.Process.Pid, "socket", socketPath)
	return m, nil
}

// dial waits for the IPC socket to appear and connects to it.
func (m *MPV) dial(ctx context.Context, socketPath string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, socketWait)
	defer cancel()

	var d net.Dialer
	for {
		if _, err := os.Stat(socketPath); err == nil {
			conn, err := d.DialContext(ctx, "unix", socketPath)
			if err == nil {
				return conn, nil
			}
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connecting to mpv socket: %w", ctx.Err())
		case <-m.exited:
			return nil, errors.New("mpv exited before its IPC socket was ready")
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (m *MPV) wait() {
	err := m.cmd.Wait()
	close(m.exited)

	// mpv returns non-zero on user quit, which is normal.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 4 {
		err = nil
	}
	m.emit(ElementClosedMsg{Err: err})
}

// emit delivers a native event unless the element is closing.
func (m *MPV) emit(msg tea.Msg) {
	select {
	case m.events <- msg:
	case <-m.quit:
	}
}

func (m *MPV) readLoop() {
	scanner := bufio.NewScanner(m.conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg mpvMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			m.log.Trace("skipping malformed ipc line", "error", err)
			continue
		}
		if msg.Event == "" {
			m.resolve(msg)
			continue
		}
		m.handleEvent(msg)
	}

	m.mu.Lock()
	for id, ch := range m.pending {
		close(ch)
		delete(m.pending, id)
	}
	m.mu.Unlock()
}

func (m *MPV) resolve(msg mpvMessage) {
	m.mu.Lock()
	ch, ok := m.pending[msg.RequestID]
	delete(m.pending, msg.RequestID)
	m.mu.Unlock()
	if ok {
		ch <- mpvReply{Data: msg.Data, Error: msg.Error}
	}
}

func (m *MPV) handleEvent(msg mpvMessage) {
	switch msg.Event {
	case "property-change":
		m.propertyChanged(msg)
	case "playback-restart":
		// Report the position right after a seek settles.
		m.lastEmit = time.Time{}
		m.emitTime(time.Now())
	case "file-loaded":
		go m.fileLoaded()
	case "end-file":
		if msg.Reason == "error" {
			m.emit(LoadErrorMsg{Err: fmt.Errorf("mpv: %s", msg.FileError)})
		}
	}
}

func (m *MPV) propertyChanged(msg mpvMessage) {
	switch msg.ID {
	case obsTimePos:
		// Unavailable until the file is loaded: no data or null.
		var pos *float64
		if json.Unmarshal(msg.Data, &pos) != nil || pos == nil {
			return
		}
		m.position = *pos
		if now := time.Now(); now.Sub(m.lastEmit) >= m.opts.TimeUpdateInterval {
			m.emitTime(now)
		}
	case obsDuration:
		var d float64
		if json.Unmarshal(msg.Data, &d) != nil {
			d = 0
		}
		m.duration = d
	case obsPause:
		var paused bool
		if json.Unmarshal(msg.Data, &paused) != nil {
			return
		}
		if paused {
			m.emit(PauseMsg{})
		} else {
			m.emit(PlayMsg{})
		}
	case obsFullscreen:
		var active bool
		if json.Unmarshal(msg.Data, &active) == nil {
			m.emit(FullscreenChangeMsg{Active: active})
		}
	}
}

func (m *MPV) emitTime(now time.Time) {
	m.lastEmit = now
	m.emit(TimeUpdateMsg{Current: m.position, Duration: m.duration})
}

// fileLoaded reports metadata and attaches the subtitle. It runs off the
// read loop because it waits for replies.
func (m *MPV) fileLoaded() {
	var duration float64
	if data, err := m.call("get_property", "duration"); err != nil {
		m.log.Debug("duration unavailable", "error", err)
	} else if err := json.Unmarshal(data, &duration); err != nil {
		m.log.Debug("decoding duration failed", "data", string(data), "error", err)
	}
	m.emit(MetadataLoadedMsg{Duration: duration})

	if m.opts.SubFile != "" {
		if _, err := m.call("sub-add", m.opts.SubFile, "select"); err != nil {
			m.log.Warn("adding subtitle failed", "sub", m.opts.SubFile, "error", err)
		}
	}
}

// send writes a command without waiting for its reply.
func (m *MPV) send(args ...any) error {
	_, err := m.request(nil, args)
	return err
}

// sendWith writes a command and hands its reply to fn off the read loop.
func (m *MPV) sendWith(fn func(mpvReply, bool), args ...any) error {
	ch := make(chan mpvReply, 1)
	if _, err := m.request(ch, args); err != nil {
		return err
	}
	go func() {
		select {
		case reply, ok := <-ch:
			fn(reply, ok)
		case <-m.quit:
		}
	}()
	return nil
}

// call writes a command and waits for its reply.
func (m *MPV) call(args ...any) (json.RawMessage, error) {
	ch := make(chan mpvReply, 1)
	id, err := m.request(ch, args)
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(callTimeout)
	defer timer.Stop()

	select {
	case reply, ok := <-ch:
		if !ok {
			return nil, errors.New("mpv connection closed")
		}
		if reply.Error != "success" {
			return nil, fmt.Errorf("mpv %v: %s", args[0], reply.Error)
		}
		return reply.Data, nil
	case <-timer.C:
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
		return nil, fmt.Errorf("mpv %v: timed out", args[0])
	case <-m.quit:
		return nil, errors.New("mpv closed")
	}
}

func (m *MPV) request(reply chan mpvReply, args []any) (int64, error) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	if reply != nil {
		m.pending[id] = reply
	}
	m.mu.Unlock()

	data, err := json.Marshal(map[string]any{"command": args, "request_id": id})
	if err != nil {
		return 0, fmt.Errorf("encoding mpv command: %w", err)
	}
	data = append(data, '\n')

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if m.conn == nil {
		return 0, errors.New("mpv is not connected")
	}
	if _, err := m.conn.Write(data); err != nil {
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
		return 0, fmt.Errorf("writing mpv command: %w", err)
	}
	return id, nil
}

// Load replaces the current file.
func (m *MPV) Load(url string) error {
	m.log.Debug("loading", "url", url)
	return m.send("loadfile", url, "replace")
}

// Play unpauses. A refused request is reported as PlayRejectedMsg.
func (m *MPV) Play() error {
	return m.sendWith(func(r mpvReply, ok bool) {
		if !ok {
			return
		}
		if r.Error != "success" {
			m.emit(PlayRejectedMsg{Err: fmt.Errorf("mpv: %s", r.Error)})
		}
	}, "set_property", "pause", false)
}

func (m *MPV) Pause() error {
	return m.send("set_property", "pause", true)
}

func (m *MPV) SeekTo(seconds float64) error {
	return m.send("seek", seconds, "absolute")
}

func (m *MPV) SeekBy(delta float64) error {
	return m.send("seek", delta, "relative")
}

func (m *MPV) SetRate(rate float64) error {
	return m.send("set_property", "speed", rate)
}

// RequestFullscreen puts the mpv window in fullscreen.
func (m *MPV) RequestFullscreen() error {
	_, err := m.call("set_property", "fullscreen", true)
	return err
}

// ExitFullscreen leaves fullscreen.
func (m *MPV) ExitFullscreen() error {
	_, err := m.call("set_property", "fullscreen", false)
	return err
}

// CapBitrate limits the adaptive variants mpv selects.
func (m *MPV) CapBitrate(bitsPerSecond int) error {
	_, err := m.call("set_property", "hls-bitrate", bitsPerSecond)
	return err
}

// Close quits mpv and removes its socket.
func (m *MPV) Close() error {
	m.closeOnce.Do(func() {
		if m.conn != nil {
			m.send("quit")
		}
		close(m.quit)

		select {
		case <-m.exited:
		case <-time.After(2 * time.Second):
			m.cmd.Process.Kill()
			<-m.exited
		}

		m.writeMu.Lock()
		if m.conn != nil {
			m.conn.Close()
		}
		m.writeMu.Unlock()
		os.RemoveAll(m.socketDir)
	})
	return nil
}

var (
	_ Element       = (*MPV)(nil)
	_ Fullscreener  = (*MPV)(nil)
	_ BitrateCapper = (*MPV)(nil)
)
