// Package stream is the adaptive streaming engine. It fetches an HLS
// manifest, caps the variant bitrate to the configured quality and hands
// the stream to the media element, reporting the result as player
// messages tagged with the session ID.
package stream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/grafov/m3u8"
	"github.com/hashicorp/go-hclog"

	"cinebox/internal/httputil"
	"cinebox/internal/player"
)

// Options configures an Engine.
type Options struct {
	// Quality caps the variant height: "360", "480", "720", "1080" or
	// "auto" for no cap.
	Quality string
	Logger  hclog.Logger
}

// Engine attaches HLS sources to a media element.
type Engine struct {
	client    *http.Client
	events    chan<- tea.Msg
	maxHeight int
	log       hclog.Logger
}

// NewEngine creates an engine that reports on events.
func NewEngine(client *http.Client, events chan<- tea.Msg, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	maxHeight, err := strconv.Atoi(opts.Quality)
	if err != nil || maxHeight < 0 {
		maxHeight = 0
	}
	return &Engine{
		client:    client,
		events:    events,
		maxHeight: maxHeight,
		log:       opts.Logger.Named("stream"),
	}
}

// Attach starts a session for url bound to el.
func (e *Engine) Attach(url string, el player.Element) (player.StreamSession, error) {
	if err := httputil.ValidateMediaURL(url); err != nil {
		return nil, fmt.Errorf("attaching stream: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		e.run(ctx, s.id, url, el)
	}()
	return s, nil
}

func (e *Engine) run(ctx context.Context, id, url string, el player.Element) {
	log := e.log.With("session", id)

	m, err := e.inspect(ctx, url)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		log.Error("manifest failed", "url", url, "error", err)
		e.emit(ctx, player.StreamErrorMsg{SessionID: id, Fatal: true, Err: err})
		return
	}

	if m.bandwidth > 0 {
		if capper, ok := el.(player.BitrateCapper); ok {
			if err := capper.CapBitrate(m.bandwidth); err != nil {
				log.Warn("capping bitrate failed", "bandwidth", m.bandwidth, "error", err)
				e.emit(ctx, player.StreamErrorMsg{SessionID: id, Err: err})
			}
		}
	}

	if err := el.Load(url); err != nil {
		e.emit(ctx, player.StreamErrorMsg{SessionID: id, Fatal: true, Err: fmt.Errorf("loading stream: %w", err)})
		return
	}

	log.Debug("manifest parsed", "duration", m.duration, "variants", m.variants, "bandwidth", m.bandwidth)
	e.emit(ctx, player.ManifestParsedMsg{SessionID: id, Duration: m.duration})
}

// emit delivers msg unless the session was destroyed.
func (e *Engine) emit(ctx context.Context, msg tea.Msg) {
	select {
	case e.events <- msg:
	case <-ctx.Done():
	}
}

// manifest is what the engine learned from a playlist.
type manifest struct {
	duration  float64
	bandwidth int
	variants  int
}

func (e *Engine) inspect(ctx context.Context, url string) (manifest, error) {
	var m manifest

	pl, kind, err := e.fetch(ctx, url)
	if err != nil {
		return m, err
	}

	switch kind {
	case m3u8.MEDIA:
		m.duration = vodDuration(pl.(*m3u8.MediaPlaylist))
		return m, nil

	case m3u8.MASTER:
		master := pl.(*m3u8.MasterPlaylist)
		v := selectVariant(master.Variants, e.maxHeight)
		if v == nil {
			return m, errors.New("master playlist has no playable variants")
		}
		m.variants = len(master.Variants)
		if e.maxHeight > 0 {
			m.bandwidth = int(v.Bandwidth)
		}

		// The duration is a nicety; a broken variant playlist is left for
		// the element to report.
		variantURL := httputil.Resolve(url, v.URI)
		vpl, vkind, err := e.fetch(ctx, variantURL)
		if err != nil || vkind != m3u8.MEDIA {
			e.log.Debug("variant playlist unavailable", "url", variantURL, "error", err)
			return m, nil
		}
		m.duration = vodDuration(vpl.(*m3u8.MediaPlaylist))
		return m, nil
	}
	return m, fmt.Errorf("unrecognized playlist type")
}

func (e *Engine) fetch(ctx context.Context, url string) (m3u8.Playlist, m3u8.ListType, error) {
	data, err := httputil.GetMedia(ctx, e.client, url)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching playlist: %w", err)
	}
	pl, kind, err := m3u8.DecodeFrom(bytes.NewReader(data), false)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing playlist: %w", err)
	}
	return pl, kind, nil
}

// selectVariant picks the highest-bandwidth variant no taller than
// maxHeight, or the lowest-bandwidth one when none fits. A maxHeight of
// zero means no cap.
func selectVariant(variants []*m3u8.Variant, maxHeight int) *m3u8.Variant {
	var best, lowest *m3u8.Variant
	for _, v := range variants {
		if v == nil || v.Iframe || v.URI == "" {
			continue
		}
		if lowest == nil || v.Bandwidth < lowest.Bandwidth {
			lowest = v
		}
		if maxHeight > 0 {
			if h := variantHeight(v.Resolution); h > maxHeight {
				continue
			}
		}
		if best == nil || v.Bandwidth > best.Bandwidth {
			best = v
		}
	}
	if best == nil {
		return lowest
	}
	return best
}

// variantHeight parses the height out of a "WxH" resolution, 0 if absent.
func variantHeight(resolution string) int {
	_, h, ok := strings.Cut(strings.ToLower(resolution), "x")
	if !ok {
		return 0
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0
	}
	return height
}

// vodDuration sums segment durations of a closed playlist. Live
// playlists have no duration.
func vodDuration(pl *m3u8.MediaPlaylist) float64 {
	if pl == nil || !pl.Closed {
		return 0
	}
	var total float64
	for _, seg := range pl.Segments {
		if seg != nil {
			total += seg.Duration
		}
	}
	return total
}

type session struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *session) ID() string { return s.id }

// Destroy cancels the session and waits for it to stop.
func (s *session) Destroy() {
	s.once.Do(s.cancel)
	<-s.done
}
