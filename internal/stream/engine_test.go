package stream

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grafov/m3u8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinebox/internal/player"
)

const masterPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-STREAM-INF:BANDWIDTH=800000,RESOLUTION=640x360
360/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=2800000,RESOLUTION=1280x720
720/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=5000000,RESOLUTION=1920x1080
1080/index.m3u8
`

const vodPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:10
#EXT-X-MEDIA-SEQUENCE:0
#EXTINF:10.0,
seg0.ts
#EXTINF:10.0,
seg1.ts
#EXTINF:5.5,
seg2.ts
#EXT-X-ENDLIST
`

const livePlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:6
#EXT-X-MEDIA-SEQUENCE:120
#EXTINF:6.0,
seg120.ts
#EXTINF:6.0,
seg121.ts
`

type fakeElement struct {
	mu      sync.Mutex
	loaded  []string
	capped  []int
	loadErr error
}

func (f *fakeElement) Load(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = append(f.loaded, url)
	return f.loadErr
}
func (f *fakeElement) Play() error           { return nil }
func (f *fakeElement) Pause() error          { return nil }
func (f *fakeElement) SeekTo(float64) error  { return nil }
func (f *fakeElement) SeekBy(float64) error  { return nil }
func (f *fakeElement) SetRate(float64) error { return nil }
func (f *fakeElement) CapBitrate(bps int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.capped = append(f.capped, bps)
	return nil
}

func (f *fakeElement) snapshot() ([]string, []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.loaded...), append([]int(nil), f.capped...)
}

func newPlaylistServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	serve := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
			fmt.Fprint(w, body)
		}
	}
	mux.HandleFunc("/movie/master.m3u8", serve(masterPlaylist))
	mux.HandleFunc("/movie/360/index.m3u8", serve(vodPlaylist))
	mux.HandleFunc("/movie/720/index.m3u8", serve(vodPlaylist))
	mux.HandleFunc("/movie/1080/index.m3u8", serve(vodPlaylist))
	mux.HandleFunc("/live/index.m3u8", serve(livePlaylist))
	mux.HandleFunc("/slow/index.m3u8", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func waitMsg(t *testing.T, events <-chan tea.Msg) tea.Msg {
	t.Helper()
	select {
	case msg := <-events:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for stream message")
		return nil
	}
}

func TestAttachMasterPlaylistCapsQuality(t *testing.T) {
	srv := newPlaylistServer(t)
	events := make(chan tea.Msg, 4)
	e := NewEngine(srv.Client(), events, Options{Quality: "720"})
	el := &fakeElement{}

	url := srv.URL + "/movie/master.m3u8"
	s, err := e.Attach(url, el)
	require.NoError(t, err)
	defer s.Destroy()

	msg := waitMsg(t, events)
	parsed, ok := msg.(player.ManifestParsedMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, s.ID(), parsed.SessionID)
	assert.InDelta(t, 25.5, parsed.Duration, 0.001)

	loaded, capped := el.snapshot()
	assert.Equal(t, []string{url}, loaded)
	assert.Equal(t, []int{2800000}, capped)
}

func TestAttachAutoQualityDoesNotCap(t *testing.T) {
	srv := newPlaylistServer(t)
	events := make(chan tea.Msg, 4)
	e := NewEngine(srv.Client(), events, Options{Quality: "auto"})
	el := &fakeElement{}

	s, err := e.Attach(srv.URL+"/movie/master.m3u8", el)
	require.NoError(t, err)
	defer s.Destroy()

	_, ok := waitMsg(t, events).(player.ManifestParsedMsg)
	require.True(t, ok)
	_, capped := el.snapshot()
	assert.Empty(t, capped)
}

func TestAttachLivePlaylistHasNoDuration(t *testing.T) {
	srv := newPlaylistServer(t)
	events := make(chan tea.Msg, 4)
	e := NewEngine(srv.Client(), events, Options{Quality: "auto"})

	s, err := e.Attach(srv.URL+"/live/index.m3u8", &fakeElement{})
	require.NoError(t, err)
	defer s.Destroy()

	parsed, ok := waitMsg(t, events).(player.ManifestParsedMsg)
	require.True(t, ok)
	assert.Zero(t, parsed.Duration)
}

func TestAttachMissingManifestIsFatal(t *testing.T) {
	srv := newPlaylistServer(t)
	events := make(chan tea.Msg, 4)
	e := NewEngine(srv.Client(), events, Options{Quality: "auto"})
	el := &fakeElement{}

	s, err := e.Attach(srv.URL+"/missing.m3u8", el)
	require.NoError(t, err)
	defer s.Destroy()

	msg, ok := waitMsg(t, events).(player.StreamErrorMsg)
	require.True(t, ok)
	assert.True(t, msg.Fatal)
	assert.Equal(t, s.ID(), msg.SessionID)
	assert.Error(t, msg.Err)

	loaded, _ := el.snapshot()
	assert.Empty(t, loaded, "a failed manifest must not reach the element")
}

func TestAttachRejectsBadScheme(t *testing.T) {
	e := NewEngine(http.DefaultClient, make(chan tea.Msg), Options{})
	_, err := e.Attach("file:///etc/passwd.m3u8", &fakeElement{})
	assert.Error(t, err)
}

func TestDestroyCancelsPendingFetch(t *testing.T) {
	srv := newPlaylistServer(t)
	events := make(chan tea.Msg, 4)
	e := NewEngine(srv.Client(), events, Options{Quality: "auto"})
	el := &fakeElement{}

	s, err := e.Attach(srv.URL+"/slow/index.m3u8", el)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.Destroy()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Destroy did not return")
	}

	assert.Empty(t, events, "a destroyed session must not report")
	loaded, _ := el.snapshot()
	assert.Empty(t, loaded)

	// Destroy is idempotent.
	s.Destroy()
}

func TestSessionsHaveDistinctIDs(t *testing.T) {
	srv := newPlaylistServer(t)
	e := NewEngine(srv.Client(), make(chan tea.Msg, 4), Options{})

	a, err := e.Attach(srv.URL+"/live/index.m3u8", &fakeElement{})
	require.NoError(t, err)
	b, err := e.Attach(srv.URL+"/live/index.m3u8", &fakeElement{})
	require.NoError(t, err)
	defer a.Destroy()
	defer b.Destroy()

	assert.NotEqual(t, a.ID(), b.ID())
}

func TestSelectVariant(t *testing.T) {
	variant := func(bw uint32, res string) *m3u8.Variant {
		return &m3u8.Variant{URI: res + ".m3u8", VariantParams: m3u8.VariantParams{Bandwidth: bw, Resolution: res}}
	}
	variants := []*m3u8.Variant{
		variant(2800000, "1280x720"),
		variant(800000, "640x360"),
		variant(5000000, "1920x1080"),
	}

	tests := []struct {
		maxHeight int
		want      uint32
	}{
		{0, 5000000},
		{1080, 5000000},
		{720, 2800000},
		{480, 800000},
		{240, 800000},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.maxHeight), func(t *testing.T) {
			got := selectVariant(variants, tt.maxHeight)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Bandwidth)
		})
	}

	assert.Nil(t, selectVariant(nil, 720))
}

func TestVariantHeight(t *testing.T) {
	assert.Equal(t, 720, variantHeight("1280x720"))
	assert.Equal(t, 0, variantHeight(""))
	assert.Equal(t, 0, variantHeight("garbage"))
}
