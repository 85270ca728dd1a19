// Package media defines shared types for the cinebox application.
package media

import (
	"net/url"
	"strings"
)

// SourceKind discriminates how a playable URL reaches the media element.
type SourceKind int

const (
	// Progressive is a single direct file (mp4, webm, mkv...).
	Progressive SourceKind = iota
	// Adaptive is a segmented manifest (HLS) handled by the stream engine.
	Adaptive
)

func (k SourceKind) String() string {
	switch k {
	case Progressive:
		return "progressive"
	case Adaptive:
		return "adaptive"
	default:
		return "unknown"
	}
}

// Source identifies a playable asset. It is immutable for one playback session.
type Source struct {
	URL  string
	Kind SourceKind
}

// NewSource builds a Source, deriving its kind from the URL.
func NewSource(rawURL string) Source {
	return Source{URL: rawURL, Kind: DetectKind(rawURL)}
}

// DetectKind reports Adaptive for URLs that reference an HLS manifest.
func DetectKind(rawURL string) SourceKind {
	if strings.Contains(strings.ToLower(rawURL), ".m3u8") {
		return Adaptive
	}
	return Progressive
}

// progressiveExts lists file extensions that play directly without page resolution.
var progressiveExts = []string{".mp4", ".m4v", ".webm", ".mkv", ".mov", ".avi", ".ogv", ".ts"}

// IsDirectMedia reports whether the URL already points at something the
// media element can play, as opposed to an embed page that needs resolving.
func IsDirectMedia(rawURL string) bool {
	if DetectKind(rawURL) == Adaptive {
		return true
	}
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	path = strings.ToLower(path)
	for _, ext := range progressiveExts {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Movie is a catalog record feeding the player.
type Movie struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	EmbedURL string `json:"embed_url"`
}

// Stream contains the resolved playable URL.
type Stream struct {
	URL       string     // m3u8 or direct video URL
	Subtitles []Subtitle // Subtitle tracks found next to the video
}

// Subtitle represents a subtitle track.
type Subtitle struct {
	Language string // e.g., "en"
	Label    string // Display label, e.g., "English - SDH"
	URL      string // URL to the subtitle file (usually VTT)
}

// HistoryEntry is the persisted resume position of one movie.
type HistoryEntry struct {
	MovieID   string  // Catalog ID, or the URL for ad-hoc playback
	Title     string  // Display title
	SourceURL string  // Embed URL the movie was played from
	Percent   float64 // Last reported progress, 0-100
	UpdatedAt int64   // Unix milliseconds
}
