// Package subtitle picks the subtitle track to attach to playback.
// Tracks are handed to mpv by URL, so nothing is written to disk.
package subtitle

import (
	"strings"

	"cinebox/internal/media"
)

// Filter returns subtitles matching the preferred language (case-insensitive).
// The language may match either the track's language code or its label.
func Filter(subtitles []media.Subtitle, language string) []media.Subtitle {
	if language == "" {
		return subtitles
	}

	lang := strings.ToLower(language)
	var matched []media.Subtitle

	for _, sub := range subtitles {
		code := strings.ToLower(sub.Language)
		if strings.Contains(code, lang) ||
			strings.Contains(strings.ToLower(sub.Label), lang) ||
			(code != "" && strings.HasPrefix(lang, code)) {
			matched = append(matched, sub)
		}
	}

	return matched
}

// BestMatch returns the best matching subtitle for the given language.
// Prefers a non-SDH track, then falls back to the first match.
func BestMatch(subtitles []media.Subtitle, language string) *media.Subtitle {
	filtered := Filter(subtitles, language)
	if len(filtered) == 0 {
		return nil
	}

	for _, sub := range filtered {
		label := strings.ToLower(sub.Label)
		if !strings.Contains(label, "sdh") && !strings.Contains(label, "cc") {
			return &sub
		}
	}

	return &filtered[0]
}
