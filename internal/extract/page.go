package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cinebox/internal/httputil"
	"cinebox/internal/media"
)

// maxPageSize limits how much of an embed page is parsed.
const maxPageSize = 5 * 1024 * 1024

// inlineMediaPattern finds manifest or file URLs embedded in player scripts.
var inlineMediaPattern = regexp.MustCompile(`(?:https?:)?//[^\s"'<>\\]+?\.(?:m3u8|mp4|webm)(?:\?[^\s"'<>\\]*)?`)

// Page extracts streams from HTML embed pages.
type Page struct {
	client *http.Client
}

var _ Extractor = (*Page)(nil)

// New returns an extractor that uses client for page fetches.
func New(client *http.Client) *Page {
	return &Page{client: client}
}

// Extract returns the stream behind embedURL. URLs that already point at
// media are returned as-is without a network round trip.
func (p *Page) Extract(ctx context.Context, embedURL string) (*media.Stream, error) {
	if embedURL == "" {
		return nil, fmt.Errorf("empty embed URL")
	}
	if media.IsDirectMedia(embedURL) {
		return &media.Stream{URL: embedURL}, nil
	}

	resp, err := httputil.Get(ctx, p.client, embedURL)
	if err != nil {
		return nil, fmt.Errorf("fetching embed page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for embed page", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("parsing embed page: %w", err)
	}

	return parsePage(doc, embedURL)
}

// parsePage finds the playable source and subtitle tracks in an embed page.
// DOM sources win over URLs scraped out of scripts.
func parsePage(doc *goquery.Document, base string) (*media.Stream, error) {
	src := findSource(doc)
	if src == "" {
		return nil, fmt.Errorf("no playable source found on embed page")
	}

	stream := &media.Stream{URL: httputil.Resolve(base, src)}
	if err := httputil.ValidateMediaURL(stream.URL); err != nil {
		return nil, fmt.Errorf("embed page source: %w", err)
	}

	doc.Find("track[src]").Each(func(_ int, s *goquery.Selection) {
		kind := strings.ToLower(s.AttrOr("kind", "subtitles"))
		if kind != "subtitles" && kind != "captions" {
			return
		}
		stream.Subtitles = append(stream.Subtitles, media.Subtitle{
			Language: strings.TrimSpace(s.AttrOr("srclang", "")),
			Label:    strings.TrimSpace(s.AttrOr("label", "")),
			URL:      httputil.Resolve(base, s.AttrOr("src", "")),
		})
	})

	return stream, nil
}

func findSource(doc *goquery.Document) string {
	if src := attr(doc.Find("video[src]"), "src"); src != "" {
		return src
	}

	// Prefer a manifest when a <video> lists several <source> children.
	sources := doc.Find("video source[src], source[src]")
	var first string
	sources.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if first == "" {
			first = src
		}
		if strings.Contains(strings.ToLower(s.AttrOr("type", "")), "mpegurl") ||
			media.DetectKind(src) == media.Adaptive {
			first = src
			return false
		}
		return true
	})
	if first != "" {
		return first
	}

	for _, prop := range []string{"og:video:secure_url", "og:video:url", "og:video"} {
		if src := attr(doc.Find(fmt.Sprintf(`meta[property=%q]`, prop)), "content"); src != "" {
			return src
		}
	}

	var found string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ReplaceAll(s.Text(), `\/`, "/")
		if m := inlineMediaPattern.FindString(text); m != "" {
			found = m
			return false
		}
		return true
	})
	return found
}

func attr(sel *goquery.Selection, name string) string {
	return strings.TrimSpace(sel.First().AttrOr(name, ""))
}
