package provider

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"cinebox/internal/httputil"
	"cinebox/internal/media"
)

// Sheet is a catalog backed by a two-column CSV export (name, url), read
// from a local file or an HTTPS export URL.
type Sheet struct {
	client *http.Client
	source string
}

// NewSheet creates a sheet catalog. source is either a file path or an
// HTTPS URL; client is only used for the latter.
func NewSheet(client *http.Client, source string) *Sheet {
	return &Sheet{client: client, source: source}
}

// Movies reads and parses the sheet.
func (s *Sheet) Movies(ctx context.Context) ([]media.Movie, error) {
	var data []byte
	var err error
	if httputil.IsURL(s.source) {
		data, err = httputil.GetBody(ctx, s.client, s.source)
	} else {
		data, err = os.ReadFile(s.source)
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog sheet: %w", err)
	}

	movies, err := parseSheet(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, errors.New("catalog sheet is empty or has no valid links")
	}
	return movies, nil
}

// parseSheet turns CSV rows into movies. The row index used in ids and
// slugs is the zero-based line number, header included, so slugs stay
// stable when blank lines are present.
func parseSheet(r io.Reader) ([]media.Movie, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var movies []media.Movie
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing catalog sheet: %w", err)
		}
		if len(record) < 2 {
			continue
		}

		name := strings.TrimSpace(strings.ReplaceAll(record[0], `"`, ""))
		link := strings.TrimSpace(strings.ReplaceAll(record[1], `"`, ""))
		if isHeaderName(name) || !strings.Contains(link, "http") {
			continue
		}

		line, _ := cr.FieldPos(0)
		index := line - 1
		movies = append(movies, media.Movie{
			ID:       fmt.Sprintf("sheet-%d", index),
			Title:    name,
			Slug:     Slug(name, index),
			EmbedURL: link,
		})
	}
	return movies, nil
}

func isHeaderName(name string) bool {
	if name == "" {
		return true
	}
	lower := strings.ToLower(name)
	return lower == "name" || lower == "tên phim"
}

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]`)
	dashRuns     = regexp.MustCompile(`-+`)
)

// Slug builds the catalog slug for a sheet row: the name lowercased with
// diacritics stripped and non-alphanumerics collapsed to single hyphens,
// suffixed with the row index.
func Slug(name string, index int) string {
	clean := strings.TrimSpace(strings.ToLower(name))

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	if out, _, err := transform.String(stripMarks, clean); err == nil {
		clean = out
	}

	clean = strings.NewReplacer("đ", "d", "Đ", "d").Replace(clean)
	clean = nonSlugChars.ReplaceAllString(clean, "-")
	clean = dashRuns.ReplaceAllString(clean, "-")
	if clean == "" {
		clean = "phim"
	}
	return fmt.Sprintf("%s-s%d", clean, index)
}
