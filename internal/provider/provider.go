// Package provider defines the movie catalog interface and its implementations.
package provider

import (
	"context"
	"fmt"
	"strings"

	"cinebox/internal/media"
)

// Provider is the interface that movie catalogs must implement.
type Provider interface {
	// Movies returns every playable movie in the catalog, in catalog order.
	Movies(ctx context.Context) ([]media.Movie, error)
}

// Find returns the movie with the given slug.
func Find(movies []media.Movie, slug string) (media.Movie, error) {
	for _, m := range movies {
		if m.Slug == slug {
			return m, nil
		}
	}
	return media.Movie{}, fmt.Errorf("no movie with slug %q in catalog", slug)
}

// Lookup loads the catalog and finds slug in it.
func Lookup(ctx context.Context, p Provider, slug string) (media.Movie, error) {
	movies, err := p.Movies(ctx)
	if err != nil {
		return media.Movie{}, err
	}
	return Find(movies, slug)
}

// FormatDisplayTitle formats a movie for display in selection menus.
func FormatDisplayTitle(m media.Movie) string {
	host := m.EmbedURL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if host == "" {
		return m.Title
	}
	return fmt.Sprintf("%s (%s)", m.Title, host)
}
