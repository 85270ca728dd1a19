// Package extract resolves embed URLs into playable stream URLs.
// Direct media URLs pass through; embed pages are fetched and scraped.
package extract

import (
	"context"

	"cinebox/internal/media"
)

// Extractor resolves embed URLs into playable streams.
type Extractor interface {
	Extract(ctx context.Context, embedURL string) (*media.Stream, error)
}
