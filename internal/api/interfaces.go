package api

import (
	"context"

	"github.com/Adda-Baaj/link-meta/internal/domain"
)

// Extractor summarizes a URL's metadata.
type Extractor interface {
	Extract(ctx context.Context, url string) (domain.ExtractionResult, error)
}

// Notifier receives successful extractions for asynchronous publishing.
type Notifier interface {
	Notify(url string, result domain.ExtractionResult) bool
}
