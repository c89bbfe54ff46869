package domain

import (
	"context"
	"encoding/json"
)

// StructuredRequest asks a text model for a single JSON document shaped by
// Schema.
type StructuredRequest struct {
	Name         string
	Instructions string
	Prompt       string
	Schema       json.Marshaler
	Strict       bool
}

type TextModel interface {
	GenerateJSON(ctx context.Context, req StructuredRequest) ([]byte, error)
}

// ImageModel returns raw (already decoded) image bytes.
type ImageModel interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

type Enricher interface {
	Enrich(ctx context.Context, rawContext string) string
}

type ImageCache interface {
	Load(dir, key string) ([]byte, bool, error)
	Store(dir, key string, data []byte) error
}

type CatalogStore interface {
	Upsert(ctx context.Context, entity EntityType, records []any) error
	UploadMedia(ctx context.Context, mediaID, fileName, contentType string, data []byte) error
}

// CategoryFinder is implemented by stores that can reuse an existing
// category instead of creating a duplicate.
type CategoryFinder interface {
	FindCategory(ctx context.Context, name string) (id string, found bool, err error)
}
