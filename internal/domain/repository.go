package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// VisionClient defines the interface for the external visual-analysis provider
type VisionClient interface {
	Annotate(ctx context.Context, image []byte) (*VisionAnnotateResponse, error)
}

// CatalogRepository gives read access to the storefront product catalog
type CatalogRepository interface {
	ListAvailableProducts(ctx context.Context) ([]Product, error)
}

// ImageStore reads previously uploaded images by path
type ImageStore interface {
	ReadBytes(ctx context.Context, path string) ([]byte, error)
}
