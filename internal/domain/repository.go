package domain

import (
	"context"
	"time"
)

// ListingSource defines the upstream capability consumed by the resolver and
// fetcher. Implementations may be HTTP, mocks, or cached fixtures as long as
// the two contracts hold.
type ListingSource interface {
	SearchByAddress(ctx context.Context, text string) ([]SearchCandidate, error)
	GetListingByID(ctx context.Context, zpid string) (*RawListing, error)
}

// CacheRepository defines the interface for session caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Exporter renders an outcome sequence to a concrete output format
type Exporter interface {
	Export(outcomes []Outcome, path string) error
}
