package repository

import (
	"context"
	"io"

	"github.com/portfolio-content-api/internal/models"
)

// AssetStore defines the operations the gateway needs from the external asset store
type AssetStore interface {
	ListByPrefix(ctx context.Context, prefix string, max int) ([]models.Asset, error)
	GetByAssetID(ctx context.Context, assetID string) (*models.Asset, error)
	GetByPublicID(ctx context.Context, publicID string) (*models.Asset, error)
	UpdateContext(ctx context.Context, publicID string, meta map[string]string) (*models.Asset, error)
	Destroy(ctx context.Context, publicID string) error
	Upload(ctx context.Context, file io.Reader, filename, folder string) (*models.Asset, error)
}

// DraftCache is a key-value store holding one JSON payload per slot.
// Get returns nil without error for an empty slot.
type DraftCache interface {
	Get(ctx context.Context, slot string) ([]byte, error)
	Put(ctx context.Context, slot string, payload []byte) error
	Delete(ctx context.Context, slot string) error
	Slots(ctx context.Context) ([]string, error)
}

// Repositories holds the storage collaborators
type Repositories struct {
	Store AssetStore
	Cache DraftCache
}

// New bundles an asset store and a draft cache
func New(store AssetStore, cache DraftCache) *Repositories {
	return &Repositories{
		Store: store,
		Cache: cache,
	}
}
