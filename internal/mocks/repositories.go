package mocks

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/repository"
)

// MockAssetStore is an in-memory asset store keyed by public id
type MockAssetStore struct {
	mu         sync.Mutex
	Assets     map[string]*models.Asset
	nextID     int
	Calls      int
	ListErr    error
	GetErr     error
	UpdateErr  error
	DestroyErr error
	UploadErr  error
	Uploaded   []string
}

// Verify interface compliance
var _ repository.AssetStore = (*MockAssetStore)(nil)

func NewMockAssetStore() *MockAssetStore {
	return &MockAssetStore{Assets: make(map[string]*models.Asset)}
}

// Seed adds an uploaded image without metadata and returns its asset id
func (m *MockAssetStore) Seed(publicID string) *models.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seedLocked(publicID)
}

func (m *MockAssetStore) seedLocked(publicID string) *models.Asset {
	m.nextID++
	a := &models.Asset{
		AssetID:   fmt.Sprintf("asset-%d", m.nextID),
		PublicID:  publicID,
		SecureURL: "https://res.cloudinary.com/test/image/upload/v1/" + publicID + ".png",
	}
	m.Assets[publicID] = a
	return a
}

func copyAsset(a *models.Asset) *models.Asset {
	out := *a
	if a.Metadata != nil {
		out.Metadata = make(map[string]string, len(a.Metadata))
		for k, v := range a.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

func notFound(op, what string) error {
	return models.NewFailure(models.KindNotFound, op, fmt.Errorf("resource %s not found", what))
}

func (m *MockAssetStore) ListByPrefix(ctx context.Context, prefix string, max int) ([]models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	keys := make([]string, 0, len(m.Assets))
	for k := range m.Assets {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]models.Asset, 0, len(keys))
	for _, k := range keys {
		if len(out) == max {
			break
		}
		out = append(out, *copyAsset(m.Assets[k]))
	}
	return out, nil
}

func (m *MockAssetStore) GetByAssetID(ctx context.Context, assetID string) (*models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, a := range m.Assets {
		if a.AssetID == assetID {
			return copyAsset(a), nil
		}
	}
	return nil, notFound("get resource", assetID)
}

func (m *MockAssetStore) GetByPublicID(ctx context.Context, publicID string) (*models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	a, ok := m.Assets[publicID]
	if !ok {
		return nil, notFound("get resource", publicID)
	}
	return copyAsset(a), nil
}

func (m *MockAssetStore) UpdateContext(ctx context.Context, publicID string, meta map[string]string) (*models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	a, ok := m.Assets[publicID]
	if !ok {
		return nil, notFound("explicit", publicID)
	}
	a.Metadata = make(map[string]string, len(meta))
	for k, v := range meta {
		a.Metadata[k] = v
	}
	return copyAsset(a), nil
}

func (m *MockAssetStore) Destroy(ctx context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.DestroyErr != nil {
		return m.DestroyErr
	}
	if _, ok := m.Assets[publicID]; !ok {
		return notFound("destroy", publicID)
	}
	delete(m.Assets, publicID)
	return nil
}

func (m *MockAssetStore) Upload(ctx context.Context, file io.Reader, filename, folder string) (*models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.UploadErr != nil {
		return nil, m.UploadErr
	}
	if _, err := io.Copy(io.Discard, file); err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filename, path.Ext(filename))
	a := m.seedLocked(folder + "/" + name)
	m.Uploaded = append(m.Uploaded, a.PublicID)
	return copyAsset(a), nil
}

// MockDraftCache wraps the in-memory cache with error injection
type MockDraftCache struct {
	repository.DraftCache
	GetErr error
	PutErr error
}

// Verify interface compliance
var _ repository.DraftCache = (*MockDraftCache)(nil)

func NewMockDraftCache() *MockDraftCache {
	return &MockDraftCache{DraftCache: repository.NewMemoryCache()}
}

func (m *MockDraftCache) Get(ctx context.Context, slot string) ([]byte, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.DraftCache.Get(ctx, slot)
}

func (m *MockDraftCache) Put(ctx context.Context, slot string, payload []byte) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	return m.DraftCache.Put(ctx, slot, payload)
}
