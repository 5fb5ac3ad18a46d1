package reconcile

import (
	"context"
	"sort"
	"sync"

	"github.com/portfolio-content-api/internal/models"
)

// ContentStore is the repository a collection is read from and written to
type ContentStore[T models.Record] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, draft T) (T, error)
	Update(ctx context.Context, id string, draft T) (T, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore is a ContentStore over a map. It assigns ids with NextID and
// mirrors the gateway's contract: create replaces any placeholder id, delete
// of a missing id succeeds.
type MemoryStore[T models.Record] struct {
	mu      sync.RWMutex
	records map[string]T
	order   []string
	setID   func(T, string) T
	NextID  func() string
}

// NewMemoryStore creates an empty store. setID writes an id into a record.
func NewMemoryStore[T models.Record](setID func(T, string) T, nextID func() string) *MemoryStore[T] {
	return &MemoryStore[T]{
		records: make(map[string]T),
		setID:   setID,
		NextID:  nextID,
	}
}

func (s *MemoryStore[T]) List(ctx context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out, nil
}

func (s *MemoryStore[T]) Get(ctx context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		var zero T
		return zero, models.NewFailure(models.KindNotFound, "get", nil)
	}
	return rec, nil
}

func (s *MemoryStore[T]) Create(ctx context.Context, draft T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.setID(draft, s.NextID())
	s.records[rec.GetID()] = rec
	s.order = append(s.order, rec.GetID())
	return rec, nil
}

func (s *MemoryStore[T]) Update(ctx context.Context, id string, draft T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		var zero T
		return zero, models.NewFailure(models.KindNotFound, "update", nil)
	}
	rec := s.setID(draft, id)
	s.records[id] = rec
	return rec, nil
}

func (s *MemoryStore[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return nil
	}
	delete(s.records, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// IDs returns the stored ids in sorted order
func (s *MemoryStore[T]) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := append([]string(nil), s.order...)
	sort.Strings(ids)
	return ids
}
