package reconcile

import (
	"context"
	"sync"

	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/repository"
	"github.com/rs/zerolog"
)

// CachedStore puts a draft cache slot in front of an authoritative store.
// Reads fall back to the slot when the store is unavailable; every
// successful mutation is merged into the slot without a re-fetch.
type CachedStore[T models.Record] struct {
	store     ContentStore[T]
	cache     repository.DraftCache
	slot      string
	normalize Normalizer[T]
	log       zerolog.Logger

	// serializes read-modify-write of the slot within this process
	mu sync.Mutex
}

// NewCachedStore wraps store with the given cache slot
func NewCachedStore[T models.Record](store ContentStore[T], cache repository.DraftCache, slot string, normalize Normalizer[T], log zerolog.Logger) *CachedStore[T] {
	return &CachedStore[T]{
		store:     store,
		cache:     cache,
		slot:      slot,
		normalize: normalize,
		log:       log.With().Str("component", "cached_store").Str("slot", slot).Logger(),
	}
}

// Refresh fetches from the store, reconciles against the slot and rewrites
// the slot when the fetch succeeded. The returned error is the store error,
// if any; Result is still usable in that case and marked stale.
func (c *CachedStore[T]) Refresh(ctx context.Context) (Result[T], error) {
	server, fetchErr := c.store.List(ctx)
	if fetchErr == nil && server == nil {
		server = []T{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	local, err := repository.ReadSlot[T](ctx, c.cache, c.slot, c.log)
	if err != nil {
		c.log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		local = []T{}
	}

	res := Reconcile(server, local, c.normalize)
	if fetchErr != nil {
		c.log.Warn().Err(fetchErr).Msg("Store fetch failed, serving cached copy")
		return res, fetchErr
	}

	if err := repository.WriteSlot(ctx, c.cache, c.slot, res.Display); err != nil {
		c.log.Warn().Err(err).Msg("Failed to write reconciled collection to cache")
	}
	return res, nil
}

// Cached returns the slot contents without contacting the store
func (c *CachedStore[T]) Cached(ctx context.Context) ([]T, error) {
	local, err := repository.ReadSlot[T](ctx, c.cache, c.slot, c.log)
	if err != nil {
		return nil, err
	}
	return Reconcile(nil, local, c.normalize).Display, nil
}

func (c *CachedStore[T]) List(ctx context.Context) ([]T, error) {
	res, err := c.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return res.Display, nil
}

func (c *CachedStore[T]) Get(ctx context.Context, id string) (T, error) {
	return c.store.Get(ctx, id)
}

func (c *CachedStore[T]) Create(ctx context.Context, draft T) (T, error) {
	rec, err := c.store.Create(ctx, draft)
	if err != nil {
		return rec, err
	}
	c.merge(ctx, func(list []T) []T {
		return Append(Remove(list, draft.GetID()), rec)
	})
	return rec, nil
}

func (c *CachedStore[T]) Update(ctx context.Context, id string, draft T) (T, error) {
	rec, err := c.store.Update(ctx, id, draft)
	if err != nil {
		return rec, err
	}
	c.merge(ctx, func(list []T) []T { return Replace(list, rec) })
	return rec, nil
}

func (c *CachedStore[T]) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}
	c.merge(ctx, func(list []T) []T { return Remove(list, id) })
	return nil
}

// merge applies fn to the slot. Cache failures are logged, never returned:
// the store already holds the authoritative copy.
func (c *CachedStore[T]) merge(ctx context.Context, fn func([]T) []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	local, err := repository.ReadSlot[T](ctx, c.cache, c.slot, c.log)
	if err != nil {
		c.log.Warn().Err(err).Msg("Skipping cache merge")
		return
	}
	if err := repository.WriteSlot(ctx, c.cache, c.slot, fn(local)); err != nil {
		c.log.Warn().Err(err).Msg("Failed to merge mutation into cache")
	}
}
