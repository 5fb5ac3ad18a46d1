package service

import (
	"context"
	"sync"

	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/reconcile"
	"github.com/portfolio-content-api/internal/repository"
	"github.com/rs/zerolog"
)

// submissionQueue is the pending_artworks slot. Every artwork write, from
// whichever route, passes through it so the slot never outlives the review.
type submissionQueue struct {
	cache repository.DraftCache
	log   zerolog.Logger
	mu    sync.Mutex
}

func newSubmissionQueue(cache repository.DraftCache, log zerolog.Logger) *submissionQueue {
	return &submissionQueue{
		cache: cache,
		log:   log.With().Str("component", "submissions").Logger(),
	}
}

// List returns the queued submissions
func (q *submissionQueue) List(ctx context.Context) ([]models.Artwork, error) {
	return repository.ReadSlot[models.Artwork](ctx, q.cache, models.SlotPendingArtworks, q.log)
}

// Add queues a new submission
func (q *submissionQueue) Add(ctx context.Context, art models.Artwork) {
	q.edit(ctx, func(list []models.Artwork) []models.Artwork {
		return reconcile.Append(list, art)
	})
}

// Sync refreshes a queued entry after an update. Anything no longer
// pending leaves the queue.
func (q *submissionQueue) Sync(ctx context.Context, art models.Artwork) {
	q.edit(ctx, func(list []models.Artwork) []models.Artwork {
		if art.Status != models.StatusPending {
			return reconcile.Remove(list, art.ID)
		}
		return reconcile.Replace(list, art)
	})
}

// Drop removes id from the queue
func (q *submissionQueue) Drop(ctx context.Context, id string) {
	q.edit(ctx, func(list []models.Artwork) []models.Artwork {
		return reconcile.Remove(list, id)
	})
}

// edit is best effort: the store already holds the authoritative status
func (q *submissionQueue) edit(ctx context.Context, fn func([]models.Artwork) []models.Artwork) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending, err := q.List(ctx)
	if err != nil {
		q.log.Warn().Err(err).Msg("Failed to read pending submissions")
		return
	}
	if err := repository.WriteSlot(ctx, q.cache, models.SlotPendingArtworks, fn(pending)); err != nil {
		q.log.Warn().Err(err).Msg("Failed to update pending submissions")
	}
}

// artworkCollection is the artworks CollectionService with its writes
// mirrored into the submission queue
type artworkCollection struct {
	CollectionService[models.Artwork]
	queue *submissionQueue
}

var _ CollectionService[models.Artwork] = (*artworkCollection)(nil)

func (c *artworkCollection) Update(ctx context.Context, id string, draft models.Artwork) (models.Artwork, error) {
	rec, err := c.CollectionService.Update(ctx, id, draft)
	if err != nil {
		return rec, err
	}
	c.queue.Sync(ctx, rec)
	return rec, nil
}

func (c *artworkCollection) Delete(ctx context.Context, id string) error {
	if err := c.CollectionService.Delete(ctx, id); err != nil {
		return err
	}
	c.queue.Drop(ctx, id)
	return nil
}
