package service

import (
	"context"
	"sync"
	"time"

	"github.com/portfolio-content-api/internal/metrics"
	"github.com/portfolio-content-api/internal/models"
	"github.com/rs/zerolog"
)

// syncService periodically refreshes every cache slot from the gateway so
// the public read paths never call the store
type syncService struct {
	targets  map[models.Collection]func(ctx context.Context) error
	interval time.Duration
	log      zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
	// bounds concurrent refreshes
	sem chan struct{}
}

func newSyncService(c *Collections, interval time.Duration, log zerolog.Logger) *syncService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	targets := map[models.Collection]func(ctx context.Context) error{
		models.CollectionProjects: func(ctx context.Context) error {
			_, err := c.Projects.Refresh(ctx)
			return err
		},
		models.CollectionArtworks: func(ctx context.Context) error {
			_, err := c.Artworks.Refresh(ctx)
			return err
		},
		models.CollectionBlogPosts: func(ctx context.Context) error {
			_, err := c.BlogPosts.Refresh(ctx)
			return err
		},
	}

	return &syncService{
		targets:  targets,
		interval: interval,
		log:      log.With().Str("service", "sync").Logger(),
		sem:      make(chan struct{}, 2),
	}
}

// StartProcessor refreshes every slot once, then on each tick until ctx
// is cancelled or StopProcessor is called. It blocks.
func (s *syncService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Info().Dur("interval", s.interval).Msg("Cache sync started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(s.ctx)
	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("Cache sync stopping")
			return
		case <-ticker.C:
			s.RunOnce(s.ctx)
		}
	}
}

// StopProcessor cancels the loop and waits for in-flight refreshes
func (s *syncService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Cache sync stopped")
}

// RunOnce refreshes every collection and returns the ones that failed
func (s *syncService) RunOnce(ctx context.Context) []models.Collection {
	var (
		mu     sync.Mutex
		failed []models.Collection
		batch  sync.WaitGroup
	)

	for _, c := range models.Collections {
		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			batch.Wait()
			return sortCollections(append(failed, remaining(c)...))
		}

		s.wg.Add(1)
		batch.Add(1)
		go func(c models.Collection) {
			defer s.wg.Done()
			defer batch.Done()
			defer func() { <-s.sem }()

			defer func() {
				if r := recover(); r != nil {
					s.log.Error().Interface("panic", r).Str("collection", string(c)).Msg("Cache refresh panicked - recovered")
					mu.Lock()
					failed = append(failed, c)
					mu.Unlock()
				}
			}()

			err := s.targets[c](ctx)
			metrics.SyncRun(string(c), err)
			if err != nil {
				s.log.Warn().Err(err).Str("collection", string(c)).Msg("Cache refresh failed")
				mu.Lock()
				failed = append(failed, c)
				mu.Unlock()
				return
			}
			s.log.Debug().Str("collection", string(c)).Msg("Cache refreshed")
		}(c)
	}

	batch.Wait()
	return sortCollections(failed)
}

// remaining lists c and every collection after it
func remaining(c models.Collection) []models.Collection {
	for i, x := range models.Collections {
		if x == c {
			return models.Collections[i:]
		}
	}
	return nil
}
