package service

import (
	"context"
	"sync"

	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/reconcile"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// dashboardService builds the admin view model and runs artwork review
type dashboardService struct {
	projects  CollectionService[models.Project]
	artworks  CollectionService[models.Artwork]
	blogPosts CollectionService[models.BlogPost]
	queue     *submissionQueue
	log       zerolog.Logger
}

func newDashboardService(c *Collections, queue *submissionQueue, log zerolog.Logger) *dashboardService {
	return &dashboardService{
		projects:  c.Projects,
		artworks:  c.Artworks,
		blogPosts: c.BlogPosts,
		queue:     queue,
		log:       log.With().Str("service", "dashboard").Logger(),
	}
}

// View fetches the three collections concurrently. A collection whose
// fetch fails is served from its cache slot and listed in Stale.
func (s *dashboardService) View(ctx context.Context) (*models.DashboardView, error) {
	var (
		mu       sync.Mutex
		stale    []models.Collection
		projects reconcile.Result[models.Project]
		artworks reconcile.Result[models.Artwork]
		posts    reconcile.Result[models.BlogPost]
	)
	markStale := func(c models.Collection, err error) {
		if err == nil {
			return
		}
		s.log.Warn().Err(err).Str("collection", string(c)).Msg("Serving cached collection")
		mu.Lock()
		stale = append(stale, c)
		mu.Unlock()
	}

	// fetch failures fall back to the cache, so only cancellation aborts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = s.projects.Refresh(gctx)
		markStale(models.CollectionProjects, err)
		return ctx.Err()
	})
	g.Go(func() error {
		var err error
		artworks, err = s.artworks.Refresh(gctx)
		markStale(models.CollectionArtworks, err)
		return ctx.Err()
	})
	g.Go(func() error {
		var err error
		posts, err = s.blogPosts.Refresh(gctx)
		markStale(models.CollectionBlogPosts, err)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	submissions, err := s.queue.List(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Pending submissions unavailable")
	}

	// the artwork list carries the current status; the queue only fills in
	// submissions it does not hold yet
	part := reconcile.PartitionArtworks(artworks.Display)
	for _, a := range submissions {
		if a.Status != models.StatusPending || models.IsPlaceholderID(a.ID) {
			continue
		}
		if !reconcile.Contains(artworks.Display, a.ID) {
			part = part.Put(a)
		}
	}

	return &models.DashboardView{
		Projects:        projects.Display,
		Artworks:        part.Approved,
		PendingArtworks: part.Pending,
		BlogPosts:       posts.Display,
		Stale:           sortCollections(stale),
	}, nil
}

// Approve marks a pending artwork approved, keeping its id
func (s *dashboardService) Approve(ctx context.Context, id string) (*models.Artwork, error) {
	art, err := s.artworks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	art.Status = models.StatusApproved

	updated, err := s.artworks.Update(ctx, id, art)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Reject deletes a pending artwork
func (s *dashboardService) Reject(ctx context.Context, id string) error {
	return s.artworks.Delete(ctx, id)
}

func sortCollections(in []models.Collection) []models.Collection {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.Collection, 0, len(in))
	for _, c := range models.Collections {
		for _, s := range in {
			if s == c {
				out = append(out, c)
			}
		}
	}
	return out
}
