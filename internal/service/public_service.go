package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/reconcile"
	"github.com/portfolio-content-api/internal/validation"
	"github.com/rs/zerolog"
)

// publicService serves the Wall of Art, Blog and Portfolio pages from the
// cache slots and accepts public artwork submissions
type publicService struct {
	projects  CollectionService[models.Project]
	artworks  CollectionService[models.Artwork]
	blogPosts CollectionService[models.BlogPost]
	queue     *submissionQueue
	log       zerolog.Logger
	now       func() time.Time
}

func newPublicService(c *Collections, queue *submissionQueue, log zerolog.Logger) *publicService {
	return &publicService{
		projects:  c.Projects,
		artworks:  c.Artworks,
		blogPosts: c.BlogPosts,
		queue:     queue,
		log:       log.With().Str("service", "public").Logger(),
		now:       time.Now,
	}
}

// Gallery returns the approved artworks
func (s *publicService) Gallery(ctx context.Context) ([]models.Artwork, error) {
	arts, err := s.artworks.Cached(ctx)
	if err != nil {
		return nil, wrapFailure("list gallery", err)
	}
	return reconcile.PartitionArtworks(arts).Approved, nil
}

// Blog returns every cached blog post
func (s *publicService) Blog(ctx context.Context) ([]models.BlogPost, error) {
	posts, err := s.blogPosts.Cached(ctx)
	if err != nil {
		return nil, wrapFailure("list blog", err)
	}
	return posts, nil
}

// BlogPost returns one cached post
func (s *publicService) BlogPost(ctx context.Context, id string) (*models.BlogPost, error) {
	posts, err := s.Blog(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, models.NewFailure(models.KindNotFound, "get blog post", fmt.Errorf("blog post %s not found", id))
}

// Portfolio returns cached projects in category. "" and "All" match every
// project; matching ignores case.
func (s *publicService) Portfolio(ctx context.Context, category string) ([]models.Project, error) {
	projects, err := s.projects.Cached(ctx)
	if err != nil {
		return nil, wrapFailure("list portfolio", err)
	}
	if category == "" || strings.EqualFold(category, "All") {
		return projects, nil
	}

	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Submit stores a public artwork as pending and records it in the
// pending submissions slot
func (s *publicService) Submit(ctx context.Context, user *models.User, art models.Artwork) (*models.Artwork, error) {
	const op = "submit artwork"

	if err := validation.Submission(art); err != nil {
		return nil, models.NewFailure(models.KindValidation, op, err)
	}
	art.ID = models.PlaceholderID(s.now())
	art.Status = models.StatusPending
	art.Revision = 0
	if art.Description == "" {
		art.Description = art.Title
	}

	created, err := s.artworks.Create(ctx, art)
	if err != nil {
		return nil, err
	}

	s.queue.Add(ctx, created)

	submitter := ""
	if user != nil {
		submitter = user.ID
	}
	s.log.Info().Str("id", created.ID).Str("user_id", submitter).Msg("Artwork submitted for review")
	return &created, nil
}
