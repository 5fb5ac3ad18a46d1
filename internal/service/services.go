package service

import (
	"context"

	"github.com/portfolio-content-api/internal/auth"
	"github.com/portfolio-content-api/internal/config"
	"github.com/portfolio-content-api/internal/mailer"
	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/reconcile"
	"github.com/portfolio-content-api/internal/repository"
	"github.com/portfolio-content-api/pkg/jwt"
	"github.com/rs/zerolog"
)

// CollectionService is a collection's gateway behind its cache slot
type CollectionService[T models.Record] interface {
	reconcile.ContentStore[T]
	Refresh(ctx context.Context) (reconcile.Result[T], error)
	Cached(ctx context.Context) ([]T, error)
}

// Collections holds one CollectionService per collection
type Collections struct {
	Projects  CollectionService[models.Project]
	Artworks  CollectionService[models.Artwork]
	BlogPosts CollectionService[models.BlogPost]
}

// UploadService defines the upload adapter
type UploadService interface {
	Validate(file models.UploadFile) error
	Upload(ctx context.Context, collection models.Collection, file models.UploadFile) (*models.UploadResult, error)
}

// SessionService defines the session gate
type SessionService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.Session, error)
	Logout(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) *models.Session
}

// ContactService defines contact form delivery
type ContactService interface {
	Submit(ctx context.Context, form models.ContactForm) error
}

// DashboardService defines the admin view model and artwork review
type DashboardService interface {
	View(ctx context.Context) (*models.DashboardView, error)
	Approve(ctx context.Context, id string) (*models.Artwork, error)
	Reject(ctx context.Context, id string) error
}

// PublicService defines the cache-backed public read paths
type PublicService interface {
	Gallery(ctx context.Context) ([]models.Artwork, error)
	Blog(ctx context.Context) ([]models.BlogPost, error)
	BlogPost(ctx context.Context, id string) (*models.BlogPost, error)
	Portfolio(ctx context.Context, category string) ([]models.Project, error)
	Submit(ctx context.Context, user *models.User, art models.Artwork) (*models.Artwork, error)
}

// SyncService defines the background cache refresher
type SyncService interface {
	StartProcessor(ctx context.Context)
	StopProcessor()
	RunOnce(ctx context.Context) []models.Collection
}

// Services holds all service interfaces
type Services struct {
	Collections *Collections
	Upload      UploadService
	Session     SessionService
	Contact     ContactService
	Dashboard   DashboardService
	Public      PublicService
	Sync        SyncService
}

// NewCollections wraps a gateway per collection with its cache slot
func NewCollections(repos *repository.Repositories, pageSize int, log zerolog.Logger) *Collections {
	return newCollections(repos, newSubmissionQueue(repos.Cache, log), pageSize, log)
}

func newCollections(repos *repository.Repositories, queue *submissionQueue, pageSize int, log zerolog.Logger) *Collections {
	artworks := reconcile.NewCachedStore[models.Artwork](
		newGateway(repos.Store, artworkCodec, pageSize, log),
		repos.Cache, models.SlotArtGallery, reconcile.NormalizeArtwork, log)

	return &Collections{
		Projects: reconcile.NewCachedStore[models.Project](
			newGateway(repos.Store, projectCodec, pageSize, log),
			repos.Cache, models.SlotProjects, reconcile.NormalizeProject, log),
		Artworks: &artworkCollection{CollectionService: artworks, queue: queue},
		BlogPosts: reconcile.NewCachedStore[models.BlogPost](
			newGateway(repos.Store, blogPostCodec, pageSize, log),
			repos.Cache, models.SlotBlogPosts, reconcile.NormalizeBlogPost, log),
	}
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, provider auth.IdentityProvider, m mailer.Mailer, cfg *config.Config, log zerolog.Logger) *Services {
	queue := newSubmissionQueue(repos.Cache, log)
	collections := newCollections(repos, queue, cfg.Cloudinary.PageSize, log)
	tokens := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	return &Services{
		Collections: collections,
		Upload:      newUploadService(repos.Store, cfg.Upload, log),
		Session:     newSessionService(provider, auth.NewPolicy(cfg.Auth.AdminEmails), tokens, log),
		Contact:     newContactService(m, log),
		Dashboard:   newDashboardService(collections, queue, log),
		Public:      newPublicService(collections, queue, log),
		Sync:        newSyncService(collections, cfg.Sync.Interval, log),
	}
}
