package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/portfolio-content-api/internal/auth"
	"github.com/portfolio-content-api/internal/mailer"
	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/reconcile"
	"github.com/portfolio-content-api/internal/service"
)

// MockCollection is a CollectionService over a reconcile.MemoryStore
type MockCollection[T models.Record] struct {
	*reconcile.MemoryStore[T]
	RefreshErr error
	Writes     int
}

// Verify interface compliance
var _ service.CollectionService[models.Artwork] = (*MockCollection[models.Artwork])(nil)

// NewMockCollection creates an empty collection whose ids are prefix-1, prefix-2, ...
func NewMockCollection[T models.Record](prefix string, setID func(T, string) T) *MockCollection[T] {
	n := 0
	var mu sync.Mutex
	return &MockCollection[T]{
		MemoryStore: reconcile.NewMemoryStore(setID, func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("%s-%d", prefix, n)
		}),
	}
}

func (m *MockCollection[T]) Create(ctx context.Context, draft T) (T, error) {
	m.Writes++
	return m.MemoryStore.Create(ctx, draft)
}

func (m *MockCollection[T]) Update(ctx context.Context, id string, draft T) (T, error) {
	m.Writes++
	return m.MemoryStore.Update(ctx, id, draft)
}

func (m *MockCollection[T]) Refresh(ctx context.Context) (reconcile.Result[T], error) {
	list, _ := m.MemoryStore.List(ctx)
	if m.RefreshErr != nil {
		return reconcile.Result[T]{Display: list, Stale: true}, m.RefreshErr
	}
	return reconcile.Result[T]{Display: list}, nil
}

func (m *MockCollection[T]) Cached(ctx context.Context) ([]T, error) {
	return m.MemoryStore.List(ctx)
}

// NewMockCollections creates empty mock collections for every content type
func NewMockCollections() (*service.Collections, *MockCollection[models.Project], *MockCollection[models.Artwork], *MockCollection[models.BlogPost]) {
	projects := NewMockCollection("project", func(p models.Project, id string) models.Project { p.ID = id; return p })
	artworks := NewMockCollection("artwork", func(a models.Artwork, id string) models.Artwork { a.ID = id; return a })
	posts := NewMockCollection("post", func(b models.BlogPost, id string) models.BlogPost { b.ID = id; return b })
	return &service.Collections{Projects: projects, Artworks: artworks, BlogPosts: posts}, projects, artworks, posts
}

// MockUploadService is a mock implementation of UploadService
type MockUploadService struct {
	ValidateErr error
	UploadErr   error
	Uploads     []models.Collection
}

// Verify interface compliance
var _ service.UploadService = (*MockUploadService)(nil)

func NewMockUploadService() *MockUploadService {
	return &MockUploadService{}
}

func (m *MockUploadService) Validate(file models.UploadFile) error {
	return m.ValidateErr
}

func (m *MockUploadService) Upload(ctx context.Context, collection models.Collection, file models.UploadFile) (*models.UploadResult, error) {
	if m.ValidateErr != nil {
		return nil, m.ValidateErr
	}
	if m.UploadErr != nil {
		return nil, m.UploadErr
	}
	m.Uploads = append(m.Uploads, collection)
	return &models.UploadResult{URL: "https://cdn.test/" + collection.Folder() + "/" + file.Filename}, nil
}

// MockSessionService maps fixed tokens to sessions
type MockSessionService struct {
	Sessions  map[string]*models.Session
	LoginErr  error
	LoggedOut []string
}

// Verify interface compliance
var _ service.SessionService = (*MockSessionService)(nil)

func NewMockSessionService() *MockSessionService {
	return &MockSessionService{Sessions: make(map[string]*models.Session)}
}

// AddSession registers token for email with the given admin flag
func (m *MockSessionService) AddSession(token, email string, admin bool) {
	roles := []models.Role{models.RoleMember}
	if admin {
		roles = append(roles, models.RoleAdmin)
	}
	m.Sessions[token] = &models.Session{
		State:   models.SessionAuthenticated,
		User:    &models.User{ID: "user-" + email, Email: email},
		Roles:   roles,
		IsAdmin: admin,
	}
}

func (m *MockSessionService) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	if m.LoginErr != nil {
		return nil, m.LoginErr
	}
	token := "token-" + req.Email
	m.AddSession(token, req.Email, strings.EqualFold(req.Email, "ceo@vansiii.com"))
	s := *m.Sessions[token]
	s.Token = token
	return &s, nil
}

func (m *MockSessionService) Logout(ctx context.Context, token string) error {
	delete(m.Sessions, token)
	m.LoggedOut = append(m.LoggedOut, token)
	return nil
}

func (m *MockSessionService) CurrentSession(ctx context.Context, token string) *models.Session {
	if s, ok := m.Sessions[token]; ok {
		return s
	}
	return models.Anonymous()
}

// MockContactService records submitted forms
type MockContactService struct {
	SubmitErr error
	Forms     []models.ContactForm
}

// Verify interface compliance
var _ service.ContactService = (*MockContactService)(nil)

func (m *MockContactService) Submit(ctx context.Context, form models.ContactForm) error {
	if m.SubmitErr != nil {
		return m.SubmitErr
	}
	m.Forms = append(m.Forms, form)
	return nil
}

// MockDashboardService is a mock implementation of DashboardService
type MockDashboardService struct {
	ViewResult *models.DashboardView
	ViewErr    error
	Approved   []string
	Rejected   []string
	ReviewErr  error
}

// Verify interface compliance
var _ service.DashboardService = (*MockDashboardService)(nil)

func (m *MockDashboardService) View(ctx context.Context) (*models.DashboardView, error) {
	if m.ViewErr != nil {
		return nil, m.ViewErr
	}
	if m.ViewResult == nil {
		return &models.DashboardView{}, nil
	}
	return m.ViewResult, nil
}

func (m *MockDashboardService) Approve(ctx context.Context, id string) (*models.Artwork, error) {
	if m.ReviewErr != nil {
		return nil, m.ReviewErr
	}
	m.Approved = append(m.Approved, id)
	return &models.Artwork{ID: id, Status: models.StatusApproved}, nil
}

func (m *MockDashboardService) Reject(ctx context.Context, id string) error {
	if m.ReviewErr != nil {
		return m.ReviewErr
	}
	m.Rejected = append(m.Rejected, id)
	return nil
}

// MockPublicService is a mock implementation of PublicService
type MockPublicService struct {
	Artworks  []models.Artwork
	Posts     []models.BlogPost
	Projects  []models.Project
	Submitted []models.Artwork
}

// Verify interface compliance
var _ service.PublicService = (*MockPublicService)(nil)

func (m *MockPublicService) Gallery(ctx context.Context) ([]models.Artwork, error) {
	return reconcile.PartitionArtworks(m.Artworks).Approved, nil
}

func (m *MockPublicService) Blog(ctx context.Context) ([]models.BlogPost, error) {
	return m.Posts, nil
}

func (m *MockPublicService) BlogPost(ctx context.Context, id string) (*models.BlogPost, error) {
	for _, p := range m.Posts {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, models.NewFailure(models.KindNotFound, "get blog post", nil)
}

func (m *MockPublicService) Portfolio(ctx context.Context, category string) ([]models.Project, error) {
	if category == "" || category == "All" {
		return m.Projects, nil
	}
	var out []models.Project
	for _, p := range m.Projects {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockPublicService) Submit(ctx context.Context, user *models.User, art models.Artwork) (*models.Artwork, error) {
	art.ID = fmt.Sprintf("submission-%d", len(m.Submitted)+1)
	art.Status = models.StatusPending
	m.Submitted = append(m.Submitted, art)
	return &art, nil
}

// MockSyncService counts runs
type MockSyncService struct {
	Runs int
}

// Verify interface compliance
var _ service.SyncService = (*MockSyncService)(nil)

func (m *MockSyncService) StartProcessor(ctx context.Context) {}

func (m *MockSyncService) StopProcessor() {}

func (m *MockSyncService) RunOnce(ctx context.Context) []models.Collection {
	m.Runs++
	return nil
}

// MockIdentityProvider accepts a fixed set of credentials
type MockIdentityProvider struct {
	Passwords  map[string]string
	SignInErr  error
	SignedOut  []string
	SignOutErr error
}

// Verify interface compliance
var _ auth.IdentityProvider = (*MockIdentityProvider)(nil)

func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{Passwords: make(map[string]string)}
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (*auth.Identity, error) {
	if m.SignInErr != nil {
		return nil, m.SignInErr
	}
	if pw, ok := m.Passwords[email]; !ok || pw != password {
		return nil, models.NewFailure(models.KindAuth, "sign in", fmt.Errorf("Invalid login credentials"))
	}
	return &auth.Identity{
		User:        models.User{ID: "uid-" + email, Email: email},
		AccessToken: "provider-" + email,
	}, nil
}

func (m *MockIdentityProvider) SignOut(ctx context.Context, accessToken string) error {
	m.SignedOut = append(m.SignedOut, accessToken)
	return m.SignOutErr
}

// MockMailer records sent messages
type MockMailer struct {
	Sent    []mailer.Message
	SendErr error
}

// Verify interface compliance
var _ mailer.Mailer = (*MockMailer)(nil)

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, msg)
	return nil
}
