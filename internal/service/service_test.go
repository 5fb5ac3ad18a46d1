package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/portfolio-content-api/internal/config"
	"github.com/portfolio-content-api/internal/mocks"
	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/repository"
	"github.com/portfolio-content-api/internal/service"
	"github.com/rs/zerolog"
)

type fixture struct {
	store    *mocks.MockAssetStore
	cache    *mocks.MockDraftCache
	provider *mocks.MockIdentityProvider
	mailer   *mocks.MockMailer
	svc      *service.Services
}

func testConfig() *config.Config {
	return &config.Config{
		Cloudinary: config.CloudinaryConfig{PageSize: 100},
		Auth: config.AuthConfig{
			JWTSecret:   "test-secret",
			TokenTTL:    time.Hour,
			AdminEmails: []string{"ceo@vansiii.com"},
		},
		Upload: config.UploadConfig{
			MaxBytes:     10 * 1024 * 1024,
			AllowedTypes: []string{"image/jpeg", "image/png"},
		},
		Sync: config.SyncConfig{Interval: time.Minute},
	}
}

func newFixture() *fixture {
	f := &fixture{
		store:    mocks.NewMockAssetStore(),
		cache:    mocks.NewMockDraftCache(),
		provider: mocks.NewMockIdentityProvider(),
		mailer:   &mocks.MockMailer{},
	}
	repos := repository.New(f.store, f.cache)
	f.svc = service.NewServices(repos, f.provider, f.mailer, testConfig(), zerolog.Nop())
	return f
}

func artworkFor(asset *models.Asset, status models.ArtworkStatus) models.Artwork {
	return models.Artwork{
		ID:          models.PlaceholderID(time.Now()),
		Title:       "Sun",
		Artist:      "Vansiii",
		Image:       asset.SecureURL,
		Description: "Oil on canvas",
		Status:      status,
	}
}

func TestIdentifier(t *testing.T) {
	tests := map[string]string{
		"https://res.cloudinary.com/x/image/upload/v1/portfolio/artworks/sun.png": "sun",
		"https://res.cloudinary.com/x/image/upload/v1/sun.tar.gz?x=1#frag":        "sun",
		"https://res.cloudinary.com/x/image/upload/v1/plain":                      "plain",
		"": "",
	}
	for in, want := range tests {
		if got := service.Identifier(in); got != want {
			t.Errorf("Identifier(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGateway_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	artworks := f.svc.Collections.Artworks
	asset := f.store.Seed("portfolio/artworks/sun")

	created, err := artworks.Create(ctx, artworkFor(asset, models.StatusPending))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID != asset.AssetID {
		t.Errorf("Expected store id %s, got %s", asset.AssetID, created.ID)
	}
	if created.Revision != 1 {
		t.Errorf("Expected revision 1, got %d", created.Revision)
	}

	got, err := artworks.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Sun" || got.Status != models.StatusPending {
		t.Errorf("Unexpected record: %+v", got)
	}

	edit := got
	edit.Title = "Sunrise"
	updated, err := artworks.Update(ctx, got.ID, edit)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Revision != 2 || updated.Title != "Sunrise" {
		t.Errorf("Unexpected update result: %+v", updated)
	}

	// a second writer still holding revision 1 loses
	_, err = artworks.Update(ctx, got.ID, edit)
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("Expected conflict, got %v", err)
	}

	list, err := artworks.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Sunrise" {
		t.Errorf("Unexpected list: %+v", list)
	}

	if err := artworks.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := artworks.Delete(ctx, created.ID); err != nil {
		t.Errorf("Second delete should succeed, got %v", err)
	}
	if len(f.store.Assets) != 0 {
		t.Errorf("Expected store to be empty, got %d assets", len(f.store.Assets))
	}
	cached, _ := artworks.Cached(ctx)
	if len(cached) != 0 {
		t.Errorf("Expected cache slot to be empty, got %+v", cached)
	}
}

func TestGateway_CreateValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Collections.Projects.Create(context.Background(), models.Project{Title: "No images"})
	if models.KindOf(err) != models.KindValidation {
		t.Fatalf("Expected validation failure, got %v", err)
	}
	if f.store.Calls != 0 {
		t.Errorf("Expected no store calls, got %d", f.store.Calls)
	}
}

func TestGateway_GetOutsideFolder(t *testing.T) {
	f := newFixture()
	asset := f.store.Seed("portfolio/images/elsewhere")

	_, err := f.svc.Collections.Artworks.Get(context.Background(), asset.AssetID)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
	if err := f.svc.Collections.Artworks.Delete(context.Background(), asset.AssetID); err != nil {
		t.Errorf("Delete outside folder should be a no-op, got %v", err)
	}
	if _, ok := f.store.Assets["portfolio/images/elsewhere"]; !ok {
		t.Error("Asset outside the collection folder must not be destroyed")
	}
}

func TestGateway_UpstreamFailureKeepsKind(t *testing.T) {
	f := newFixture()
	f.store.ListErr = models.NewFailure(models.KindNetwork, "list resources", errors.New("dial tcp: refused"))

	_, err := f.svc.Collections.BlogPosts.List(context.Background())
	if models.KindOf(err) != models.KindNetwork {
		t.Errorf("Expected network failure, got %v", err)
	}
}

func TestUpload_Validation(t *testing.T) {
	jpeg := append([]byte("\xff\xd8\xff\xe0"), bytes.Repeat([]byte{0}, 1<<20)...)

	tests := []struct {
		name      string
		file      models.UploadFile
		wantError bool
	}{
		{
			name:      "oversized png",
			file:      models.UploadFile{Filename: "big.png", ContentType: "image/png", Size: 15 << 20, Content: bytes.NewReader(nil)},
			wantError: true,
		},
		{
			name:      "gif",
			file:      models.UploadFile{Filename: "anim.gif", ContentType: "image/gif", Size: 1 << 20, Content: strings.NewReader("GIF89a")},
			wantError: true,
		},
		{
			name:      "png declared, text content",
			file:      models.UploadFile{Filename: "fake.png", ContentType: "image/png", Size: 11, Content: strings.NewReader("hello world")},
			wantError: true,
		},
		{
			name: "jpeg",
			file: models.UploadFile{Filename: "photo.jpg", ContentType: "image/jpeg", Size: int64(len(jpeg)), Content: bytes.NewReader(jpeg)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			res, err := f.svc.Upload.Upload(context.Background(), models.CollectionArtworks, tt.file)

			if tt.wantError {
				if models.KindOf(err) != models.KindValidation {
					t.Fatalf("Expected validation failure, got %v", err)
				}
				if f.store.Calls != 0 {
					t.Errorf("Rejected upload reached the store (%d calls)", f.store.Calls)
				}
				return
			}

			if err != nil {
				t.Fatalf("Upload failed: %v", err)
			}
			if len(f.store.Uploaded) != 1 || f.store.Uploaded[0] != "portfolio/artworks/photo" {
				t.Errorf("Unexpected uploads: %v", f.store.Uploaded)
			}
			if !strings.HasSuffix(res.URL, "portfolio/artworks/photo.png") {
				t.Errorf("Unexpected URL %s", res.URL)
			}
		})
	}
}

func TestUpload_ThenCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	jpeg := append([]byte("\xff\xd8\xff\xe0"), bytes.Repeat([]byte{0}, 1024)...)

	res, err := f.svc.Upload.Upload(ctx, models.CollectionArtworks, models.UploadFile{
		Filename: "dawn.jpg", ContentType: "image/jpeg", Size: int64(len(jpeg)), Content: bytes.NewReader(jpeg),
	})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	art := models.Artwork{Title: "Dawn", Artist: "Vansiii", Image: res.URL, Description: "d", Status: models.StatusApproved}
	created, err := f.svc.Collections.Artworks.Create(ctx, art)
	if err != nil {
		t.Fatalf("Create from a fresh upload failed: %v", err)
	}
	if created.Image != res.URL {
		t.Errorf("Expected image %s, got %s", res.URL, created.Image)
	}
}

func TestSession_LoginLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.provider.Passwords["ceo@vansiii.com"] = "pw"
	f.provider.Passwords["fan@example.com"] = "pw"

	if _, err := f.svc.Session.Login(ctx, models.LoginRequest{Email: "ceo@vansiii.com", Password: "wrong"}); !errors.Is(err, models.ErrAuth) {
		t.Errorf("Expected auth failure, got %v", err)
	}
	if _, err := f.svc.Session.Login(ctx, models.LoginRequest{Email: "not-an-email", Password: "pw"}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected validation failure, got %v", err)
	}

	admin, err := f.svc.Session.Login(ctx, models.LoginRequest{Email: "ceo@vansiii.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !admin.IsAdmin || !admin.HasRole(models.RoleAdmin) || admin.Token == "" {
		t.Errorf("Expected admin session with token, got %+v", admin)
	}

	member, err := f.svc.Session.Login(ctx, models.LoginRequest{Email: "fan@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if member.IsAdmin || member.HasRole(models.RoleAdmin) || !member.HasRole(models.RoleMember) {
		t.Errorf("Expected member-only session, got %+v", member)
	}

	current := f.svc.Session.CurrentSession(ctx, admin.Token)
	if current.State != models.SessionAuthenticated || current.User.Email != "ceo@vansiii.com" || !current.IsAdmin {
		t.Errorf("Unexpected current session: %+v", current)
	}

	if err := f.svc.Session.Logout(ctx, admin.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if s := f.svc.Session.CurrentSession(ctx, admin.Token); s.State != models.SessionUnauthenticated {
		t.Errorf("Expected revoked token to be anonymous, got %+v", s)
	}
	if len(f.provider.SignedOut) != 1 || f.provider.SignedOut[0] != "provider-ceo@vansiii.com" {
		t.Errorf("Expected provider sign-out, got %v", f.provider.SignedOut)
	}

	if s := f.svc.Session.CurrentSession(ctx, "garbage"); s.State != models.SessionUnauthenticated {
		t.Errorf("Expected garbage token to be anonymous, got %+v", s)
	}
}

func TestContact_Submit(t *testing.T) {
	f := newFixture()

	err := f.svc.Contact.Submit(context.Background(), models.ContactForm{
		Form: models.FormWork,
		Fields: map[string]string{
			"name":    "Ada",
			"email":   "ada@example.com",
			"message": "Hello",
		},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(f.mailer.Sent) != 1 {
		t.Fatalf("Expected one message, got %d", len(f.mailer.Sent))
	}
	if f.mailer.Sent[0].Subject != "New work enquiry from Ada" || f.mailer.Sent[0].ReplyTo != "ada@example.com" {
		t.Errorf("Unexpected message: %+v", f.mailer.Sent[0])
	}

	err = f.svc.Contact.Submit(context.Background(), models.ContactForm{Form: models.FormWork, Fields: map[string]string{"name": "Ada"}})
	if models.KindOf(err) != models.KindValidation {
		t.Errorf("Expected validation failure, got %v", err)
	}
	if len(f.mailer.Sent) != 1 {
		t.Error("Invalid form must not be mailed")
	}
}

func TestDashboard_StaleFallback(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	asset := f.store.Seed("portfolio/artworks/sun")
	if _, err := f.svc.Collections.Artworks.Create(ctx, artworkFor(asset, models.StatusApproved)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	f.store.ListErr = models.NewFailure(models.KindNetwork, "list resources", errors.New("timeout"))
	view, err := f.svc.Dashboard.View(ctx)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if len(view.Stale) != 3 || view.Stale[0] != models.CollectionProjects {
		t.Errorf("Expected every collection stale in order, got %v", view.Stale)
	}
	if len(view.Artworks) != 1 || view.Artworks[0].ID != asset.AssetID {
		t.Errorf("Expected cached artwork, got %+v", view.Artworks)
	}

	f.store.ListErr = nil
	view, err = f.svc.Dashboard.View(ctx)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if len(view.Stale) != 0 {
		t.Errorf("Expected fresh view, got stale %v", view.Stale)
	}
}

func TestDashboard_ReviewSubmissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	user := &models.User{ID: "u1", Email: "fan@example.com"}

	sun := f.store.Seed("portfolio/artworks/sun")
	moon := f.store.Seed("portfolio/artworks/moon")

	submitted, err := f.svc.Public.Submit(ctx, user, models.Artwork{Title: "Sun", Artist: "Fan", Image: sun.SecureURL})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if submitted.Status != models.StatusPending || submitted.ID != sun.AssetID {
		t.Errorf("Unexpected submission: %+v", submitted)
	}
	if _, err := f.svc.Public.Submit(ctx, user, models.Artwork{Title: "Moon", Artist: "Fan", Image: moon.SecureURL}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	gallery, _ := f.svc.Public.Gallery(ctx)
	if len(gallery) != 0 {
		t.Errorf("Pending artworks must not appear in the gallery, got %+v", gallery)
	}

	view, err := f.svc.Dashboard.View(ctx)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if len(view.PendingArtworks) != 2 {
		t.Fatalf("Expected two pending artworks, got %+v", view.PendingArtworks)
	}

	approved, err := f.svc.Dashboard.Approve(ctx, sun.AssetID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.ID != sun.AssetID || approved.Status != models.StatusApproved {
		t.Errorf("Unexpected approved artwork: %+v", approved)
	}
	if err := f.svc.Dashboard.Reject(ctx, moon.AssetID); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	view, err = f.svc.Dashboard.View(ctx)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if len(view.PendingArtworks) != 0 {
		t.Errorf("Expected no pending artworks, got %+v", view.PendingArtworks)
	}
	if len(view.Artworks) != 1 || view.Artworks[0].ID != sun.AssetID {
		t.Errorf("Expected approved artwork in place, got %+v", view.Artworks)
	}

	gallery, _ = f.svc.Public.Gallery(ctx)
	if len(gallery) != 1 {
		t.Errorf("Expected approved artwork in gallery, got %+v", gallery)
	}
}

// partitionsOf counts how often id appears in each dashboard partition
func partitionsOf(view *models.DashboardView, id string) (approved, pending int) {
	for _, a := range view.Artworks {
		if a.ID == id {
			approved++
		}
	}
	for _, a := range view.PendingArtworks {
		if a.ID == id {
			pending++
		}
	}
	return approved, pending
}

func submitSun(t *testing.T, f *fixture) *models.Asset {
	t.Helper()
	sun := f.store.Seed("portfolio/artworks/sun")
	user := &models.User{ID: "u1", Email: "fan@example.com"}
	if _, err := f.svc.Public.Submit(context.Background(), user, models.Artwork{Title: "Sun", Artist: "Fan", Image: sun.SecureURL}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	return sun
}

func TestDashboard_ApproveThroughUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	sun := submitSun(t, f)

	art, err := f.svc.Collections.Artworks.Get(ctx, sun.AssetID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	art.Status = models.StatusApproved
	if _, err := f.svc.Collections.Artworks.Update(ctx, sun.AssetID, art); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	view, err := f.svc.Dashboard.View(ctx)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if approved, pending := partitionsOf(view, sun.AssetID); approved != 1 || pending != 0 {
		t.Errorf("Expected artwork only in approved, got approved=%d pending=%d", approved, pending)
	}

	queued, err := repository.ReadSlot[models.Artwork](ctx, f.cache, models.SlotPendingArtworks, zerolog.Nop())
	if err != nil {
		t.Fatalf("ReadSlot failed: %v", err)
	}
	if len(queued) != 0 {
		t.Errorf("Expected approved artwork to leave the submission queue, got %+v", queued)
	}
}

func TestDashboard_DeleteSubmission(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	sun := submitSun(t, f)

	if err := f.svc.Collections.Artworks.Delete(ctx, sun.AssetID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	view, err := f.svc.Dashboard.View(ctx)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if approved, pending := partitionsOf(view, sun.AssetID); approved != 0 || pending != 0 {
		t.Errorf("Expected deleted artwork in no partition, got approved=%d pending=%d", approved, pending)
	}
}

func TestDashboard_StoreStatusWinsOverQueue(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	sun := submitSun(t, f)

	// approved by another instance: the store changes, this queue does not
	current, err := f.store.GetByPublicID(ctx, sun.PublicID)
	if err != nil {
		t.Fatalf("GetByPublicID failed: %v", err)
	}
	meta := current.Metadata
	meta["status"] = string(models.StatusApproved)
	if _, err := f.store.UpdateContext(ctx, sun.PublicID, meta); err != nil {
		t.Fatalf("UpdateContext failed: %v", err)
	}

	view, err := f.svc.Dashboard.View(ctx)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if approved, pending := partitionsOf(view, sun.AssetID); approved != 1 || pending != 0 {
		t.Errorf("Expected store status to win, got approved=%d pending=%d", approved, pending)
	}
}

func TestGateway_UpdateKeepsItsOwnImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	artworks := f.svc.Collections.Artworks

	sun := f.store.Seed("portfolio/artworks/sun")
	moon := f.store.Seed("portfolio/artworks/moon")
	created, err := artworks.Create(ctx, artworkFor(sun, models.StatusApproved))
	if err != nil {
		t.Fatalf("Create sun failed: %v", err)
	}
	moonArt := artworkFor(moon, models.StatusApproved)
	moonArt.Title = "Moon"
	if _, err := artworks.Create(ctx, moonArt); err != nil {
		t.Fatalf("Create moon failed: %v", err)
	}

	edit := created
	edit.Title = "Hijacked"
	edit.Image = moon.SecureURL
	_, err = artworks.Update(ctx, created.ID, edit)
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("Expected validation failure, got %v", err)
	}

	for publicID, want := range map[string]string{sun.PublicID: "Sun", moon.PublicID: "Moon"} {
		a, err := f.store.GetByPublicID(ctx, publicID)
		if err != nil {
			t.Fatalf("GetByPublicID failed: %v", err)
		}
		if got := a.Meta("title"); got != want {
			t.Errorf("Expected %s title %q, got %q", publicID, want, got)
		}
	}

	edit.Image = sun.SecureURL
	updated, err := artworks.Update(ctx, created.ID, edit)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ID != sun.AssetID || updated.Title != "Hijacked" {
		t.Errorf("Expected sun updated in place, got %+v", updated)
	}
}

func TestPublic_PortfolioAndBlog(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	for _, p := range []struct{ name, category string }{{"brand", "Branding"}, {"site", "Web"}} {
		asset := f.store.Seed("portfolio/images/" + p.name)
		_, err := f.svc.Collections.Projects.Create(ctx, models.Project{
			Title: p.name, Category: p.category, Images: []string{asset.SecureURL}, Description: "d",
		})
		if err != nil {
			t.Fatalf("Create project failed: %v", err)
		}
	}

	all, _ := f.svc.Public.Portfolio(ctx, "All")
	if len(all) != 2 {
		t.Errorf("Expected 2 projects, got %d", len(all))
	}
	branding, _ := f.svc.Public.Portfolio(ctx, "branding")
	if len(branding) != 1 || branding[0].Category != "Branding" {
		t.Errorf("Unexpected category filter result: %+v", branding)
	}
	if branding[0].AspectRatio != "1/1" {
		t.Errorf("Expected default aspect ratio, got %q", branding[0].AspectRatio)
	}

	cover := f.store.Seed("portfolio/blog/cover")
	post, err := f.svc.Collections.BlogPosts.Create(ctx, models.BlogPost{
		Title: "Hello", Content: "World", Image: cover.SecureURL, Tags: []string{"news"},
	})
	if err != nil {
		t.Fatalf("Create post failed: %v", err)
	}

	got, err := f.svc.Public.BlogPost(ctx, post.ID)
	if err != nil || got.Title != "Hello" {
		t.Errorf("Unexpected blog post %+v, err %v", got, err)
	}
	if _, err := f.svc.Public.BlogPost(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestSync_RunOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.store.ListErr = errors.New("boom")
	failed := f.svc.Sync.RunOnce(ctx)
	if len(failed) != 3 {
		t.Errorf("Expected all collections to fail, got %v", failed)
	}

	f.store.ListErr = nil
	f.store.Seed("portfolio/blog/cover")
	if failed := f.svc.Sync.RunOnce(ctx); len(failed) != 0 {
		t.Errorf("Expected clean run, got %v", failed)
	}

	posts, err := f.svc.Public.Blog(ctx)
	if err != nil {
		t.Fatalf("Blog failed: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("Expected synced post in cache, got %+v", posts)
	}
}
