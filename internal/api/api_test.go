package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-content-api/internal/api"
	"github.com/portfolio-content-api/internal/config"
	"github.com/portfolio-content-api/internal/mocks"
	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/repository"
	"github.com/portfolio-content-api/internal/service"
	"github.com/rs/zerolog"
)

const (
	adminToken  = "admin-token"
	memberToken = "member-token"
)

type testEnv struct {
	router    *gin.Engine
	artworks  *mocks.MockCollection[models.Artwork]
	projects  *mocks.MockCollection[models.Project]
	upload    *mocks.MockUploadService
	session   *mocks.MockSessionService
	contact   *mocks.MockContactService
	dashboard *mocks.MockDashboardService
	public    *mocks.MockPublicService
}

func setupTestRouter() *testEnv {
	gin.SetMode(gin.TestMode)

	collections, projects, artworks, _ := mocks.NewMockCollections()
	env := &testEnv{
		artworks:  artworks,
		projects:  projects,
		upload:    mocks.NewMockUploadService(),
		session:   mocks.NewMockSessionService(),
		contact:   &mocks.MockContactService{},
		dashboard: &mocks.MockDashboardService{},
		public:    &mocks.MockPublicService{},
	}
	env.session.AddSession(adminToken, "ceo@vansiii.com", true)
	env.session.AddSession(memberToken, "fan@example.com", false)

	services := &service.Services{
		Collections: collections,
		Upload:      env.upload,
		Session:     env.session,
		Contact:     env.contact,
		Dashboard:   env.dashboard,
		Public:      env.public,
		Sync:        &mocks.MockSyncService{},
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "5000", LoginRoute: "/admin"},
		Upload: config.UploadConfig{
			MaxBytes:     10 * 1024 * 1024,
			AllowedTypes: []string{"image/jpeg", "image/png"},
		},
	}

	env.router = api.NewRouter(services, cfg, zerolog.Nop())
	return env
}

func (e *testEnv) do(method, url, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Expected JSON error body, got %q", w.Body.String())
	}
	msg, ok := response["error"].(string)
	if !ok {
		t.Fatalf("Expected error field, got %v", response)
	}
	return msg
}

func sampleArtwork() models.Artwork {
	return models.Artwork{
		Title:       "Sun",
		Artist:      "A",
		Image:       "https://x/sun.png",
		Description: "d",
		Status:      models.StatusPending,
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestRouter()

	w := env.do("GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "portfolio-content-api" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a request id header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestRouter()

	w := env.do("GET", "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestCollection_WriteGuards(t *testing.T) {
	env := setupTestRouter()

	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{name: "anonymous", token: "", expectedStatus: http.StatusUnauthorized},
		{name: "member", token: memberToken, expectedStatus: http.StatusForbidden},
		{name: "admin", token: adminToken, expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do("POST", "/api/artworks", tt.token, sampleArtwork())
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}

	if env.artworks.Writes != 1 {
		t.Errorf("Expected exactly one write, got %d", env.artworks.Writes)
	}
}

func TestCollection_CRUD(t *testing.T) {
	env := setupTestRouter()

	w := env.do("POST", "/api/artworks", adminToken, sampleArtwork())
	if w.Code != http.StatusOK {
		t.Fatalf("Create failed: %d %s", w.Code, w.Body.String())
	}
	var created models.Artwork
	json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID != "artwork-1" {
		t.Errorf("Expected store-assigned id, got %q", created.ID)
	}

	w = env.do("GET", "/api/artworks", "", nil)
	var list []models.Artwork
	json.Unmarshal(w.Body.Bytes(), &list)
	if w.Code != http.StatusOK || len(list) != 1 {
		t.Errorf("Expected one artwork, got %d %s", w.Code, w.Body.String())
	}

	edit := created
	edit.Title = "Sunrise"
	w = env.do("PUT", "/api/artworks/"+created.ID, adminToken, edit)
	if w.Code != http.StatusOK {
		t.Fatalf("Update failed: %d %s", w.Code, w.Body.String())
	}

	w = env.do("DELETE", "/api/artworks/"+created.ID, adminToken, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"success":true`) {
		t.Errorf("Unexpected delete response: %d %s", w.Code, w.Body.String())
	}

	// deleting again still succeeds
	w = env.do("DELETE", "/api/artworks/"+created.ID, adminToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected idempotent delete, got %d", w.Code)
	}
}

func TestCollection_Patch(t *testing.T) {
	env := setupTestRouter()
	w := env.do("POST", "/api/projects", adminToken, models.Project{
		Title: "Brand", Category: "Branding", Images: []string{"https://x/a.png"}, Description: "d",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Create failed: %d %s", w.Code, w.Body.String())
	}

	w = env.do("PATCH", "/api/projects/project-1", adminToken, map[string]interface{}{
		"fields": map[string]string{"title": "Rebrand", "images": "https://x/a.png, https://x/b.png"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Patch failed: %d %s", w.Code, w.Body.String())
	}
	var patched models.Project
	json.Unmarshal(w.Body.Bytes(), &patched)
	if patched.Title != "Rebrand" || len(patched.Images) != 2 || patched.Category != "Branding" {
		t.Errorf("Unexpected patched project: %+v", patched)
	}

	w = env.do("PATCH", "/api/projects/project-1", adminToken, map[string]interface{}{
		"fields": map[string]string{"colour": "red"},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown field, got %d", w.Code)
	}

	w = env.do("PATCH", "/api/projects/missing", adminToken, map[string]interface{}{
		"fields": map[string]string{"title": "x"},
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing record, got %d", w.Code)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		kind           models.FailureKind
		expectedStatus int
	}{
		{models.KindValidation, http.StatusBadRequest},
		{models.KindAuth, http.StatusUnauthorized},
		{models.KindNotFound, http.StatusNotFound},
		{models.KindConflict, http.StatusConflict},
		{models.KindNetwork, http.StatusInternalServerError},
		{models.KindUpstream, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			env := setupTestRouter()
			env.dashboard.ReviewErr = models.NewFailure(tt.kind, "update artwork", io.ErrUnexpectedEOF)

			w := env.do("POST", "/api/artworks/a1/approve", adminToken, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if msg := errorMessage(t, w); !strings.Contains(msg, "update artwork") {
				t.Errorf("Expected error to name the operation, got %q", msg)
			}
		})
	}
}

func TestArtworkReview(t *testing.T) {
	env := setupTestRouter()

	w := env.do("POST", "/api/artworks/a1/approve", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Approve failed: %d", w.Code)
	}
	w = env.do("POST", "/api/artworks/a2/reject", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Reject failed: %d", w.Code)
	}
	w = env.do("POST", "/api/artworks/a3/reject", memberToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected member reject to be forbidden, got %d", w.Code)
	}

	if len(env.dashboard.Approved) != 1 || env.dashboard.Approved[0] != "a1" {
		t.Errorf("Unexpected approvals: %v", env.dashboard.Approved)
	}
	if len(env.dashboard.Rejected) != 1 || env.dashboard.Rejected[0] != "a2" {
		t.Errorf("Unexpected rejections: %v", env.dashboard.Rejected)
	}
}

// setupServiceRouter wires the real services over in-memory stores; only
// sessions are stubbed
func setupServiceRouter() (*testEnv, *mocks.MockAssetStore) {
	gin.SetMode(gin.TestMode)

	store := mocks.NewMockAssetStore()
	cfg := &config.Config{
		Server:     config.ServerConfig{Port: "5000", LoginRoute: "/admin"},
		Cloudinary: config.CloudinaryConfig{PageSize: 100},
		Auth:       config.AuthConfig{JWTSecret: "test-secret", AdminEmails: []string{"ceo@vansiii.com"}},
		Upload: config.UploadConfig{
			MaxBytes:     10 * 1024 * 1024,
			AllowedTypes: []string{"image/jpeg", "image/png"},
		},
	}
	services := service.NewServices(repository.New(store, mocks.NewMockDraftCache()),
		mocks.NewMockIdentityProvider(), &mocks.MockMailer{}, cfg, zerolog.Nop())

	env := &testEnv{session: mocks.NewMockSessionService()}
	env.session.AddSession(adminToken, "ceo@vansiii.com", true)
	env.session.AddSession(memberToken, "fan@example.com", false)
	services.Session = env.session

	env.router = api.NewRouter(services, cfg, zerolog.Nop())
	return env, store
}

func (e *testEnv) fetchDashboard(t *testing.T) models.DashboardView {
	t.Helper()
	w := e.do("GET", "/api/dashboard", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Dashboard failed: %d %s", w.Code, w.Body.String())
	}
	var view models.DashboardView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("Invalid dashboard body: %v", err)
	}
	return view
}

func countID(list []models.Artwork, id string) int {
	n := 0
	for _, a := range list {
		if a.ID == id {
			n++
		}
	}
	return n
}

func TestSubmission_ReviewThroughCollectionRoutes(t *testing.T) {
	env, store := setupServiceRouter()
	sun := store.Seed("portfolio/artworks/sun")
	moon := store.Seed("portfolio/artworks/moon")

	for _, a := range []*models.Asset{sun, moon} {
		w := env.do("POST", "/api/gallery/submissions", memberToken, models.Artwork{Title: "Fan art", Artist: "Fan", Image: a.SecureURL})
		if w.Code != http.StatusOK {
			t.Fatalf("Submit failed: %d %s", w.Code, w.Body.String())
		}
	}

	view := env.fetchDashboard(t)
	if countID(view.PendingArtworks, sun.AssetID) != 1 || countID(view.PendingArtworks, moon.AssetID) != 1 {
		t.Fatalf("Expected both submissions pending, got %+v", view.PendingArtworks)
	}

	// approve sun with a plain PUT
	w := env.do("GET", "/api/artworks", "", nil)
	var list []models.Artwork
	json.Unmarshal(w.Body.Bytes(), &list)
	var edit models.Artwork
	for _, a := range list {
		if a.ID == sun.AssetID {
			edit = a
		}
	}
	edit.Status = models.StatusApproved
	w = env.do("PUT", "/api/artworks/"+sun.AssetID, adminToken, edit)
	if w.Code != http.StatusOK {
		t.Fatalf("Update failed: %d %s", w.Code, w.Body.String())
	}

	w = env.do("DELETE", "/api/artworks/"+moon.AssetID, adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Delete failed: %d %s", w.Code, w.Body.String())
	}

	view = env.fetchDashboard(t)
	if countID(view.Artworks, sun.AssetID) != 1 || countID(view.PendingArtworks, sun.AssetID) != 0 {
		t.Errorf("Expected approved artwork only in approved, got approved=%+v pending=%+v", view.Artworks, view.PendingArtworks)
	}
	if countID(view.Artworks, moon.AssetID)+countID(view.PendingArtworks, moon.AssetID) != 0 {
		t.Errorf("Expected deleted artwork in no partition, got approved=%+v pending=%+v", view.Artworks, view.PendingArtworks)
	}
}

func TestDashboard_RouteGuard(t *testing.T) {
	env := setupTestRouter()

	for _, token := range []string{"", memberToken, "garbage"} {
		w := env.do("GET", "/api/dashboard", token, nil)
		if w.Code != http.StatusSeeOther {
			t.Errorf("Token %q: expected 303, got %d", token, w.Code)
		}
		if loc := w.Header().Get("Location"); loc != "/admin" {
			t.Errorf("Token %q: expected redirect to /admin, got %q", token, loc)
		}
	}

	env.dashboard.ViewResult = &models.DashboardView{
		PendingArtworks: []models.Artwork{{ID: "p1", Status: models.StatusPending}},
		Stale:           []models.Collection{models.CollectionBlogPosts},
	}
	w := env.do("GET", "/api/dashboard", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for admin, got %d", w.Code)
	}
	var view models.DashboardView
	json.Unmarshal(w.Body.Bytes(), &view)
	if len(view.PendingArtworks) != 1 || len(view.Stale) != 1 {
		t.Errorf("Unexpected view: %+v", view)
	}
}

func multipartUpload(t *testing.T, url, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart failed: %v", err)
	}
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest("POST", url, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken)
	return req
}

func TestUpload(t *testing.T) {
	env := setupTestRouter()

	req := multipartUpload(t, "/api/uploads?collection=artworks", "sun.jpg", "image/jpeg", []byte("\xff\xd8\xff\xe0data"))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var res models.UploadResult
	json.Unmarshal(w.Body.Bytes(), &res)
	if !strings.Contains(res.URL, "portfolio/artworks/sun.jpg") {
		t.Errorf("Unexpected url %q", res.URL)
	}
	if len(env.upload.Uploads) != 1 || env.upload.Uploads[0] != models.CollectionArtworks {
		t.Errorf("Unexpected uploads: %v", env.upload.Uploads)
	}
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		validateErr    error
		expectedStatus int
	}{
		{
			name:           "unknown collection",
			url:            "/api/uploads?collection=videos",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "wrong type",
			url:            "/api/uploads?collection=projects",
			validateErr:    models.Validationf("upload", "please upload only JPEG or PNG images"),
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter()
			env.upload.ValidateErr = tt.validateErr

			req := multipartUpload(t, tt.url, "anim.gif", "image/gif", []byte("GIF89a"))
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if len(env.upload.Uploads) != 0 {
				t.Error("Rejected file must not be uploaded")
			}
		})
	}
}

func TestPublicReads(t *testing.T) {
	env := setupTestRouter()
	env.public.Artworks = []models.Artwork{
		{ID: "1", Title: "Sun", Status: models.StatusApproved},
		{ID: "2", Title: "Moon", Status: models.StatusPending},
	}
	env.public.Posts = []models.BlogPost{{ID: "b1", Title: "Hello"}}
	env.public.Projects = []models.Project{
		{ID: "p1", Category: "Branding"},
		{ID: "p2", Category: "Web"},
	}

	var arts []models.Artwork
	w := env.do("GET", "/api/gallery", "", nil)
	json.Unmarshal(w.Body.Bytes(), &arts)
	if w.Code != http.StatusOK || len(arts) != 1 || arts[0].ID != "1" {
		t.Errorf("Unexpected gallery: %d %s", w.Code, w.Body.String())
	}

	w = env.do("GET", "/api/blog/b1", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected blog post, got %d", w.Code)
	}
	w = env.do("GET", "/api/blog/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	var projects []models.Project
	w = env.do("GET", "/api/portfolio?category=Web", "", nil)
	json.Unmarshal(w.Body.Bytes(), &projects)
	if len(projects) != 1 || projects[0].ID != "p2" {
		t.Errorf("Unexpected portfolio: %s", w.Body.String())
	}
}

func TestGallerySubmission(t *testing.T) {
	env := setupTestRouter()
	art := models.Artwork{Title: "Sun", Artist: "Fan", Image: "https://x/sun.png"}

	w := env.do("POST", "/api/gallery/submissions", "", art)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a session, got %d", w.Code)
	}

	w = env.do("POST", "/api/gallery/submissions", memberToken, art)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var created models.Artwork
	json.Unmarshal(w.Body.Bytes(), &created)
	if created.Status != models.StatusPending {
		t.Errorf("Expected pending submission, got %s", created.Status)
	}
}

func TestAuthFlow(t *testing.T) {
	env := setupTestRouter()

	w := env.do("POST", "/api/auth/login", "", map[string]string{"email": "ceo@vansiii.com"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing password, got %d", w.Code)
	}

	w = env.do("POST", "/api/auth/login", "", models.LoginRequest{Email: "ceo@vansiii.com", Password: "pw"})
	if w.Code != http.StatusOK {
		t.Fatalf("Login failed: %d %s", w.Code, w.Body.String())
	}
	var session models.Session
	json.Unmarshal(w.Body.Bytes(), &session)
	if session.Token == "" || !session.IsAdmin {
		t.Errorf("Unexpected session: %+v", session)
	}

	w = env.do("GET", "/api/auth/session", session.Token, nil)
	var current models.Session
	json.Unmarshal(w.Body.Bytes(), &current)
	if current.State != models.SessionAuthenticated {
		t.Errorf("Expected authenticated session, got %+v", current)
	}

	w = env.do("POST", "/api/auth/logout", session.Token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Logout failed: %d", w.Code)
	}

	w = env.do("GET", "/api/auth/session", session.Token, nil)
	json.Unmarshal(w.Body.Bytes(), &current)
	if current.State != models.SessionUnauthenticated {
		t.Errorf("Expected anonymous session after logout, got %+v", current)
	}
}

func TestAuth_Rejected(t *testing.T) {
	env := setupTestRouter()
	env.session.LoginErr = models.NewFailure(models.KindAuth, "login", io.EOF)

	w := env.do("POST", "/api/auth/login", "", models.LoginRequest{Email: "x@y.com", Password: "bad"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestContact(t *testing.T) {
	env := setupTestRouter()
	form := models.ContactForm{Form: models.FormWork, Fields: map[string]string{"name": "Ada", "email": "a@b.com", "message": "hi"}}

	w := env.do("POST", "/api/contact", "", form)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if len(env.contact.Forms) != 1 {
		t.Errorf("Expected form to be delivered, got %d", len(env.contact.Forms))
	}

	env.contact.SubmitErr = models.Validationf("send message", "message: cannot be blank")
	w = env.do("POST", "/api/contact", "", form)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}
