package reconcile

import "github.com/portfolio-content-api/internal/models"

// Result is the display-ready outcome of a reconciliation
type Result[T models.Record] struct {
	Display  []T  `json:"display"`
	Migrated bool `json:"migrated"`
	// Stale is set when the display list came from the cache because the
	// server collection was unavailable
	Stale bool `json:"stale,omitempty"`
}

// Normalizer rewrites a record into its current shape and reports whether
// anything changed
type Normalizer[T models.Record] func(T) (T, bool)

// Reconcile derives the display list. A non-nil server collection is
// authoritative; a nil one means the fetch failed and the cached local
// collection is shown instead. Placeholder ids never survive into the
// display list of an authoritative fetch.
func Reconcile[T models.Record](server, local []T, normalize Normalizer[T]) Result[T] {
	source := server
	stale := false
	if server == nil {
		source = local
		stale = true
	}

	display := make([]T, 0, len(source))
	migrated := false
	for _, rec := range Dedupe(source) {
		if !stale && models.IsPlaceholderID(rec.GetID()) {
			continue
		}
		if normalize != nil {
			var changed bool
			rec, changed = normalize(rec)
			migrated = migrated || changed
		}
		display = append(display, rec)
	}
	return Result[T]{Display: display, Migrated: migrated, Stale: stale}
}

// NormalizeProject applies the image migration
func NormalizeProject(p models.Project) (models.Project, bool) {
	return Migrate(p), NeedsMigration(p)
}

// NormalizeArtwork applies the default status
func NormalizeArtwork(a models.Artwork) (models.Artwork, bool) {
	status := models.NormalizeStatus(a.Status)
	changed := status != a.Status
	a.Status = status
	return a, changed
}

// NormalizeBlogPost replaces a nil tag list with an empty one
func NormalizeBlogPost(b models.BlogPost) (models.BlogPost, bool) {
	if b.Tags == nil {
		b.Tags = []string{}
		return b, true
	}
	return b, false
}

// Projects reconciles project collections through the image migration
func Projects(server, local []models.Project) Result[models.Project] {
	return Reconcile(server, local, NormalizeProject)
}

// Artworks reconciles artwork collections
func Artworks(server, local []models.Artwork) Result[models.Artwork] {
	return Reconcile(server, local, NormalizeArtwork)
}

// BlogPosts reconciles blog post collections
func BlogPosts(server, local []models.BlogPost) Result[models.BlogPost] {
	return Reconcile(server, local, NormalizeBlogPost)
}
