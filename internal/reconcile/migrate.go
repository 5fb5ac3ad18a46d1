// Package reconcile derives display collections from gateway responses and
// cached copies, and owns the merge rules applied after each mutation.
package reconcile

import "github.com/portfolio-content-api/internal/models"

// NeedsMigration reports whether p still carries the legacy image field
func NeedsMigration(p models.Project) bool {
	return p.Image != "" || p.Images == nil
}

// Migrate moves a legacy single image into the images array. A record that
// already has images keeps them and loses the legacy field. The result is a
// fixed point: Migrate(Migrate(p)) == Migrate(p).
func Migrate(p models.Project) models.Project {
	switch {
	case len(p.Images) > 0:
		p.Images = append([]string(nil), p.Images...)
	case p.Image != "":
		p.Images = []string{p.Image}
	default:
		p.Images = []string{}
	}
	p.Image = ""
	return p
}

// MigrateAll migrates every project and reports whether any record changed
func MigrateAll(projects []models.Project) ([]models.Project, bool) {
	out := make([]models.Project, 0, len(projects))
	migrated := false
	for _, p := range projects {
		if NeedsMigration(p) {
			migrated = true
		}
		out = append(out, Migrate(p))
	}
	return out, migrated
}
