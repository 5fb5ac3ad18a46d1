package service

import (
	"strconv"
	"strings"

	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/validation"
)

// recordCodec maps one record type to and from store metadata
type recordCodec[T models.Record] struct {
	collection   models.Collection
	noun         string
	decode       func(models.Asset) T
	encode       func(T) map[string]string
	primaryImage func(T) string
	revision     func(T) int
	// stamp applies the store's authoritative id, URL and revision
	stamp    func(rec T, asset models.Asset, revision int) T
	validate func(T) error
}

func metaRevision(a models.Asset) int {
	n, err := strconv.Atoi(a.Meta("revision"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

var projectCodec = recordCodec[models.Project]{
	collection: models.CollectionProjects,
	noun:       "project",
	decode: func(a models.Asset) models.Project {
		return models.Project{
			ID:          a.AssetID,
			Title:       withDefault(a.Meta("title"), "Untitled"),
			Category:    a.Meta("category"),
			Images:      []string{a.SecureURL},
			Description: a.Meta("description"),
			Client:      a.Meta("client"),
			Year:        a.Meta("year"),
			Role:        a.Meta("role"),
			AspectRatio: withDefault(a.Meta("aspect_ratio"), "1/1"),
			Revision:    metaRevision(a),
		}
	},
	encode: func(p models.Project) map[string]string {
		return map[string]string{
			"title":        p.Title,
			"category":     p.Category,
			"description":  p.Description,
			"client":       p.Client,
			"year":         p.Year,
			"role":         p.Role,
			"aspect_ratio": withDefault(p.AspectRatio, "1/1"),
		}
	},
	primaryImage: models.Project.PrimaryImage,
	revision:     func(p models.Project) int { return p.Revision },
	stamp: func(p models.Project, a models.Asset, rev int) models.Project {
		p.ID = a.AssetID
		images := []string{a.SecureURL}
		if len(p.Images) > 1 {
			images = append(images, p.Images[1:]...)
		}
		p.Images = images
		p.Image = ""
		p.AspectRatio = withDefault(p.AspectRatio, "1/1")
		p.Revision = rev
		return p
	},
	validate: validation.Project,
}

var artworkCodec = recordCodec[models.Artwork]{
	collection: models.CollectionArtworks,
	noun:       "artwork",
	decode: func(a models.Asset) models.Artwork {
		return models.Artwork{
			ID:          a.AssetID,
			Title:       withDefault(a.Meta("title"), "Untitled"),
			Artist:      a.Meta("artist"),
			Image:       a.SecureURL,
			Description: a.Meta("description"),
			Year:        a.Meta("year"),
			Medium:      a.Meta("medium"),
			Dimensions:  a.Meta("dimensions"),
			Status:      models.NormalizeStatus(models.ArtworkStatus(a.Meta("status"))),
			Revision:    metaRevision(a),
		}
	},
	encode: func(w models.Artwork) map[string]string {
		return map[string]string{
			"title":       w.Title,
			"artist":      w.Artist,
			"description": w.Description,
			"year":        w.Year,
			"medium":      w.Medium,
			"dimensions":  w.Dimensions,
			"status":      string(models.NormalizeStatus(w.Status)),
		}
	},
	primaryImage: func(w models.Artwork) string { return w.Image },
	revision:     func(w models.Artwork) int { return w.Revision },
	stamp: func(w models.Artwork, a models.Asset, rev int) models.Artwork {
		w.ID = a.AssetID
		w.Image = a.SecureURL
		w.Status = models.NormalizeStatus(w.Status)
		w.Revision = rev
		return w
	},
	validate: validation.Artwork,
}

var blogPostCodec = recordCodec[models.BlogPost]{
	collection: models.CollectionBlogPosts,
	noun:       "blog post",
	decode: func(a models.Asset) models.BlogPost {
		return models.BlogPost{
			ID:       a.AssetID,
			Title:    a.Meta("title"),
			Date:     a.Meta("date"),
			Tags:     splitTags(a.Meta("tags")),
			ReadTime: a.Meta("readTime"),
			Excerpt:  a.Meta("excerpt"),
			Image:    a.SecureURL,
			Content:  a.Meta("content"),
			Revision: metaRevision(a),
		}
	},
	encode: func(b models.BlogPost) map[string]string {
		return map[string]string{
			"title":    b.Title,
			"date":     b.Date,
			"tags":     strings.Join(b.Tags, ","),
			"readTime": b.ReadTime,
			"excerpt":  b.Excerpt,
			"content":  b.Content,
		}
	},
	primaryImage: func(b models.BlogPost) string { return b.Image },
	revision:     func(b models.BlogPost) int { return b.Revision },
	stamp: func(b models.BlogPost, a models.Asset, rev int) models.BlogPost {
		b.ID = a.AssetID
		b.Image = a.SecureURL
		if b.Tags == nil {
			b.Tags = []string{}
		}
		b.Revision = rev
		return b
	},
	validate: validation.BlogPost,
}
