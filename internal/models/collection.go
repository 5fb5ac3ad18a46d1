package models

import "strings"

// Collection identifies one content surface backed by the asset store
type Collection string

const (
	CollectionProjects  Collection = "projects"
	CollectionArtworks  Collection = "artworks"
	CollectionBlogPosts Collection = "blog-posts"
)

// Collections lists every collection in dashboard order
var Collections = []Collection{CollectionProjects, CollectionArtworks, CollectionBlogPosts}

// Cache slot keys. The first three hold the last-known copy of a collection,
// SlotPendingArtworks holds public submissions waiting for review.
const (
	SlotProjects        = "portfolio_projects"
	SlotArtGallery      = "art_gallery"
	SlotBlogPosts       = "blog_posts"
	SlotPendingArtworks = "pending_artworks"
)

// Slots lists every known cache slot
var Slots = []string{SlotProjects, SlotArtGallery, SlotBlogPosts, SlotPendingArtworks}

// ParseCollection converts a path segment into a Collection
func ParseCollection(s string) (Collection, bool) {
	switch Collection(strings.ToLower(strings.TrimSpace(s))) {
	case CollectionProjects:
		return CollectionProjects, true
	case CollectionArtworks:
		return CollectionArtworks, true
	case CollectionBlogPosts, "blog", "blogposts":
		return CollectionBlogPosts, true
	}
	return "", false
}

// Folder returns the asset store prefix that namespaces the collection.
// Uploads land here too, so a fresh image can take metadata straight away.
func (c Collection) Folder() string {
	switch c {
	case CollectionProjects:
		return "portfolio/images"
	case CollectionArtworks:
		return "portfolio/artworks"
	case CollectionBlogPosts:
		return "portfolio/blog"
	}
	return ""
}

// CacheSlot returns the draft cache key holding the collection
func (c Collection) CacheSlot() string {
	switch c {
	case CollectionProjects:
		return SlotProjects
	case CollectionArtworks:
		return SlotArtGallery
	case CollectionBlogPosts:
		return SlotBlogPosts
	}
	return ""
}

// IsKnownSlot reports whether key names a cache slot
func IsKnownSlot(key string) bool {
	for _, s := range Slots {
		if s == key {
			return true
		}
	}
	return false
}
