package models

import (
	"strconv"
	"time"
)

// Record is implemented by every content record variant
type Record interface {
	GetID() string
}

// PlaceholderID returns a client-side id for a record that has not been saved
// yet. The store assigns the durable id on create.
func PlaceholderID(now time.Time) string {
	return "draft-" + strconv.FormatInt(now.UnixMilli(), 10)
}

// IsPlaceholderID reports whether id was produced by PlaceholderID
func IsPlaceholderID(id string) bool {
	return len(id) > 6 && id[:6] == "draft-"
}

// Project is a portfolio project
type Project struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	Image       string   `json:"image,omitempty"` // legacy single-image field
	Description string   `json:"description"`
	Client      string   `json:"client,omitempty"`
	Year        string   `json:"year,omitempty"`
	Role        string   `json:"role,omitempty"`
	AspectRatio string   `json:"aspect_ratio,omitempty"`
	Revision    int      `json:"revision,omitempty"`
}

func (p Project) GetID() string { return p.ID }

// PrimaryImage returns the image that identifies the project in the store
func (p Project) PrimaryImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return p.Image
}

// ArtworkStatus is the review state of an artwork
type ArtworkStatus string

const (
	StatusPending  ArtworkStatus = "pending"
	StatusApproved ArtworkStatus = "approved"
)

// NormalizeStatus maps unknown or empty values to StatusApproved
func NormalizeStatus(s ArtworkStatus) ArtworkStatus {
	if s == StatusPending {
		return StatusPending
	}
	return StatusApproved
}

// Artwork is a piece on the Wall of Art
type Artwork struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Artist      string        `json:"artist"`
	Image       string        `json:"image"`
	Description string        `json:"description"`
	Year        string        `json:"year,omitempty"`
	Medium      string        `json:"medium,omitempty"`
	Dimensions  string        `json:"dimensions,omitempty"`
	Status      ArtworkStatus `json:"status"`
	Revision    int           `json:"revision,omitempty"`
}

func (a Artwork) GetID() string { return a.ID }

// BlogPost is a journal entry
type BlogPost struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Date     string   `json:"date,omitempty"`
	Tags     []string `json:"tags"`
	ReadTime string   `json:"readTime,omitempty"`
	Excerpt  string   `json:"excerpt,omitempty"`
	Image    string   `json:"image"`
	Content  string   `json:"content,omitempty"`
	Revision int      `json:"revision,omitempty"`
}

func (b BlogPost) GetID() string { return b.ID }

// DeleteResponse is returned by every delete endpoint
type DeleteResponse struct {
	Success bool `json:"success"`
}

// Asset is the store's view of one uploaded image and its metadata
type Asset struct {
	AssetID   string            `json:"asset_id"`
	PublicID  string            `json:"public_id"`
	SecureURL string            `json:"secure_url"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Meta returns a metadata value or "" when absent
func (a Asset) Meta(key string) string {
	if a.Metadata == nil {
		return ""
	}
	return a.Metadata[key]
}
