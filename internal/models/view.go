package models

import "io"

// DashboardView is the admin dashboard view model
type DashboardView struct {
	Projects        []Project    `json:"projects"`
	Artworks        []Artwork    `json:"artworks"`
	PendingArtworks []Artwork    `json:"pendingArtworks"`
	BlogPosts       []BlogPost   `json:"blogPosts"`
	Stale           []Collection `json:"stale,omitempty"`
}

// ContactForm is a submission from one of the contact page forms
type ContactForm struct {
	Form   string            `json:"form" binding:"required"`
	Fields map[string]string `json:"fields" binding:"required"`
}

// Contact form names
const (
	FormContact = "contact"
	FormWork    = "work"
)

// UploadResult is returned by the upload endpoint
type UploadResult struct {
	URL string `json:"url"`
}

// UploadFile is an image handed to the upload adapter
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}
