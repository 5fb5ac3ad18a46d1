package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/service"
	"github.com/rs/zerolog"
)

// PublicHandler handles the public site endpoints
type PublicHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewPublicHandler creates a new PublicHandler
func NewPublicHandler(services *service.Services, log zerolog.Logger) *PublicHandler {
	return &PublicHandler{
		services: services,
		log:      log.With().Str("handler", "public").Logger(),
	}
}

// Gallery handles GET /api/gallery
func (h *PublicHandler) Gallery(c *gin.Context) {
	arts, err := h.services.Public.Gallery(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, arts)
}

// Submit handles POST /api/gallery/submissions
func (h *PublicHandler) Submit(c *gin.Context) {
	var art models.Artwork
	if err := c.ShouldBindJSON(&art); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	created, err := h.services.Public.Submit(c.Request.Context(), currentSession(c).User, art)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to submit artwork")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

// Blog handles GET /api/blog
func (h *PublicHandler) Blog(c *gin.Context) {
	posts, err := h.services.Public.Blog(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// BlogPost handles GET /api/blog/:id
func (h *PublicHandler) BlogPost(c *gin.Context) {
	post, err := h.services.Public.BlogPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Portfolio handles GET /api/portfolio?category=...
func (h *PublicHandler) Portfolio(c *gin.Context) {
	projects, err := h.services.Public.Portfolio(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// Contact handles POST /api/contact
func (h *PublicHandler) Contact(c *gin.Context) {
	var form models.ContactForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.services.Contact.Submit(c.Request.Context(), form); err != nil {
		h.log.Error().Err(err).Str("form", form.Form).Msg("Failed to deliver contact form")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
