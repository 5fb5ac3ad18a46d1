package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-content-api/internal/config"
	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/service"
	"github.com/rs/zerolog"
)

// multipart envelope allowance on top of the file limit
const formOverhead = 1 << 20

// UploadHandler handles image uploads
type UploadHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "upload").Logger(),
	}
}

// Upload handles POST /api/uploads?collection=...
// Accepts a multipart "file" field and returns the hosted URL
func (h *UploadHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	name := c.Query("collection")
	if name == "" {
		name = c.PostForm("collection")
	}
	collection, ok := models.ParseCollection(name)
	if !ok {
		badRequest(c, "collection must be one of: projects, artworks, blog-posts")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Upload.MaxBytes+formOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			badRequest(c, fmt.Sprintf("image size must be less than %d MB", h.cfg.Upload.MaxBytes>>20))
			return
		}
		badRequest(c, "file upload is required: "+err.Error())
		return
	}
	defer file.Close()

	upload := models.UploadFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}

	res, err := h.services.Upload.Upload(ctx, collection, upload)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info().
		Str("collection", string(collection)).
		Str("file", header.Filename).
		Int64("size_bytes", header.Size).
		Msg("Image uploaded")

	c.JSON(http.StatusOK, res)
}
