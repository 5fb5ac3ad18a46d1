package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/service"
	"github.com/rs/zerolog"
)

// DashboardHandler handles the admin dashboard endpoints
type DashboardHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(services *service.Services, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		services: services,
		log:      log.With().Str("handler", "dashboard").Logger(),
	}
}

// View handles GET /api/dashboard
func (h *DashboardHandler) View(c *gin.Context) {
	view, err := h.services.Dashboard.View(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Approve handles POST /api/artworks/:id/approve
func (h *DashboardHandler) Approve(c *gin.Context) {
	id := c.Param("id")

	art, err := h.services.Dashboard.Approve(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to approve artwork")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, art)
}

// Reject handles POST /api/artworks/:id/reject
func (h *DashboardHandler) Reject(c *gin.Context) {
	id := c.Param("id")

	if err := h.services.Dashboard.Reject(c.Request.Context(), id); err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to reject artwork")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DeleteResponse{Success: true})
}
