package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/portfolio-content-api/internal/config"
	"github.com/portfolio-content-api/internal/metrics"
	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/reconcile"
	"github.com/portfolio-content-api/internal/service"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// NewRouter creates and configures the Gin router. Every failure body is
// {"error": message}; the status follows the failure kind (400 validation,
// 401 auth, 403 non-admin session, 404 not found, 409 stale revision,
// 500 store or network) rather than a blanket 500.
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(requestIDMiddleware())
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(sessionMiddleware(services.Session))

	// Handlers
	authHandler := NewAuthHandler(services, log)
	uploadHandler := NewUploadHandler(services, cfg, log)
	dashboardHandler := NewDashboardHandler(services, log)
	publicHandler := NewPublicHandler(services, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		admin := requireAdmin()

		// Collection endpoints
		registerCollection(api.Group("/"+string(models.CollectionProjects)), admin,
			models.CollectionProjects, services.Collections.Projects, reconcile.SetProjectField, log)
		artworks := registerCollection(api.Group("/"+string(models.CollectionArtworks)), admin,
			models.CollectionArtworks, services.Collections.Artworks, reconcile.SetArtworkField, log)
		registerCollection(api.Group("/"+string(models.CollectionBlogPosts)), admin,
			models.CollectionBlogPosts, services.Collections.BlogPosts, reconcile.SetBlogPostField, log)

		// Artwork review
		artworks.POST("/:id/approve", admin, dashboardHandler.Approve)
		artworks.POST("/:id/reject", admin, dashboardHandler.Reject)

		api.POST("/uploads", admin, uploadHandler.Upload)
		api.GET("/dashboard", redirectNonAdmin(cfg.Server.LoginRoute), dashboardHandler.View)

		// Public pages, served from the cache
		api.GET("/gallery", publicHandler.Gallery)
		api.POST("/gallery/submissions", requireSession(), publicHandler.Submit)
		api.GET("/blog", publicHandler.Blog)
		api.GET("/blog/:id", publicHandler.BlogPost)
		api.GET("/portfolio", publicHandler.Portfolio)
		api.POST("/contact", publicHandler.Contact)

		// Session endpoints
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/session", authHandler.Session)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "portfolio-content-api",
	})
}

// requestIDMiddleware tags every request with an id, reusing the caller's
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("request_id", c.GetString("request_id")).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString("request_id")).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+requestIDHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
