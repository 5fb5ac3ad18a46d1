package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/service"
)

const sessionKey = "session"

// bearerToken extracts the token from an Authorization header
func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// sessionMiddleware resolves the caller's session once per request
func sessionMiddleware(sessions service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionKey, sessions.CurrentSession(c.Request.Context(), bearerToken(c)))
		c.Next()
	}
}

func currentSession(c *gin.Context) *models.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*models.Session); ok {
			return s
		}
	}
	return models.Anonymous()
}

// requireSession rejects anonymous callers with 401
func requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentSession(c).State != models.SessionAuthenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// requireAdmin rejects anonymous callers with 401 and non-admins with 403
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := currentSession(c)
		if s.State != models.SessionAuthenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !s.HasRole(models.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// redirectNonAdmin sends everyone but admins to the login route
func redirectNonAdmin(loginRoute string) gin.HandlerFunc {
	if loginRoute == "" {
		loginRoute = "/admin"
	}
	return func(c *gin.Context) {
		if !currentSession(c).HasRole(models.RoleAdmin) {
			c.Redirect(http.StatusSeeOther, loginRoute)
			c.Abort()
			return
		}
		c.Next()
	}
}
