package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-content-api/internal/models"
)

// statusFor maps a failure kind to its HTTP status. Only store and
// network failures answer 500; clients that treat any non-2xx as a
// failure see the same {error} body either way.
func statusFor(kind models.FailureKind) int {
	switch kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindAuth:
		return http.StatusUnauthorized
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": message} with the status of its kind
func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(models.KindOf(err)), gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
