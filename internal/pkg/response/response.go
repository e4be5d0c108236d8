package response

import (
	"errors"
	"net/http"

	"foodreport/internal/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// Error writes the {error:{message}} body used by every failing endpoint.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error": gin.H{
			"message": message,
		},
	})
}

// Abort is Error for middleware: it stops the handler chain.
func Abort(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"error": gin.H{
			"message": message,
		},
	})
}

// FromError maps the apperr taxonomy onto status codes. Unknown errors are
// attached to the gin context so the request logger records them.
func FromError(c *gin.Context, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	Error(c, status, apperr.Message(err, "internal server error"))
}

func StatusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
