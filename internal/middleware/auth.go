package middleware

import (
	"net/http"
	"strings"

	"foodreport/internal/pkg/jwt"
	"foodreport/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const emailKey = "email"

// JWTAuth requires "Authorization: Bearer <token>" and stores the token's
// email claim on the context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, http.StatusUnauthorized, "authorization header missing")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Abort(c, http.StatusUnauthorized, "invalid authorization format")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

// Email returns the authenticated email set by JWTAuth, or "".
func Email(c *gin.Context) string {
	return c.GetString(emailKey)
}
