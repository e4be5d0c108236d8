package auth

import (
	"net/http"

	"foodreport/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/login", h.Login)
}

// Login exchanges the authorized email for a bearer token.
// @Summary	Login
// @Tags		Auth
// @Param		email	query	string	true	"Verified email"
// @Success	200	{object}	map[string]interface{}	"{error: null, jwt}"
// @Failure	401	{object}	map[string]interface{}	"Email not authorized"
// @Router		/login [GET]
func (h *Handler) Login(c *gin.Context) {
	token, err := h.service.Login(c.Query("email"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": nil, "jwt": token})
}
