package report

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"foodreport/internal/middleware"
	"foodreport/internal/pkg/apperr"
	"foodreport/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// NoImageMarker is sent in the image field of an update that keeps the
// current photo.
const NoImageMarker = "null"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts reads on public (/api) and mutations on protected
// (/api/auth, behind JWTAuth).
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		public.GET("/getReports", h.List)
		public.GET("/getReportById", h.GetByID)
	}
	if protected != nil {
		protected.POST("/createReport", h.authorize, h.Create)
		protected.PUT("/updateReport", h.authorize, h.Update)
		protected.DELETE("/deleteReport", h.authorize, h.Delete)
	}
}

// authorize rejects tokens of any email but the authorized one before the
// request body is read.
func (h *Handler) authorize(c *gin.Context) {
	if err := h.svc.Authorize(middleware.Email(c)); err != nil {
		response.FromError(c, err)
		c.Abort()
		return
	}
	c.Next()
}

// List returns every report.
// @Summary	List reports
// @Tags		Reports
// @Success	200	{object}	map[string]interface{}	"{reports: Report[]}"
// @Router		/getReports [GET]
func (h *Handler) List(c *gin.Context) {
	reports, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// GetByID returns one report.
// @Summary	Get report
// @Tags		Reports
// @Param		id	query	string	true	"Report ID"
// @Success	200	{object}	map[string]interface{}	"{error: null, report}"
// @Failure	404	{object}	map[string]interface{}	"Report not found"
// @Router		/getReportById [GET]
func (h *Handler) GetByID(c *gin.Context) {
	rep, err := h.svc.Get(c.Request.Context(), c.Query("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": nil, "report": rep})
}

// Create publishes a report with its photo.
// @Summary	Create report
// @Tags		Reports
// @Security	BearerAuth
// @Accept		multipart/form-data
// @Param		shopName		formData	string	true	"Shop name"
// @Param		name			formData	string	true	"Dish name"
// @Param		place			formData	string	false	"Place"
// @Param		rating			formData	int		true	"1-5"
// @Param		comment			formData	string	false	"Comment"
// @Param		link			formData	string	false	"URL"
// @Param		dateYYYYMMDD	formData	string	true	"YYYYMMDD"
// @Param		image			formData	file	true	"JPEG or PNG"
// @Success	200	{object}	map[string]interface{}	"{error: null, report}"
// @Failure	400	{object}	map[string]interface{}	"Validation error"
// @Failure	401	{object}	map[string]interface{}	"Unauthorized"
// @Router		/auth/createReport [POST]
func (h *Handler) Create(c *gin.Context) {
	in, err := bindInput(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	img, err := formImage(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if img == nil {
		response.FromError(c, apperr.Validation("image is required"))
		return
	}

	rep, err := h.svc.Create(c.Request.Context(), middleware.Email(c), in, *img)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": nil, "report": rep})
}

// Update replaces every field of a report, and its photo when one is sent.
// @Summary	Update report
// @Tags		Reports
// @Security	BearerAuth
// @Accept		multipart/form-data
// @Param		id		formData	string	true	"Report ID"
// @Param		image	formData	file	false	"New photo, or the string null to keep the current one"
// @Success	200	{object}	map[string]interface{}	"{error: null, report}"
// @Failure	401	{object}	map[string]interface{}	"Unauthorized"
// @Failure	404	{object}	map[string]interface{}	"Report not found"
// @Router		/auth/updateReport [PUT]
func (h *Handler) Update(c *gin.Context) {
	in, err := bindInput(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	img, err := formImage(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	rep, err := h.svc.Update(c.Request.Context(), middleware.Email(c), c.PostForm("id"), in, img)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": nil, "report": rep})
}

// Delete removes a report and its photo.
// @Summary	Delete report
// @Tags		Reports
// @Security	BearerAuth
// @Param		id	query	string	true	"Report ID"
// @Success	200	{object}	map[string]interface{}	"{message: success}"
// @Failure	401	{object}	map[string]interface{}	"Unauthorized"
// @Failure	404	{object}	map[string]interface{}	"Report not found"
// @Router		/auth/deleteReport [DELETE]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.Email(c), c.Query("id")); err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

func bindInput(c *gin.Context) (Input, error) {
	rating, err := strconv.Atoi(strings.TrimSpace(c.PostForm("rating")))
	if err != nil {
		return Input{}, apperr.Validation("rating must be an integer")
	}
	return Input{
		ShopName:     c.PostForm("shopName"),
		Name:         c.PostForm("name"),
		Place:        c.PostForm("place"),
		Rating:       rating,
		Comment:      c.PostForm("comment"),
		Link:         c.PostForm("link"),
		DateYYYYMMDD: c.PostForm("dateYYYYMMDD"),
	}, nil
}

// formImage reads the "image" file part. It returns nil when no image field
// was sent or the field holds NoImageMarker; any other text value is rejected.
func formImage(c *gin.Context) (*Image, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			if v, ok := c.GetPostForm("image"); ok && v != NoImageMarker {
				return nil, apperr.Validation(`image must be a file or "` + NoImageMarker + `"`)
			}
			return nil, nil
		}
		return nil, apperr.Validation("invalid multipart form")
	}
	if fh.Size > MaxImageSize {
		return nil, apperr.Validation("image must be at most 10MB")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	return &Image{Filename: fh.Filename, Data: data}, nil
}
