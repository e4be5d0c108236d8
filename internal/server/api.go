package server

import (
	"net/http"

	"foodreport/internal/domain/auth"
	"foodreport/internal/domain/report"
	"foodreport/internal/middleware"
	"foodreport/internal/pkg/jwt"
	"foodreport/internal/pkg/metrics"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type APIDeps struct {
	Reports *report.Service
	Auth    *auth.Service
	JWT     *jwt.Service
	Log     logrus.FieldLogger
	Metrics *metrics.Metrics

	// ImageDir is served at /images when the disk image store is used.
	ImageDir           string
	CORSAllowedOrigins []string
	Sentry             bool
}

// NewAPI assembles the JSON API: /api/* routes, /metrics and optional
// /images, wrapped in CORS.
func NewAPI(d APIDeps) http.Handler {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(d.Log))
	if d.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.Metrics(d.Metrics, "api"))
	r.MaxMultipartMemory = report.MaxImageSize + 1<<20

	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	if d.ImageDir != "" {
		r.Static("/images", d.ImageDir)
	}

	api := r.Group("/api")
	api.GET("/hello", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Hello!"})
	})
	auth.NewHandler(d.Auth).RegisterRoutes(api)

	protected := api.Group("/auth", middleware.JWTAuth(d.JWT))
	report.NewHandler(d.Reports).RegisterRoutes(api, protected)

	return cors.New(cors.Options{
		AllowedOrigins: d.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         600,
	}).Handler(r)
}
