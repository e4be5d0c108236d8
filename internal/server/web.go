package server

import (
	"net/http"

	"foodreport/internal/middleware"
	"foodreport/internal/pkg/metrics"
	"foodreport/internal/session"
	"foodreport/internal/web"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type WebDeps struct {
	API      web.ReportAPI
	OAuth    web.OAuth
	Sessions *session.Manager
	Log      logrus.FieldLogger
	Metrics  *metrics.Metrics
	Sentry   bool
}

// NewWeb assembles the HTML front end. Metrics are recorded here but exposed
// only through ServeMetrics on an internal address.
func NewWeb(d WebDeps) (http.Handler, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(d.Log))
	if d.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.Metrics(d.Metrics, "web"))
	r.MaxMultipartMemory = 12 << 20
	r.SetHTMLTemplate(tmpl)

	web.NewHandler(d.API, d.Sessions, d.OAuth, d.Log).RegisterRoutes(r)
	return r, nil
}
