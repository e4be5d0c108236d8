package main

import (
	"context"
	"time"

	"foodreport/internal/apiclient"
	"foodreport/internal/config"
	"foodreport/internal/googleauth"
	"foodreport/internal/pkg/logger"
	"foodreport/internal/pkg/metrics"
	"foodreport/internal/server"
	"foodreport/internal/session"

	"github.com/gin-gonic/gin"
)

func main() {
	boot := logger.New("web", "text", "info")
	if err := config.LoadDotEnv(); err != nil {
		boot.WithError(err).Fatal("load env")
	}
	cfg, err := config.LoadWeb()
	if err != nil {
		boot.WithError(err).Fatal("invalid config")
	}
	log := logger.New("web", cfg.Log.Format, cfg.Log.Level)
	log.WithField("env", cfg.AppEnv).WithField("api", cfg.APIURL).Info("starting food report web")

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	flush, sentryOn := server.InitSentry(cfg.SentryDSN, cfg.AppEnv, log)
	defer flush()

	m := metrics.NewDefault()
	if cfg.MetricsAddr != "" {
		stopMetrics := server.ServeMetrics(cfg.MetricsAddr, m, log)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = stopMetrics(ctx)
		}()
	}

	h, err := server.NewWeb(server.WebDeps{
		API:      apiclient.New(cfg.APIURL, nil),
		OAuth:    googleauth.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL()),
		Sessions: session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure),
		Log:      log,
		Metrics:  m,
		Sentry:   sentryOn,
	})
	if err != nil {
		log.WithError(err).Fatal("build web handler")
	}

	if err := server.Run(cfg.Addr, h, log); err != nil {
		log.WithError(err).Error("server stopped")
	}
}
