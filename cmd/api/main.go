package main

import (
	"context"
	"time"

	"foodreport/internal/config"
	"foodreport/internal/domain/auth"
	"foodreport/internal/domain/report"
	"foodreport/internal/pkg/jwt"
	"foodreport/internal/pkg/logger"
	"foodreport/internal/pkg/metrics"
	"foodreport/internal/server"

	"github.com/gin-gonic/gin"
)

func main() {
	boot := logger.New("api", "text", "info")
	if err := config.LoadDotEnv(); err != nil {
		boot.WithError(err).Fatal("load env")
	}
	cfg, err := config.LoadAPI()
	if err != nil {
		boot.WithError(err).Fatal("invalid config")
	}
	log := logger.New("api", cfg.Log.Format, cfg.Log.Level)
	log.WithField("env", cfg.AppEnv).Info("starting food report api")

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	flush, sentryOn := server.InitSentry(cfg.SentryDSN, cfg.AppEnv, log)
	defer flush()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	stores, err := server.OpenStores(ctx, cfg, log)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("open stores")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stores.Close(closeCtx); err != nil {
			log.WithError(err).Warn("close stores")
		}
	}()

	m := metrics.NewDefault()
	gate := auth.NewGate(cfg.AuthorizedEmail)
	jwtService := jwt.New(cfg.JWTSecret, cfg.JWTTTL)

	h := server.NewAPI(server.APIDeps{
		Reports:            report.NewService(stores.Reports, stores.Images, stores.Users, gate, cfg.BaseImgURL, log, m),
		Auth:               auth.NewService(gate, jwtService, log, m),
		JWT:                jwtService,
		Log:                log,
		Metrics:            m,
		ImageDir:           stores.ImageDir,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Sentry:             sentryOn,
	})

	if err := server.Run(cfg.HTTPAddr, h, log); err != nil {
		log.WithError(err).Error("server stopped")
	}
}
