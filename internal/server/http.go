package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodreport/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Run serves h on addr until SIGINT or SIGTERM, then shuts down gracefully.
func Run(addr string, h http.Handler, log logrus.FieldLogger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// MetricsHandler serves /metrics only, for an internal listener.
func MetricsHandler(m *metrics.Metrics) http.Handler {
	r := gin.New()
	r.GET("/metrics", gin.WrapH(m.Handler()))
	return r
}

// ServeMetrics exposes m on addr in the background. The returned function
// shuts the listener down.
func ServeMetrics(addr string, m *metrics.Metrics, log logrus.FieldLogger) func(context.Context) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           MetricsHandler(m),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", addr).Info("metrics listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics listener stopped")
		}
	}()
	return srv.Shutdown
}
