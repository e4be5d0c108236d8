package server

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// InitSentry enables error tracking when dsn is set. The returned flush
// must run before exit; enabled reports whether the gin middleware applies.
func InitSentry(dsn, env string, log logrus.FieldLogger) (flush func(), enabled bool) {
	if dsn == "" {
		return func() {}, false
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		EnableTracing:    true,
		TracesSampleRate: 0.2,
		Environment:      env,
	}); err != nil {
		log.WithError(err).Error("sentry init failed")
		return func() {}, false
	}
	return func() { sentry.Flush(2 * time.Second) }, true
}
