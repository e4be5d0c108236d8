package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"foodreport/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request and recovers panics into a 500.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				entry(log, c, start).
					WithField("stack", string(debug.Stack())).
					Error(fmt.Sprintf("panic: %v", recovered))
				response.Abort(c, http.StatusInternalServerError, "internal server error")
				return
			}

			e := entry(log, c, start)
			if len(c.Errors) > 0 {
				e = e.WithField("error", c.Errors.String())
			}
			switch status := c.Writer.Status(); {
			case status >= http.StatusInternalServerError:
				e.Error("request failed")
			case status >= http.StatusBadRequest:
				e.Warn("request rejected")
			default:
				e.Info("request")
			}
		}()

		c.Next()
	}
}

func entry(log logrus.FieldLogger, c *gin.Context, start time.Time) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"status":     c.Writer.Status(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"client_ip":  c.ClientIP(),
		"request_id": c.GetString("request_id"),
		"email":      c.GetString(emailKey),
		"latency":    time.Since(start).String(),
	})
}
