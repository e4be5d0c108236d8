package config

import (
	"fmt"
	"strings"
	"time"
)

// WebConfig configures cmd/web.
type WebConfig struct {
	AppEnv  string
	Addr    string
	APIURL  string
	BaseURL string

	// MetricsAddr is the internal listener for /metrics; empty disables it.
	MetricsAddr string

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	GoogleClientID     string
	GoogleClientSecret string

	Log       LogConfig
	SentryDSN string
}

func LoadWeb() (*WebConfig, error) {
	cfg := &WebConfig{
		AppEnv:             appEnv(),
		Addr:               getEnv("WEB_ADDR", ":3000"),
		MetricsAddr:        getEnv("WEB_METRICS_ADDR", "127.0.0.1:9091"),
		APIURL:             strings.TrimRight(getEnv("API_URL", "http://localhost:8080"), "/"),
		BaseURL:            strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:3000"), "/"),
		SessionSecret:      getEnv("SESSION_SECRET", defaultSessionSecret),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		Log: LogConfig{
			Format: getEnv("LOG_FORMAT", "json"),
			Level:  getEnv("LOG_LEVEL", "info"),
		},
		SentryDSN: getEnv("SENTRY_DSN", ""),
	}
	cfg.CookieSecure = isProdLike(cfg.AppEnv)

	var err error
	cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", "24h")
	if err != nil {
		return nil, err
	}

	if err := validateWeb(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateWeb(cfg *WebConfig) error {
	if cfg.APIURL == "" {
		return fmt.Errorf("API_URL must be set")
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}
	if isProdLike(cfg.AppEnv) && isEmptyOrDefault(cfg.SessionSecret, defaultSessionSecret) {
		return fmt.Errorf("in prod/release SESSION_SECRET must be set and not default")
	}
	return nil
}

// GoogleRedirectURL is the OAuth callback registered with Google.
func (c *WebConfig) GoogleRedirectURL() string {
	return c.BaseURL + "/auth/google/callback"
}
