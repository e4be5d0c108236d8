package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	StoreSQL   = "sql"
	StoreMongo = "mongo"

	ImageStoreDisk = "disk"
	ImageStoreS3   = "s3"
)

type LogConfig struct {
	Format string
	Level  string
}

type S3Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// APIConfig configures cmd/api, cmd/seed and cmd/image_gc.
type APIConfig struct {
	AppEnv   string
	HTTPAddr string

	ReportStore string
	DatabaseURL string
	MongoURI    string
	MongoDB     string

	JWTSecret       string
	JWTTTL          time.Duration
	AuthorizedEmail string

	BaseImgURL string
	ImageStore string
	ImageDir   string
	S3         S3Config

	CORSAllowedOrigins []string
	Log                LogConfig
	SentryDSN          string
}

func LoadAPI() (*APIConfig, error) {
	cfg := &APIConfig{
		AppEnv:          appEnv(),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		ReportStore:     strings.ToLower(getEnv("REPORT_STORE", StoreSQL)),
		DatabaseURL:     getEnv("DATABASE_URL", "file:foodreport.db"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "foodreport"),
		JWTSecret:       getEnv("JWT_SECRET", defaultJWTSecret),
		AuthorizedEmail: strings.ToLower(getEnv("AUTHORIZED_EMAIL", "")),
		BaseImgURL:      strings.TrimRight(getEnv("BASE_IMG_URL", ""), "/"),
		ImageStore:      strings.ToLower(getEnv("IMAGE_STORE", ImageStoreDisk)),
		ImageDir:        getEnv("IMAGE_DIR", "./data/images"),
		S3: S3Config{
			Bucket:    getEnv("S3_BUCKET", ""),
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Region:    getEnv("S3_REGION", "auto"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		Log: LogConfig{
			Format: getEnv("LOG_FORMAT", "json"),
			Level:  getEnv("LOG_LEVEL", "info"),
		},
		SentryDSN: getEnv("SENTRY_DSN", ""),
	}

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", "24h")
	if err != nil {
		return nil, err
	}

	if err := validateAPI(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateAPI(cfg *APIConfig) error {
	if cfg.AuthorizedEmail == "" {
		return fmt.Errorf("AUTHORIZED_EMAIL must be set")
	}
	if cfg.BaseImgURL == "" {
		return fmt.Errorf("BASE_IMG_URL must be set")
	}

	switch cfg.ReportStore {
	case StoreSQL:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when REPORT_STORE=sql")
		}
	case StoreMongo:
		if cfg.MongoURI == "" || cfg.MongoDB == "" {
			return fmt.Errorf("MONGO_URI and MONGO_DB must be set when REPORT_STORE=mongo")
		}
	default:
		return fmt.Errorf("REPORT_STORE must be one of: sql, mongo")
	}

	switch cfg.ImageStore {
	case ImageStoreDisk:
		if cfg.ImageDir == "" {
			return fmt.Errorf("IMAGE_DIR must be set when IMAGE_STORE=disk")
		}
	case ImageStoreS3:
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET must be set when IMAGE_STORE=s3")
		}
		if (cfg.S3.AccessKey == "") != (cfg.S3.SecretKey == "") {
			return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY must be set together")
		}
	default:
		return fmt.Errorf("IMAGE_STORE must be one of: disk, s3")
	}

	if isProdLike(cfg.AppEnv) && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}
