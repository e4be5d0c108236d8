package server

import (
	"context"
	"fmt"

	"foodreport/internal/config"
	"foodreport/internal/database"
	"foodreport/internal/domain/report"
	"foodreport/internal/domain/user"
	"foodreport/internal/imagestore"
	mongorepo "foodreport/internal/repository/mongo"

	"github.com/sirupsen/logrus"
)

// UserStore is the user directory plus what cmd/seed needs to add rows.
type UserStore interface {
	report.UserDirectory
	Create(ctx context.Context, u *user.User) error
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

type migrator interface {
	Migrate(ctx context.Context) error
}

// Stores are the backends selected by REPORT_STORE and IMAGE_STORE.
type Stores struct {
	Reports report.Store
	Users   UserStore
	Images  imagestore.Store
	// ImageDir is set when images live on local disk.
	ImageDir string

	close func(context.Context) error
}

func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenStores connects the configured backends and migrates their schema.
func OpenStores(ctx context.Context, cfg *config.APIConfig, log logrus.FieldLogger) (*Stores, error) {
	s := &Stores{}

	switch cfg.ReportStore {
	case config.StoreMongo:
		client, err := mongorepo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDB)
		s.Reports = mongorepo.NewReportRepository(db)
		s.Users = mongorepo.NewUserRepository(db)
		s.close = client.Disconnect
		log.WithField("db", cfg.MongoDB).Info("using mongo report store")
	default:
		db, err := database.Connect(cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		s.Reports = report.NewRepository(db)
		s.Users = user.NewRepository(db)
		s.close = func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
	}

	for _, m := range []any{s.Reports, s.Users} {
		if mg, ok := m.(migrator); ok {
			if err := mg.Migrate(ctx); err != nil {
				_ = s.Close(ctx)
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
	}

	switch cfg.ImageStore {
	case config.ImageStoreS3:
		images, err := imagestore.NewS3(ctx, imagestore.S3Options{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PathStyle: cfg.S3.Endpoint != "",
		})
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.Images = images
		log.WithField("bucket", cfg.S3.Bucket).Info("using s3 image store")
	default:
		images, err := imagestore.NewDisk(cfg.ImageDir)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.Images = images
		s.ImageDir = images.Root()
		log.WithField("dir", images.Root()).Info("using disk image store")
	}
	return s, nil
}
