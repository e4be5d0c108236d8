// Command image_gc deletes stored report photos that no report references,
// e.g. leftovers of an update whose old image could not be removed.
package main

import (
	"context"
	"flag"
	"time"

	"foodreport/internal/config"
	"foodreport/internal/domain/auth"
	"foodreport/internal/domain/report"
	"foodreport/internal/pkg/logger"
	"foodreport/internal/server"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "list orphans without deleting them")
	grace := flag.Duration("grace", time.Hour, "skip images younger than this")
	flag.Parse()

	log := logger.New("image_gc", "text", "info")
	if err := config.LoadDotEnv(); err != nil {
		log.WithError(err).Fatal("load env")
	}
	cfg, err := config.LoadAPI()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	stores, err := server.OpenStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open stores")
	}
	defer stores.Close(ctx)

	svc := report.NewService(stores.Reports, stores.Images, stores.Users, auth.NewGate(cfg.AuthorizedEmail), cfg.BaseImgURL, log, nil)
	swept, err := svc.SweepOrphanImages(ctx, stores.Images, *grace, *dryRun)
	for _, key := range swept {
		log.WithField("image_key", key).Info("orphan")
	}
	if err != nil {
		log.WithError(err).WithField("count", len(swept)).Fatal("sweep incomplete")
	}
	log.WithField("count", len(swept)).WithField("dry_run", *dryRun).Info("sweep finished")
}
