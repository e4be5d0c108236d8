package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"foodreport/internal/imagestore"

	"github.com/sirupsen/logrus"
)

type ImageLister interface {
	List(ctx context.Context) ([]imagestore.Object, error)
}

// SweepOrphanImages deletes stored images that no report references.
// Only keys shaped like the ones Create and Update generate are considered;
// anything else in the bucket is left alone. Objects younger than grace are
// skipped so uploads of in-flight creates survive. With dryRun nothing is
// deleted. It returns the orphaned keys that were (or would be) deleted and
// the joined errors of deletes that failed.
func (s *Service) SweepOrphanImages(ctx context.Context, lister ImageLister, grace time.Duration, dryRun bool) ([]string, error) {
	reports, err := s.reports.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	referenced := make(map[string]struct{}, len(reports))
	for _, r := range reports {
		if key, ok := s.keyFromURL(r.ImgURL); ok {
			referenced[key] = struct{}{}
		}
	}

	objects, err := lister.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	cutoff := time.Now().Add(-grace)
	var orphans []string
	for _, obj := range objects {
		if !isImageKey(obj.Key) {
			continue
		}
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if obj.ModTime.After(cutoff) {
			continue
		}
		orphans = append(orphans, obj.Key)
	}
	sort.Strings(orphans)

	if dryRun {
		return orphans, nil
	}
	var (
		swept []string
		errs  []error
	)
	for _, key := range orphans {
		err := s.images.Delete(ctx, key)
		s.metrics.ImageOp("delete", err)
		if err != nil {
			s.log.WithError(err).WithField("image_key", key).Warn("orphan image not deleted")
			errs = append(errs, fmt.Errorf("delete orphan %s: %w", key, err))
			continue
		}
		s.log.WithFields(logrus.Fields{"image_key": key}).Info("orphan image deleted")
		swept = append(swept, key)
	}
	return swept, errors.Join(errs...)
}
