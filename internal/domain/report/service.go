package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodreport/internal/pkg/apperr"
	"foodreport/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store persists reports.
type Store interface {
	FindAll(ctx context.Context) ([]Report, error)
	FindByID(ctx context.Context, id string) (Report, error)
	Create(ctx context.Context, r Report) error
	Update(ctx context.Context, r Report) error
	Delete(ctx context.Context, id string) (string, error)
}

// ImageStore holds report photos under opaque keys.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

// UserDirectory resolves the user row stamped onto reports.
type UserDirectory interface {
	UserIDByEmail(ctx context.Context, email string) (string, error)
}

// Authorizer decides whether an authenticated email may mutate reports.
type Authorizer interface {
	Authorize(email string) error
}

// Input is the client supplied field set for create and update.
type Input struct {
	ShopName     string
	Name         string
	Place        string
	Rating       int
	Comment      string
	Link         string
	DateYYYYMMDD string
}

func (in Input) fields(imgURL, userID string) Fields {
	return Fields{
		ShopName:     in.ShopName,
		Name:         in.Name,
		Place:        in.Place,
		Rating:       in.Rating,
		Comment:      in.Comment,
		Link:         in.Link,
		ImgURL:       imgURL,
		DateYYYYMMDD: in.DateYYYYMMDD,
		UserID:       userID,
	}
}

type Service struct {
	reports    Store
	images     ImageStore
	users      UserDirectory
	gate       Authorizer
	baseImgURL string
	log        logrus.FieldLogger
	metrics    *metrics.Metrics

	newID  func() string
	newKey func() string
}

func NewService(reports Store, images ImageStore, users UserDirectory, gate Authorizer, baseImgURL string, log logrus.FieldLogger, m *metrics.Metrics) *Service {
	return &Service{
		reports:    reports,
		images:     images,
		users:      users,
		gate:       gate,
		baseImgURL: strings.TrimRight(baseImgURL, "/"),
		log:        log,
		metrics:    m,
		newID:      uuid.NewString,
		newKey:     uuid.NewString,
	}
}

// Authorize reports whether email may create, update or delete reports.
func (s *Service) Authorize(email string) error {
	return s.gate.Authorize(email)
}

func (s *Service) List(ctx context.Context) ([]Report, error) {
	return s.reports.FindAll(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Report, error) {
	if strings.TrimSpace(id) == "" {
		return Report{}, apperr.Validation("id is required")
	}
	return s.reports.FindByID(ctx, id)
}

// Create uploads the image under a fresh key and persists the report. If
// persisting fails the uploaded object is removed again.
func (s *Service) Create(ctx context.Context, actorEmail string, in Input, img Image) (rep Report, err error) {
	defer func() { s.metrics.ReportEvent("create", err) }()

	if err := s.gate.Authorize(actorEmail); err != nil {
		return Report{}, err
	}
	contentType, err := sniffImage(img)
	if err != nil {
		return Report{}, err
	}
	userID, err := s.userID(ctx, actorEmail)
	if err != nil {
		return Report{}, err
	}

	key := s.objectKey(contentType)
	rep, err = New(s.newID(), in.fields(s.imageURL(key), userID))
	if err != nil {
		return Report{}, err
	}

	if err := s.putImage(ctx, key, img.Data, contentType); err != nil {
		return Report{}, err
	}
	if err := s.reports.Create(ctx, rep); err != nil {
		s.rollbackImage(ctx, key)
		return Report{}, err
	}

	s.log.WithFields(logrus.Fields{"report_id": rep.ID, "image_key": key}).Info("report created")
	return rep, nil
}

// Update overwrites every field of an existing report. With img == nil the
// stored image URL is kept. With a new image the order is upload, persist,
// then delete the old object, so the report never references a missing image.
func (s *Service) Update(ctx context.Context, actorEmail, id string, in Input, img *Image) (rep Report, err error) {
	defer func() { s.metrics.ReportEvent("update", err) }()

	if err := s.gate.Authorize(actorEmail); err != nil {
		return Report{}, err
	}
	if strings.TrimSpace(id) == "" {
		return Report{}, apperr.Validation("id is required")
	}
	existing, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return Report{}, err
	}

	var contentType string
	if img != nil {
		if contentType, err = sniffImage(*img); err != nil {
			return Report{}, err
		}
	}
	userID, err := s.userID(ctx, actorEmail)
	if err != nil {
		return Report{}, err
	}

	imgURL := existing.ImgURL
	var newKey string
	if img != nil {
		newKey = s.objectKey(contentType)
		imgURL = s.imageURL(newKey)
	}

	rep, err = existing.WithUpdatedFields(in.fields(imgURL, userID))
	if err != nil {
		return Report{}, err
	}

	if img != nil {
		if err := s.putImage(ctx, newKey, img.Data, contentType); err != nil {
			return Report{}, err
		}
	}
	if err := s.reports.Update(ctx, rep); err != nil {
		if img != nil {
			s.rollbackImage(ctx, newKey)
		}
		return Report{}, err
	}

	if img != nil {
		if err := s.deleteImageByURL(ctx, existing.ImgURL); err != nil {
			return Report{}, fmt.Errorf("report %s updated but old image was not removed: %w", rep.ID, err)
		}
	}

	s.log.WithFields(logrus.Fields{"report_id": rep.ID, "image_replaced": img != nil}).Info("report updated")
	return rep, nil
}

// Delete removes the report first and its image second; a failure in
// between leaves an orphaned object rather than a dangling reference.
func (s *Service) Delete(ctx context.Context, actorEmail, id string) (err error) {
	defer func() { s.metrics.ReportEvent("delete", err) }()

	if err := s.gate.Authorize(actorEmail); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("id is required")
	}

	imgURL, err := s.reports.Delete(ctx, id)
	if err != nil {
		return err
	}
	if err := s.deleteImageByURL(ctx, imgURL); err != nil {
		return fmt.Errorf("report %s deleted but image was not removed: %w", id, err)
	}

	s.log.WithField("report_id", id).Info("report deleted")
	return nil
}

func (s *Service) userID(ctx context.Context, email string) (string, error) {
	id, err := s.users.UserIDByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", fmt.Errorf("user not registered: %s", email)
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}
	return id, nil
}

func (s *Service) objectKey(contentType string) string {
	return s.newKey() + allowedImageTypes[contentType]
}

func (s *Service) imageURL(key string) string {
	return s.baseImgURL + "/" + key
}

// keyFromURL strips the base URL. URLs outside the base are not ours to delete.
func (s *Service) keyFromURL(imgURL string) (string, bool) {
	prefix := s.baseImgURL + "/"
	if !strings.HasPrefix(imgURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(imgURL, prefix)
	return key, key != ""
}

func (s *Service) putImage(ctx context.Context, key string, data []byte, contentType string) error {
	err := s.images.Put(ctx, key, data, contentType)
	s.metrics.ImageOp("put", err)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	return nil
}

func (s *Service) deleteImageByURL(ctx context.Context, imgURL string) error {
	key, ok := s.keyFromURL(imgURL)
	if !ok {
		s.log.WithField("img_url", imgURL).Warn("image url outside base url, skipping delete")
		return nil
	}
	err := s.images.Delete(ctx, key)
	s.metrics.ImageOp("delete", err)
	return err
}

func (s *Service) rollbackImage(ctx context.Context, key string) {
	err := s.images.Delete(ctx, key)
	s.metrics.ImageOp("delete", err)
	if err != nil {
		s.log.WithError(err).WithField("image_key", key).Error("failed to roll back uploaded image")
	}
}
