package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodreport/internal/database"
	"foodreport/internal/pkg/apperr"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type reportModel struct {
	ID           string    `gorm:"column:id;primaryKey;size:36"`
	ShopName     string    `gorm:"column:shop_name;not null"`
	Name         string    `gorm:"column:name;not null"`
	Place        *string   `gorm:"column:place"`
	Rating       int       `gorm:"column:rating;not null"`
	Comment      string    `gorm:"column:comment;not null"`
	Link         *string   `gorm:"column:link"`
	ImgURL       string    `gorm:"column:img_url;not null"`
	DateYYYYMMDD string    `gorm:"column:date_yyyymmdd;size:8;not null;index"`
	UserID       string    `gorm:"column:user_id;size:36;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (reportModel) TableName() string { return "reports" }

func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&reportModel{})
}

func toDomainReport(m reportModel) Report {
	return Report{
		ID:           m.ID,
		ShopName:     m.ShopName,
		Name:         m.Name,
		Place:        deref(m.Place),
		Rating:       m.Rating,
		Comment:      m.Comment,
		Link:         deref(m.Link),
		ImgURL:       m.ImgURL,
		DateYYYYMMDD: m.DateYYYYMMDD,
		UserID:       m.UserID,
	}
}

func toReportModel(r Report) reportModel {
	return reportModel{
		ID:           r.ID,
		ShopName:     r.ShopName,
		Name:         r.Name,
		Place:        optional(r.Place),
		Rating:       r.Rating,
		Comment:      r.Comment,
		Link:         optional(r.Link),
		ImgURL:       r.ImgURL,
		DateYYYYMMDD: r.DateYYYYMMDD,
		UserID:       r.UserID,
	}
}

func (r *Repository) FindAll(ctx context.Context) ([]Report, error) {
	var rows []reportModel
	tx := r.db.WithContext(ctx).
		Order("date_yyyymmdd DESC").
		Order("created_at DESC").
		Find(&rows)
	if tx.Error != nil {
		return nil, fmt.Errorf("list reports: %w", tx.Error)
	}

	out := make([]Report, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainReport(m))
	}
	return out, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (Report, error) {
	var m reportModel
	tx := r.db.WithContext(ctx).Where("id = ?", id).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return Report{}, errNotFound
		}
		return Report{}, fmt.Errorf("find report: %w", tx.Error)
	}
	return toDomainReport(m), nil
}

func (r *Repository) Create(ctx context.Context, rep Report) error {
	m := toReportModel(rep)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("report already exists")
		}
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// Update overwrites every mutable column. Empty place and link become NULL.
func (r *Repository) Update(ctx context.Context, rep Report) error {
	tx := r.db.WithContext(ctx).
		Model(&reportModel{}).
		Where("id = ?", rep.ID).
		Updates(map[string]any{
			"shop_name":     rep.ShopName,
			"name":          rep.Name,
			"place":         optional(rep.Place),
			"rating":        rep.Rating,
			"comment":       rep.Comment,
			"link":          optional(rep.Link),
			"img_url":       rep.ImgURL,
			"date_yyyymmdd": rep.DateYYYYMMDD,
			"user_id":       rep.UserID,
			"updated_at":    time.Now().UTC(),
		})
	if tx.Error != nil {
		return fmt.Errorf("update report: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return errNotFound
	}
	return nil
}

// Delete removes the report and returns the image URL it referenced.
func (r *Repository) Delete(ctx context.Context, id string) (string, error) {
	var imgURL string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m reportModel
		if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound
			}
			return err
		}
		res := tx.Where("id = ?", id).Delete(&reportModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNotFound
		}
		imgURL = m.ImgURL
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("delete report: %w", err)
	}
	return imgURL, nil
}

var errNotFound = apperr.NotFound("report not found")

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
