package report

import (
	"fmt"
	"sort"
	"strings"

	"foodreport/internal/pkg/apperr"
	"foodreport/internal/pkg/validator"
)

// Report is a published food report. Values are immutable: use New to build
// one and WithUpdatedFields to derive a modified copy.
type Report struct {
	ID           string `json:"id"`
	ShopName     string `json:"shopName"`
	Name         string `json:"name"`
	Place        string `json:"place"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
	Link         string `json:"link"`
	ImgURL       string `json:"imgUrl"`
	DateYYYYMMDD string `json:"dateYYYYMMDD"`
	UserID       string `json:"userId"`
}

// Fields is the full mutable field set. Partial updates are not supported:
// callers merge unchanged values themselves.
type Fields struct {
	ShopName     string `json:"shopName" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Place        string `json:"place"`
	Rating       int    `json:"rating" validate:"min=1,max=5"`
	Comment      string `json:"comment"`
	Link         string `json:"link" validate:"omitempty,url"`
	ImgURL       string `json:"imgUrl" validate:"required"`
	DateYYYYMMDD string `json:"dateYYYYMMDD" validate:"yyyymmdd"`
	UserID       string `json:"userId" validate:"required"`
}

func New(id string, f Fields) (Report, error) {
	if strings.TrimSpace(id) == "" {
		return Report{}, apperr.Validation("id is required")
	}
	f = normalize(f)
	if err := validateFields(f); err != nil {
		return Report{}, err
	}
	return Report{
		ID:           id,
		ShopName:     f.ShopName,
		Name:         f.Name,
		Place:        f.Place,
		Rating:       f.Rating,
		Comment:      f.Comment,
		Link:         f.Link,
		ImgURL:       f.ImgURL,
		DateYYYYMMDD: f.DateYYYYMMDD,
		UserID:       f.UserID,
	}, nil
}

// WithUpdatedFields re-validates f and returns a copy carrying it. The id
// never changes.
func (r Report) WithUpdatedFields(f Fields) (Report, error) {
	return New(r.ID, f)
}

func (r Report) Fields() Fields {
	return Fields{
		ShopName:     r.ShopName,
		Name:         r.Name,
		Place:        r.Place,
		Rating:       r.Rating,
		Comment:      r.Comment,
		Link:         r.Link,
		ImgURL:       r.ImgURL,
		DateYYYYMMDD: r.DateYYYYMMDD,
		UserID:       r.UserID,
	}
}

func normalize(f Fields) Fields {
	f.ShopName = strings.TrimSpace(f.ShopName)
	f.Name = strings.TrimSpace(f.Name)
	f.Place = strings.TrimSpace(f.Place)
	f.Link = strings.TrimSpace(f.Link)
	f.DateYYYYMMDD = strings.TrimSpace(f.DateYYYYMMDD)
	return f
}

var fieldMessages = map[string]string{
	"required": "is required",
	"min":      "must be between 1 and 5",
	"max":      "must be between 1 and 5",
	"url":      "must be a valid URL",
	"yyyymmdd": "must be 8 digits (YYYYMMDD)",
}

func validateFields(f Fields) error {
	errs := validator.Validate(f)
	if len(errs) == 0 {
		return nil
	}

	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		msg, ok := fieldMessages[errs[name]]
		if !ok {
			msg = "is invalid"
		}
		parts = append(parts, fmt.Sprintf("%s %s", name, msg))
	}
	return apperr.Validation("%s", strings.Join(parts, "; "))
}
