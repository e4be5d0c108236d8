package mongo

import (
	"time"

	"foodreport/internal/domain/report"
	"foodreport/internal/domain/user"
)

type reportDocument struct {
	ID           string    `bson:"_id"`
	ShopName     string    `bson:"shopName"`
	Name         string    `bson:"name"`
	Place        string    `bson:"place,omitempty"`
	Rating       int       `bson:"rating"`
	Comment      string    `bson:"comment"`
	Link         string    `bson:"link,omitempty"`
	ImgURL       string    `bson:"imgUrl"`
	DateYYYYMMDD string    `bson:"dateYYYYMMDD"`
	UserID       string    `bson:"userId"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func toReportDocument(r report.Report, now time.Time) reportDocument {
	return reportDocument{
		ID:           r.ID,
		ShopName:     r.ShopName,
		Name:         r.Name,
		Place:        r.Place,
		Rating:       r.Rating,
		Comment:      r.Comment,
		Link:         r.Link,
		ImgURL:       r.ImgURL,
		DateYYYYMMDD: r.DateYYYYMMDD,
		UserID:       r.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (d reportDocument) toDomain() report.Report {
	return report.Report{
		ID:           d.ID,
		ShopName:     d.ShopName,
		Name:         d.Name,
		Place:        d.Place,
		Rating:       d.Rating,
		Comment:      d.Comment,
		Link:         d.Link,
		ImgURL:       d.ImgURL,
		DateYYYYMMDD: d.DateYYYYMMDD,
		UserID:       d.UserID,
	}
}

type userDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d userDocument) toDomain() *user.User {
	return &user.User{ID: d.ID, Name: d.Name, Email: d.Email, CreatedAt: d.CreatedAt}
}
