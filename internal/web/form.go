package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"foodreport/internal/apiclient"
	"foodreport/internal/domain/report"
	"foodreport/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

var formMessages = map[string]string{
	"shopName": "店名は必須です。",
	"name":     "料理名は必須です。",
	"place":    "場所は必須です。",
	"rating":   "評価は1から5の間で入力してください。",
	"date":     "日付は YYYY-MM-DD 形式で入力してください。",
	"comment":  "コメントは最低10文字必要です。",
	"link":     "リンクはURL形式で入力してください。",
}

const (
	msgImageRequired = "画像は必須です。"
	msgImageTooLarge = "最大ファイルサイズは10MBです。"
	msgImageType     = "JPG、PNGのみアップロード可能です。"
)

// reportForm is the admin add/edit form as typed by the user.
type reportForm struct {
	ShopName string `json:"shopName" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Place    string `json:"place" validate:"required"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Comment  string `json:"comment" validate:"min=10"`
	Link     string `json:"link" validate:"omitempty,url"`

	// ImgURL is the current photo on the edit form.
	ImgURL string `json:"-"`
}

func newReportForm() reportForm {
	return reportForm{Rating: 3, Date: today()}
}

func formFromReport(r report.Report) reportForm {
	return reportForm{
		ShopName: r.ShopName,
		Name:     r.Name,
		Place:    r.Place,
		Rating:   r.Rating,
		Date:     displayDate(r.DateYYYYMMDD),
		Comment:  r.Comment,
		Link:     r.Link,
		ImgURL:   r.ImgURL,
	}
}

func readReportForm(c *gin.Context) (reportForm, map[string]string) {
	f := reportForm{
		ShopName: strings.TrimSpace(c.PostForm("shopName")),
		Name:     strings.TrimSpace(c.PostForm("name")),
		Place:    strings.TrimSpace(c.PostForm("place")),
		Date:     strings.TrimSpace(c.PostForm("date")),
		Comment:  strings.TrimSpace(c.PostForm("comment")),
		Link:     strings.TrimSpace(c.PostForm("link")),
		ImgURL:   c.PostForm("imgUrl"),
	}
	f.Rating, _ = strconv.Atoi(strings.TrimSpace(c.PostForm("rating")))

	errs := make(map[string]string)
	for field := range validator.Validate(f) {
		if msg, ok := formMessages[field]; ok {
			errs[field] = msg
		}
	}
	return f, errs
}

// readImage returns the uploaded photo, nil when none was chosen, or a
// user facing message when the file is unacceptable.
func readImage(c *gin.Context) (*report.Image, string) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, ""
		}
		return nil, msgImageRequired
	}
	if fh.Size > report.MaxImageSize {
		return nil, msgImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, msgImageRequired
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, report.MaxImageSize+1))
	if err != nil {
		return nil, msgImageRequired
	}
	if len(data) == 0 {
		return nil, ""
	}
	if len(data) > report.MaxImageSize {
		return nil, msgImageTooLarge
	}
	switch strings.Split(http.DetectContentType(data), ";")[0] {
	case "image/jpeg", "image/png":
	default:
		return nil, msgImageType
	}
	return &report.Image{Filename: fh.Filename, Data: data}, ""
}

func (f reportForm) toAPI(id string, img *report.Image) apiclient.ReportForm {
	date, _ := wireDate(f.Date)
	return apiclient.ReportForm{
		ID:           id,
		ShopName:     f.ShopName,
		Name:         f.Name,
		Place:        f.Place,
		Rating:       f.Rating,
		Comment:      f.Comment,
		Link:         f.Link,
		DateYYYYMMDD: date,
		Image:        img,
	}
}
