package web

import (
	"embed"
	"html/template"

	"foodreport/internal/domain/report"
)

//go:embed templates/*.html
var templateFS embed.FS

// reportView is a report as shown on the listing pages.
type reportView struct {
	ID       string
	Title    string
	ShopName string
	Name     string
	Place    string
	Rating   int
	Comment  string
	Link     string
	ImgURL   string
	Date     string
}

func toViews(reports []report.Report) []reportView {
	out := make([]reportView, 0, len(reports))
	for _, r := range reports {
		out = append(out, reportView{
			ID:       r.ID,
			Title:    r.ShopName + " " + r.Name,
			ShopName: r.ShopName,
			Name:     r.Name,
			Place:    r.Place,
			Rating:   r.Rating,
			Comment:  r.Comment,
			Link:     r.Link,
			ImgURL:   r.ImgURL,
			Date:     displayDate(r.DateYYYYMMDD),
		})
	}
	return out
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}
