package web

import "strconv"

const reportsPerPage = 12

// Pager describes one page of a listing for the templates.
type Pager struct {
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

// parsePage reads ?page=N. Anything that is not a positive integer is page 1.
func parsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// paginate returns the items on page, clamping page into range.
func paginate[T any](items []T, page, perPage int) ([]T, Pager) {
	total := (len(items) + perPage - 1) / perPage
	if total < 1 {
		total = 1
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}

	p := Pager{
		Page:       page,
		TotalPages: total,
		HasPrev:    page > 1,
		HasNext:    page < total,
		PrevPage:   page - 1,
		NextPage:   page + 1,
	}
	return items[start:end], p
}
