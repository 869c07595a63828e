// Package pagination defines the query-parameter contract shared by every
// listing endpoint: a normalized page request, a windowed result with its
// total count, and the response metadata derived from them.
package pagination

import (
	"net/url"
	"strconv"
)

const (
	// DefaultPage is used when the page parameter is absent or malformed.
	DefaultPage = 1
	// DefaultPerPage is used when the per_page parameter is absent or malformed.
	DefaultPerPage = 10
	// MaxPerPage caps the window size a client may request.
	MaxPerPage = 100

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Limits carries the configured paging bounds. The zero value falls back
// to the package defaults, so callers without configuration can use it
// directly.
type Limits struct {
	DefaultPerPage int
	MaxPerPage     int
}

func (l Limits) normalized() Limits {
	if l.DefaultPerPage <= 0 {
		l.DefaultPerPage = DefaultPerPage
	}
	if l.MaxPerPage <= 0 {
		l.MaxPerPage = MaxPerPage
	}
	return l
}

// PageRequest is the normalized form of a listing query string.
type PageRequest struct {
	Page    int
	PerPage int
	Sort    string
	Order   string
}

// Offset returns the number of rows to skip for the requested window.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.PerPage
}

// Parse normalizes raw query values into a PageRequest using the
// configured bounds. Malformed numeric input falls back to defaults
// instead of failing: a non-numeric or < 1 page becomes 1, a non-numeric
// or < 1 per_page becomes the default window, and per_page is capped at
// the maximum. Unknown keys are ignored.
func (l Limits) Parse(values url.Values) PageRequest {
	l = l.normalized()
	req := PageRequest{Page: DefaultPage, PerPage: l.DefaultPerPage}

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page >= 1 {
		req.Page = page
	}
	if perPage, err := strconv.Atoi(values.Get("per_page")); err == nil && perPage >= 1 {
		req.PerPage = perPage
	}
	if req.PerPage > l.MaxPerPage {
		req.PerPage = l.MaxPerPage
	}

	req.Sort = values.Get("sort")
	if order := values.Get("order"); order == OrderAsc || order == OrderDesc {
		req.Order = order
	}

	return req
}

// Parse normalizes raw query values using the package default bounds.
func Parse(values url.Values) PageRequest {
	return Limits{}.Parse(values)
}

// PageResult is one window of a filtered set together with the size of the
// whole set. TotalCount is independent of the window: it always reflects
// the full filtered set.
type PageResult[T any] struct {
	Items      []T
	TotalCount int
}

// PageCount derives the number of pages for the given window size. A
// non-positive limit yields 0 so a degenerate request can never divide by
// zero.
func PageCount(totalCount, limit int) int {
	if limit <= 0 || totalCount <= 0 {
		return 0
	}
	return (totalCount + limit - 1) / limit
}

// PageCount reports how many pages of the given size cover the result.
func (r PageResult[T]) PageCount(limit int) int {
	return PageCount(r.TotalCount, limit)
}

// Meta is the pagination block of a response envelope.
type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalCount int `json:"total_count"`
	PageCount  int `json:"page_count"`
}

// NewMeta builds response metadata from the normalized request and total.
func NewMeta(req PageRequest, totalCount int) *Meta {
	return &Meta{
		Page:       req.Page,
		PerPage:    req.PerPage,
		TotalCount: totalCount,
		PageCount:  PageCount(totalCount, req.PerPage),
	}
}
