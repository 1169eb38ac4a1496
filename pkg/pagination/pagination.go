package pagination

import (
	"net/http"
	"strconv"
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{
		Page:   1,
		Limit:  10,
		Offset: 0,
	}
}

// FromRequest extracts pagination parameters from an HTTP request.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil && v > 0 && v <= 100 {
			p.Limit = v
		}
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// Meta describes the pagination state of a review list response.
type Meta struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	Limit        int `json:"limit"`
	TotalReviews int `json:"totalReviews"`
}

// NewMeta computes pagination metadata for the given total row count. A
// non-positive limit falls back to the default so a zero-value Params cannot
// divide by zero.
func NewMeta(total int, params Params) Meta {
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultParams().Limit
	}

	totalPages := total / limit
	if total%limit > 0 {
		totalPages++
	}

	return Meta{
		CurrentPage:  params.Page,
		TotalPages:   totalPages,
		Limit:        limit,
		TotalReviews: total,
	}
}
