// Package pagination provides the shared page/perPage handling for the
// storefront's list endpoints.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultPerPage is the page size used when the request does not ask for one.
	DefaultPerPage = 20

	// MaxPerPage caps the page size a client may request.
	MaxPerPage = 100
)

// Params holds the pagination window extracted from a request's query string.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Offset  int `json:"-"`
}

// Default returns the first page with the default page size.
func Default() Params {
	return Params{Page: 1, PerPage: DefaultPerPage}
}

// FromRequest reads the `page` and `perPage` query parameters. Missing,
// malformed, or out-of-range values fall back to the defaults.
func FromRequest(r *http.Request) Params {
	p := Default()

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("perPage")); err == nil && v > 0 && v <= MaxPerPage {
		p.PerPage = v
	}

	p.Offset = (p.Page - 1) * p.PerPage
	return p
}

// Result is the envelope every paginated list endpoint responds with.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"totalCount"`
	Page       int  `json:"page"`
	PerPage    int  `json:"perPage"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewResult wraps one page of data with its navigation metadata. A nil slice
// marshals as an empty JSON array.
func NewResult[T any](data []T, totalCount int, params Params) Result[T] {
	if data == nil {
		data = []T{}
	}

	totalPages := totalCount / params.PerPage
	if totalCount%params.PerPage > 0 {
		totalPages++
	}

	return Result[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}
