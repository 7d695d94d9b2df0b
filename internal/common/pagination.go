package common

import (
	"net/http"
	"strconv"
)

// maxPerPage caps list sizes across catalog and order listings.
const maxPerPage = 100

// Pagination is the metadata block attached to every list response.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// ParsePagination reads `page` and `limit` from the query string. Missing or
// malformed values fall back to page 1 and the caller's default size; the
// per-page size is clamped to maxPerPage.
func ParsePagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	page = queryInt(r, "page", 1)
	perPage = queryInt(r, "limit", defaultPerPage)
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
