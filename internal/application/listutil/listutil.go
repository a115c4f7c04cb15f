// Package listutil parses paging parameters for list queries.
package listutil

import (
	"errors"
	"net/url"
	"strconv"
)

// MaxPageSize caps the number of rows a single list query may return.
const MaxPageSize = 500

// DefaultPerPage applies when page is given without per_page.
const DefaultPerPage = 20

// ErrInvalidPage is returned for malformed or out-of-range paging values.
var ErrInvalidPage = errors.New("invalid paging parameters")

// Page carries the window a list query should return.
// A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

// ParsePage extracts paging from URL query values. Two forms are accepted:
// limit/offset, or page/per_page (1-indexed page). Mixing the forms is an error.
// PRE: none
// POST: Limit is within [0, MaxPageSize] and Offset >= 0, or ErrInvalidPage is returned
func ParsePage(q url.Values) (Page, error) {
	hasLimit := q.Has("limit") || q.Has("offset")
	hasPage := q.Has("page") || q.Has("per_page")
	if hasLimit && hasPage {
		return Page{}, ErrInvalidPage
	}

	if hasPage {
		page, err := parseInt(q.Get("page"), 1)
		if err != nil || page < 1 {
			return Page{}, ErrInvalidPage
		}
		perPage, err := parseInt(q.Get("per_page"), DefaultPerPage)
		if err != nil || perPage < 1 || perPage > MaxPageSize {
			return Page{}, ErrInvalidPage
		}
		return Page{Limit: perPage, Offset: (page - 1) * perPage}, nil
	}

	limit, err := parseInt(q.Get("limit"), 0)
	if err != nil || limit < 0 || limit > MaxPageSize {
		return Page{}, ErrInvalidPage
	}
	offset, err := parseInt(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		return Page{}, ErrInvalidPage
	}
	return Page{Limit: limit, Offset: offset}, nil
}

func parseInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
