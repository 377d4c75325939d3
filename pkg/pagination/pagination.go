package pagination

import (
	"strconv"
	"strings"
)

const (
	// DefaultPage is used when the page query value is absent or invalid.
	DefaultPage = 1
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows a single page can request.
	MaxLimit = 100
)

// Params holds page-number pagination inputs.
type Params struct {
	Page  int
	Limit int
}

// Meta describes the page that was produced.
type Meta struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int
	HasNext     bool
	HasPrev     bool
	Limit       int
}

// Parse reads raw query values, falling back to defaults for anything non-numeric.
func Parse(page, limit string) Params {
	return Normalize(atoi(page), atoi(limit))
}

// Normalize enforces defaults and the maximum limit.
func Normalize(page, limit int) Params {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Paginate slices items for the requested page. Items must already be sorted.
func Paginate[T any](items []T, params Params) ([]T, Meta) {
	params = Normalize(params.Page, params.Limit)
	total := len(items)
	totalPages := (total + params.Limit - 1) / params.Limit

	// Pages past the end are empty. Comparing page counts first keeps the offset from overflowing.
	start := total
	if params.Page-1 < totalPages {
		start = (params.Page - 1) * params.Limit
	}
	end := start + params.Limit
	if end > total {
		end = total
	}

	page := make([]T, end-start)
	copy(page, items[start:end])

	return page, Meta{
		CurrentPage: params.Page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     params.Page < totalPages,
		HasPrev:     params.Page > 1,
		Limit:       params.Limit,
	}
}

func atoi(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}
