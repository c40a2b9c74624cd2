package api

import (
	"strings"

	"bank-cards-go/internal/store"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is the caller's raw paging input.
type PageRequest struct {
	Page          int
	Size          int
	SortBy        string
	SortDirection string
}

// normalize floors the page at 0, defaults a zero size, clamps size to
// [1, MaxPageSize] and falls back to createdAt desc for unknown sorting.
func (p PageRequest) normalize() PageRequest {
	out := p
	if out.Page < 0 {
		out.Page = 0
	}
	switch {
	case out.Size == 0:
		out.Size = DefaultPageSize
	case out.Size < 1:
		out.Size = 1
	case out.Size > MaxPageSize:
		out.Size = MaxPageSize
	}

	switch out.SortBy {
	case store.SortFieldCreatedAt, store.SortFieldExpiryDate, store.SortFieldBalance,
		store.SortFieldOwner, store.SortFieldStatus:
	default:
		out.SortBy = store.SortFieldCreatedAt
	}

	if strings.EqualFold(out.SortDirection, "asc") {
		out.SortDirection = "asc"
	} else {
		out.SortDirection = "desc"
	}
	return out
}

func totalPages(total, size int) int {
	if size <= 0 || total == 0 {
		return 0
	}
	return (total + size - 1) / size
}
