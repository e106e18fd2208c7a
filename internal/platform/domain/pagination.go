package domain

import "math"

// PageRequest is an offset window expressed as (from, size). The window is
// aligned to whole pages: page index is from/size and the offset is
// page*size, so a from that is not a multiple of size rounds down.
type PageRequest struct {
	from int
	size int
}

// NewPageRequest validates from >= 0 and size >= 1.
func NewPageRequest(from, size int) (PageRequest, error) {
	if from < 0 {
		return PageRequest{}, NewValidationError("from must not be negative")
	}
	if size < 1 {
		return PageRequest{}, NewValidationError("size must be positive")
	}
	return PageRequest{from: from, size: size}, nil
}

func (p PageRequest) From() int { return p.from }
func (p PageRequest) Size() int { return p.size }

// Page returns the zero-based page index.
func (p PageRequest) Page() int { return p.from / p.size }

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int { return p.Page() * p.size }

// Limit returns the maximum number of rows in the page.
func (p PageRequest) Limit() int { return p.size }

// PaginatedResult wraps a page of items with counters for page/limit style listings.
type PaginatedResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewPaginatedResult builds a PaginatedResult, computing the page count.
func NewPaginatedResult[T any](items []T, total int64, page, limit int) PaginatedResult[T] {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return PaginatedResult[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
