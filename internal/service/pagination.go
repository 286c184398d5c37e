package service

import (
	"net/http"

	apperrors "github.com/travel-desk/itinerary-service/pkg/util/errorutil"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is a 1-based page number and requested size.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize applies the default and the cap to the page size.
func (p PageRequest) Normalize() PageRequest {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// NewInvalidPageError is returned for pages outside the result set.
func NewInvalidPageError() error {
	return apperrors.NewDomainError(apperrors.CodeNotFound, "Invalid page.", http.StatusNotFound, nil)
}

// lastPage is the highest addressable page; an empty set still has page 1.
func lastPage(total, pageSize int) int {
	if total == 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}
