// Package paginate slices a filtered record set deterministically.
package paginate

import (
	"errors"

	"aircatalog/internal/models"
)

// MaxPageSize caps a single response; larger requests are clamped.
const MaxPageSize = 50

var (
	ErrInvalidPage     = errors.New("page must be >= 1")
	ErrInvalidPageSize = errors.New("page size must be >= 1")
)

// Page is one slice of the full set. TotalCount is the size of the set
// before slicing, so callers can render page counts.
type Page struct {
	Items      []models.CityRecord `json:"items"`
	TotalCount int                 `json:"total_count"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
}

// Paginate returns the requested page. A page number past the end
// yields empty items with a still-correct total; a page number below 1
// is a caller error, not silently clamped.
func Paginate(records []models.CityRecord, page, pageSize int) (Page, error) {
	if page < 1 {
		return Page{}, ErrInvalidPage
	}
	if pageSize < 1 {
		return Page{}, ErrInvalidPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	start := (page - 1) * pageSize
	end := start + pageSize

	items := []models.CityRecord{}
	if start < len(records) {
		if end > len(records) {
			end = len(records)
		}
		items = append(items, records[start:end]...)
	}

	return Page{
		Items:      items,
		TotalCount: len(records),
		Page:       page,
		PageSize:   pageSize,
	}, nil
}
