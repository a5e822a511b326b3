package models

import (
	"fmt"
	"math"

	"github.com/dmitrijs2005/userdir/internal/common"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is a 1-based pagination window.
type Page struct {
	Page  int
	Limit int
}

// NewPage validates a requested window. Zero values select the defaults;
// negative values are rejected. Limits above MaxLimit are clamped. Pages whose
// offset would not fit in an int are rejected.
func NewPage(page, limit int) (Page, error) {
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if page < 1 {
		return Page{}, fmt.Errorf("%w: page must be >= 1", common.ErrValidation)
	}
	if limit < 1 {
		return Page{}, fmt.Errorf("%w: limit must be >= 1", common.ErrValidation)
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page-1 > math.MaxInt/limit {
		return Page{}, fmt.Errorf("%w: page is out of range", common.ErrValidation)
	}
	return Page{Page: page, Limit: limit}, nil
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages is ceil(total/limit).
func (p Page) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
