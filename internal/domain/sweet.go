package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sweet struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	IsAvailable bool            `json:"is_available"`
	CreatedBy   uint            `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SweetFilters holds the optional listing predicates. Empty or nil fields
// are skipped; supplied fields are combined conjunctively.
type SweetFilters struct {
	Name     string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// SweetUpdate carries a partial field edit. Nil fields are left untouched.
type SweetUpdate struct {
	Name        *string
	Category    *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int
}

type Pagination struct {
	Page    int
	PerPage int
}

func (p Pagination) Offset() int {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * p.Limit()
}

func (p Pagination) Limit() int {
	switch {
	case p.PerPage < 1:
		return 20
	case p.PerPage > 100:
		return 100
	default:
		return p.PerPage
	}
}
