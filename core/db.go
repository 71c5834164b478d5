package core

import (
	"context"
	"math"
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// MaxOffset bounds the number of rows a page may skip.
const MaxOffset = math.MaxInt32

// Page is an optional 1-based pagination window. A zero Limit means "no pagination".
type Page struct {
	Number int
	Limit  int
}

func (p Page) IsZero() bool { return p.Limit <= 0 }

// InRange reports whether the page starts within MaxOffset.
func (p Page) InRange() bool {
	if p.Number <= 1 || p.Limit <= 0 {
		return true
	}
	return p.Number-1 <= MaxOffset/p.Limit
}

// Offset is capped at MaxOffset so that it never overflows.
func (p Page) Offset() int {
	if p.Number <= 1 || p.Limit <= 0 {
		return 0
	}
	if !p.InRange() {
		return MaxOffset
	}
	return (p.Number - 1) * p.Limit
}

// Pagination describes the window returned alongside a paginated list.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func NewPagination(p Page, total int) *Pagination {
	if p.IsZero() {
		return nil
	}
	number := p.Number
	if number < 1 {
		number = 1
	}
	return &Pagination{
		Page:       number,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: (total + p.Limit - 1) / p.Limit,
	}
}

// Sequencer hands out monotonically increasing numbers per name.
// Implementations must increment and read atomically.
type Sequencer interface {
	Next(ctx context.Context, name string) (int64, error)
}
