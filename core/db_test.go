package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage_Offset(t *testing.T) {
	tests := []struct {
		page Page
		want int
	}{
		{page: Page{}, want: 0},
		{page: Page{Number: 1, Limit: 20}, want: 0},
		{page: Page{Number: 3, Limit: 20}, want: 40},
		{page: Page{Number: -2, Limit: 20}, want: 0},
		{page: Page{Number: 4611686018427387905, Limit: 2}, want: MaxOffset},
		{page: Page{Number: math.MaxInt64, Limit: 500}, want: MaxOffset},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.page.Offset(), "%+v", tt.page)
	}
}

func TestPage_InRange(t *testing.T) {
	tests := []struct {
		page Page
		want bool
	}{
		{page: Page{}, want: true},
		{page: Page{Number: 1 << 40}, want: true},
		{page: Page{Number: MaxOffset/20 + 1, Limit: 20}, want: true},
		{page: Page{Number: MaxOffset/20 + 2, Limit: 20}, want: false},
		{page: Page{Number: 4611686018427387905, Limit: 2}, want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.page.InRange(), "%+v", tt.page)
	}
}

func TestNewPagination(t *testing.T) {
	assert.Nil(t, NewPagination(Page{}, 10))
	assert.Equal(t, &Pagination{Page: 1, Limit: 20, Total: 0, TotalPages: 0}, NewPagination(Page{Limit: 20}, 0))
	assert.Equal(t, &Pagination{Page: 2, Limit: 20, Total: 41, TotalPages: 3}, NewPagination(Page{Number: 2, Limit: 20}, 41))
	assert.Equal(t, &Pagination{Page: 1, Limit: 5, Total: 5, TotalPages: 1}, NewPagination(Page{Number: 1, Limit: 5}, 5))
}

func TestDBOrdering_String(t *testing.T) {
	assert.Equal(t, "created_at DESC", DBOrdering{Field: "created_at"}.String())
	assert.Equal(t, "first_name ASC", DBOrdering{Field: "first_name", Ascending: true}.String())
}
