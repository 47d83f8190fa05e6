package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationDefaultsAndCaps(t *testing.T) {
	p := NewPagination(0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, 0, p.Offset)

	p = NewPagination(3, 500)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 200, p.Offset)

	p = NewPagination(2, 100)
	assert.Equal(t, 100, p.PageSize)

	p = NewPagination(1, -5)
	assert.Equal(t, 20, p.PageSize)
}

func TestBounds(t *testing.T) {
	start, end := Bounds(10, 3, 8)
	assert.Equal(t, 8, start)
	assert.Equal(t, 10, end)

	start, end = Bounds(10, 0, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 10, end)

	start, end = Bounds(5, 2, 9)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}
