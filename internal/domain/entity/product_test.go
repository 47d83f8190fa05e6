package entity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func sampleProduct() *Product {
	return &Product{
		ID:     "p1",
		Name:   "Tee",
		Price:  20,
		Status: ProductStatusActive,
		Stock:  3,
		Images: []string{"tee.jpg"},
		Variants: []ProductVariant{
			{ID: "v1", SKU: "TEE-S", Label: "S", Stock: 2},
			{ID: "v2", SKU: "TEE-XL", Label: "XL", Stock: 1, Price: floatPtr(24), Image: "tee-xl.jpg"},
		},
	}
}

func TestProductFindVariantByIDOrSKU(t *testing.T) {
	p := sampleProduct()

	v, ok := p.FindVariant(strPtr("v2"))
	require.True(t, ok)
	assert.Equal(t, "XL", v.Label)

	v, ok = p.FindVariant(strPtr("TEE-S"))
	require.True(t, ok)
	assert.Equal(t, "v1", v.ID)

	_, ok = p.FindVariant(nil)
	assert.False(t, ok)
	_, ok = p.FindVariant(strPtr("nope"))
	assert.False(t, ok)
}

func TestProductUnitPrice(t *testing.T) {
	p := sampleProduct()
	xl, _ := p.FindVariant(strPtr("v2"))

	assert.Equal(t, 20.0, p.UnitPrice(nil))
	assert.Equal(t, 24.0, p.UnitPrice(xl))

	p.SalePrice = floatPtr(15)
	assert.Equal(t, 15.0, p.UnitPrice(xl))
	p.SalePrice = floatPtr(30)
	assert.Equal(t, 24.0, p.UnitPrice(xl))
}

func TestProductApplyStock(t *testing.T) {
	p := sampleProduct()

	require.NoError(t, p.ApplyStock(strPtr("v1"), -2))
	assert.ErrorIs(t, p.ApplyStock(strPtr("v1"), -1), ErrInsufficientStock)
	assert.ErrorIs(t, p.ApplyStock(strPtr("zz"), -1), ErrUnknownVariant)
	require.NoError(t, p.ApplyStock(nil, -3))
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, "tee-xl.jpg", p.Thumbnail(&p.Variants[1]))
	assert.Equal(t, "tee.jpg", p.Thumbnail(nil))
}

func TestProductApplyRating(t *testing.T) {
	p := sampleProduct()

	p.ApplyRating(0, 5)
	p.ApplyRating(0, 4)
	assert.Equal(t, 2, p.RatingCount)
	assert.Equal(t, 4.5, p.RatingAverage)

	p.ApplyRating(4, 2)
	assert.Equal(t, 3.5, p.RatingAverage)

	p.ApplyRating(5, 0)
	p.ApplyRating(2, 0)
	assert.Equal(t, 0, p.RatingCount)
	assert.Equal(t, 0.0, p.RatingAverage)
}

func TestMatchesQuery(t *testing.T) {
	p := sampleProduct()
	assert.True(t, p.MatchesQuery(""))
	assert.True(t, p.MatchesQuery(strings.ToUpper(p.Name[:3])))
	assert.False(t, p.MatchesQuery("no-such-thing"))
}

func TestSortProducts(t *testing.T) {
	now := time.Now()
	a := &Product{Name: "b", Price: 10, CreatedAt: now.Add(-time.Hour), RatingAverage: 4}
	b := &Product{Name: "a", Price: 5, CreatedAt: now, RatingAverage: 4.5}
	products := []*Product{a, b}

	SortProducts(products, ProductSortPriceDesc)
	assert.Equal(t, []*Product{a, b}, products)

	SortProducts(products, ProductSortPriceAsc)
	assert.Equal(t, []*Product{b, a}, products)

	SortProducts(products, "")
	assert.Equal(t, []*Product{b, a}, products)

	SortProducts(products, ProductSortName)
	assert.Equal(t, []*Product{b, a}, products)
}
