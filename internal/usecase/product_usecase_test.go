package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/entity"
	"storefront/internal/infrastructure/cache"
	"storefront/pkg/errors"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "air-max-90", slugify("  Air Max 90!! "))
	assert.Equal(t, "", slugify("***"))
}

func TestProductLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	uc := NewProductUseCase(store.Products(), cache.New(time.Minute), time.Minute)

	created, err := uc.CreateProduct(ctx, ProductInput{
		Name:     "Trail Runner",
		Category: "shoes",
		Brand:    "Acme",
		Price:    80,
		Status:   entity.ProductStatusActive,
		Variants: []ProductVariantInput{{SKU: "TR-42", Label: "42", Stock: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, "trail-runner", created.Slug)
	require.Len(t, created.Variants, 1)
	assert.NotEmpty(t, created.Variants[0].ID)

	_, err = uc.CreateProduct(ctx, ProductInput{Name: "Trail Runner", Category: "shoes", Price: 10})
	assert.True(t, errors.Is(err, errors.CodeConflict))

	bySlug, err := uc.GetProduct(ctx, "trail-runner", false)
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	page, err := uc.ListProducts(ctx, ProductQuery{Category: "shoes"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	updated, err := uc.UpdateProduct(ctx, created.ID, ProductInput{
		Name:     "Trail Runner",
		Category: "shoes",
		Price:    90,
		Status:   entity.ProductStatusDraft,
	})
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	_, err = uc.GetProduct(ctx, created.ID, false)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	got, err := uc.GetProduct(ctx, created.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 90.0, got.Price)

	page, err = uc.ListProducts(ctx, ProductQuery{Category: "shoes"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Total)
}

func TestProductInputValidation(t *testing.T) {
	ctx := context.Background()
	uc := NewProductUseCase(newTestStore().Products(), nil, time.Minute)

	_, err := uc.CreateProduct(ctx, ProductInput{Category: "shoes"})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = uc.CreateProduct(ctx, ProductInput{Name: "X", Category: "c", Price: 10, SalePrice: floatPtr(12)})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = uc.CreateProduct(ctx, ProductInput{
		Name: "X", Category: "c", Price: 10,
		Variants: []ProductVariantInput{{SKU: "A"}, {SKU: "A"}},
	})
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestSearchProducts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedProduct(t, store, "p1")
	seedProduct(t, store, "p2")
	uc := NewProductUseCase(store.Products(), nil, time.Minute)

	_, err := uc.SearchProducts(ctx, "  ", 1, 10)
	assert.True(t, errors.Is(err, errors.CodeValidation))

	page, err := uc.SearchProducts(ctx, "PRODUCT P2", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "p2", page.Products[0].ID)
}
