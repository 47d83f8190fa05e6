package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/adapter/repository/memory"
	"storefront/internal/domain/entity"
	"storefront/pkg/errors"
)

func newCartUseCase(store *memory.Store) *CartUseCase {
	u := NewCartUseCase(store.Carts(), store.Products())
	u.now = tickingClock()
	return u
}

func cartFixture(t *testing.T) (*memory.Store, *CartUseCase) {
	t.Helper()
	store := newTestStore()
	seedProduct(t, store, "pA",
		entity.ProductVariant{ID: "vX", SKU: "A-X", Label: "Small", Stock: 20},
		entity.ProductVariant{ID: "vY", SKU: "A-Y", Label: "Large", Price: floatPtr(55), Stock: 1},
	)
	seedProduct(t, store, "pB")
	return store, newCartUseCase(store)
}

func findLine(view *CartView, productID string, variantID *string) []CartLine {
	var out []CartLine
	for _, l := range view.Items {
		if l.ProductID != productID {
			continue
		}
		if (variantID == nil) != (l.VariantID == nil) {
			continue
		}
		if variantID != nil && *variantID != *l.VariantID {
			continue
		}
		out = append(out, l)
	}
	return out
}

func TestSyncCombinesQuantities(t *testing.T) {
	ctx := context.Background()
	store, u := cartFixture(t)

	_, err := u.AddToCart(ctx, entity.GuestOwner("g1"), CartItemInput{ProductID: "pA", VariantID: strPtr("vX"), Quantity: 2})
	require.NoError(t, err)
	_, err = u.AddToCart(ctx, entity.UserOwner("u1"), CartItemInput{ProductID: "pA", VariantID: strPtr("vX"), Quantity: 3})
	require.NoError(t, err)

	view, err := u.SyncCartsOnLogin(ctx, "u1", "g1")
	require.NoError(t, err)
	lines := findLine(view, "pA", strPtr("vX"))
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, "Product pA", lines[0].Name)

	guest, err := store.Carts().Get(ctx, entity.GuestOwner("g1"))
	require.NoError(t, err)
	assert.Nil(t, guest)
}

func TestSyncPassesNewItemsThrough(t *testing.T) {
	ctx := context.Background()
	store, u := cartFixture(t)

	_, err := u.AddToCart(ctx, entity.GuestOwner("g1"), CartItemInput{ProductID: "pB", Quantity: 1})
	require.NoError(t, err)
	_, err = u.AddToCart(ctx, entity.UserOwner("u1"), CartItemInput{ProductID: "pA", VariantID: strPtr("vX"), Quantity: 1})
	require.NoError(t, err)

	view, err := u.SyncCartsOnLogin(ctx, "u1", "g1")
	require.NoError(t, err)
	lines := findLine(view, "pB", nil)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Len(t, view.Items, 2)

	guest, err := store.Carts().Get(ctx, entity.GuestOwner("g1"))
	require.NoError(t, err)
	assert.Nil(t, guest)

	userCart, err := store.Carts().Get(ctx, entity.UserOwner("u1"))
	require.NoError(t, err)
	assert.Empty(t, userCart.GuestID)
}

func TestSyncTwiceIsNoop(t *testing.T) {
	ctx := context.Background()
	_, u := cartFixture(t)

	_, err := u.AddToCart(ctx, entity.GuestOwner("g1"), CartItemInput{ProductID: "pB", Quantity: 2})
	require.NoError(t, err)

	first, err := u.SyncCartsOnLogin(ctx, "u1", "g1")
	require.NoError(t, err)
	second, err := u.SyncCartsOnLogin(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, first.TotalQuantity, second.TotalQuantity)
	assert.Equal(t, 2, second.TotalQuantity)
}

func TestSyncWithoutGuestReturnsUserCart(t *testing.T) {
	ctx := context.Background()
	_, u := cartFixture(t)

	view, err := u.SyncCartsOnLogin(ctx, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = u.SyncCartsOnLogin(ctx, "", "g1")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}

func TestAddToCartCanonicalizesVariantAndMerges(t *testing.T) {
	ctx := context.Background()
	_, u := cartFixture(t)
	owner := entity.GuestOwner("g1")

	_, err := u.AddToCart(ctx, owner, CartItemInput{ProductID: "pA", VariantID: strPtr("A-X"), Quantity: 1, Variant: map[string]interface{}{"gift": true}})
	require.NoError(t, err)
	view, err := u.AddToCart(ctx, owner, CartItemInput{ProductID: "pA", VariantID: strPtr(" vX "), Quantity: 2})
	require.NoError(t, err)

	lines := findLine(view, "pA", strPtr("vX"))
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, true, lines[0].Variant["gift"])
	assert.Equal(t, "A-X", lines[0].Variant["sku"])
	assert.Equal(t, 120.0, view.Subtotal)
}

func TestAddToCartRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	store, u := cartFixture(t)
	owner := entity.GuestOwner("g1")

	_, err := u.AddToCart(ctx, owner, CartItemInput{ProductID: "pA", Quantity: 0})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = u.AddToCart(ctx, owner, CartItemInput{ProductID: "missing", Quantity: 1})
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	_, err = u.AddToCart(ctx, owner, CartItemInput{ProductID: "pA", VariantID: strPtr("nope"), Quantity: 1})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = u.AddToCart(ctx, owner, CartItemInput{ProductID: "pA", VariantID: strPtr("vY"), Quantity: 2})
	assert.True(t, errors.Is(err, errors.CodeConflict))

	draft := &entity.Product{ID: "pD", Name: "Draft", Status: entity.ProductStatusDraft, Stock: 5}
	require.NoError(t, store.Products().Create(ctx, draft))
	_, err = u.AddToCart(ctx, owner, CartItemInput{ProductID: "pD", Quantity: 1})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = u.AddToCart(ctx, entity.CartOwner{UserID: "u1", GuestID: "g1"}, CartItemInput{ProductID: "pB", Quantity: 1})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	view, err := u.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestUpdateQuantityKeepsZeroRows(t *testing.T) {
	ctx := context.Background()
	_, u := cartFixture(t)
	owner := entity.UserOwner("u1")

	_, err := u.AddToCart(ctx, owner, CartItemInput{ProductID: "pB", Quantity: 2})
	require.NoError(t, err)

	view, err := u.UpdateCartItemQuantity(ctx, owner, "pB", nil, 0)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 0, view.Items[0].Quantity)

	_, err = u.UpdateCartItemQuantity(ctx, owner, "pB", nil, -1)
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = u.UpdateCartItemQuantity(ctx, owner, "pA", strPtr("vX"), 1)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestRemoveAndClearCart(t *testing.T) {
	ctx := context.Background()
	_, u := cartFixture(t)
	owner := entity.UserOwner("u1")

	_, err := u.AddToCart(ctx, owner, CartItemInput{ProductID: "pA", VariantID: strPtr("vX"), Quantity: 1})
	require.NoError(t, err)
	_, err = u.AddToCart(ctx, owner, CartItemInput{ProductID: "pB", Quantity: 1})
	require.NoError(t, err)

	view, err := u.RemoveCartItem(ctx, owner, "pA", strPtr("vX"))
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)

	view, err = u.ClearCart(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.NotEmpty(t, view.ID)
}
