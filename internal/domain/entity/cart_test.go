package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartOwnerValidate(t *testing.T) {
	assert.NoError(t, UserOwner("u1").Validate())
	assert.NoError(t, GuestOwner("g1").Validate())
	assert.ErrorIs(t, CartOwner{}.Validate(), ErrInvalidCartOwner)
	assert.ErrorIs(t, CartOwner{UserID: "u1", GuestID: "g1"}.Validate(), ErrInvalidCartOwner)
	assert.Equal(t, "user_u1", UserOwner("u1").DocID())
	assert.Equal(t, "guest_g1", GuestOwner("g1").DocID())
}

func TestCartAddMergesSameSlot(t *testing.T) {
	now := time.Now()
	c := NewCart(UserOwner("u1"), now)

	require.NoError(t, c.Add(CartItem{ProductID: "p1", VariantID: strPtr("v1"), Quantity: 1, Variant: map[string]interface{}{"label": "S"}}, now))
	require.NoError(t, c.Add(CartItem{ProductID: "p1", VariantID: strPtr("v1"), Quantity: 2, Variant: map[string]interface{}{"color": "red"}}, now))
	require.NoError(t, c.Add(CartItem{ProductID: "p1", VariantID: strPtr(""), Quantity: 1}, now))

	require.Len(t, c.Items, 2)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, "S", c.Items[0].Variant["label"])
	assert.Equal(t, "red", c.Items[0].Variant["color"])
	assert.Nil(t, c.Items[1].VariantID, "empty variant id collapses to nil")
	assert.Nil(t, c.ExpiresAt, "user carts do not expire")
}

func TestCartAddRejectsNonPositiveQuantity(t *testing.T) {
	c := NewCart(GuestOwner("g1"), time.Now())
	assert.ErrorIs(t, c.Add(CartItem{ProductID: "p1", Quantity: 0}, time.Now()), ErrInvalidQuantity)
	assert.NotNil(t, c.ExpiresAt)
}

func TestCartSetQuantity(t *testing.T) {
	now := time.Now()
	c := NewCart(UserOwner("u1"), now)
	require.NoError(t, c.Add(CartItem{ProductID: "p1", Quantity: 2}, now))

	assert.ErrorIs(t, c.SetQuantity("p1", nil, -1, now), ErrInvalidQuantity)
	assert.ErrorIs(t, c.SetQuantity("p9", nil, 1, now), ErrCartItemNotFound)
	require.NoError(t, c.SetQuantity("p1", nil, 0, now))
	require.Len(t, c.Items, 1, "zero quantity keeps the row")
	assert.Equal(t, 0, c.Items[0].Quantity)
}

func TestCartRemove(t *testing.T) {
	now := time.Now()
	c := NewCart(UserOwner("u1"), now)
	require.NoError(t, c.Add(CartItem{ProductID: "p1", VariantID: strPtr("a"), Quantity: 1}, now))
	require.NoError(t, c.Add(CartItem{ProductID: "p1", VariantID: strPtr("b"), Quantity: 1}, now))

	assert.True(t, c.Remove("p1", strPtr("a"), now))
	assert.False(t, c.Remove("p1", strPtr("a"), now))
	require.Len(t, c.Items, 1)
	assert.Equal(t, "b", *c.Items[0].VariantID)
}

func TestCartAbsorbCombinesQuantities(t *testing.T) {
	now := time.Now()
	user := NewCart(UserOwner("u1"), now)
	require.NoError(t, user.Add(CartItem{ProductID: "A", VariantID: strPtr("X"), Quantity: 3}, now))

	guest := NewCart(GuestOwner("g1"), now)
	require.NoError(t, guest.Add(CartItem{ProductID: "A", VariantID: strPtr("X"), Quantity: 2}, now))
	require.NoError(t, guest.Add(CartItem{ProductID: "B", Quantity: 1}, now))

	user.Absorb(guest, now)

	require.Len(t, user.Items, 2)
	assert.Equal(t, 5, user.Items[0].Quantity)
	assert.Equal(t, "B", user.Items[1].ProductID)
	assert.Equal(t, 1, user.Items[1].Quantity)
	assert.Empty(t, user.GuestID)
	assert.Equal(t, 6, user.TotalQuantity())
}

func TestMergeItemsMatchesSnapshotVariantKey(t *testing.T) {
	now := time.Now()
	base := []CartItem{{ProductID: "A", Quantity: 1, Variant: map[string]interface{}{"sku": "SKU-1"}}}
	incoming := []CartItem{{ProductID: "A", VariantID: strPtr("SKU-1"), Quantity: 4}}

	merged := MergeItems(base, incoming, now)

	require.Len(t, merged, 1)
	assert.Equal(t, 5, merged[0].Quantity)
	assert.Equal(t, "SKU-1", *merged[0].VariantID)
}

func TestCartConsumeTakesOnlyOrderedQuantities(t *testing.T) {
	now := time.Now()
	c := NewCart(UserOwner("u1"), now)
	require.NoError(t, c.Add(CartItem{ProductID: "p1", VariantID: strPtr("A-X"), Quantity: 3, Variant: map[string]interface{}{"_id": "vX", "sku": "A-X"}}, now))
	require.NoError(t, c.Add(CartItem{ProductID: "p2", Quantity: 2}, now))
	require.NoError(t, c.Add(CartItem{ProductID: "p3", Quantity: 1}, now))

	c.Consume([]OrderItem{
		{ProductID: "p1", VariantID: strPtr("vX"), SKU: "A-X", Quantity: 2},
		{ProductID: "p3", Quantity: 1},
	}, now)

	require.Len(t, c.Items, 2)
	x, ok := c.Find("p1", strPtr("A-X"))
	require.True(t, ok)
	assert.Equal(t, 1, x.Quantity)
	p2, ok := c.Find("p2", nil)
	require.True(t, ok)
	assert.Equal(t, 2, p2.Quantity)
	_, ok = c.Find("p3", nil)
	assert.False(t, ok)
}
