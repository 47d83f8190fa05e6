package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/errors"
)

func addressInput(name string) AddressInput {
	return AddressInput{
		FullName:   name,
		Phone:      "+1 555 0100",
		Line1:      "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "us",
	}
}

func TestAddressDefaults(t *testing.T) {
	ctx := context.Background()
	uc := NewAddressUseCase(newTestStore().Addresses(), 3)

	home, err := uc.CreateAddress(ctx, "u1", addressInput("Home"))
	require.NoError(t, err)
	assert.True(t, home.IsDefault)
	assert.Equal(t, "US", home.Country)

	work, err := uc.CreateAddress(ctx, "u1", addressInput("Work"))
	require.NoError(t, err)
	assert.False(t, work.IsDefault)

	require.NoError(t, uc.SetDefaultAddress(ctx, "u1", work.ID))
	list, err := uc.ListAddresses(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, work.ID, list[0].ID)
	assert.False(t, list[1].IsDefault)

	require.NoError(t, uc.DeleteAddress(ctx, "u1", work.ID))
	list, err = uc.ListAddresses(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsDefault)
}

func TestAddressCapAndOwnership(t *testing.T) {
	ctx := context.Background()
	uc := NewAddressUseCase(newTestStore().Addresses(), 2)

	a, err := uc.CreateAddress(ctx, "u1", addressInput("A"))
	require.NoError(t, err)
	_, err = uc.CreateAddress(ctx, "u1", addressInput("B"))
	require.NoError(t, err)
	_, err = uc.CreateAddress(ctx, "u1", addressInput("C"))
	assert.True(t, errors.Is(err, errors.CodeConflict))

	_, err = uc.UpdateAddress(ctx, "u2", a.ID, addressInput("Stolen"))
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	err = uc.DeleteAddress(ctx, "u2", a.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	_, err = shippingAddress(ctx, uc.addressRepo, "u2", a.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	bad := addressInput("A")
	bad.Country = "USA"
	_, err = uc.CreateAddress(ctx, "u3", bad)
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestUpdateAddressCanBecomeDefault(t *testing.T) {
	ctx := context.Background()
	uc := NewAddressUseCase(newTestStore().Addresses(), 5)

	_, err := uc.CreateAddress(ctx, "u1", addressInput("A"))
	require.NoError(t, err)
	b, err := uc.CreateAddress(ctx, "u1", addressInput("B"))
	require.NoError(t, err)

	in := addressInput("B2")
	in.IsDefault = true
	updated, err := uc.UpdateAddress(ctx, "u1", b.ID, in)
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)
	assert.Equal(t, "B2", updated.FullName)

	def, err := shippingAddress(ctx, uc.addressRepo, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, b.ID, def.ID)
}
