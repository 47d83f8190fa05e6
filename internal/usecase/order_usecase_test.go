package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/adapter/repository/memory"
	"storefront/internal/domain/entity"
	"storefront/internal/infrastructure/cache"
	"storefront/internal/infrastructure/mailer"
	"storefront/pkg/errors"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

type orderFixture struct {
	store  *memory.Store
	carts  *CartUseCase
	orders *OrderUseCase
	mail   *recordingMailer
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	store := newTestStore()
	seedProduct(t, store, "pA",
		entity.ProductVariant{ID: "vX", SKU: "A-X", Stock: 5},
		entity.ProductVariant{ID: "vY", SKU: "A-Y", Price: floatPtr(12.5), Stock: 2},
	)
	seedProduct(t, store, "pB")

	addresses := NewAddressUseCase(store.Addresses(), 5)
	_, err := addresses.CreateAddress(context.Background(), "u1", addressInput("Home"))
	require.NoError(t, err)

	mail := &recordingMailer{}
	return &orderFixture{
		store: store,
		carts: newCartUseCase(store),
		orders: NewOrderUseCase(store.Orders(), store.Carts(), store.Products(), store.Addresses(), mail, cache.New(time.Minute), Pricing{
			ShippingFlatFee:       5,
			FreeShippingThreshold: 100,
			Currency:              "USD",
		}),
		mail: mail,
	}
}

func TestShippingFee(t *testing.T) {
	p := Pricing{ShippingFlatFee: 5, FreeShippingThreshold: 50}
	assert.Equal(t, 5.0, p.ShippingFee(49.99))
	assert.Equal(t, 0.0, p.ShippingFee(50))
	assert.Equal(t, 0.0, p.ShippingFee(0))
	assert.Equal(t, 5.0, Pricing{ShippingFlatFee: 5}.ShippingFee(1000))
}

func TestPlaceOrderPricesDecrementsAndConsumesCart(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	owner := entity.UserOwner("u1")

	_, err := f.carts.AddToCart(ctx, owner, CartItemInput{ProductID: "pA", VariantID: strPtr("vY"), Quantity: 2})
	require.NoError(t, err)
	_, err = f.carts.AddToCart(ctx, owner, CartItemInput{ProductID: "pB", Quantity: 1})
	require.NoError(t, err)
	_, err = f.carts.AddToCart(ctx, owner, CartItemInput{ProductID: "pA", VariantID: strPtr("vX"), Quantity: 1})
	require.NoError(t, err)
	_, err = f.carts.UpdateCartItemQuantity(ctx, owner, "pA", strPtr("vX"), 0)
	require.NoError(t, err)

	order, err := f.orders.PlaceOrder(ctx, "u1", "u1@example.com", PlaceOrderInput{})
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 65.0, order.Subtotal)
	assert.Equal(t, 5.0, order.ShippingFee)
	assert.Equal(t, 70.0, order.Total)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	require.NotNil(t, order.ShippingAddress)
	assert.Equal(t, "Home", order.ShippingAddress.FullName)

	p, err := f.store.Products().GetByID(ctx, "pA")
	require.NoError(t, err)
	v, _ := p.FindVariant(strPtr("vY"))
	assert.Equal(t, 0, v.Stock)
	v, _ = p.FindVariant(strPtr("vX"))
	assert.Equal(t, 5, v.Stock)

	view, err := f.carts.GetCart(ctx, owner)
	require.NoError(t, err)
	require.Len(t, view.Items, 1, "the zero-quantity row was not ordered")
	assert.Equal(t, "vX", *view.Items[0].VariantID)
	assert.Equal(t, 0, view.Items[0].Quantity)

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "u1@example.com", f.mail.sent[0].To)
}

func TestPlaceOrderKeepsCartRowsOutsideTheOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	owner := entity.UserOwner("u1")

	_, err := f.carts.AddToCart(ctx, owner, CartItemInput{ProductID: "pA", VariantID: strPtr("vY"), Quantity: 2})
	require.NoError(t, err)
	_, err = f.carts.AddToCart(ctx, owner, CartItemInput{ProductID: "pB", Quantity: 2})
	require.NoError(t, err)

	// Priced before the pB row was added.
	order := &entity.Order{
		UserID: "u1",
		Items: []entity.OrderItem{
			{ProductID: "pA", VariantID: strPtr("vY"), SKU: "A-Y", UnitPrice: 12.5, Quantity: 1, LineTotal: 12.5},
		},
		Status: entity.OrderStatusPending,
	}
	require.NoError(t, f.store.Orders().Place(ctx, order))

	cart, err := f.store.Carts().Get(ctx, owner)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	a, ok := cart.Find("pA", strPtr("vY"))
	require.True(t, ok)
	assert.Equal(t, 1, a.Quantity)
	b, ok := cart.Find("pB", nil)
	require.True(t, ok)
	assert.Equal(t, 2, b.Quantity)
}

func TestPlaceOrderRejectsEmptyAndZeroOnlyCarts(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	owner := entity.UserOwner("u1")

	_, err := f.orders.PlaceOrder(ctx, "u1", "", PlaceOrderInput{})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = f.carts.AddToCart(ctx, owner, CartItemInput{ProductID: "pB", Quantity: 1})
	require.NoError(t, err)
	_, err = f.carts.UpdateCartItemQuantity(ctx, owner, "pB", nil, 0)
	require.NoError(t, err)

	_, err = f.orders.PlaceOrder(ctx, "u1", "", PlaceOrderInput{})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestPlaceOrderRequiresAddress(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	_, err := f.carts.AddToCart(ctx, entity.UserOwner("u2"), CartItemInput{ProductID: "pB", Quantity: 1})
	require.NoError(t, err)

	_, err = f.orders.PlaceOrder(ctx, "u2", "", PlaceOrderInput{})
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestPlaceOrderInsufficientStockLeavesCart(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	owner := entity.UserOwner("u1")
	_, err := f.carts.AddToCart(ctx, owner, CartItemInput{ProductID: "pA", VariantID: strPtr("vY"), Quantity: 2})
	require.NoError(t, err)

	p, err := f.store.Products().GetByID(ctx, "pA")
	require.NoError(t, err)
	require.NoError(t, p.ApplyStock(strPtr("vY"), -1))
	require.NoError(t, f.store.Products().Update(ctx, p))

	_, err = f.orders.PlaceOrder(ctx, "u1", "", PlaceOrderInput{})
	assert.True(t, errors.Is(err, errors.CodeConflict))

	view, err := f.carts.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
}

func TestMailFailureDoesNotFailOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.mail.err = fmt.Errorf("smtp down")
	_, err := f.carts.AddToCart(ctx, entity.UserOwner("u1"), CartItemInput{ProductID: "pB", Quantity: 1})
	require.NoError(t, err)

	order, err := f.orders.PlaceOrder(ctx, "u1", "u1@example.com", PlaceOrderInput{})
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
}

func TestCancelOrderRestoresStock(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	_, err := f.carts.AddToCart(ctx, entity.UserOwner("u1"), CartItemInput{ProductID: "pB", Quantity: 3})
	require.NoError(t, err)
	order, err := f.orders.PlaceOrder(ctx, "u1", "", PlaceOrderInput{})
	require.NoError(t, err)

	_, err = f.orders.GetOrder(ctx, "u2", order.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	_, err = f.orders.CancelOrder(ctx, "u2", order.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	cancelled, err := f.orders.CancelOrder(ctx, "u1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, cancelled.Status)

	p, err := f.store.Products().GetByID(ctx, "pB")
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock)

	_, err = f.orders.CancelOrder(ctx, "u1", order.ID)
	assert.True(t, errors.Is(err, errors.CodeConflict))

	page, err := f.orders.ListOrders(ctx, "u1", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}
