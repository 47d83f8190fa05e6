package usecase

import (
	"context"
	"math"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/infrastructure/cache"
	"storefront/internal/infrastructure/mailer"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
	"storefront/pkg/utils"
)

// Pricing holds the shipping rule and currency applied to new orders.
type Pricing struct {
	ShippingFlatFee       float64
	FreeShippingThreshold float64
	Currency              string
}

// ShippingFee is the flat fee, waived once subtotal reaches the threshold.
func (p Pricing) ShippingFee(subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}
	if p.FreeShippingThreshold > 0 && subtotal >= p.FreeShippingThreshold {
		return 0
	}
	return p.ShippingFlatFee
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

type OrderUseCase struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	addressRepo repository.AddressRepository
	mailer      Mailer
	cache       *cache.Store
	pricing     Pricing
}

func NewOrderUseCase(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	addressRepo repository.AddressRepository,
	mail Mailer,
	cacheStore *cache.Store,
	pricing Pricing,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		addressRepo: addressRepo,
		mailer:      mail,
		cache:       cacheStore,
		pricing:     pricing,
	}
}

type PlaceOrderInput struct {
	AddressID string `json:"address_id"`
}

type OrderPage struct {
	Orders []*entity.Order `json:"orders"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// PlaceOrder prices the user's cart from the live catalogue and places it.
// Zero-quantity rows are skipped. Stock is decremented and the cart emptied
// in the same transaction that writes the order.
func (uc *OrderUseCase) PlaceOrder(ctx context.Context, userID, email string, input PlaceOrderInput) (*entity.Order, error) {
	logger.Info("Placing order for user %s", userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}

	cart, err := uc.cartRepo.Get(ctx, entity.UserOwner(userID))
	if err != nil {
		return nil, fail(err, "Failed to load cart")
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, errors.BadRequest("Cart is empty", nil)
	}
	rows := make([]entity.CartItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		if it.Quantity > 0 {
			rows = append(rows, it)
		}
	}
	if len(rows) == 0 {
		return nil, errors.BadRequest("Cart has no items with a quantity", nil)
	}

	address, err := shippingAddress(ctx, uc.addressRepo, userID, input.AddressID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, errors.Validation("A shipping address is required", nil)
	}

	items, err := uc.price(ctx, rows)
	if err != nil {
		return nil, err
	}

	order := &entity.Order{
		UserID:          userID,
		Items:           items,
		Currency:        uc.pricing.Currency,
		Status:          entity.OrderStatusPending,
		ShippingAddress: address,
	}
	for _, it := range items {
		order.Subtotal += it.LineTotal
	}
	order.Subtotal = roundMoney(order.Subtotal)
	order.ShippingFee = uc.pricing.ShippingFee(order.Subtotal)
	order.Total = roundMoney(order.Subtotal + order.ShippingFee)

	if err := uc.orderRepo.Place(ctx, order); err != nil {
		logger.Op("order.place", userID, err)
		return nil, fail(err, "Failed to place order")
	}
	uc.cache.Invalidate(catalogTag)

	uc.notify(ctx, email, order)
	return order, nil
}

func (uc *OrderUseCase) price(ctx context.Context, rows []entity.CartItem) ([]entity.OrderItem, error) {
	ids := make([]string, 0, len(rows))
	for _, it := range rows {
		ids = append(ids, it.ProductID)
	}
	products, err := uc.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fail(err, "Failed to load products")
	}

	items := make([]entity.OrderItem, 0, len(rows))
	for _, row := range rows {
		p, ok := products[row.ProductID]
		if !ok || !p.IsActive() {
			return nil, errors.Conflict("Product no longer available: " + row.ProductID)
		}
		item := entity.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  row.Quantity,
		}
		var variant *entity.ProductVariant
		if key := row.VariantKey(); key != nil {
			v, ok := p.FindVariant(key)
			if !ok {
				return nil, errors.Conflict("Variant no longer available: " + p.Name)
			}
			variant = v
			id := v.ID
			item.VariantID = &id
			item.SKU = v.SKU
		}
		if p.Available(variant) < row.Quantity {
			return nil, errors.Conflict("Insufficient stock: " + p.Name)
		}
		item.Image = p.Thumbnail(variant)
		item.UnitPrice = p.UnitPrice(variant)
		item.LineTotal = roundMoney(item.UnitPrice * float64(item.Quantity))
		items = append(items, item)
	}
	return items, nil
}

func (uc *OrderUseCase) notify(ctx context.Context, email string, order *entity.Order) {
	if email == "" || uc.mailer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := uc.mailer.Send(ctx, mailer.OrderConfirmation(email, order)); err != nil {
		logger.Warn("Order %s placed but confirmation email failed: %v", order.ID, err)
	}
}

func (uc *OrderUseCase) ListOrders(ctx context.Context, userID string, page, limit int) (*OrderPage, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	p := utils.NewPagination(page, limit)
	orders, total, err := uc.orderRepo.ListByUser(ctx, userID, p.PageSize, p.Offset)
	if err != nil {
		return nil, fail(err, "Failed to list orders")
	}
	if orders == nil {
		orders = []*entity.Order{}
	}
	return &OrderPage{Orders: orders, Total: total, Page: p.Page, Limit: p.PageSize}, nil
}

func (uc *OrderUseCase) GetOrder(ctx context.Context, userID, id string) (*entity.Order, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fail(err, "Failed to load order")
	}
	if order.UserID != userID {
		return nil, errors.NotFound("Order", nil)
	}
	return order, nil
}

// CancelOrder cancels a pending order and puts its stock back.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, userID, id string) (*entity.Order, error) {
	logger.Info("Cancelling order %s for user %s", id, userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	order, err := uc.orderRepo.Cancel(ctx, userID, id)
	if err != nil {
		logger.Op("order.cancel", userID, err)
		return nil, fail(err, "Failed to cancel order")
	}
	uc.cache.Invalidate(catalogTag)
	return order, nil
}
