package usecase

import (
	"context"
	stderrors "errors"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/match"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

type CartUseCase struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	now         func() time.Time
}

func NewCartUseCase(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartUseCase {
	return &CartUseCase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		now:         time.Now,
	}
}

type CartItemInput struct {
	ProductID string                 `json:"product_id" validate:"required"`
	VariantID *string                `json:"variant_id"`
	Quantity  int                    `json:"quantity" validate:"required,min=1,max=999"`
	Variant   map[string]interface{} `json:"variant"`
}

// CartLine is one cart row joined with the live product.
type CartLine struct {
	ProductID string                 `json:"product_id"`
	VariantID *string                `json:"variant_id"`
	Name      string                 `json:"name"`
	Image     string                 `json:"image"`
	Price     float64                `json:"price"`
	SalePrice *float64               `json:"sale_price,omitempty"`
	Quantity  int                    `json:"quantity"`
	Variant   map[string]interface{} `json:"variant,omitempty"`
	LineTotal float64                `json:"line_total"`
	Available bool                   `json:"available"`
}

type CartView struct {
	ID            string     `json:"id"`
	Items         []CartLine `json:"items"`
	TotalQuantity int        `json:"total_quantity"`
	Subtotal      float64    `json:"subtotal"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

func cartError(err error) error {
	switch {
	case stderrors.Is(err, entity.ErrCartItemNotFound):
		return errors.NotFound("Cart item", err)
	case stderrors.Is(err, entity.ErrInvalidQuantity):
		return errors.Validation("quantity must not be negative", err)
	case stderrors.Is(err, entity.ErrInvalidCartOwner):
		return errors.BadRequest("A user or guest identity is required", err)
	}
	return err
}

func validOwner(owner entity.CartOwner) error {
	if err := owner.Validate(); err != nil {
		return cartError(err)
	}
	return nil
}

// AddToCart adds quantity to the (product, variant) row, creating the cart and
// the row as needed. A variant given by sku is stored under its _id.
func (u *CartUseCase) AddToCart(ctx context.Context, owner entity.CartOwner, input CartItemInput) (*CartView, error) {
	logger.Info("Adding product %s x%d to cart of %s", input.ProductID, input.Quantity, owner)

	if err := validOwner(owner); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	product, err := u.productRepo.GetByID(ctx, match.NormalizeID(input.ProductID))
	if err != nil {
		return nil, fail(err, "Failed to load product")
	}
	if !product.IsActive() {
		return nil, errors.BadRequest("Product is not available", nil)
	}

	item := entity.CartItem{
		ProductID: product.ID,
		Quantity:  input.Quantity,
		Variant:   input.Variant,
	}
	var variant *entity.ProductVariant
	if vid := match.NormalizeVariantID(input.VariantID); vid != nil {
		v, ok := product.FindVariant(vid)
		if !ok {
			return nil, errors.Validation("Unknown variant for this product", entity.ErrUnknownVariant)
		}
		variant = v
		canonical := v.ID
		if canonical == "" {
			canonical = v.SKU
		}
		item.VariantID = &canonical
		item.Variant = variantSnapshot(v, input.Variant)
	}

	cart, err := u.cartRepo.Mutate(ctx, owner, func(cart *entity.Cart) error {
		if err := cart.Add(item, u.now()); err != nil {
			return cartError(err)
		}
		row, _ := cart.Find(item.ProductID, item.VariantID)
		if row.Quantity > product.Available(variant) {
			return errors.Conflict("Insufficient stock: " + product.Name)
		}
		return nil
	})
	if err != nil {
		logger.Op("cart.add", owner.String(), err)
		return nil, fail(err, "Failed to add item to cart")
	}
	return u.view(ctx, cart)
}

// variantSnapshot overlays the caller's snapshot fields with the catalogue's.
func variantSnapshot(v *entity.ProductVariant, extra map[string]interface{}) map[string]interface{} {
	snap := make(map[string]interface{}, len(extra)+4)
	for k, val := range extra {
		snap[k] = val
	}
	if v.ID != "" {
		snap["_id"] = v.ID
	}
	if v.SKU != "" {
		snap["sku"] = v.SKU
	}
	if v.Label != "" {
		snap["label"] = v.Label
	}
	for k, val := range v.Attributes {
		snap[k] = val
	}
	return snap
}

// UpdateCartItemQuantity sets the row's quantity. Zero keeps the row; it is
// skipped when an order is placed.
func (u *CartUseCase) UpdateCartItemQuantity(ctx context.Context, owner entity.CartOwner, productID string, variantID *string, quantity int) (*CartView, error) {
	logger.Info("Setting quantity of product %s to %d in cart of %s", productID, quantity, owner)

	if err := validOwner(owner); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, errors.Validation("quantity must not be negative", entity.ErrInvalidQuantity)
	}

	cart, err := u.cartRepo.Mutate(ctx, owner, func(cart *entity.Cart) error {
		return cartError(cart.SetQuantity(match.NormalizeID(productID), match.NormalizeVariantID(variantID), quantity, u.now()))
	})
	if err != nil {
		logger.Op("cart.update_quantity", owner.String(), err)
		return nil, fail(err, "Failed to update cart item")
	}
	return u.view(ctx, cart)
}

func (u *CartUseCase) RemoveCartItem(ctx context.Context, owner entity.CartOwner, productID string, variantID *string) (*CartView, error) {
	logger.Info("Removing product %s from cart of %s", productID, owner)

	if err := validOwner(owner); err != nil {
		return nil, err
	}
	cart, err := u.cartRepo.Mutate(ctx, owner, func(cart *entity.Cart) error {
		cart.Remove(match.NormalizeID(productID), match.NormalizeVariantID(variantID), u.now())
		return nil
	})
	if err != nil {
		logger.Op("cart.remove", owner.String(), err)
		return nil, fail(err, "Failed to remove cart item")
	}
	return u.view(ctx, cart)
}

// ClearCart empties the items and keeps the document.
func (u *CartUseCase) ClearCart(ctx context.Context, owner entity.CartOwner) (*CartView, error) {
	logger.Info("Clearing cart of %s", owner)

	if err := validOwner(owner); err != nil {
		return nil, err
	}
	cart, err := u.cartRepo.Mutate(ctx, owner, func(cart *entity.Cart) error {
		cart.Clear(u.now())
		return nil
	})
	if err != nil {
		logger.Op("cart.clear", owner.String(), err)
		return nil, fail(err, "Failed to clear cart")
	}
	return u.view(ctx, cart)
}

func (u *CartUseCase) GetCart(ctx context.Context, owner entity.CartOwner) (*CartView, error) {
	if err := validOwner(owner); err != nil {
		return nil, err
	}
	cart, err := u.cartRepo.Get(ctx, owner)
	if err != nil {
		return nil, fail(err, "Failed to load cart")
	}
	if cart == nil {
		cart = entity.NewCart(owner, u.now())
		cart.UpdatedAt = time.Time{}
	}
	return u.view(ctx, cart)
}

// SyncCartsOnLogin folds the guest cart into the user cart and deletes the
// guest cart in one transaction, then returns the populated user cart.
// Syncing an already merged guest id changes nothing.
func (u *CartUseCase) SyncCartsOnLogin(ctx context.Context, userID, guestID string) (*CartView, error) {
	logger.Info("Syncing guest cart %s into cart of user %s", guestID, userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := u.cartRepo.Merge(ctx, userID, guestID); err != nil {
		logger.Op("cart.sync", userID, err)
		return nil, fail(err, "Failed to merge carts")
	}

	cart, err := u.cartRepo.Get(ctx, entity.UserOwner(userID))
	if err != nil {
		return nil, fail(err, "Failed to load cart")
	}
	if cart == nil {
		cart = entity.NewCart(entity.UserOwner(userID), u.now())
	}
	return u.view(ctx, cart)
}

func (u *CartUseCase) view(ctx context.Context, cart *entity.Cart) (*CartView, error) {
	ids := make([]string, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := u.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fail(err, "Failed to load cart products")
	}

	view := &CartView{ID: cart.ID, Items: make([]CartLine, 0, len(cart.Items))}
	if !cart.UpdatedAt.IsZero() {
		t := cart.UpdatedAt
		view.UpdatedAt = &t
	}
	for _, it := range cart.Items {
		line := CartLine{
			ProductID: it.ProductID,
			VariantID: it.VariantKey(),
			Quantity:  it.Quantity,
			Variant:   it.Variant,
		}
		if p, ok := products[it.ProductID]; ok {
			variant, _ := p.FindVariant(line.VariantID)
			line.Name = p.Name
			line.Image = p.Thumbnail(variant)
			line.Price = p.Price
			if variant != nil && variant.Price != nil {
				line.Price = *variant.Price
			}
			line.SalePrice = p.SalePrice
			line.LineTotal = p.UnitPrice(variant) * float64(it.Quantity)
			line.Available = p.IsActive() && (line.VariantID == nil || variant != nil) && p.Available(variant) >= it.Quantity
		}
		view.Items = append(view.Items, line)
		view.TotalQuantity += it.Quantity
		view.Subtotal += line.LineTotal
	}
	view.Subtotal = roundMoney(view.Subtotal)
	return view, nil
}
