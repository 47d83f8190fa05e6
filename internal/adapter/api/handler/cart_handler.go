package handler

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/middleware"
	"storefront/internal/domain/entity"
	"storefront/internal/usecase"
	"storefront/pkg/errors"
	"storefront/pkg/response"
)

type CartHandler struct {
	cartUseCase *usecase.CartUseCase
	guests      *middleware.GuestMiddleware
}

func NewCartHandler(cartUseCase *usecase.CartUseCase, guests *middleware.GuestMiddleware) *CartHandler {
	return &CartHandler{
		cartUseCase: cartUseCase,
		guests:      guests,
	}
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// owner picks the signed-in user over the guest cookie.
func owner(c echo.Context) (entity.CartOwner, error) {
	if uid := middleware.UserID(c); uid != "" {
		return entity.UserOwner(uid), nil
	}
	if gid := middleware.GuestID(c); gid != "" {
		return entity.GuestOwner(gid), nil
	}
	return entity.CartOwner{}, errors.Unauthorized("A signed-in user or guest id is required", nil)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	o, err := owner(c)
	if err != nil {
		return response.Error(c, err)
	}

	cart, err := h.cartUseCase.GetCart(c.Request().Context(), o)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, cart)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	o, err := owner(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req usecase.CartItemInput
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	cart, err := h.cartUseCase.AddToCart(c.Request().Context(), o, req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, cart)
}

func (h *CartHandler) UpdateCartItem(c echo.Context) error {
	o, err := owner(c)
	if err != nil {
		return response.Error(c, err)
	}
	productID, err := pathParam(c, "productId", "Product ID")
	if err != nil {
		return response.Error(c, err)
	}
	var req updateQuantityRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	cart, err := h.cartUseCase.UpdateCartItemQuantity(c.Request().Context(), o, productID, variantQuery(c), *req.Quantity)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, cart)
}

func (h *CartHandler) RemoveCartItem(c echo.Context) error {
	o, err := owner(c)
	if err != nil {
		return response.Error(c, err)
	}
	productID, err := pathParam(c, "productId", "Product ID")
	if err != nil {
		return response.Error(c, err)
	}

	cart, err := h.cartUseCase.RemoveCartItem(c.Request().Context(), o, productID, variantQuery(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, cart)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	o, err := owner(c)
	if err != nil {
		return response.Error(c, err)
	}

	cart, err := h.cartUseCase.ClearCart(c.Request().Context(), o)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, cart)
}

// SyncCart folds the guest cart named by the cookie into the user's cart and
// expires the cookie.
func (h *CartHandler) SyncCart(c echo.Context) error {
	guestID := h.guests.Read(c)

	cart, err := h.cartUseCase.SyncCartsOnLogin(c.Request().Context(), middleware.UserID(c), guestID)
	if err != nil {
		return response.Error(c, err)
	}
	if guestID != "" {
		h.guests.Clear(c)
	}

	return response.Success(c, cart)
}
