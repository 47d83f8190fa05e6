package handler

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/middleware"
	"storefront/internal/usecase"
	"storefront/pkg/response"
	"storefront/pkg/utils"
)

type OrderHandler struct {
	orderUseCase *usecase.OrderUseCase
}

func NewOrderHandler(orderUseCase *usecase.OrderUseCase) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
	}
}

func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	var req usecase.PlaceOrderInput
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	order, err := h.orderUseCase.PlaceOrder(c.Request().Context(), middleware.UserID(c), middleware.Email(c), req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, order)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	page, err := h.orderUseCase.ListOrders(c.Request().Context(), middleware.UserID(c), pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, page.Orders, page.Total, page.Page, page.Limit)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := pathParam(c, "id", "Order ID")
	if err != nil {
		return response.Error(c, err)
	}

	order, err := h.orderUseCase.GetOrder(c.Request().Context(), middleware.UserID(c), id)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, order)
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	id, err := pathParam(c, "id", "Order ID")
	if err != nil {
		return response.Error(c, err)
	}

	order, err := h.orderUseCase.CancelOrder(c.Request().Context(), middleware.UserID(c), id)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, order)
}
