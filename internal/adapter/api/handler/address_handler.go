package handler

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/middleware"
	"storefront/internal/usecase"
	"storefront/pkg/response"
)

type AddressHandler struct {
	addressUseCase *usecase.AddressUseCase
}

func NewAddressHandler(addressUseCase *usecase.AddressUseCase) *AddressHandler {
	return &AddressHandler{
		addressUseCase: addressUseCase,
	}
}

func (h *AddressHandler) ListAddresses(c echo.Context) error {
	addresses, err := h.addressUseCase.ListAddresses(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, addresses)
}

func (h *AddressHandler) CreateAddress(c echo.Context) error {
	var req usecase.AddressInput
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	address, err := h.addressUseCase.CreateAddress(c.Request().Context(), middleware.UserID(c), req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, address)
}

func (h *AddressHandler) UpdateAddress(c echo.Context) error {
	id, err := pathParam(c, "id", "Address ID")
	if err != nil {
		return response.Error(c, err)
	}
	var req usecase.AddressInput
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	address, err := h.addressUseCase.UpdateAddress(c.Request().Context(), middleware.UserID(c), id, req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, address)
}

func (h *AddressHandler) DeleteAddress(c echo.Context) error {
	id, err := pathParam(c, "id", "Address ID")
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.addressUseCase.DeleteAddress(c.Request().Context(), middleware.UserID(c), id); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Address deleted successfully",
	})
}

func (h *AddressHandler) SetDefaultAddress(c echo.Context) error {
	id, err := pathParam(c, "id", "Address ID")
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.addressUseCase.SetDefaultAddress(c.Request().Context(), middleware.UserID(c), id); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Default address updated",
	})
}
