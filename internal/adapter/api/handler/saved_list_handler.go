package handler

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/middleware"
	"storefront/internal/usecase"
	"storefront/pkg/response"
	"storefront/pkg/utils"
)

type SavedListHandler struct {
	savedListUseCase *usecase.SavedListUseCase
}

func NewSavedListHandler(savedListUseCase *usecase.SavedListUseCase) *SavedListHandler {
	return &SavedListHandler{
		savedListUseCase: savedListUseCase,
	}
}

type moveSavedItemRequest struct {
	ToListID  string  `json:"to_list_id" validate:"required"`
	ProductID string  `json:"product_id" validate:"required"`
	VariantID *string `json:"variant_id"`
}

func (h *SavedListHandler) ListSavedLists(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	page, err := h.savedListUseCase.ListSavedLists(
		c.Request().Context(),
		middleware.UserID(c),
		pagination.Page,
		pagination.PageSize,
		queryBool(c, "include_archived"),
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, page.Lists, page.Total, page.Page, page.Limit)
}

func (h *SavedListHandler) CreateList(c echo.Context) error {
	var req usecase.CreateSavedListInput
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	list, err := h.savedListUseCase.CreateList(c.Request().Context(), middleware.UserID(c), req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, list)
}

func (h *SavedListHandler) GetList(c echo.Context) error {
	listID, err := pathParam(c, "id", "List ID")
	if err != nil {
		return response.Error(c, err)
	}

	list, err := h.savedListUseCase.GetList(c.Request().Context(), middleware.UserID(c), listID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, list)
}

func (h *SavedListHandler) UpdateList(c echo.Context) error {
	listID, err := pathParam(c, "id", "List ID")
	if err != nil {
		return response.Error(c, err)
	}
	var req usecase.UpdateSavedListInput
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	list, err := h.savedListUseCase.UpdateList(c.Request().Context(), middleware.UserID(c), listID, req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, list)
}

// DeleteList archives the list unless ?hard=true.
func (h *SavedListHandler) DeleteList(c echo.Context) error {
	listID, err := pathParam(c, "id", "List ID")
	if err != nil {
		return response.Error(c, err)
	}
	hard := queryBool(c, "hard")

	if err := h.savedListUseCase.DeleteList(c.Request().Context(), middleware.UserID(c), listID, hard); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"message": "List deleted successfully",
		"hard":    hard,
	})
}

func (h *SavedListHandler) SetDefaultList(c echo.Context) error {
	listID, err := pathParam(c, "id", "List ID")
	if err != nil {
		return response.Error(c, err)
	}

	result, err := h.savedListUseCase.SetDefaultList(c.Request().Context(), middleware.UserID(c), listID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *SavedListHandler) ToggleSavedItem(c echo.Context) error {
	listID, err := pathParam(c, "id", "List ID")
	if err != nil {
		return response.Error(c, err)
	}
	var req usecase.SavedItemInput
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.savedListUseCase.ToggleSavedItem(c.Request().Context(), middleware.UserID(c), listID, req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *SavedListHandler) ToggleDefaultListItem(c echo.Context) error {
	var req usecase.SavedItemInput
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.savedListUseCase.AddToDefaultList(c.Request().Context(), middleware.UserID(c), req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *SavedListHandler) RemoveSavedItem(c echo.Context) error {
	listID, err := pathParam(c, "id", "List ID")
	if err != nil {
		return response.Error(c, err)
	}
	productID, err := pathParam(c, "productId", "Product ID")
	if err != nil {
		return response.Error(c, err)
	}

	result, err := h.savedListUseCase.RemoveSavedItem(c.Request().Context(), middleware.UserID(c), listID, productID, variantQuery(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *SavedListHandler) MoveSavedItem(c echo.Context) error {
	listID, err := pathParam(c, "id", "List ID")
	if err != nil {
		return response.Error(c, err)
	}
	var req moveSavedItemRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	moved, err := h.savedListUseCase.MoveSavedItem(
		c.Request().Context(),
		middleware.UserID(c),
		listID,
		req.ToListID,
		req.ProductID,
		req.VariantID,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"moved": moved})
}

func (h *SavedListHandler) GetSavedItemCount(c echo.Context) error {
	count, err := h.savedListUseCase.GetSavedItemCount(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int{"count": count})
}

func (h *SavedListHandler) SavedStatus(c echo.Context) error {
	productID, err := pathParam(c, "productId", "Product ID")
	if err != nil {
		return response.Error(c, err)
	}

	result, err := h.savedListUseCase.SavedStatus(c.Request().Context(), middleware.UserID(c), productID, variantQuery(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}
