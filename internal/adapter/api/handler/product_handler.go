package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/middleware"
	"storefront/internal/usecase"
	"storefront/pkg/response"
	"storefront/pkg/utils"
)

type ProductHandler struct {
	productUseCase *usecase.ProductUseCase
}

func NewProductHandler(productUseCase *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{
		productUseCase: productUseCase,
	}
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	page, err := h.productUseCase.ListProducts(c.Request().Context(), usecase.ProductQuery{
		Category: c.QueryParam("category"),
		Brand:    c.QueryParam("brand"),
		Sort:     c.QueryParam("sort"),
		Page:     pagination.Page,
		Limit:    pagination.PageSize,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, page.Products, page.Total, page.Page, page.Limit)
}

func (h *ProductHandler) SearchProducts(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.productUseCase.SearchProducts(c.Request().Context(), c.QueryParam("q"), page, limit)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, result.Products, result.Total, result.Page, result.Limit)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := pathParam(c, "id", "Product ID")
	if err != nil {
		return response.Error(c, err)
	}

	product, err := h.productUseCase.GetProduct(c.Request().Context(), id, middleware.IsAdmin(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req usecase.ProductInput
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	product, err := h.productUseCase.CreateProduct(c.Request().Context(), req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := pathParam(c, "id", "Product ID")
	if err != nil {
		return response.Error(c, err)
	}
	var req usecase.ProductInput
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	product, err := h.productUseCase.UpdateProduct(c.Request().Context(), id, req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}
