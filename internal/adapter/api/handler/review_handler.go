package handler

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/middleware"
	"storefront/internal/usecase"
	"storefront/pkg/errors"
	"storefront/pkg/response"
	"storefront/pkg/utils"
)

type ReviewHandler struct {
	reviewUseCase *usecase.ReviewUseCase
}

func NewReviewHandler(reviewUseCase *usecase.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{
		reviewUseCase: reviewUseCase,
	}
}

func (h *ReviewHandler) ListProductReviews(c echo.Context) error {
	productID, err := pathParam(c, "id", "Product ID")
	if err != nil {
		return response.Error(c, err)
	}
	pagination := utils.GetPaginationParams(c)

	page, err := h.reviewUseCase.ListProductReviews(c.Request().Context(), productID, pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, page.Reviews, page.Total, page.Page, page.Limit)
}

func (h *ReviewHandler) UpsertReview(c echo.Context) error {
	productID, err := pathParam(c, "id", "Product ID")
	if err != nil {
		return response.Error(c, err)
	}
	var req usecase.ReviewInput
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	review, created, err := h.reviewUseCase.UpsertReview(c.Request().Context(), middleware.UserID(c), productID, req)
	if err != nil {
		return response.Error(c, err)
	}

	if created {
		return response.Created(c, review)
	}
	return response.Success(c, review)
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	productID, err := pathParam(c, "id", "Product ID")
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.reviewUseCase.DeleteReview(c.Request().Context(), middleware.UserID(c), productID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Review deleted successfully",
	})
}

// UploadReviewImage accepts a multipart "image" field.
func (h *ReviewHandler) UploadReviewImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return response.Error(c, errors.BadRequest("Image file is required", err))
	}
	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read image", err))
	}
	defer src.Close()

	url, err := h.reviewUseCase.UploadReviewImage(
		c.Request().Context(),
		middleware.UserID(c),
		src,
		file.Header.Get("Content-Type"),
		file.Size,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]string{"url": url})
}
