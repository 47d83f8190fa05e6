package usecase

import (
	"context"
	"io"
	"strings"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/infrastructure/cache"
	"storefront/internal/infrastructure/storage"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
	"storefront/pkg/utils"
)

type ReviewUseCase struct {
	reviewRepo repository.ReviewRepository
	images     ImageStore
	cache      *cache.Store
}

func NewReviewUseCase(reviewRepo repository.ReviewRepository, images ImageStore, cacheStore *cache.Store) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo: reviewRepo,
		images:     images,
		cache:      cacheStore,
	}
}

type ReviewInput struct {
	Rating int      `json:"rating" validate:"required,min=1,max=5"`
	Title  string   `json:"title" validate:"max=120"`
	Body   string   `json:"body" validate:"max=5000"`
	Images []string `json:"images" validate:"max=5,dive,url"`
}

type ReviewPage struct {
	Reviews []*entity.Review `json:"reviews"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}

// UpsertReview writes the user's single review of a product and refreshes
// the product's rating aggregates. It reports whether the review is new.
func (uc *ReviewUseCase) UpsertReview(ctx context.Context, userID, productID string, input ReviewInput) (*entity.Review, bool, error) {
	logger.Info("Upserting review of product %s by user %s", productID, userID)

	if err := requireUser(userID); err != nil {
		return nil, false, err
	}
	if err := validateInput(input); err != nil {
		return nil, false, err
	}

	images := input.Images
	if images == nil {
		images = []string{}
	}
	review := &entity.Review{
		ProductID: strings.TrimSpace(productID),
		UserID:    userID,
		Rating:    input.Rating,
		Title:     strings.TrimSpace(input.Title),
		Body:      strings.TrimSpace(input.Body),
		Images:    images,
	}
	created, err := uc.reviewRepo.Upsert(ctx, review)
	if err != nil {
		logger.Op("review.upsert", userID, err)
		return nil, false, fail(err, "Failed to save review")
	}
	uc.cache.Invalidate(catalogTag)
	return review, created, nil
}

func (uc *ReviewUseCase) ListProductReviews(ctx context.Context, productID string, page, limit int) (*ReviewPage, error) {
	p := utils.NewPagination(page, limit)
	reviews, total, err := uc.reviewRepo.ListByProduct(ctx, productID, p.PageSize, p.Offset)
	if err != nil {
		return nil, fail(err, "Failed to list reviews")
	}
	if reviews == nil {
		reviews = []*entity.Review{}
	}
	return &ReviewPage{Reviews: reviews, Total: total, Page: p.Page, Limit: p.PageSize}, nil
}

// DeleteReview removes the user's review and, best effort, its uploaded
// images.
func (uc *ReviewUseCase) DeleteReview(ctx context.Context, userID, productID string) error {
	logger.Info("Deleting review of product %s by user %s", productID, userID)

	if err := requireUser(userID); err != nil {
		return err
	}
	review, err := uc.reviewRepo.Get(ctx, productID, userID)
	if err != nil {
		return fail(err, "Failed to load review")
	}
	if err := uc.reviewRepo.Delete(ctx, productID, userID); err != nil {
		logger.Op("review.delete", userID, err)
		return fail(err, "Failed to delete review")
	}
	uc.cache.Invalidate(catalogTag)

	if uc.images != nil {
		for _, url := range review.Images {
			if err := uc.images.DeleteImage(ctx, url); err != nil {
				logger.Warn("Failed to delete review image %s: %v", url, err)
			}
		}
	}
	return nil
}

// UploadReviewImage stores an image for a later review and returns its URL.
func (uc *ReviewUseCase) UploadReviewImage(ctx context.Context, userID string, file io.Reader, contentType string, size int64) (string, error) {
	logger.Info("Uploading review image for user %s", userID)

	if err := requireUser(userID); err != nil {
		return "", err
	}
	if uc.images == nil {
		return "", errors.Internal("Image uploads are not configured", nil)
	}
	if size <= 0 || size > storage.MaxImageSize {
		return "", errors.Validation("image must be between 1 byte and 5 MB", nil)
	}
	if _, ok := storage.ImageExtension(contentType); !ok {
		return "", errors.Validation("image type is not supported", nil)
	}

	url, err := uc.images.UploadImage(ctx, file, contentType, "reviews/"+userID)
	if err != nil {
		logger.Op("review.upload_image", userID, err)
		return "", errors.Internal("Failed to upload image", err)
	}
	return url, nil
}
