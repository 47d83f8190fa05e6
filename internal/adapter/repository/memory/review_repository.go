package memory

import (
	"context"
	"sort"

	"storefront/internal/domain/entity"
	"storefront/pkg/errors"
	"storefront/pkg/utils"
)

type reviewRepository struct {
	s *Store
}

func (r *reviewRepository) Upsert(ctx context.Context, review *entity.Review) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	product, ok := r.s.products[review.ProductID]
	if !ok {
		return false, errors.NotFound("Product", nil)
	}
	now := r.s.now()
	review.ID = entity.ReviewID(review.ProductID, review.UserID)
	review.CreatedAt = now
	previous := 0
	existing, exists := r.s.reviews[review.ID]
	if exists {
		previous = existing.Rating
		review.CreatedAt = existing.CreatedAt
	}
	review.UpdatedAt = now

	product.ApplyRating(previous, review.Rating)
	product.UpdatedAt = now
	r.s.reviews[review.ID] = cloneReview(review)
	return !exists, nil
}

func (r *reviewRepository) Get(ctx context.Context, productID, userID string) (*entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	review, ok := r.s.reviews[entity.ReviewID(productID, userID)]
	if !ok {
		return nil, errors.NotFound("Review", nil)
	}
	return cloneReview(review), nil
}

func (r *reviewRepository) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.Review, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var reviews []*entity.Review
	for _, review := range r.s.reviews {
		if review.ProductID == productID {
			reviews = append(reviews, cloneReview(review))
		}
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].UpdatedAt.After(reviews[j].UpdatedAt)
	})
	start, end := utils.Bounds(len(reviews), limit, offset)
	return reviews[start:end], int64(len(reviews)), nil
}

func (r *reviewRepository) Delete(ctx context.Context, productID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id := entity.ReviewID(productID, userID)
	existing, ok := r.s.reviews[id]
	if !ok {
		return errors.NotFound("Review", nil)
	}
	delete(r.s.reviews, id)
	if product, ok := r.s.products[productID]; ok {
		product.ApplyRating(existing.Rating, 0)
		product.UpdatedAt = r.s.now()
	}
	return nil
}
