package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

type ReviewRepository interface {
	// Upsert writes the review and updates the product rating aggregates in
	// one transaction. It reports whether the review is new.
	Upsert(ctx context.Context, review *entity.Review) (bool, error)
	Get(ctx context.Context, productID, userID string) (*entity.Review, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.Review, int64, error)
	Delete(ctx context.Context, productID, userID string) error
}
