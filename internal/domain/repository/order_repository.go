package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

type OrderRepository interface {
	// Place writes the order, applies its stock changes and empties the
	// user's cart in one transaction.
	Place(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Order, int64, error)
	// Cancel moves a pending order to cancelled and restores its stock.
	Cancel(ctx context.Context, userID, id string) (*entity.Order, error)
}
