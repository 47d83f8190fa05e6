package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

type ProductFilter struct {
	Category string
	Brand    string
	Status   string
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Product, error)
	// GetByIDs skips ids that do not exist.
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	List(ctx context.Context, filter ProductFilter, sort string, limit, offset int) ([]*entity.Product, int64, error)
	Search(ctx context.Context, query string, filter ProductFilter, limit, offset int) ([]*entity.Product, int64, error)
	Update(ctx context.Context, product *entity.Product) error
}
