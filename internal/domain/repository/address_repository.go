package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

type AddressRepository interface {
	// Create enforces the per-user cap; the first address, or one created
	// with IsDefault, becomes the only default.
	Create(ctx context.Context, address *entity.Address, maxAddresses int) error
	GetByID(ctx context.Context, id string) (*entity.Address, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Address, error)
	Update(ctx context.Context, address *entity.Address) error
	// Delete promotes the most recently updated remaining address when the
	// deleted one was the default.
	Delete(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) error
	// GetDefault returns (nil, nil) when the user has no address.
	GetDefault(ctx context.Context, userID string) (*entity.Address, error)
}
