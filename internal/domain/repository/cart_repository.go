package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

type CartRepository interface {
	// Get returns (nil, nil) when the owner has no cart yet.
	Get(ctx context.Context, owner entity.CartOwner) (*entity.Cart, error)

	// Mutate loads the owner's cart (a new empty one when missing), applies
	// fn and persists the whole document in one transaction. Nothing is
	// written when fn fails.
	Mutate(ctx context.Context, owner entity.CartOwner, fn func(cart *entity.Cart) error) (*entity.Cart, error)

	Delete(ctx context.Context, owner entity.CartOwner) error

	// Merge folds the guest cart into the user cart, upserts the user cart
	// and deletes the guest cart, all in one transaction.
	Merge(ctx context.Context, userID, guestID string) (*entity.Cart, error)
}
