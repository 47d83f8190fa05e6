package memory

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/pkg/errors"
)

type cartRepository struct {
	s *Store
}

func (r *cartRepository) Get(ctx context.Context, owner entity.CartOwner) (*entity.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.BadRequest(err.Error(), err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cart, ok := r.s.carts[owner.DocID()]
	if !ok {
		return nil, nil
	}
	return cloneCart(cart), nil
}

// Mutate works on a copy so a failing fn leaves the stored cart untouched.
func (r *cartRepository) Mutate(ctx context.Context, owner entity.CartOwner, fn func(cart *entity.Cart) error) (*entity.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.BadRequest(err.Error(), err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var working *entity.Cart
	if stored, ok := r.s.carts[owner.DocID()]; ok {
		working = cloneCart(stored)
	} else {
		working = entity.NewCart(owner, r.s.now())
	}
	if err := fn(working); err != nil {
		return nil, err
	}
	r.s.carts[owner.DocID()] = cloneCart(working)
	return working, nil
}

func (r *cartRepository) Delete(ctx context.Context, owner entity.CartOwner) error {
	if err := owner.Validate(); err != nil {
		return errors.BadRequest(err.Error(), err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.carts, owner.DocID())
	return nil
}

func (r *cartRepository) Merge(ctx context.Context, userID, guestID string) (*entity.Cart, error) {
	userOwner := entity.UserOwner(userID)
	if err := userOwner.Validate(); err != nil {
		return nil, errors.BadRequest(err.Error(), err)
	}
	guestOwner := entity.GuestOwner(guestID)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	var userCart *entity.Cart
	if stored, ok := r.s.carts[userOwner.DocID()]; ok {
		userCart = cloneCart(stored)
	} else {
		userCart = entity.NewCart(userOwner, now)
	}
	var guestCart *entity.Cart
	if guestOwner.GuestID != "" {
		guestCart = r.s.carts[guestOwner.DocID()]
	}

	userCart.Absorb(guestCart, now)
	r.s.carts[userOwner.DocID()] = cloneCart(userCart)
	if guestCart != nil {
		delete(r.s.carts, guestOwner.DocID())
	}
	return userCart, nil
}
