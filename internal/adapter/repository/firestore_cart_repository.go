package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
)

type firestoreCartRepository struct {
	client      *firestore.Client
	maxAttempts int
	now         func() time.Time
}

func NewFirestoreCartRepository(client *firestore.Client, maxAttempts int) repository.CartRepository {
	return &firestoreCartRepository{
		client:      client,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

func (r *firestoreCartRepository) doc(owner entity.CartOwner) *firestore.DocumentRef {
	return r.client.Collection(cartsCollection).Doc(owner.DocID())
}

func decodeCart(doc *firestore.DocumentSnapshot) (*entity.Cart, error) {
	var cart entity.Cart
	if err := doc.DataTo(&cart); err != nil {
		return nil, err
	}
	cart.ID = doc.Ref.ID
	if cart.Items == nil {
		cart.Items = []entity.CartItem{}
	}
	return &cart, nil
}

// readCart loads a cart inside tx; a missing document yields nil.
func readCart(tx *firestore.Transaction, ref *firestore.DocumentRef) (*entity.Cart, error) {
	doc, err := tx.Get(ref)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return decodeCart(doc)
}

func (r *firestoreCartRepository) Get(ctx context.Context, owner entity.CartOwner) (*entity.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.BadRequest(err.Error(), err)
	}
	doc, err := r.doc(owner).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, storeError(err, "Failed to get cart")
	}
	cart, err := decodeCart(doc)
	if err != nil {
		return nil, errors.Internal("Failed to parse cart data", err)
	}
	return cart, nil
}

func (r *firestoreCartRepository) Mutate(ctx context.Context, owner entity.CartOwner, fn func(cart *entity.Cart) error) (*entity.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.BadRequest(err.Error(), err)
	}
	ref := r.doc(owner)
	var result *entity.Cart
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := r.now()
		cart, err := readCart(tx, ref)
		if err != nil {
			return err
		}
		if cart == nil {
			cart = entity.NewCart(owner, now)
		}
		if err := fn(cart); err != nil {
			return err
		}
		result = cart
		return tx.Set(ref, cart)
	}, txOptions(r.maxAttempts)...)
	if err != nil {
		return nil, storeError(err, "Failed to update cart")
	}
	return result, nil
}

func (r *firestoreCartRepository) Delete(ctx context.Context, owner entity.CartOwner) error {
	if err := owner.Validate(); err != nil {
		return errors.BadRequest(err.Error(), err)
	}
	if _, err := r.doc(owner).Delete(ctx); err != nil && !IsNotFound(err) {
		return storeError(err, "Failed to delete cart")
	}
	return nil
}

func (r *firestoreCartRepository) Merge(ctx context.Context, userID, guestID string) (*entity.Cart, error) {
	userOwner := entity.UserOwner(userID)
	if err := userOwner.Validate(); err != nil {
		return nil, errors.BadRequest(err.Error(), err)
	}
	guestOwner := entity.GuestOwner(guestID)
	userRef := r.doc(userOwner)

	var result *entity.Cart
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := r.now()
		userCart, err := readCart(tx, userRef)
		if err != nil {
			return err
		}
		var guestCart *entity.Cart
		if guestOwner.GuestID != "" {
			if guestCart, err = readCart(tx, r.doc(guestOwner)); err != nil {
				return err
			}
		}
		if userCart == nil {
			userCart = entity.NewCart(userOwner, now)
		}
		userCart.Absorb(guestCart, now)
		if err := tx.Set(userRef, userCart); err != nil {
			return err
		}
		if guestCart != nil {
			if err := tx.Delete(r.doc(guestOwner)); err != nil {
				return err
			}
		}
		result = userCart
		return nil
	}, txOptions(r.maxAttempts)...)
	if err != nil {
		return nil, storeError(err, "Failed to merge carts")
	}
	return result, nil
}
