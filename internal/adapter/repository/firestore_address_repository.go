package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
)

type firestoreAddressRepository struct {
	client      *firestore.Client
	maxAttempts int
}

func NewFirestoreAddressRepository(client *firestore.Client, maxAttempts int) repository.AddressRepository {
	return &firestoreAddressRepository{
		client:      client,
		maxAttempts: maxAttempts,
	}
}

func (r *firestoreAddressRepository) col() *firestore.CollectionRef {
	return r.client.Collection(addressesCollection)
}

func (r *firestoreAddressRepository) userAddresses(tx *firestore.Transaction, userID string) ([]*entity.Address, error) {
	docs, err := tx.Documents(r.col().Where("userId", "==", userID)).GetAll()
	if err != nil {
		return nil, err
	}
	addresses := make([]*entity.Address, 0, len(docs))
	for _, doc := range docs {
		var addr entity.Address
		if err := doc.DataTo(&addr); err != nil {
			return nil, err
		}
		addr.ID = doc.Ref.ID
		addresses = append(addresses, &addr)
	}
	return addresses, nil
}

func (r *firestoreAddressRepository) unsetDefaults(tx *firestore.Transaction, addresses []*entity.Address, keepID string, now time.Time) error {
	for _, a := range addresses {
		if !a.IsDefault || a.ID == keepID {
			continue
		}
		err := tx.Update(r.col().Doc(a.ID), []firestore.Update{
			{Path: "isDefault", Value: false},
			{Path: "updatedAt", Value: now},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *firestoreAddressRepository) Create(ctx context.Context, address *entity.Address, maxAddresses int) error {
	ref := r.col().NewDoc()
	wantDefault := address.IsDefault
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()
		existing, err := r.userAddresses(tx, address.UserID)
		if err != nil {
			return err
		}
		if maxAddresses > 0 && len(existing) >= maxAddresses {
			return errors.Conflict("Address limit reached")
		}
		address.ID = ref.ID
		address.IsDefault = wantDefault || len(existing) == 0
		address.CreatedAt, address.UpdatedAt = now, now
		if address.IsDefault {
			if err := r.unsetDefaults(tx, existing, address.ID, now); err != nil {
				return err
			}
		}
		return tx.Create(ref, address)
	}, txOptions(r.maxAttempts)...)
	return storeError(err, "Failed to create address")
}

func (r *firestoreAddressRepository) GetByID(ctx context.Context, id string) (*entity.Address, error) {
	doc, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Address", err)
		}
		return nil, storeError(err, "Failed to get address")
	}
	var addr entity.Address
	if err := doc.DataTo(&addr); err != nil {
		return nil, errors.Internal("Failed to parse address data", err)
	}
	addr.ID = doc.Ref.ID
	return &addr, nil
}

func (r *firestoreAddressRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Address, error) {
	docs, err := r.col().Where("userId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, storeError(err, "Failed to list addresses")
	}
	addresses := make([]*entity.Address, 0, len(docs))
	for _, doc := range docs {
		var addr entity.Address
		if err := doc.DataTo(&addr); err != nil {
			continue
		}
		addr.ID = doc.Ref.ID
		addresses = append(addresses, &addr)
	}
	entity.SortAddresses(addresses)
	return addresses, nil
}

// Update rewrites the address fields; the default flag only changes through
// SetDefault.
func (r *firestoreAddressRepository) Update(ctx context.Context, address *entity.Address) error {
	ref := r.col().Doc(address.ID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if IsNotFound(err) {
				return errors.NotFound("Address", err)
			}
			return err
		}
		var current entity.Address
		if err := doc.DataTo(&current); err != nil {
			return err
		}
		if current.UserID != address.UserID {
			return errors.NotFound("Address", nil)
		}
		address.IsDefault = current.IsDefault
		address.CreatedAt = current.CreatedAt
		address.UpdatedAt = time.Now()
		return tx.Set(ref, address)
	}, txOptions(r.maxAttempts)...)
	return storeError(err, "Failed to update address")
}

func (r *firestoreAddressRepository) Delete(ctx context.Context, userID, id string) error {
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()
		addresses, err := r.userAddresses(tx, userID)
		if err != nil {
			return err
		}
		var target *entity.Address
		var rest []*entity.Address
		for _, a := range addresses {
			if a.ID == id {
				target = a
			} else {
				rest = append(rest, a)
			}
		}
		if target == nil {
			return errors.NotFound("Address", nil)
		}
		if err := tx.Delete(r.col().Doc(id)); err != nil {
			return err
		}
		if !target.IsDefault || len(rest) == 0 {
			return nil
		}
		entity.SortAddresses(rest)
		return tx.Update(r.col().Doc(rest[0].ID), []firestore.Update{
			{Path: "isDefault", Value: true},
			{Path: "updatedAt", Value: now},
		})
	}, txOptions(r.maxAttempts)...)
	return storeError(err, "Failed to delete address")
}

func (r *firestoreAddressRepository) SetDefault(ctx context.Context, userID, id string) error {
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()
		addresses, err := r.userAddresses(tx, userID)
		if err != nil {
			return err
		}
		found := false
		for _, a := range addresses {
			if a.ID == id {
				found = true
			}
		}
		if !found {
			return errors.NotFound("Address", nil)
		}
		if err := r.unsetDefaults(tx, addresses, id, now); err != nil {
			return err
		}
		return tx.Update(r.col().Doc(id), []firestore.Update{
			{Path: "isDefault", Value: true},
			{Path: "updatedAt", Value: now},
		})
	}, txOptions(r.maxAttempts)...)
	return storeError(err, "Failed to set default address")
}

func (r *firestoreAddressRepository) GetDefault(ctx context.Context, userID string) (*entity.Address, error) {
	addresses, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(addresses) == 0 {
		return nil, nil
	}
	// Sorted default first; falls back to the newest address.
	return addresses[0], nil
}
