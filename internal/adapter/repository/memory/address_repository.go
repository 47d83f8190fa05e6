package memory

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/pkg/errors"
)

type addressRepository struct {
	s *Store
}

func (r *addressRepository) byUser(userID string) []*entity.Address {
	var addresses []*entity.Address
	for _, a := range r.s.addresses {
		if a.UserID == userID {
			addresses = append(addresses, a)
		}
	}
	return addresses
}

func (r *addressRepository) unsetDefaults(userID, keepID string) {
	now := r.s.now()
	for _, a := range r.byUser(userID) {
		if a.IsDefault && a.ID != keepID {
			a.IsDefault = false
			a.UpdatedAt = now
		}
	}
}

func (r *addressRepository) Create(ctx context.Context, address *entity.Address, maxAddresses int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing := r.byUser(address.UserID)
	if maxAddresses > 0 && len(existing) >= maxAddresses {
		return errors.Conflict("Address limit reached")
	}
	now := r.s.now()
	address.ID = newID()
	address.IsDefault = address.IsDefault || len(existing) == 0
	address.CreatedAt, address.UpdatedAt = now, now
	if address.IsDefault {
		r.unsetDefaults(address.UserID, address.ID)
	}
	r.s.addresses[address.ID] = cloneAddress(address)
	return nil
}

func (r *addressRepository) GetByID(ctx context.Context, id string) (*entity.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.addresses[id]
	if !ok {
		return nil, errors.NotFound("Address", nil)
	}
	return cloneAddress(a), nil
}

func (r *addressRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var addresses []*entity.Address
	for _, a := range r.byUser(userID) {
		addresses = append(addresses, cloneAddress(a))
	}
	entity.SortAddresses(addresses)
	return addresses, nil
}

func (r *addressRepository) Update(ctx context.Context, address *entity.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.addresses[address.ID]
	if !ok || current.UserID != address.UserID {
		return errors.NotFound("Address", nil)
	}
	address.IsDefault = current.IsDefault
	address.CreatedAt = current.CreatedAt
	address.UpdatedAt = r.s.now()
	r.s.addresses[address.ID] = cloneAddress(address)
	return nil
}

func (r *addressRepository) Delete(ctx context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	target, ok := r.s.addresses[id]
	if !ok || target.UserID != userID {
		return errors.NotFound("Address", nil)
	}
	delete(r.s.addresses, id)
	if !target.IsDefault {
		return nil
	}
	rest := r.byUser(userID)
	if len(rest) == 0 {
		return nil
	}
	entity.SortAddresses(rest)
	rest[0].IsDefault = true
	rest[0].UpdatedAt = r.s.now()
	return nil
}

func (r *addressRepository) SetDefault(ctx context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	target, ok := r.s.addresses[id]
	if !ok || target.UserID != userID {
		return errors.NotFound("Address", nil)
	}
	r.unsetDefaults(userID, id)
	target.IsDefault = true
	target.UpdatedAt = r.s.now()
	return nil
}

func (r *addressRepository) GetDefault(ctx context.Context, userID string) (*entity.Address, error) {
	addresses, err := r.ListByUser(ctx, userID)
	if err != nil || len(addresses) == 0 {
		return nil, err
	}
	return addresses[0], nil
}
