package usecase

import (
	"context"
	"strings"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

type AddressUseCase struct {
	addressRepo  repository.AddressRepository
	maxAddresses int
}

func NewAddressUseCase(addressRepo repository.AddressRepository, maxAddresses int) *AddressUseCase {
	return &AddressUseCase{
		addressRepo:  addressRepo,
		maxAddresses: maxAddresses,
	}
}

type AddressInput struct {
	FullName   string `json:"full_name" validate:"required,max=120"`
	Phone      string `json:"phone" validate:"required,max=32"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2" validate:"max=200"`
	City       string `json:"city" validate:"required,max=80"`
	State      string `json:"state" validate:"max=80"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,len=2"`
	IsDefault  bool   `json:"is_default"`
}

func (in AddressInput) apply(a *entity.Address) {
	a.FullName = strings.TrimSpace(in.FullName)
	a.Phone = strings.TrimSpace(in.Phone)
	a.Line1 = strings.TrimSpace(in.Line1)
	a.Line2 = strings.TrimSpace(in.Line2)
	a.City = strings.TrimSpace(in.City)
	a.State = strings.TrimSpace(in.State)
	a.PostalCode = strings.TrimSpace(in.PostalCode)
	a.Country = strings.ToUpper(strings.TrimSpace(in.Country))
}

func (uc *AddressUseCase) ListAddresses(ctx context.Context, userID string) ([]*entity.Address, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	addresses, err := uc.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fail(err, "Failed to list addresses")
	}
	if addresses == nil {
		addresses = []*entity.Address{}
	}
	return addresses, nil
}

// CreateAddress stores a new address. The user's first address becomes the
// default.
func (uc *AddressUseCase) CreateAddress(ctx context.Context, userID string, input AddressInput) (*entity.Address, error) {
	logger.Info("Creating address for user %s", userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	address := &entity.Address{UserID: userID, IsDefault: input.IsDefault}
	input.apply(address)
	if err := uc.addressRepo.Create(ctx, address, uc.maxAddresses); err != nil {
		logger.Op("address.create", userID, err)
		return nil, fail(err, "Failed to create address")
	}
	return address, nil
}

func (uc *AddressUseCase) UpdateAddress(ctx context.Context, userID, id string, input AddressInput) (*entity.Address, error) {
	logger.Info("Updating address %s for user %s", id, userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	address := &entity.Address{ID: id, UserID: userID}
	input.apply(address)
	if err := uc.addressRepo.Update(ctx, address); err != nil {
		logger.Op("address.update", userID, err)
		return nil, fail(err, "Failed to update address")
	}
	if input.IsDefault && !address.IsDefault {
		if err := uc.addressRepo.SetDefault(ctx, userID, id); err != nil {
			return nil, fail(err, "Failed to set default address")
		}
		address.IsDefault = true
	}
	return address, nil
}

// DeleteAddress removes the address; when it was the default, the most
// recently updated remaining address takes over.
func (uc *AddressUseCase) DeleteAddress(ctx context.Context, userID, id string) error {
	logger.Info("Deleting address %s for user %s", id, userID)

	if err := requireUser(userID); err != nil {
		return err
	}
	if err := uc.addressRepo.Delete(ctx, userID, id); err != nil {
		logger.Op("address.delete", userID, err)
		return fail(err, "Failed to delete address")
	}
	return nil
}

func (uc *AddressUseCase) SetDefaultAddress(ctx context.Context, userID, id string) error {
	logger.Info("Setting address %s as default for user %s", id, userID)

	if err := requireUser(userID); err != nil {
		return err
	}
	if err := uc.addressRepo.SetDefault(ctx, userID, id); err != nil {
		logger.Op("address.set_default", userID, err)
		return fail(err, "Failed to set default address")
	}
	return nil
}

// shippingAddress returns the address an order ships to: the given one,
// which must belong to the user, or the user's default.
func shippingAddress(ctx context.Context, repo repository.AddressRepository, userID, id string) (*entity.Address, error) {
	if id == "" {
		address, err := repo.GetDefault(ctx, userID)
		if err != nil {
			return nil, fail(err, "Failed to load address")
		}
		return address, nil
	}
	address, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fail(err, "Failed to load address")
	}
	if address.UserID != userID {
		return nil, errors.NotFound("Address", nil)
	}
	return address, nil
}
