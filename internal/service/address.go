package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/repository"
)

var ErrAddressNotFound = errors.New("address not found")

type AddressService struct {
	tx          repository.Transactor
	addressRepo repository.AddressRepository
	userRepo    repository.UserRepository
}

func NewAddressService(tx repository.Transactor, addressRepo repository.AddressRepository, userRepo repository.UserRepository) *AddressService {
	return &AddressService{tx: tx, addressRepo: addressRepo, userRepo: userRepo}
}

func (s *AddressService) List(ctx context.Context, userID uuid.UUID) ([]dto.AddressResponse, error) {
	addresses, err := s.addressRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	resp := make([]dto.AddressResponse, 0, len(addresses))
	for i := range addresses {
		resp = append(resp, dto.NewAddressResponse(&addresses[i]))
	}
	return resp, nil
}

// Create adds an address. A new default replaces the user's previous default
// of the same type.
func (s *AddressService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateAddressRequest) (*dto.AddressResponse, error) {
	address := &model.Address{
		UserID:     userID,
		Type:       model.AddressType(req.Type),
		Name:       req.Name,
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Phone:      req.Phone,
		IsDefault:  req.IsDefault,
	}

	// The user row lock orders concurrent default changes, so the later
	// transaction sees the earlier one's default and clears it.
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Lock(ctx, userID); err != nil {
			return err
		}
		if address.IsDefault {
			if err := s.addressRepo.UnsetDefaults(ctx, userID, address.Type, uuid.Nil); err != nil {
				return err
			}
		}
		return s.addressRepo.Create(ctx, address)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("create address: %w", err)
	}

	resp := dto.NewAddressResponse(address)
	return &resp, nil
}

// Update patches an address owned by userID. An empty patch returns the
// address unchanged.
func (s *AddressService) Update(ctx context.Context, userID, addressID uuid.UUID, req dto.UpdateAddressRequest) (*dto.AddressResponse, error) {
	address, err := s.addressRepo.GetForUser(ctx, addressID, userID)
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}
	if req.Empty() {
		resp := dto.NewAddressResponse(address)
		return &resp, nil
	}

	if req.Type != nil {
		address.Type = model.AddressType(*req.Type)
	}
	if req.Name != nil {
		address.Name = *req.Name
	}
	if req.Street != nil {
		address.Street = *req.Street
	}
	if req.City != nil {
		address.City = *req.City
	}
	if req.State != nil {
		address.State = *req.State
	}
	if req.PostalCode != nil {
		address.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		address.Country = *req.Country
	}
	if req.Phone.Set {
		address.Phone = req.Phone.Ptr()
	}
	if req.IsDefault != nil {
		address.IsDefault = *req.IsDefault
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// A default that moves to another type displaces that type's default too.
		if address.IsDefault {
			if err := s.userRepo.Lock(ctx, userID); err != nil {
				return err
			}
			if err := s.addressRepo.UnsetDefaults(ctx, userID, address.Type, address.ID); err != nil {
				return err
			}
		}
		return s.addressRepo.Update(ctx, address)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("update address: %w", err)
	}

	resp := dto.NewAddressResponse(address)
	return &resp, nil
}

// Delete reports false when the address is missing or owned by someone else.
func (s *AddressService) Delete(ctx context.Context, userID, addressID uuid.UUID) (bool, error) {
	deleted, err := s.addressRepo.DeleteForUser(ctx, addressID, userID)
	if err != nil {
		return false, fmt.Errorf("delete address: %w", err)
	}
	return deleted, nil
}
