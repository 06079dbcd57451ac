package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nrichard27/account-api/internal/apperror"
	"github.com/nrichard27/account-api/internal/domain"
	"github.com/nrichard27/account-api/internal/repository"
)

// AddressService implements the business logic for address management.
// Every operation is scoped to an owning user; an address that exists but
// belongs to someone else is reported as absent.
type AddressService struct {
	addresses repository.AddressRepository
	logger    *slog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(addresses repository.AddressRepository, logger *slog.Logger) *AddressService {
	return &AddressService{
		addresses: addresses,
		logger:    logger,
	}
}

// CreateAddressInput holds the parameters for creating an address.
type CreateAddressInput struct {
	Country    string
	City       string
	PostalCode string
	Street     string
}

// UpdateAddressInput holds the updatable address fields. Nil pointers leave
// the stored value untouched.
type UpdateAddressInput struct {
	Country    *string
	City       *string
	PostalCode *string
	Street     *string
}

// Create adds an address owned by the given user. An owner that does not
// exist is reported as absent.
func (s *AddressService) Create(ctx context.Context, userID string, input CreateAddressInput) (*domain.Address, error) {
	now := time.Now().UTC()
	address := &domain.Address{
		ID:         uuid.New().String(),
		UserID:     userID,
		Country:    input.Country,
		City:       input.City,
		PostalCode: input.PostalCode,
		Street:     input.Street,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.addresses.Create(ctx, address); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound()
		}
		return nil, fmt.Errorf("create address: %w", err)
	}

	s.logger.InfoContext(ctx, "address created",
		slog.String("address_id", address.ID),
		slog.String("user_id", userID),
	)

	return address, nil
}

// List returns all addresses owned by the given user.
func (s *AddressService) List(ctx context.Context, userID string) ([]domain.Address, error) {
	addresses, err := s.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addresses, nil
}

// Get returns a single address owned by the given user.
func (s *AddressService) Get(ctx context.Context, userID, addressID string) (*domain.Address, error) {
	address, err := s.ownedAddress(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	return address, nil
}

// Update applies a partial update to an address owned by the given user.
func (s *AddressService) Update(ctx context.Context, userID, addressID string, input UpdateAddressInput) (*domain.Address, error) {
	address, err := s.ownedAddress(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	if input.Country != nil {
		address.Country = *input.Country
	}
	if input.City != nil {
		address.City = *input.City
	}
	if input.PostalCode != nil {
		address.PostalCode = *input.PostalCode
	}
	if input.Street != nil {
		address.Street = *input.Street
	}

	if err := s.addresses.Update(ctx, address); err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}

	s.logger.InfoContext(ctx, "address updated",
		slog.String("address_id", address.ID),
		slog.String("user_id", userID),
	)

	return address, nil
}

// Delete removes an address owned by the given user.
func (s *AddressService) Delete(ctx context.Context, userID, addressID string) error {
	if _, err := s.ownedAddress(ctx, userID, addressID); err != nil {
		return err
	}

	if err := s.addresses.Delete(ctx, addressID); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}

	s.logger.InfoContext(ctx, "address deleted",
		slog.String("address_id", addressID),
		slog.String("user_id", userID),
	)

	return nil
}

func (s *AddressService) ownedAddress(ctx context.Context, userID, addressID string) (*domain.Address, error) {
	address, err := s.addresses.GetByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound()
		}
		return nil, fmt.Errorf("get address: %w", err)
	}
	if address.UserID != userID {
		return nil, apperror.NotFound()
	}
	return address, nil
}
