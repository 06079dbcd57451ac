package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nrichard27/account-api/internal/apperror"
	"github.com/nrichard27/account-api/internal/domain"
)

func testAddress() *domain.Address {
	now := time.Now().UTC()
	return &domain.Address{
		ID:         "addr-1",
		UserID:     "user-1",
		Country:    "Hungary",
		City:       "Budapest",
		PostalCode: "1011",
		Street:     "Fo utca 1.",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestAddressCreate(t *testing.T) {
	addressRepo := new(mockAddressRepository)
	svc := NewAddressService(addressRepo, newTestLogger())
	ctx := context.Background()

	addressRepo.On("Create", ctx, mock.AnythingOfType("*domain.Address")).Return(nil)

	address, err := svc.Create(ctx, "user-1", CreateAddressInput{
		Country:    "Hungary",
		City:       "Budapest",
		PostalCode: "1011",
		Street:     "Fo utca 1.",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, address.ID)
	assert.Equal(t, "user-1", address.UserID)
	assert.Equal(t, "Budapest", address.City)
	addressRepo.AssertExpectations(t)
}

func TestAddressCreate_MissingOwnerReportsAbsent(t *testing.T) {
	addressRepo := new(mockAddressRepository)
	svc := NewAddressService(addressRepo, newTestLogger())
	ctx := context.Background()

	// The owning user row is gone; the insert trips the foreign key.
	addressRepo.On("Create", ctx, mock.AnythingOfType("*domain.Address")).Return(apperror.ErrNotFound)

	address, err := svc.Create(ctx, "no-such-user", CreateAddressInput{
		Country:    "Hungary",
		City:       "Budapest",
		PostalCode: "1011",
		Street:     "Fo utca 1.",
	})

	assert.Nil(t, address)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
}

func TestAddressGet_WrongOwnerReportsAbsent(t *testing.T) {
	addressRepo := new(mockAddressRepository)
	svc := NewAddressService(addressRepo, newTestLogger())
	ctx := context.Background()

	addressRepo.On("GetByID", ctx, "addr-1").Return(testAddress(), nil)

	got, err := svc.Get(ctx, "someone-else", "addr-1")

	assert.Nil(t, got)
	// Existence of another user's address must not leak.
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAddressGet_Owned(t *testing.T) {
	addressRepo := new(mockAddressRepository)
	svc := NewAddressService(addressRepo, newTestLogger())
	ctx := context.Background()

	addressRepo.On("GetByID", ctx, "addr-1").Return(testAddress(), nil)

	got, err := svc.Get(ctx, "user-1", "addr-1")

	require.NoError(t, err)
	assert.Equal(t, "addr-1", got.ID)
}

func TestAddressUpdate_PartialFields(t *testing.T) {
	addressRepo := new(mockAddressRepository)
	svc := NewAddressService(addressRepo, newTestLogger())
	ctx := context.Background()

	addressRepo.On("GetByID", ctx, "addr-1").Return(testAddress(), nil)
	addressRepo.On("Update", ctx, mock.AnythingOfType("*domain.Address")).Return(nil)

	got, err := svc.Update(ctx, "user-1", "addr-1", UpdateAddressInput{
		City:   strPtr("Debrecen"),
		Street: strPtr("Piac utca 10."),
	})

	require.NoError(t, err)
	assert.Equal(t, "Debrecen", got.City)
	assert.Equal(t, "Piac utca 10.", got.Street)
	// Untouched fields survive.
	assert.Equal(t, "Hungary", got.Country)
	assert.Equal(t, "1011", got.PostalCode)
}

func TestAddressDelete_WrongOwner(t *testing.T) {
	addressRepo := new(mockAddressRepository)
	svc := NewAddressService(addressRepo, newTestLogger())
	ctx := context.Background()

	addressRepo.On("GetByID", ctx, "addr-1").Return(testAddress(), nil)

	err := svc.Delete(ctx, "someone-else", "addr-1")

	assert.ErrorIs(t, err, apperror.ErrNotFound)
	addressRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAddressDelete_Owned(t *testing.T) {
	addressRepo := new(mockAddressRepository)
	svc := NewAddressService(addressRepo, newTestLogger())
	ctx := context.Background()

	addressRepo.On("GetByID", ctx, "addr-1").Return(testAddress(), nil)
	addressRepo.On("Delete", ctx, "addr-1").Return(nil)

	require.NoError(t, svc.Delete(ctx, "user-1", "addr-1"))
	addressRepo.AssertExpectations(t)
}

func TestAddressList(t *testing.T) {
	addressRepo := new(mockAddressRepository)
	svc := NewAddressService(addressRepo, newTestLogger())
	ctx := context.Background()

	addressRepo.On("ListByUserID", ctx, "user-1").Return([]domain.Address{*testAddress()}, nil)

	addresses, err := svc.List(ctx, "user-1")

	require.NoError(t, err)
	assert.Len(t, addresses, 1)
}
