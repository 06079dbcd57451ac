package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nrichard27/account-api/internal/apperror"
	"github.com/nrichard27/account-api/internal/domain"
)

func newTestUserService(
	userRepo *mockUserRepository,
	addressRepo *mockAddressRepository,
	tokenRepo *mockRefreshTokenRepository,
) *UserService {
	return NewUserService(userRepo, addressRepo, tokenRepo, newTestEventProducer(), newTestLogger())
}

func TestUserCreate_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	addressRepo := new(mockAddressRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestUserService(userRepo, addressRepo, tokenRepo)
	ctx := context.Background()

	userRepo.On("GetByUsername", ctx, "admin2").Return(nil, apperror.ErrNotFound)
	userRepo.On("GetByEmail", ctx, "admin2@example.com").Return(nil, apperror.ErrNotFound)
	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := svc.Create(ctx, CreateUserInput{
		Email:    "admin2@example.com",
		Username: "admin2",
		Password: "correct horse battery staple",
		Role:     domain.RoleAdmin,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse battery staple")))
	assert.NotZero(t, user.CreatedAt)
	userRepo.AssertExpectations(t)
}

func TestUserGet_AttachesAddresses(t *testing.T) {
	userRepo := new(mockUserRepository)
	addressRepo := new(mockAddressRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestUserService(userRepo, addressRepo, tokenRepo)
	ctx := context.Background()
	user := testUser()

	addresses := []domain.Address{
		{ID: "addr-1", UserID: user.ID, Country: "Hungary", City: "Budapest"},
		{ID: "addr-2", UserID: user.ID, Country: "Hungary", City: "Szeged"},
	}

	userRepo.On("GetByID", ctx, user.ID).Return(user, nil)
	addressRepo.On("ListByUserID", ctx, user.ID).Return(addresses, nil)

	got, err := svc.Get(ctx, user.ID)

	require.NoError(t, err)
	assert.Len(t, got.Addresses, 2)
	assert.Equal(t, "addr-1", got.Addresses[0].ID)
}

func TestUserGet_NotFound(t *testing.T) {
	userRepo := new(mockUserRepository)
	addressRepo := new(mockAddressRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestUserService(userRepo, addressRepo, tokenRepo)
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "missing").Return(nil, apperror.ErrNotFound)

	got, err := svc.Get(ctx, "missing")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
}

func TestUserUpdate_PartialFields(t *testing.T) {
	userRepo := new(mockUserRepository)
	addressRepo := new(mockAddressRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestUserService(userRepo, addressRepo, tokenRepo)
	ctx := context.Background()
	user := testUser()
	originalHash := user.PasswordHash

	userRepo.On("GetByID", ctx, user.ID).Return(user, nil)
	userRepo.On("GetByUsername", ctx, "renamed").Return(nil, apperror.ErrNotFound)
	userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	got, err := svc.Update(ctx, user.ID, UpdateUserInput{Username: strPtr("renamed")})

	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Username)
	// Untouched fields keep their stored values.
	assert.Equal(t, "jdoe@example.com", got.Email)
	assert.Equal(t, originalHash, got.PasswordHash)
	assert.Equal(t, domain.RoleUser, got.Role)
}

func TestUserUpdate_UsernameTaken(t *testing.T) {
	userRepo := new(mockUserRepository)
	addressRepo := new(mockAddressRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestUserService(userRepo, addressRepo, tokenRepo)
	ctx := context.Background()
	user := testUser()

	other := testUser()
	other.ID = "user-2"
	other.Username = "taken"

	userRepo.On("GetByID", ctx, user.ID).Return(user, nil)
	userRepo.On("GetByUsername", ctx, "taken").Return(other, nil)

	got, err := svc.Update(ctx, user.ID, UpdateUserInput{Username: strPtr("taken")})

	assert.Nil(t, got)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeUsernameInUse, appErr.Code)
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserUpdate_RehashesPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	addressRepo := new(mockAddressRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestUserService(userRepo, addressRepo, tokenRepo)
	ctx := context.Background()
	user := testUser()

	userRepo.On("GetByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	got, err := svc.Update(ctx, user.ID, UpdateUserInput{Password: strPtr("a brand new passphrase")})

	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("a brand new passphrase")))
}

func TestUserDelete_CascadesDependentsFirst(t *testing.T) {
	userRepo := new(mockUserRepository)
	addressRepo := new(mockAddressRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestUserService(userRepo, addressRepo, tokenRepo)
	ctx := context.Background()
	user := testUser()

	var order []string

	userRepo.On("GetByID", ctx, user.ID).Return(user, nil)
	addressRepo.On("DeleteByUserID", ctx, user.ID).
		Run(func(mock.Arguments) { order = append(order, "addresses") }).Return(nil)
	tokenRepo.On("DeleteByUserID", ctx, user.ID).
		Run(func(mock.Arguments) { order = append(order, "tokens") }).Return(nil)
	userRepo.On("Delete", ctx, user.ID).
		Run(func(mock.Arguments) { order = append(order, "user") }).Return(nil)

	require.NoError(t, svc.Delete(ctx, user.ID))

	// Owned records go before the owning principal.
	assert.Equal(t, []string{"addresses", "tokens", "user"}, order)
	addressRepo.AssertExpectations(t)
	tokenRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestUserDelete_NotFound(t *testing.T) {
	userRepo := new(mockUserRepository)
	addressRepo := new(mockAddressRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestUserService(userRepo, addressRepo, tokenRepo)
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "missing").Return(nil, apperror.ErrNotFound)

	err := svc.Delete(ctx, "missing")

	assert.ErrorIs(t, err, apperror.ErrNotFound)
	addressRepo.AssertNotCalled(t, "DeleteByUserID", mock.Anything, mock.Anything)
	tokenRepo.AssertNotCalled(t, "DeleteByUserID", mock.Anything, mock.Anything)
}

func TestUserList(t *testing.T) {
	userRepo := new(mockUserRepository)
	addressRepo := new(mockAddressRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestUserService(userRepo, addressRepo, tokenRepo)
	ctx := context.Background()

	now := time.Now().UTC()
	userRepo.On("List", ctx).Return([]domain.User{
		{ID: "user-1", Username: "a", CreatedAt: now},
		{ID: "user-2", Username: "b", CreatedAt: now},
	}, nil)

	users, err := svc.List(ctx)

	require.NoError(t, err)
	assert.Len(t, users, 2)
}
