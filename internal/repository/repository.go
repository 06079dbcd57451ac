package repository

import (
	"context"
	"time"

	"github.com/nrichard27/account-api/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by their username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns all users in the store.
	List(ctx context.Context) ([]domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their identifier.
	Delete(ctx context.Context, id string) error
}

// AddressRepository defines the interface for address persistence operations.
type AddressRepository interface {
	// Create inserts a new address into the store.
	Create(ctx context.Context, address *domain.Address) error

	// GetByID retrieves an address by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Address, error)

	// ListByUserID returns all addresses owned by the given user.
	ListByUserID(ctx context.Context, userID string) ([]domain.Address, error)

	// Update modifies an existing address in the store.
	Update(ctx context.Context, address *domain.Address) error

	// Delete removes an address from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// DeleteByUserID removes every address owned by the given user.
	DeleteByUserID(ctx context.Context, userID string) error
}

// RefreshTokenRepository is the ledger of currently-honorable refresh tokens.
// A refresh token is redeemable only while its entry is present here;
// cryptographic validity alone is not sufficient.
type RefreshTokenRepository interface {
	// Insert records a newly issued refresh token for its owner. Token
	// strings are unique; a collision is an error.
	Insert(ctx context.Context, token, userID string, expiresAt time.Time) error

	// Get retrieves a ledger entry by its token string.
	Get(ctx context.Context, token string) (*domain.RefreshToken, error)

	// GetByUserID retrieves the ledger entry owned by the given user, used by
	// the login path to reuse a live token instead of minting a new one.
	GetByUserID(ctx context.Context, userID string) (*domain.RefreshToken, error)

	// Delete removes a token from the ledger. Deleting an absent token is not
	// an error.
	Delete(ctx context.Context, token string) error

	// DeleteByUserID removes every token owned by the given user.
	DeleteByUserID(ctx context.Context, userID string) error
}
