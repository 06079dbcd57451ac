package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nrichard27/account-api/internal/apperror"
	"github.com/nrichard27/account-api/internal/domain"
	"github.com/nrichard27/account-api/internal/event"
	"github.com/nrichard27/account-api/internal/repository"
	"github.com/nrichard27/account-api/internal/token"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// dummyHash is compared against when the login email is unknown, so both
// failure paths spend a bcrypt round before answering.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// AuthService orchestrates login, registration, token refresh, and logout.
type AuthService struct {
	users     repository.UserRepository
	addresses repository.AddressRepository
	tokens    repository.RefreshTokenRepository
	codec     *token.Codec
	producer  *event.Producer
	logger    *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	users repository.UserRepository,
	addresses repository.AddressRepository,
	tokens repository.RefreshTokenRepository,
	codec *token.Codec,
	producer *event.Producer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		addresses: addresses,
		tokens:    tokens,
		codec:     codec,
		producer:  producer,
		logger:    logger,
	}
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Email    string
	Password string
}

// RegisterAddressInput holds one address supplied at registration.
type RegisterAddressInput struct {
	Country    string
	City       string
	PostalCode string
	Street     string
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	Addresses []RegisterAddressInput
}

// Login authenticates a user by email and password and returns a token pair.
// The access token is always freshly minted and bound to clientIP; if the user
// already has a refresh token on record it is reused rather than re-minted.
func (s *AuthService) Login(ctx context.Context, input LoginInput, clientIP string) (*domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// Burn a comparison anyway so unknown emails take as long as
			// wrong passwords.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(input.Password))
			return nil, apperror.WrongCredentials()
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.WrongCredentials()
	}

	accessToken, err := s.codec.Sign(token.KindAccess, user.ID, clientIP)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.refreshTokenFor(ctx, user, clientIP)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("ip", clientIP),
	)

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// refreshTokenFor returns the user's existing refresh token if one is on
// record, or mints and persists a new one.
func (s *AuthService) refreshTokenFor(ctx context.Context, user *domain.User, clientIP string) (string, error) {
	existing, err := s.tokens.GetByUserID(ctx, user.ID)
	if err == nil {
		return existing.Token, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return "", fmt.Errorf("get refresh token by user: %w", err)
	}

	refreshToken, err := s.codec.Sign(token.KindRefresh, user.ID, clientIP)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.codec.TTL(token.KindRefresh))
	if err := s.tokens.Insert(ctx, refreshToken, user.ID, expiresAt); err != nil {
		return "", fmt.Errorf("insert refresh token: %w", err)
	}

	return refreshToken, nil
}

// Register creates a new user account with its addresses and returns a fresh
// token pair. Username and email uniqueness are both checked before any write;
// the database unique indexes remain the authoritative guard against
// concurrent duplicates.
func (s *AuthService) Register(ctx context.Context, input RegisterInput, clientIP string) (*domain.TokenPair, error) {
	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, apperror.UsernameInUse()
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperror.EmailInUse()
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrAlreadyExists) {
			// A concurrent registration won the race; figure out which
			// index caught it.
			if _, lookupErr := s.users.GetByUsername(ctx, input.Username); lookupErr == nil {
				return nil, apperror.UsernameInUse()
			}
			return nil, apperror.EmailInUse()
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	for _, a := range input.Addresses {
		addr := &domain.Address{
			ID:         uuid.New().String(),
			UserID:     user.ID,
			Country:    a.Country,
			City:       a.City,
			PostalCode: a.PostalCode,
			Street:     a.Street,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.addresses.Create(ctx, addr); err != nil {
			return nil, fmt.Errorf("create address: %w", err)
		}
	}

	accessToken, err := s.codec.Sign(token.KindAccess, user.ID, clientIP)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := s.codec.Sign(token.KindRefresh, user.ID, clientIP)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	expiresAt := now.Add(s.codec.TTL(token.KindRefresh))
	if err := s.tokens.Insert(ctx, refreshToken, user.ID, expiresAt); err != nil {
		return nil, fmt.Errorf("insert refresh token: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh mints a new access token bound to clientIP for an already-verified
// principal and echoes the presented refresh token back unchanged. Refresh
// tokens are not rotated on use.
func (s *AuthService) Refresh(ctx context.Context, principal *domain.User, clientIP, refreshToken string) (*domain.TokenPair, error) {
	accessToken, err := s.codec.Sign(token.KindAccess, principal.ID, clientIP)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.InfoContext(ctx, "access token refreshed",
		slog.String("user_id", principal.ID),
	)

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout removes the presented refresh token from the ledger. Deleting a
// token that is already gone is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}
