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
)

// UserService implements the business logic for user management.
type UserService struct {
	users     repository.UserRepository
	addresses repository.AddressRepository
	tokens    repository.RefreshTokenRepository
	producer  *event.Producer
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	users repository.UserRepository,
	addresses repository.AddressRepository,
	tokens repository.RefreshTokenRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		addresses: addresses,
		tokens:    tokens,
		producer:  producer,
		logger:    logger,
	}
}

// CreateUserInput holds the parameters for creating a user directly
// (admin path, no token issuance).
type CreateUserInput struct {
	Email    string
	Username string
	Password string
	Role     domain.Role
}

// UpdateUserInput holds the updatable user fields. Nil pointers leave the
// stored value untouched.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	Role     *domain.Role
}

// Create creates a new user with an explicit role. Uniqueness of username and
// email is checked before the insert, with the database indexes as backstop.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
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

	role := input.Role
	if !role.Valid() {
		role = domain.RoleUser
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrAlreadyExists) {
			if _, lookupErr := s.users.GetByUsername(ctx, input.Username); lookupErr == nil {
				return nil, apperror.UsernameInUse()
			}
			return nil, apperror.EmailInUse()
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user created",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// List returns all users, without their addresses.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns a single user with their addresses attached.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound()
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	addresses, err := s.addresses.ListByUserID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	user.Addresses = addresses

	return user, nil
}

// Update applies a partial update to a user. Only the fields set in the input
// are changed; username and email changes re-run the uniqueness checks.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound()
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if input.Username != nil && *input.Username != user.Username {
		if _, err := s.users.GetByUsername(ctx, *input.Username); err == nil {
			return nil, apperror.UsernameInUse()
		} else if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("check username: %w", err)
		}
		user.Username = *input.Username
	}

	if input.Email != nil && *input.Email != user.Email {
		if _, err := s.users.GetByEmail(ctx, *input.Email); err == nil {
			return nil, apperror.EmailInUse()
		} else if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("check email: %w", err)
		}
		user.Email = *input.Email
	}

	if input.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperror.Validation([]string{"role must be a known role value"})
		}
		user.Role = *input.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if err := s.producer.PublishUserUpdated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.updated event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user updated",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// Delete removes a user and everything they own. Dependents go first so a
// partial failure never leaves orphaned rows behind a deleted user: addresses,
// then refresh tokens, then the user record itself.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFound()
		}
		return fmt.Errorf("get user: %w", err)
	}

	if err := s.addresses.DeleteByUserID(ctx, id); err != nil {
		return fmt.Errorf("delete addresses: %w", err)
	}

	if err := s.tokens.DeleteByUserID(ctx, id); err != nil {
		return fmt.Errorf("delete refresh tokens: %w", err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if err := s.producer.PublishUserDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.deleted event",
			slog.String("user_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.String("user_id", id),
	)

	return nil
}
