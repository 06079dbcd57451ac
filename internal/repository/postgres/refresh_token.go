package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nrichard27/account-api/internal/apperror"
	"github.com/nrichard27/account-api/internal/domain"
)

// RefreshTokenRepository implements the refresh token ledger using PostgreSQL.
type RefreshTokenRepository struct {
	db DBTX
}

// NewRefreshTokenRepository creates a new PostgreSQL-backed refresh token ledger.
func NewRefreshTokenRepository(db DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Insert records a newly issued refresh token. The token column carries a
// unique index; a collision surfaces as ErrAlreadyExists.
func (r *RefreshTokenRepository) Insert(ctx context.Context, token, userID string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query, uuid.New().String(), userID, token, expiresAt, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrAlreadyExists
		}
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// Get retrieves a ledger entry by its token string.
func (r *RefreshTokenRepository) Get(ctx context.Context, token string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1`

	return r.scanToken(ctx, query, token)
}

// GetByUserID retrieves the ledger entry owned by the given user.
func (r *RefreshTokenRepository) GetByUserID(ctx context.Context, userID string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, created_at
		FROM refresh_tokens
		WHERE user_id = $1`

	return r.scanToken(ctx, query, userID)
}

// Delete removes a token from the ledger. Deleting an absent token succeeds.
func (r *RefreshTokenRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM refresh_tokens WHERE token = $1`

	_, err := r.db.Exec(ctx, query, token)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	return nil
}

// DeleteByUserID removes every token owned by the given user.
func (r *RefreshTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	query := `DELETE FROM refresh_tokens WHERE user_id = $1`

	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("delete refresh tokens by user: %w", err)
	}

	return nil
}

func (r *RefreshTokenRepository) scanToken(ctx context.Context, query string, arg any) (*domain.RefreshToken, error) {
	var rt domain.RefreshToken

	err := r.db.QueryRow(ctx, query, arg).Scan(
		&rt.ID,
		&rt.UserID,
		&rt.Token,
		&rt.ExpiresAt,
		&rt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}

	return &rt, nil
}
