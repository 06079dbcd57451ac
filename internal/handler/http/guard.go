package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/nrichard27/account-api/internal/apperror"
	"github.com/nrichard27/account-api/internal/domain"
	"github.com/nrichard27/account-api/internal/logger"
	"github.com/nrichard27/account-api/internal/repository"
	"github.com/nrichard27/account-api/internal/token"
)

type contextKey string

const (
	principalKey contextKey = "principal"
	tokenKey     contextKey = "token"
)

// Guard holds the collaborators needed to authenticate requests and enforce
// role requirements.
type Guard struct {
	codec  *token.Codec
	users  repository.UserRepository
	ledger repository.RefreshTokenRepository
	logger *slog.Logger
}

// NewGuard creates a new request guard.
func NewGuard(
	codec *token.Codec,
	users repository.UserRepository,
	ledger repository.RefreshTokenRepository,
	l *slog.Logger,
) *Guard {
	return &Guard{
		codec:  codec,
		users:  users,
		ledger: ledger,
		logger: l,
	}
}

// RequireToken returns middleware that authenticates the request with a token
// of the given kind. On success the resolved principal and the raw token
// string are attached to the request context.
//
// Refresh tokens must additionally be present in the ledger; a refresh token
// that fails cryptographic verification is scheduled for best-effort removal
// from the ledger without blocking the response.
func (g *Guard) RequireToken(kind token.Kind) func(http.Handler) http.Handler {
	return g.require(kind, true)
}

// RequireTokenSignature authenticates like RequireToken but skips the ledger
// presence check for refresh tokens. Logout mounts this so revoking a token
// whose ledger entry is already gone still succeeds.
func (g *Guard) RequireTokenSignature(kind token.Kind) func(http.Handler) http.Handler {
	return g.require(kind, false)
}

func (g *Guard) require(kind token.Kind, checkLedger bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				writeError(w, r, apperror.Unauthorized())
				return
			}

			claims, err := g.codec.Verify(kind, tokenString)
			if err != nil {
				if kind == token.KindRefresh {
					g.cleanupStaleToken(r.Context(), tokenString)
				}
				writeError(w, r, apperror.Unauthorized())
				return
			}

			if kind == token.KindRefresh && checkLedger {
				if _, err := g.ledger.Get(r.Context(), tokenString); err != nil {
					if errors.Is(err, apperror.ErrNotFound) {
						writeError(w, r, apperror.Unauthorized())
						return
					}
					writeError(w, r, err)
					return
				}
			}

			if claims.IPAddress != clientIP(r) {
				writeError(w, r, apperror.Forbidden())
				return
			}

			principal, err := g.users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					writeError(w, r, apperror.Unauthorized())
					return
				}
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			ctx = context.WithValue(ctx, tokenKey, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// cleanupStaleToken removes a refresh token that failed verification from the
// ledger. It runs detached from the request so the response is never held up
// or failed by the delete.
func (g *Guard) cleanupStaleToken(ctx context.Context, tokenString string) {
	detached := context.WithoutCancel(ctx)
	go func() {
		if err := g.ledger.Delete(detached, tokenString); err != nil {
			g.logger.ErrorContext(detached, "failed to remove stale refresh token",
				slog.String("error", err.Error()),
			)
		}
	}()
}

// RequireRole returns middleware that rejects principals whose role does not
// satisfy the minimum. A numerically lower role value means higher privilege.
//
// It must be mounted after RequireToken; running it without an authenticated
// principal is a programming error and panics.
func (g *Guard) RequireRole(minimum domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				panic("RequireRole mounted without RequireToken")
			}

			if !principal.Role.Satisfies(minimum) {
				logger.FromContext(r.Context()).WarnContext(r.Context(), "insufficient role",
					slog.String("user_id", principal.ID),
					slog.Int("role", int(principal.Role)),
					slog.Int("required", int(minimum)),
				)
				writeError(w, r, apperror.Forbidden())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromContext returns the authenticated principal attached by
// RequireToken, or nil.
func PrincipalFromContext(ctx context.Context) *domain.User {
	principal, _ := ctx.Value(principalKey).(*domain.User)
	return principal
}

// TokenFromContext returns the raw bearer token attached by RequireToken.
func TokenFromContext(ctx context.Context) string {
	tokenString, _ := ctx.Value(tokenKey).(string)
	return tokenString
}

// bearerToken extracts the credential from an Authorization header of the
// exact form "Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenString == "" || strings.ContainsRune(tokenString, ' ') {
		return "", false
	}
	return tokenString, true
}

// clientIP returns the observed network origin of the request, preferring
// proxy headers over the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return rip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
