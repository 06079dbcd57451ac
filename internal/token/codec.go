package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind selects which token class a codec operation applies to. Each kind is
// signed with its own secret so that a compromise of one cannot forge the
// other.
type Kind int

const (
	KindAccess Kind = iota
	KindRefresh
)

func (k Kind) String() string {
	switch k {
	case KindAccess:
		return "access"
	case KindRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Claims is the payload embedded in both token kinds: the principal, the
// network origin the token was issued to, and the standard validity window.
type Claims struct {
	UserID    string `json:"user_id"`
	IPAddress string `json:"ip_address"`
	jwt.RegisteredClaims
}

// Codec signs and verifies compact, tamper-evident tokens. Access tokens are
// short-lived and stateless; refresh tokens are long-lived and additionally
// tracked by the ledger.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewCodec creates a codec with independently configured secrets and
// lifetimes for the two token kinds.
func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// TTL returns the configured lifetime for the given kind.
func (c *Codec) TTL(kind Kind) time.Duration {
	if kind == KindAccess {
		return c.accessTTL
	}
	return c.refreshTTL
}

// Sign creates a signed token of the given kind binding the principal to the
// originating IP address.
func (c *Codec) Sign(kind Kind, userID, ip string) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID:    userID,
		IPAddress: ip,
		RegisteredClaims: jwt.RegisteredClaims{
			// A unique jti makes every minted token distinct, even two issued
			// within the same second for the same principal.
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL(kind))),
			Issuer:    "account-api",
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret(kind))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}

	return signed, nil
}

// Verify parses and validates a token of the given kind, returning its
// claims. It fails on a malformed token, a signature mismatch (including a
// token of the other kind), and an elapsed expiry.
func (c *Codec) Verify(kind Kind, tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret(kind), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s token: %w", kind, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid %s token claims", kind)
	}

	return claims, nil
}

func (c *Codec) secret(kind Kind) []byte {
	if kind == KindAccess {
		return c.accessSecret
	}
	return c.refreshSecret
}
