package http

import (
	"log/slog"
	"net/http"

	"github.com/nrichard27/account-api/internal/logger"
	"github.com/nrichard27/account-api/internal/service"
	"github.com/nrichard27/account-api/internal/validator"
)

// AuthHandler exposes the session lifecycle endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerAddressRequest struct {
	Country    string `json:"country" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Street     string `json:"street" validate:"required"`
}

type registerRequest struct {
	Email     string                   `json:"email" validate:"required,email"`
	Username  string                   `json:"username" validate:"required,min=3,max=32"`
	Password  string                   `json:"password" validate:"required,min=8,max=72"`
	Addresses []registerAddressRequest `json:"addresses" validate:"dive"`
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	pair, err := h.auth.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, clientIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	input := service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	}
	for _, a := range req.Addresses {
		input.Addresses = append(input.Addresses, service.RegisterAddressInput{
			Country:    a.Country,
			City:       a.City,
			PostalCode: a.PostalCode,
			Street:     a.Street,
		})
	}

	pair, err := h.auth.Register(r.Context(), input, clientIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Refresh handles POST /api/v1/auth/refresh. The refresh-token guard has
// already verified the credential and resolved the principal.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	refreshToken := TokenFromContext(r.Context())

	pair, err := h.auth.Refresh(r.Context(), principal, clientIP(r), refreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken := TokenFromContext(r.Context())

	if err := h.auth.Logout(r.Context(), refreshToken); err != nil {
		writeError(w, r, err)
		return
	}

	if principal := PrincipalFromContext(r.Context()); principal != nil {
		logger.FromContext(r.Context()).InfoContext(r.Context(), "user logged out",
			slog.String("user_id", principal.ID),
		)
	}

	writeSuccess(w, http.StatusOK, nil)
}
