package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nrichard27/account-api/internal/domain"
	"github.com/nrichard27/account-api/internal/service"
	"github.com/nrichard27/account-api/internal/validator"
)

// UserHandler exposes the user management endpoints.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     int    `json:"role" validate:"omitempty,oneof=1 2"`
}

type updateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=32"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	Role     *int    `json:"role" validate:"omitempty,oneof=1 2"`
}

// Create handles POST /api/v1/users (admin).
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.Create(r.Context(), service.CreateUserInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"user": user})
}

// List handles GET /api/v1/users (admin).
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"users": users})
}

// Get handles GET /api/v1/users/{user_id} (admin).
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, chi.URLParam(r, "user_id"))
}

// GetSelf handles GET /api/v1/users/@me.
func (h *UserHandler) GetSelf(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, PrincipalFromContext(r.Context()).ID)
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"user": user})
}

// Update handles PATCH /api/v1/users/{user_id} (admin).
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, chi.URLParam(r, "user_id"), true)
}

// UpdateSelf handles PATCH /api/v1/users/@me. Role changes are admin-only and
// silently dropped here.
func (h *UserHandler) UpdateSelf(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, PrincipalFromContext(r.Context()).ID, false)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request, id string, allowRole bool) {
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	input := service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if allowRole && req.Role != nil {
		role := domain.Role(*req.Role)
		input.Role = &role
	}

	user, err := h.users.Update(r.Context(), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"user": user})
}

// Delete handles DELETE /api/v1/users/{user_id} (admin).
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, chi.URLParam(r, "user_id"))
}

// DeleteSelf handles DELETE /api/v1/users/@me.
func (h *UserHandler) DeleteSelf(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, PrincipalFromContext(r.Context()).ID)
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}
