package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nrichard27/account-api/internal/service"
	"github.com/nrichard27/account-api/internal/validator"
)

// AddressHandler exposes the address management endpoints. Admin routes carry
// the owning user id in the path; the @me routes use the authenticated
// principal.
type AddressHandler struct {
	addresses *service.AddressService
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(addresses *service.AddressService) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

type createAddressRequest struct {
	Country    string `json:"country" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Street     string `json:"street" validate:"required"`
}

type updateAddressRequest struct {
	Country    *string `json:"country" validate:"omitempty,min=1"`
	City       *string `json:"city" validate:"omitempty,min=1"`
	PostalCode *string `json:"postal_code" validate:"omitempty,min=1"`
	Street     *string `json:"street" validate:"omitempty,min=1"`
}

// Create handles POST /api/v1/addresses/{user_id} (admin).
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, chi.URLParam(r, "user_id"))
}

// CreateSelf handles POST /api/v1/addresses/@me.
func (h *AddressHandler) CreateSelf(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, PrincipalFromContext(r.Context()).ID)
}

func (h *AddressHandler) create(w http.ResponseWriter, r *http.Request, userID string) {
	var req createAddressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	address, err := h.addresses.Create(r.Context(), userID, service.CreateAddressInput{
		Country:    req.Country,
		City:       req.City,
		PostalCode: req.PostalCode,
		Street:     req.Street,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"address": address})
}

// List handles GET /api/v1/addresses/{user_id} (admin).
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "user_id"))
}

// ListSelf handles GET /api/v1/addresses/@me.
func (h *AddressHandler) ListSelf(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, PrincipalFromContext(r.Context()).ID)
}

func (h *AddressHandler) list(w http.ResponseWriter, r *http.Request, userID string) {
	addresses, err := h.addresses.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"addresses": addresses})
}

// Get handles GET /api/v1/addresses/{user_id}/{address_id} (admin).
func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, chi.URLParam(r, "user_id"))
}

// GetSelf handles GET /api/v1/addresses/@me/{address_id}.
func (h *AddressHandler) GetSelf(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, PrincipalFromContext(r.Context()).ID)
}

func (h *AddressHandler) get(w http.ResponseWriter, r *http.Request, userID string) {
	address, err := h.addresses.Get(r.Context(), userID, chi.URLParam(r, "address_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"address": address})
}

// Update handles PATCH /api/v1/addresses/{user_id}/{address_id} (admin).
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, chi.URLParam(r, "user_id"))
}

// UpdateSelf handles PATCH /api/v1/addresses/@me/{address_id}.
func (h *AddressHandler) UpdateSelf(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, PrincipalFromContext(r.Context()).ID)
}

func (h *AddressHandler) update(w http.ResponseWriter, r *http.Request, userID string) {
	var req updateAddressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	address, err := h.addresses.Update(r.Context(), userID, chi.URLParam(r, "address_id"), service.UpdateAddressInput{
		Country:    req.Country,
		City:       req.City,
		PostalCode: req.PostalCode,
		Street:     req.Street,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"address": address})
}

// Delete handles DELETE /api/v1/addresses/{user_id}/{address_id} (admin).
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, chi.URLParam(r, "user_id"))
}

// DeleteSelf handles DELETE /api/v1/addresses/@me/{address_id}.
func (h *AddressHandler) DeleteSelf(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, PrincipalFromContext(r.Context()).ID)
}

func (h *AddressHandler) delete(w http.ResponseWriter, r *http.Request, userID string) {
	if err := h.addresses.Delete(r.Context(), userID, chi.URLParam(r, "address_id")); err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}
