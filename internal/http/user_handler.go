package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Tasheen2002/Security-Project/internal/auth"
	"github.com/Tasheen2002/Security-Project/internal/domain"
	"github.com/Tasheen2002/Security-Project/internal/service"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, principal auth.Principal) (*domain.User, error)
	UpdateProfile(ctx context.Context, principal auth.Principal, input service.ProfileInput) (*domain.User, error)
	ListUsers(ctx context.Context, principal auth.Principal, page, limit int64) ([]domain.User, int64, error)
}

type UserHandler struct {
	errorMapper
	users UserService
}

func NewUserHandler(users UserService, logger *zap.Logger, dev bool) *UserHandler {
	return &UserHandler{
		errorMapper: errorMapper{logger: logger, dev: dev},
		users:       users,
	}
}

type ProfileRequestDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.users.GetProfile(r.Context(), principal)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"user":    user,
	})
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ProfileRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), principal, service.ProfileInput(req))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	page, limit := pageParams(r)

	users, total, err := h.users.ListUsers(r.Context(), principal, page, limit)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success":    true,
		"users":      users,
		"totalUsers": total,
	})
}
