package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Tasheen2002/Security-Project/internal/auth"
	"github.com/Tasheen2002/Security-Project/internal/domain"
	"github.com/Tasheen2002/Security-Project/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PurchaseService interface {
	CreatePurchase(ctx context.Context, principal auth.Principal, input service.PurchaseInput) (*domain.Purchase, error)
	ListOwnPurchases(ctx context.Context, principal auth.Principal) ([]domain.Purchase, error)
	ListAllPurchases(ctx context.Context, principal auth.Principal) ([]domain.Purchase, error)
	UpdatePurchaseStatus(ctx context.Context, principal auth.Principal, id string, status domain.PurchaseStatus) (*domain.Purchase, error)
}

type PurchaseHandler struct {
	errorMapper
	purchases PurchaseService
}

func NewPurchaseHandler(purchases PurchaseService, logger *zap.Logger, dev bool) *PurchaseHandler {
	return &PurchaseHandler{
		errorMapper: errorMapper{logger: logger, dev: dev},
		purchases:   purchases,
	}
}

type PurchaseRequestDTO struct {
	Date             string `json:"date"`
	DeliveryTime     string `json:"deliveryTime"`
	DeliveryLocation string `json:"deliveryLocation"`
	ProductName      string `json:"productName"`
	Quantity         int64  `json:"quantity"`
	Message          string `json:"message"`
}

type PurchaseStatusRequestDTO struct {
	Status string `json:"status"`
}

func (h *PurchaseHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req PurchaseRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	purchase, err := h.purchases.CreatePurchase(r.Context(), principal, service.PurchaseInput(req))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, purchase)
}

func (h *PurchaseHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	purchases, err := h.purchases.ListOwnPurchases(r.Context(), principal)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, purchases)
}

func (h *PurchaseHandler) ListAllPurchases(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	purchases, err := h.purchases.ListAllPurchases(r.Context(), principal)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, purchases)
}

func (h *PurchaseHandler) UpdatePurchaseStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req PurchaseStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	purchase, err := h.purchases.UpdatePurchaseStatus(r.Context(), principal, chi.URLParam(r, "id"), domain.PurchaseStatus(req.Status))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, purchase)
}
