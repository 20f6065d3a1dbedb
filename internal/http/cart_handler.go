package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Tasheen2002/Security-Project/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CartService is the slice of the cart aggregate this handler consumes.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddLine(ctx context.Context, userID, productID string, quantity int64) (*domain.Cart, error)
	UpdateLine(ctx context.Context, userID, lineID string, quantity int64) (*domain.Cart, error)
	RemoveLine(ctx context.Context, userID, lineID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

type CartHandler struct {
	errorMapper
	carts CartService
}

func NewCartHandler(carts CartService, logger *zap.Logger, dev bool) *CartHandler {
	return &CartHandler{
		errorMapper: errorMapper{logger: logger, dev: dev},
		carts:       carts,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

type UpdateItemRequestDTO struct {
	Quantity int64 `json:"quantity"`
}

func cartEnvelope(cart *domain.Cart) envelope {
	items := cart.Items
	if items == nil {
		items = []domain.CartLine{}
	}
	return envelope{
		"items":      items,
		"total":      cart.Total(),
		"totalItems": cart.TotalItems(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	cart, err := h.carts.GetCart(r.Context(), principal.Subject)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	body := cartEnvelope(cart)
	body["success"] = true
	respondJSON(w, http.StatusOK, body)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.carts.AddLine(r.Context(), principal.Subject, req.ProductID, req.Quantity)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Item added to cart",
		"cart":    cartEnvelope(cart),
	})
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	lineID := chi.URLParam(r, "itemId")

	var req UpdateItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	cart, err := h.carts.UpdateLine(r.Context(), principal.Subject, lineID, req.Quantity)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Cart item updated",
		"cart":    cartEnvelope(cart),
	})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	lineID := chi.URLParam(r, "itemId")

	cart, err := h.carts.RemoveLine(r.Context(), principal.Subject, lineID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Item removed from cart",
		"cart":    cartEnvelope(cart),
	})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.carts.ClearCart(r.Context(), principal.Subject); err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Cart cleared",
	})
}
