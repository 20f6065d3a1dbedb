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

type ProductService interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, category string, page, limit int64) (*service.ProductList, error)
	CreateProduct(ctx context.Context, principal auth.Principal, input service.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, principal auth.Principal, id string, input service.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, principal auth.Principal, id string) error
	RestockProduct(ctx context.Context, principal auth.Principal, id string, qty int64) error
}

type ProductHandler struct {
	errorMapper
	products ProductService
}

func NewProductHandler(products ProductService, logger *zap.Logger, dev bool) *ProductHandler {
	return &ProductHandler{
		errorMapper: errorMapper{logger: logger, dev: dev},
		products:    products,
	}
}

type ProductRequestDTO struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Stock       int64   `json:"stock"`
	Featured    bool    `json:"featured"`
}

type RestockRequestDTO struct {
	Quantity int64 `json:"quantity"`
}

func (d ProductRequestDTO) toInput() service.ProductInput {
	return service.ProductInput(d)
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	category := r.URL.Query().Get("category")

	list, err := h.products.ListProducts(r.Context(), category, page, limit)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success":  true,
		"products": list.Products,
		"pagination": envelope{
			"currentPage":   list.CurrentPage,
			"totalPages":    list.TotalPages,
			"totalProducts": list.Total,
			"hasNext":       list.CurrentPage < list.TotalPages,
			"hasPrev":       list.CurrentPage > 1,
		},
	})
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"product": product,
	})
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	product, err := h.products.CreateProduct(r.Context(), principal, req.toInput())
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Product created successfully",
		"product": product,
	})
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	product, err := h.products.UpdateProduct(r.Context(), principal, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Product updated successfully",
		"product": product,
	})
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.products.DeleteProduct(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Product deleted successfully",
	})
}

func (h *ProductHandler) RestockProduct(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req RestockRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.products.RestockProduct(r.Context(), principal, chi.URLParam(r, "id"), req.Quantity); err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Stock updated successfully",
	})
}
