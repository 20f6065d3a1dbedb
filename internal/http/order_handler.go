package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Tasheen2002/Security-Project/internal/auth"
	"github.com/Tasheen2002/Security-Project/internal/domain"
	"github.com/Tasheen2002/Security-Project/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CheckoutService interface {
	Checkout(ctx context.Context, principal auth.Principal, input service.CheckoutInput) (*domain.Order, error)
}

type OrderService interface {
	ListOrders(ctx context.Context, principal auth.Principal, page, limit int64) (*service.OrderList, error)
	GetOrder(ctx context.Context, principal auth.Principal, orderID string) (*domain.Order, error)
	CancelOrder(ctx context.Context, principal auth.Principal, orderID, reason string) (*domain.Order, error)
	ListAllOrders(ctx context.Context, principal auth.Principal, status domain.OrderStatus, page, limit int64) (*service.OrderList, error)
	UpdateStatus(ctx context.Context, principal auth.Principal, orderID string, input service.StatusUpdateInput) (*domain.Order, error)
}

type OrderHandler struct {
	errorMapper
	checkout CheckoutService
	orders   OrderService
}

func NewOrderHandler(checkout CheckoutService, orders OrderService, logger *zap.Logger, dev bool) *OrderHandler {
	return &OrderHandler{
		errorMapper: errorMapper{logger: logger, dev: dev},
		checkout:    checkout,
		orders:      orders,
	}
}

type AddressDTO struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	District   string `json:"district"`
	PostalCode string `json:"postalCode"`
}

func (a AddressDTO) toDomain() domain.Address {
	return domain.Address(a)
}

type TotalsDTO struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

type CreateOrderRequestDTO struct {
	Shipping      AddressDTO `json:"shipping"`
	Billing       AddressDTO `json:"billing"`
	PaymentMethod string     `json:"paymentMethod"`
	Totals        *TotalsDTO `json:"totals,omitempty"`
}

type CancelOrderRequestDTO struct {
	Reason string `json:"reason"`
}

type UpdateStatusRequestDTO struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

func paginationEnvelope(list *service.OrderList) envelope {
	return envelope{
		"currentPage": list.CurrentPage,
		"totalPages":  list.TotalPages,
		"totalOrders": list.TotalOrders,
		"hasNext":     list.HasNext(),
		"hasPrev":     list.HasPrev(),
	}
}

// CreateOrder is the checkout entry point: it converts the caller's
// cart into an order or rejects with field-level detail.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	input := service.CheckoutInput{
		Shipping:       req.Shipping.toDomain(),
		Billing:        req.Billing.toDomain(),
		PaymentMethod:  domain.PaymentMethod(req.PaymentMethod),
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	}
	if req.Totals != nil {
		input.Totals = &service.ClientTotals{
			Subtotal: req.Totals.Subtotal,
			Tax:      req.Totals.Tax,
			Shipping: req.Totals.Shipping,
			Total:    req.Totals.Total,
		}
	}

	order, err := h.checkout.Checkout(r.Context(), principal, input)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Order created successfully",
		"orderId": order.OrderID,
		"order":   order,
	})
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	page, limit := pageParams(r)

	list, err := h.orders.ListOrders(r.Context(), principal, page, limit)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success":    true,
		"orders":     list.Orders,
		"pagination": paginationEnvelope(list),
	})
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), principal, chi.URLParam(r, "orderId"))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"order":   order,
	})
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CancelOrderRequestDTO
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // reason is optional
	}

	order, err := h.orders.CancelOrder(r.Context(), principal, chi.URLParam(r, "orderId"), req.Reason)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Order cancelled successfully",
		"order": envelope{
			"orderId":            order.OrderID,
			"status":             order.Status,
			"cancelledAt":        order.CancelledAt,
			"cancellationReason": order.CancellationReason,
		},
	})
}

func (h *OrderHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	page, limit := pageParams(r)
	status := domain.OrderStatus(r.URL.Query().Get("status"))

	list, err := h.orders.ListAllOrders(r.Context(), principal, status, page, limit)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success":    true,
		"orders":     list.Orders,
		"pagination": paginationEnvelope(list),
	})
}

func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), principal, chi.URLParam(r, "orderId"), service.StatusUpdateInput{
		Status:         domain.OrderStatus(req.Status),
		TrackingNumber: req.TrackingNumber,
		Notes:          req.Notes,
	})
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Order status updated successfully",
		"order": envelope{
			"orderId":           order.OrderID,
			"status":            order.Status,
			"trackingNumber":    order.TrackingNumber,
			"estimatedDelivery": order.EstimatedDelivery,
			"deliveredAt":       order.DeliveredAt,
		},
	})
}

func pageParams(r *http.Request) (int64, int64) {
	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	return page, limit
}
