package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Tasheen2002/Security-Project/internal/auth"
	"github.com/Tasheen2002/Security-Project/internal/domain"
	"github.com/Tasheen2002/Security-Project/internal/repository"
	"github.com/Tasheen2002/Security-Project/internal/service"
)

type mockCheckoutService struct {
	order *domain.Order
	err   error

	lastPrincipal auth.Principal
	lastInput     service.CheckoutInput
}

func (m *mockCheckoutService) Checkout(_ context.Context, principal auth.Principal, input service.CheckoutInput) (*domain.Order, error) {
	m.lastPrincipal = principal
	m.lastInput = input
	return m.order, m.err
}

type mockOrderService struct {
	order *domain.Order
	list  *service.OrderList
	err   error

	lastOrderID string
	lastReason  string
	lastStatus  service.StatusUpdateInput
}

func (m *mockOrderService) ListOrders(context.Context, auth.Principal, int64, int64) (*service.OrderList, error) {
	return m.list, m.err
}

func (m *mockOrderService) GetOrder(_ context.Context, _ auth.Principal, orderID string) (*domain.Order, error) {
	m.lastOrderID = orderID
	return m.order, m.err
}

func (m *mockOrderService) CancelOrder(_ context.Context, _ auth.Principal, orderID, reason string) (*domain.Order, error) {
	m.lastOrderID = orderID
	m.lastReason = reason
	return m.order, m.err
}

func (m *mockOrderService) ListAllOrders(context.Context, auth.Principal, domain.OrderStatus, int64, int64) (*service.OrderList, error) {
	return m.list, m.err
}

func (m *mockOrderService) UpdateStatus(_ context.Context, _ auth.Principal, orderID string, input service.StatusUpdateInput) (*domain.Order, error) {
	m.lastOrderID = orderID
	m.lastStatus = input
	return m.order, m.err
}

func orderTestRouter(checkout CheckoutService, orders OrderService) chi.Router {
	h := NewOrderHandler(checkout, orders, zap.NewNop(), false)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(PrincipalMiddleware)
		r.Post("/api/orders", h.CreateOrder)
		r.Get("/api/orders", h.ListOrders)
		r.Get("/api/orders/admin/all", h.ListAllOrders)
		r.Put("/api/orders/admin/{orderId}/status", h.UpdateOrderStatus)
		r.Get("/api/orders/{orderId}", h.GetOrder)
		r.Put("/api/orders/{orderId}/cancel", h.CancelOrder)
	})
	return r
}

const checkoutBody = `{
	"shipping": {"firstName":"Test","lastName":"Buyer","email":"buyer@example.com","phone":"0771234567","address":"12 Main Street","city":"Colombo","district":"Colombo","postalCode":"00100"},
	"billing":  {"firstName":"Test","lastName":"Buyer","email":"buyer@example.com","phone":"0771234567","address":"12 Main Street","city":"Colombo","district":"Colombo","postalCode":"00100"},
	"paymentMethod": "card",
	"totals": {"subtotal": 30, "tax": 3, "shipping": 0, "total": 33}
}`

func TestCreateOrder_Created(t *testing.T) {
	checkout := &mockCheckoutService{order: &domain.Order{
		OrderID: "ORD-ABC",
		Status:  domain.OrderStatusPending,
		Totals:  domain.Totals{Subtotal: 30, Tax: 3, Total: 33},
	}}
	router := orderTestRouter(checkout, &mockOrderService{})

	req := authed(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(checkoutBody)))
	req.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ORD-ABC", body["orderId"])

	assert.Equal(t, "user-1", checkout.lastPrincipal.Subject)
	assert.Equal(t, "key-1", checkout.lastInput.IdempotencyKey)
	assert.Equal(t, domain.PaymentMethodCard, checkout.lastInput.PaymentMethod)
	require.NotNil(t, checkout.lastInput.Totals)
	assert.Equal(t, 33.00, checkout.lastInput.Totals.Total)
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	checkout := &mockCheckoutService{err: service.ErrEmptyCart}
	router := orderTestRouter(checkout, &mockOrderService{})

	req := authed(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(checkoutBody)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Order must contain at least one item", body["message"])
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	checkout := &mockCheckoutService{err: &service.InsufficientStockError{ProductName: "Gadget"}}
	router := orderTestRouter(checkout, &mockOrderService{})

	req := authed(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(checkoutBody)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Insufficient stock for Gadget", body["message"])
}

func TestCreateOrder_ValidationErrors(t *testing.T) {
	checkout := &mockCheckoutService{err: service.ValidationErrors{
		{Field: "shipping.email", Message: "Invalid email format"},
		{Field: "billing.city", Message: "is required"},
	}}
	router := orderTestRouter(checkout, &mockOrderService{})

	req := authed(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(checkoutBody)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Validation failed", body["message"])
	require.Len(t, body["errors"], 2)
}

func TestCreateOrder_InternalErrorRedacted(t *testing.T) {
	checkout := &mockCheckoutService{err: assert.AnError}
	router := orderTestRouter(checkout, &mockOrderService{})

	req := authed(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(checkoutBody)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Internal server error", body["message"])
}

func TestCancelOrder_OK(t *testing.T) {
	orders := &mockOrderService{order: &domain.Order{
		OrderID:            "ORD-ABC",
		Status:             domain.OrderStatusCancelled,
		CancellationReason: "changed my mind",
	}}
	router := orderTestRouter(&mockCheckoutService{}, orders)

	req := authed(httptest.NewRequest(http.MethodPut, "/api/orders/ORD-ABC/cancel",
		strings.NewReader(`{"reason":"changed my mind"}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ORD-ABC", orders.lastOrderID)
	assert.Equal(t, "changed my mind", orders.lastReason)

	body := decodeBody(t, rec)
	order := body["order"].(map[string]interface{})
	assert.Equal(t, "cancelled", order["status"])
}

func TestCancelOrder_AlreadyCancelled(t *testing.T) {
	orders := &mockOrderService{err: &service.NotCancellableError{Status: domain.OrderStatusCancelled}}
	router := orderTestRouter(&mockCheckoutService{}, orders)

	req := authed(httptest.NewRequest(http.MethodPut, "/api/orders/ORD-ABC/cancel", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "cannot cancel order with status: cancelled", body["message"])
}

func TestGetOrder_NotFound(t *testing.T) {
	orders := &mockOrderService{err: repository.ErrOrderNotFound}
	router := orderTestRouter(&mockCheckoutService{}, orders)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/orders/ORD-NOPE", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrders_Pagination(t *testing.T) {
	orders := &mockOrderService{list: &service.OrderList{
		Orders:      []domain.Order{{OrderID: "ORD-1"}},
		CurrentPage: 2,
		TotalPages:  3,
		TotalOrders: 25,
	}}
	router := orderTestRouter(&mockCheckoutService{}, orders)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/orders?page=2&limit=10", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["currentPage"])
	assert.Equal(t, true, pagination["hasNext"])
	assert.Equal(t, true, pagination["hasPrev"])
}

func TestListAllOrders_Forbidden(t *testing.T) {
	orders := &mockOrderService{err: auth.ErrForbidden}
	router := orderTestRouter(&mockCheckoutService{}, orders)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/orders/admin/all", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Access denied", body["message"])
}

func TestUpdateOrderStatus_OK(t *testing.T) {
	orders := &mockOrderService{order: &domain.Order{
		OrderID:        "ORD-ABC",
		Status:         domain.OrderStatusShipped,
		TrackingNumber: "TRK-42",
	}}
	router := orderTestRouter(&mockCheckoutService{}, orders)

	req := authed(httptest.NewRequest(http.MethodPut, "/api/orders/admin/ORD-ABC/status",
		strings.NewReader(`{"status":"shipped","trackingNumber":"TRK-42"}`)))
	req.Header.Set(HeaderRoles, "user,admin")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.OrderStatusShipped, orders.lastStatus.Status)
	assert.Equal(t, "TRK-42", orders.lastStatus.TrackingNumber)
}
