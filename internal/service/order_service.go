package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Tasheen2002/Security-Project/internal/auth"
	"github.com/Tasheen2002/Security-Project/internal/domain"
	"github.com/Tasheen2002/Security-Project/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EstimatedDeliveryDelay is added to the shipping time when the admin
// marks an order shipped without an explicit estimate.
const EstimatedDeliveryDelay = 5 * 24 * time.Hour

// OrderList is a paginated page of orders.
type OrderList struct {
	Orders      []domain.Order
	CurrentPage int64
	TotalPages  int64
	TotalOrders int64
}

func (l OrderList) HasNext() bool { return l.CurrentPage < l.TotalPages }
func (l OrderList) HasPrev() bool { return l.CurrentPage > 1 }

// StatusUpdateInput is the admin-facing status mutation.
type StatusUpdateInput struct {
	Status         domain.OrderStatus
	TrackingNumber string
	Notes          string
}

// OrderService manages the order lifecycle after checkout. Forward
// transitions never touch inventory; only the guarded cancel path
// restores it, exactly once per order.
type OrderService struct {
	orders    repository.OrderRepository
	inventory repository.ProductRepository
	outbox    repository.OutboxRepository
	logger    *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, inventory repository.ProductRepository, outbox repository.OutboxRepository, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:    orders,
		inventory: inventory,
		outbox:    outbox,
		logger:    logger,
	}
}

func (s *OrderService) ListOrders(ctx context.Context, principal auth.Principal, page, limit int64) (*OrderList, error) {
	opts := normalizePage(page, limit, 10)

	orders, total, err := s.orders.ListOrdersByUser(ctx, principal.Subject, opts)
	if err != nil {
		return nil, err
	}
	return pageOf(orders, total, opts), nil
}

func (s *OrderService) GetOrder(ctx context.Context, principal auth.Principal, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(principal, auth.ResourceOrder, auth.ActionRead, order.UserID); err != nil {
		// Owners must not learn that someone else's order id exists
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

// CancelOrder is the customer- and admin-facing cancel. The repository
// transition is conditional on a still-cancellable status, so a second
// cancel loses the race and the inventory restoration below runs at
// most once per order, driven by the order's own line snapshot.
func (s *OrderService) CancelOrder(ctx context.Context, principal auth.Principal, orderID, reason string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(principal, auth.ResourceOrder, auth.ActionCancel, order.UserID); err != nil {
		return nil, repository.ErrOrderNotFound
	}

	if reason == "" {
		reason = "Cancelled by customer"
	}

	cancelled, err := s.orders.MarkCancelled(ctx, orderID, reason)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotCancellable) {
			return nil, &NotCancellableError{Status: order.Status}
		}
		return nil, err
	}

	s.restoreInventory(ctx, cancelled)
	s.appendOrderEvent(ctx, EventOrderCancelled, cancelled)

	s.logger.Info("order cancelled",
		zap.String("order_id", cancelled.OrderID),
		zap.String("actor", principal.Subject),
		zap.String("reason", reason))

	return cancelled, nil
}

func (s *OrderService) ListAllOrders(ctx context.Context, principal auth.Principal, status domain.OrderStatus, page, limit int64) (*OrderList, error) {
	if err := auth.Authorize(principal, auth.ResourceOrder, auth.ActionManage, ""); err != nil {
		return nil, err
	}
	if status != "" && !domain.ValidOrderStatus(status) {
		return nil, ValidationError{Field: "status", Message: "Invalid order status"}
	}

	opts := normalizePage(page, limit, 20)

	orders, total, err := s.orders.ListAllOrders(ctx, status, opts)
	if err != nil {
		return nil, err
	}
	return pageOf(orders, total, opts), nil
}

// UpdateStatus is admin-only. Setting shipped fills in an estimated
// delivery when absent; setting delivered stamps deliveredAt and marks
// the payment paid, which covers cash-on-delivery collection. A status
// of cancelled routes through the guarded cancel so stock restoration
// stays exactly-once.
func (s *OrderService) UpdateStatus(ctx context.Context, principal auth.Principal, orderID string, input StatusUpdateInput) (*domain.Order, error) {
	if err := auth.Authorize(principal, auth.ResourceOrder, auth.ActionManage, ""); err != nil {
		return nil, err
	}
	if !domain.ValidOrderStatus(input.Status) {
		return nil, ValidationError{Field: "status", Message: "Invalid order status"}
	}

	if input.Status == domain.OrderStatusCancelled {
		return s.CancelOrder(ctx, principal, orderID, "Cancelled by admin")
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	patch := repository.StatusPatch{
		Status:         input.Status,
		TrackingNumber: input.TrackingNumber,
		Notes:          input.Notes,
	}

	if input.Status == domain.OrderStatusShipped && order.EstimatedDelivery == nil {
		eta := time.Now().Add(EstimatedDeliveryDelay)
		patch.EstimatedDelivery = &eta
	}

	if input.Status == domain.OrderStatusDelivered {
		now := time.Now()
		patch.DeliveredAt = &now
		patch.PaymentStatus = domain.PaymentStatusPaid
	}

	updated, err := s.orders.UpdateOrderStatus(ctx, orderID, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("status", string(input.Status)),
		zap.String("actor", principal.Subject))

	return updated, nil
}

func (s *OrderService) restoreInventory(ctx context.Context, order *domain.Order) {
	for _, item := range order.Items {
		if err := s.inventory.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("stock restore failed on cancellation",
				zap.String("order_id", order.OrderID),
				zap.String("product_id", item.ProductID),
				zap.Int64("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

func (s *OrderService) appendOrderEvent(ctx context.Context, eventType string, order *domain.Order) {
	payload, err := json.Marshal(map[string]interface{}{
		"order_id":   order.OrderID,
		"user_id":    order.UserID,
		"status":     order.Status,
		"total":      order.Totals.Total,
		"created_at": time.Now(),
	})
	if err != nil {
		s.logger.Error("failed to marshal order event", zap.Error(err))
		return
	}

	event := &repository.OutboxEvent{
		ID:          uuid.NewString(),
		AggregateID: order.OrderID,
		EventType:   eventType,
		Payload:     payload,
	}
	if err := s.outbox.AppendEvent(ctx, event); err != nil {
		s.logger.Error("failed to append order event",
			zap.String("order_id", order.OrderID),
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}

func normalizePage(page, limit, defaultLimit int64) repository.ListOptions {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return repository.ListOptions{Page: page, Limit: limit}
}

func pageOf(orders []domain.Order, total int64, opts repository.ListOptions) *OrderList {
	totalPages := total / opts.Limit
	if total%opts.Limit != 0 {
		totalPages++
	}
	return &OrderList{
		Orders:      orders,
		CurrentPage: opts.Page,
		TotalPages:  totalPages,
		TotalOrders: total,
	}
}
