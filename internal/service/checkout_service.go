package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"time"

	"github.com/Tasheen2002/Security-Project/internal/auth"
	"github.com/Tasheen2002/Security-Project/internal/cache"
	"github.com/Tasheen2002/Security-Project/internal/domain"
	"github.com/Tasheen2002/Security-Project/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventOrderCreated   = "order_created"
	EventOrderCancelled = "order_cancelled"
)

// ClientTotals are the totals the client displayed. They are never
// trusted; when present they are checked against the server-side
// recomputation and a mismatch rejects the checkout.
type ClientTotals struct {
	Subtotal float64
	Tax      float64
	Shipping float64
	Total    float64
}

type CheckoutInput struct {
	Shipping       domain.Address
	Billing        domain.Address
	PaymentMethod  domain.PaymentMethod
	Totals         *ClientTotals
	IdempotencyKey string
}

// CheckoutService converts a mutable cart into an immutable order.
// Multi-line atomicity is manufactured by compensating actions: stock
// is decremented line by line in a fixed order and every decrement
// already applied is re-incremented the moment any later step fails.
type CheckoutService struct {
	carts     repository.CartRepository
	orders    repository.OrderRepository
	inventory repository.ProductRepository
	outbox    repository.OutboxRepository
	cache     cache.CartCache
	logger    *zap.Logger
}

func NewCheckoutService(
	carts repository.CartRepository,
	orders repository.OrderRepository,
	inventory repository.ProductRepository,
	outbox repository.OutboxRepository,
	cartCache cache.CartCache,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		orders:    orders,
		inventory: inventory,
		outbox:    outbox,
		cache:     cartCache,
		logger:    logger,
	}
}

// Checkout runs the cart-to-order protocol. Preconditions fail fast
// with no side effects; after the first stock decrement every failure
// path restores what was taken before surfacing the error. Stock is
// decremented for all lines or for none.
func (s *CheckoutService) Checkout(ctx context.Context, principal auth.Principal, input CheckoutInput) (*domain.Order, error) {
	userID := principal.Subject

	// A repeated idempotency key replays the stored order untouched.
	// The lookup is scoped to the caller: another user submitting the
	// same key starts a fresh checkout instead of seeing this order.
	if input.IdempotencyKey != "" {
		existing, err := s.orders.GetOrderByIdempotencyKey(ctx, userID, input.IdempotencyKey)
		if err == nil {
			s.logger.Info("duplicate checkout replayed",
				zap.String("user_id", userID),
				zap.String("order_id", existing.OrderID),
				zap.String("idempotency_key", input.IdempotencyKey))
			return existing, nil
		}
		if !errors.Is(err, repository.ErrOrderNotFound) {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if err := validateCheckoutInput(input); err != nil {
		return nil, err
	}

	items := snapshotItems(cart)

	// Totals are recomputed from the cart's line snapshots, never taken
	// from the client.
	totals := domain.ComputeTotals(items)
	if err := checkClientTotals(totals, input.Totals); err != nil {
		return nil, err
	}

	if err := s.decrementAll(ctx, items); err != nil {
		return nil, err
	}

	order := &domain.Order{
		OrderID:        domain.NewOrderID(),
		UserID:         userID,
		Username:       principal.Username(),
		Items:          items,
		Shipping:       input.Shipping,
		Billing:        input.Billing,
		PaymentMethod:  input.PaymentMethod,
		PaymentStatus:  domain.PaymentStatusPending,
		Status:         domain.OrderStatusPending,
		Totals:         totals,
		IdempotencyKey: input.IdempotencyKey,
	}

	if err := s.orders.InsertOrder(ctx, order); err != nil {
		// Inventory must not stay short without an order explaining it.
		s.restoreAll(ctx, items)

		if errors.Is(err, repository.ErrDuplicateOrderKey) && input.IdempotencyKey != "" {
			// Lost a double-submit race; the winner's order stands.
			existing, getErr := s.orders.GetOrderByIdempotencyKey(ctx, userID, input.IdempotencyKey)
			if getErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	s.appendOrderEvent(ctx, EventOrderCreated, order)

	// The order is durable at this point. A failed cart clear is a
	// lesser defect than a lost or duplicate order and is reconciled
	// out of band, so it is logged and not surfaced.
	if err := s.carts.ClearCart(ctx, userID); err != nil {
		s.logger.Error("cart clear failed after order creation",
			zap.String("user_id", userID),
			zap.String("order_id", order.OrderID),
			zap.Error(err))
	}
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("cart cache invalidate failed after checkout",
			zap.String("user_id", userID), zap.Error(err))
	}

	s.logger.Info("order created",
		zap.String("user_id", userID),
		zap.String("order_id", order.OrderID),
		zap.Float64("total", order.Totals.Total),
		zap.Int("lines", len(order.Items)))

	return order, nil
}

// decrementAll walks the lines in ascending product order and rolls
// back every applied decrement on the first failure.
func (s *CheckoutService) decrementAll(ctx context.Context, items []domain.OrderItem) error {
	for i, item := range items {
		err := s.inventory.TryDecrementStock(ctx, item.ProductID, item.Quantity)
		if err == nil {
			continue
		}

		s.restoreAll(ctx, items[:i])

		if errors.Is(err, repository.ErrInsufficientStock) || errors.Is(err, repository.ErrProductNotFound) {
			return &InsufficientStockError{ProductName: item.ProductName}
		}
		return fmt.Errorf("failed to decrement stock for %s: %w", item.ProductID, err)
	}
	return nil
}

func (s *CheckoutService) restoreAll(ctx context.Context, items []domain.OrderItem) {
	for _, item := range items {
		if err := s.inventory.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			// Stock drift: flagged loudly, needs manual reconciliation
			s.logger.Error("stock rollback failed",
				zap.String("product_id", item.ProductID),
				zap.Int64("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

func (s *CheckoutService) appendOrderEvent(ctx context.Context, eventType string, order *domain.Order) {
	payload, err := json.Marshal(map[string]interface{}{
		"order_id":   order.OrderID,
		"user_id":    order.UserID,
		"status":     order.Status,
		"total":      order.Totals.Total,
		"items":      order.Items,
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

// snapshotItems copies the cart lines into order items sorted by
// product id, the fixed decrement order shared with rollback.
func snapshotItems(cart *domain.Cart) []domain.OrderItem {
	items := make([]domain.OrderItem, len(cart.Items))
	for i, line := range cart.Items {
		items[i] = domain.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Price:       line.Price,
			Quantity:    line.Quantity,
			Image:       line.Image,
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProductID < items[j].ProductID
	})
	return items
}

func validateCheckoutInput(input CheckoutInput) error {
	var errs ValidationErrors

	errs = append(errs, validateAddress("shipping", input.Shipping)...)
	errs = append(errs, validateAddress("billing", input.Billing)...)

	if !domain.ValidPaymentMethod(input.PaymentMethod) {
		errs = append(errs, ValidationError{Field: "paymentMethod", Message: "Invalid payment method"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateAddress(prefix string, addr domain.Address) ValidationErrors {
	var errs ValidationErrors

	required := []struct {
		field string
		value string
		max   int
	}{
		{"firstName", addr.FirstName, 50},
		{"lastName", addr.LastName, 50},
		{"phone", addr.Phone, 30},
		{"address", addr.Address, 200},
		{"city", addr.City, 50},
		{"district", addr.District, 50},
		{"postalCode", addr.PostalCode, 20},
	}
	for _, f := range required {
		switch {
		case f.value == "":
			errs = append(errs, ValidationError{
				Field:   prefix + "." + f.field,
				Message: "is required",
			})
		case len(f.value) > f.max:
			errs = append(errs, ValidationError{
				Field:   prefix + "." + f.field,
				Message: fmt.Sprintf("must be %d characters or less", f.max),
			})
		}
	}

	if addr.Email == "" {
		errs = append(errs, ValidationError{Field: prefix + ".email", Message: "is required"})
	} else if _, err := mail.ParseAddress(addr.Email); err != nil {
		errs = append(errs, ValidationError{Field: prefix + ".email", Message: "Invalid email format"})
	}

	return errs
}

func checkClientTotals(server domain.Totals, client *ClientTotals) error {
	if client == nil {
		return nil
	}
	if !domain.SameAmount(server.Subtotal, client.Subtotal) {
		return ValidationError{Field: "totals.subtotal", Message: "does not match the cart contents"}
	}
	if !domain.SameAmount(server.Total, client.Total) {
		return ValidationError{Field: "totals.total", Message: "does not match the computed total"}
	}
	return nil
}
