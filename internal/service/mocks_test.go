package service

import (
	"context"
	"sync"

	"github.com/Tasheen2002/Security-Project/internal/cache"
	"github.com/Tasheen2002/Security-Project/internal/domain"
	"github.com/Tasheen2002/Security-Project/internal/repository"
)

// memInventory backs ProductRepository with a mutex-guarded stock map so
// concurrent decrement tests exercise the same check-and-decrement
// atomicity the real ledger update provides.
type memInventory struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	stock    map[string]int64

	decrements    []string // product ids in decrement order
	increments    []string // product ids in rollback order
	failDecrement map[string]error
}

func newMemInventory() *memInventory {
	return &memInventory{
		products:      make(map[string]*domain.Product),
		stock:         make(map[string]int64),
		failDecrement: make(map[string]error),
	}
}

func (m *memInventory) addProduct(id, name string, price float64, stock int64) {
	m.products[id] = &domain.Product{Name: name, Price: price, Stock: stock}
	m.stock[id] = stock
}

func (m *memInventory) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	cp.Stock = m.stock[id]
	return &cp, nil
}

func (m *memInventory) ListProducts(context.Context, string, repository.ListOptions) ([]domain.Product, int64, error) {
	return nil, 0, nil
}

func (m *memInventory) InsertProduct(context.Context, *domain.Product) error { return nil }
func (m *memInventory) UpdateProduct(context.Context, *domain.Product) error { return nil }
func (m *memInventory) DeleteProduct(context.Context, string) error          { return nil }

func (m *memInventory) TryDecrementStock(_ context.Context, productID string, qty int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failDecrement[productID]; ok {
		return err
	}
	current, ok := m.stock[productID]
	if !ok {
		return repository.ErrProductNotFound
	}
	if current < qty {
		return repository.ErrInsufficientStock
	}
	m.stock[productID] = current - qty
	m.decrements = append(m.decrements, productID)
	return nil
}

func (m *memInventory) IncrementStock(_ context.Context, productID string, qty int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[productID] += qty
	m.increments = append(m.increments, productID)
	return nil
}

func (m *memInventory) stockOf(id string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[id]
}

// memCartRepo is a single-user in-memory cart.
type memCartRepo struct {
	mu       sync.Mutex
	cart     *domain.Cart
	clearErr error
	cleared  int
}

func (m *memCartRepo) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cart == nil || m.cart.UserID != userID {
		return nil, repository.ErrCartNotFound
	}
	cp := *m.cart
	cp.Items = append([]domain.CartLine(nil), m.cart.Items...)
	return &cp, nil
}

func (m *memCartRepo) AddLine(_ context.Context, userID string, line domain.CartLine) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cart == nil {
		m.cart = &domain.Cart{UserID: userID}
	}
	for i, existing := range m.cart.Items {
		if existing.ProductID == line.ProductID {
			if existing.Quantity+line.Quantity > domain.MaxLineQuantity {
				return nil, repository.ErrLineCapacity
			}
			m.cart.Items[i].Quantity += line.Quantity
			cp := *m.cart
			return &cp, nil
		}
	}
	m.cart.Items = append(m.cart.Items, line)
	cp := *m.cart
	return &cp, nil
}

func (m *memCartRepo) UpdateLineQuantity(_ context.Context, _, lineID string, quantity int64) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cart == nil {
		return nil, repository.ErrCartNotFound
	}
	for i, line := range m.cart.Items {
		if line.ID == lineID {
			m.cart.Items[i].Quantity = quantity
			cp := *m.cart
			return &cp, nil
		}
	}
	return nil, repository.ErrLineNotFound
}

func (m *memCartRepo) RemoveLine(_ context.Context, _, lineID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cart == nil {
		return nil, repository.ErrCartNotFound
	}
	for i, line := range m.cart.Items {
		if line.ID == lineID {
			m.cart.Items = append(m.cart.Items[:i], m.cart.Items[i+1:]...)
			cp := *m.cart
			return &cp, nil
		}
	}
	return nil, repository.ErrLineNotFound
}

func (m *memCartRepo) ClearCart(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	if m.cart == nil {
		return repository.ErrCartNotFound
	}
	m.cart.Items = nil
	m.cleared++
	return nil
}

func (m *memCartRepo) lines() []domain.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cart == nil {
		return nil
	}
	return append([]domain.CartLine(nil), m.cart.Items...)
}

// orderKey scopes idempotency keys per user, mirroring the compound
// unique index on the orders collection.
type orderKey struct {
	userID string
	key    string
}

// memOrderRepo stores orders in a map keyed by order id.
type memOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	byKey     map[orderKey]*domain.Order
	insertErr error
	// hideKeyOnce makes the first idempotency lookup miss, simulating a
	// rival checkout that lands between the pre-check and the insert.
	hideKeyOnce bool
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders: make(map[string]*domain.Order),
		byKey:  make(map[orderKey]*domain.Order),
	}
}

func (m *memOrderRepo) InsertOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	if order.IdempotencyKey != "" {
		k := orderKey{userID: order.UserID, key: order.IdempotencyKey}
		if _, exists := m.byKey[k]; exists {
			return repository.ErrDuplicateOrderKey
		}
		m.byKey[k] = order
	}
	m.orders[order.OrderID] = order
	return nil
}

func (m *memOrderRepo) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *memOrderRepo) GetOrderByIdempotencyKey(_ context.Context, userID, key string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hideKeyOnce {
		m.hideKeyOnce = false
		return nil, repository.ErrOrderNotFound
	}
	order, ok := m.byKey[orderKey{userID: userID, key: key}]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *memOrderRepo) ListOrdersByUser(_ context.Context, userID string, _ repository.ListOptions) ([]domain.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memOrderRepo) ListAllOrders(_ context.Context, status domain.OrderStatus, _ repository.ListOptions) ([]domain.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if status == "" || o.Status == status {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memOrderRepo) MarkCancelled(_ context.Context, orderID, reason string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	if !order.Status.Cancellable() {
		return nil, repository.ErrOrderNotCancellable
	}
	order.Status = domain.OrderStatusCancelled
	order.CancellationReason = reason
	cp := *order
	return &cp, nil
}

func (m *memOrderRepo) UpdateOrderStatus(_ context.Context, orderID string, patch repository.StatusPatch) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	order.Status = patch.Status
	if patch.TrackingNumber != "" {
		order.TrackingNumber = patch.TrackingNumber
	}
	if patch.Notes != "" {
		order.Notes = patch.Notes
	}
	if patch.EstimatedDelivery != nil {
		order.EstimatedDelivery = patch.EstimatedDelivery
	}
	if patch.DeliveredAt != nil {
		order.DeliveredAt = patch.DeliveredAt
	}
	if patch.PaymentStatus != "" {
		order.PaymentStatus = patch.PaymentStatus
	}
	cp := *order
	return &cp, nil
}

func (m *memOrderRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// memOutbox collects appended events.
type memOutbox struct {
	mu     sync.Mutex
	events []*repository.OutboxEvent
}

func (m *memOutbox) AppendEvent(_ context.Context, event *repository.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *memOutbox) ListUnpublishedEvents(context.Context, int64) ([]*repository.OutboxEvent, error) {
	return nil, nil
}

func (m *memOutbox) MarkEventPublished(context.Context, string) error { return nil }

func (m *memOutbox) eventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.events))
	for i, e := range m.events {
		types[i] = e.EventType
	}
	return types
}

// noopCache always misses.
type noopCache struct{}

func (noopCache) Get(context.Context, string) (*domain.Cart, error) {
	return nil, cache.ErrCacheMiss
}
func (noopCache) Set(context.Context, string, *domain.Cart) error { return nil }
func (noopCache) Delete(context.Context, string) error            { return nil }
