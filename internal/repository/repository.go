package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Tasheen2002/Security-Project/internal/domain"
)

var (
	ErrCartNotFound        = errors.New("cart not found")
	ErrLineNotFound        = errors.New("item not found in cart")
	ErrLineCapacity        = errors.New("maximum quantity per item exceeded")
	ErrProductNotFound     = errors.New("product not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotCancellable = errors.New("order is not cancellable")
	ErrDuplicateOrderKey   = errors.New("order with this idempotency key already exists")
	ErrDuplicateReview     = errors.New("user already reviewed this product")
	ErrReviewNotFound      = errors.New("review not found")
	ErrPurchaseNotFound    = errors.New("purchase not found")
	ErrUserNotFound        = errors.New("user not found")
)

// ListOptions is 1-based pagination shared by the list queries.
type ListOptions struct {
	Page  int64
	Limit int64
}

func (o ListOptions) Skip() int64 {
	page := o.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * o.Limit
}

type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	// AddLine appends a new line or merges quantities into an existing
	// line for the same product. Merged quantities above the per-line
	// cap fail with ErrLineCapacity, leaving the line unchanged.
	AddLine(ctx context.Context, userID string, line domain.CartLine) (*domain.Cart, error)
	UpdateLineQuantity(ctx context.Context, userID, lineID string, quantity int64) (*domain.Cart, error)
	RemoveLine(ctx context.Context, userID, lineID string) (*domain.Cart, error)
	// ClearCart empties the line list. The cart document itself stays.
	ClearCart(ctx context.Context, userID string) error
}

type ProductRepository interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, category string, opts ListOptions) ([]domain.Product, int64, error)
	InsertProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error

	// TryDecrementStock atomically decrements stock by qty only if the
	// current stock covers it; otherwise it fails without mutating.
	TryDecrementStock(ctx context.Context, productID string, qty int64) error
	// IncrementStock unconditionally restores previously decremented
	// stock. Used only by order cancellation compensations.
	IncrementStock(ctx context.Context, productID string, qty int64) error
}

// StatusPatch carries the mutable slice of an order touched by an
// admin status update. Items, prices and totals never change.
type StatusPatch struct {
	Status            domain.OrderStatus
	TrackingNumber    string
	Notes             string
	EstimatedDelivery *time.Time
	DeliveredAt       *time.Time
	PaymentStatus     domain.PaymentStatus
}

type OrderRepository interface {
	InsertOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	// GetOrderByIdempotencyKey resolves a replayed key for one user
	// only. Keys are scoped per user, so the same key submitted by a
	// different user never resolves to someone else's order.
	GetOrderByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string, opts ListOptions) ([]domain.Order, int64, error)
	ListAllOrders(ctx context.Context, status domain.OrderStatus, opts ListOptions) ([]domain.Order, int64, error)
	// MarkCancelled performs the guarded cancel transition: it succeeds
	// only while the order is still in a cancellable status, so two
	// racing cancels resolve to exactly one winner.
	MarkCancelled(ctx context.Context, orderID, reason string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, patch StatusPatch) (*domain.Order, error)
}

type ReviewRepository interface {
	InsertReview(ctx context.Context, review *domain.Review) error
	GetReview(ctx context.Context, id string) (*domain.Review, error)
	ListReviewsByProduct(ctx context.Context, productID string, opts ListOptions) ([]domain.Review, int64, error)
	ProductReviewStats(ctx context.Context, productID string) (*domain.ReviewStats, error)
	UpdateReview(ctx context.Context, id string, rating int, comment string) (*domain.Review, error)
	DeleteReview(ctx context.Context, id string) error
}

type PurchaseRepository interface {
	InsertPurchase(ctx context.Context, purchase *domain.Purchase) error
	GetPurchase(ctx context.Context, id string) (*domain.Purchase, error)
	ListPurchasesByUser(ctx context.Context, userID string) ([]domain.Purchase, error)
	ListAllPurchases(ctx context.Context) ([]domain.Purchase, error)
	UpdatePurchaseStatus(ctx context.Context, id string, status domain.PurchaseStatus) (*domain.Purchase, error)
}

type UserRepository interface {
	GetUser(ctx context.Context, subject string) (*domain.User, error)
	UpsertUser(ctx context.Context, user *domain.User) error
	UpdateProfile(ctx context.Context, subject string, username, email, phone, address string) (*domain.User, error)
	ListUsers(ctx context.Context, opts ListOptions) ([]domain.User, int64, error)
}

// OutboxEvent is an order event awaiting publication to the broker.
type OutboxEvent struct {
	ID          string    `bson:"_id"`
	AggregateID string    `bson:"aggregate_id"`
	EventType   string    `bson:"event_type"`
	Payload     []byte    `bson:"payload"`
	Published   bool      `bson:"published"`
	CreatedAt   time.Time `bson:"created_at"`
}

type OutboxRepository interface {
	AppendEvent(ctx context.Context, event *OutboxEvent) error
	ListUnpublishedEvents(ctx context.Context, limit int64) ([]*OutboxEvent, error)
	MarkEventPublished(ctx context.Context, id string) error
}
