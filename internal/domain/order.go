package domain

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the six known statuses.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Cancellable reports whether an order in this status may still be
// cancelled. Once shipped, delivered or already cancelled it may not.
func (s OrderStatus) Cancellable() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing:
		return true
	}
	return false
}

// CancellableStatuses is the exhaustive set accepted by the guarded
// cancel transition.
var CancellableStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
}

type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodCOD          PaymentMethod = "cod"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCard, PaymentMethodCOD, PaymentMethodBankTransfer:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Address holds a shipping or billing contact block.
type Address struct {
	FirstName  string `bson:"first_name" json:"firstName"`
	LastName   string `bson:"last_name" json:"lastName"`
	Email      string `bson:"email" json:"email"`
	Phone      string `bson:"phone" json:"phone"`
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	District   string `bson:"district" json:"district"`
	PostalCode string `bson:"postal_code" json:"postalCode"`
}

// OrderItem is copied from the cart line at checkout, never re-joined
// against the catalog, so historical orders stay stable.
type OrderItem struct {
	ProductID   string  `bson:"product_id" json:"productId"`
	ProductName string  `bson:"product_name" json:"productName"`
	Price       float64 `bson:"price" json:"price"`
	Quantity    int64   `bson:"quantity" json:"quantity"`
	Image       string  `bson:"image,omitempty" json:"image,omitempty"`
}

type Totals struct {
	Subtotal float64 `bson:"subtotal" json:"subtotal"`
	Tax      float64 `bson:"tax" json:"tax"`
	Shipping float64 `bson:"shipping" json:"shipping"`
	Total    float64 `bson:"total" json:"total"`
}

// Order is immutable for items, prices and totals once created. Only
// status, tracking metadata and timestamps change afterwards.
type Order struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	OrderID            string             `bson:"order_id" json:"orderId"`
	UserID             string             `bson:"user_id" json:"-"`
	Username           string             `bson:"username" json:"-"`
	Items              []OrderItem        `bson:"items" json:"items"`
	Shipping           Address            `bson:"shipping" json:"shipping"`
	Billing            Address            `bson:"billing" json:"billing"`
	PaymentMethod      PaymentMethod      `bson:"payment_method" json:"paymentMethod"`
	PaymentStatus      PaymentStatus      `bson:"payment_status" json:"paymentStatus"`
	Status             OrderStatus        `bson:"status" json:"status"`
	Totals             Totals             `bson:"totals" json:"totals"`
	Notes              string             `bson:"notes,omitempty" json:"notes,omitempty"`
	TrackingNumber     string             `bson:"tracking_number,omitempty" json:"trackingNumber,omitempty"`
	EstimatedDelivery  *time.Time         `bson:"estimated_delivery,omitempty" json:"estimatedDelivery,omitempty"`
	DeliveredAt        *time.Time         `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`
	CancelledAt        *time.Time         `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
	CancellationReason string             `bson:"cancellation_reason,omitempty" json:"cancellationReason,omitempty"`
	IdempotencyKey     string             `bson:"idempotency_key,omitempty" json:"-"`
	CreatedAt          time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updatedAt"`
}

const orderIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewOrderID generates a human readable order identifier of the form
// ORD-<millis base36>-<5 random base36 chars>, uppercased.
func NewOrderID() string {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 36)

	suffix := make([]byte, 5)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(orderIDAlphabet))))
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			n = big.NewInt(time.Now().UnixNano() % int64(len(orderIDAlphabet)))
		}
		suffix[i] = orderIDAlphabet[n.Int64()]
	}

	return strings.ToUpper("ORD-" + timestamp + "-" + string(suffix))
}
