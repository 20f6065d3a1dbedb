package domain

import "time"

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusApproved  PurchaseStatus = "approved"
	PurchaseStatusRejected  PurchaseStatus = "rejected"
	PurchaseStatusCompleted PurchaseStatus = "completed"
)

func ValidPurchaseStatus(s PurchaseStatus) bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusApproved,
		PurchaseStatusRejected, PurchaseStatusCompleted:
		return true
	}
	return false
}

// Purchase is the legacy purchase-request flow: a free-form delivery
// request handled manually by an admin, separate from cart checkout.
type Purchase struct {
	ID               string         `bson:"_id" json:"id"`
	UserID           string         `bson:"user_id" json:"-"`
	Username         string         `bson:"username" json:"username"`
	Date             string         `bson:"date" json:"date"`
	DeliveryTime     string         `bson:"delivery_time" json:"deliveryTime"`
	DeliveryLocation string         `bson:"delivery_location" json:"deliveryLocation"`
	ProductName      string         `bson:"product_name" json:"productName"`
	Quantity         int64          `bson:"quantity" json:"quantity"`
	Message          string         `bson:"message,omitempty" json:"message,omitempty"`
	Status           PurchaseStatus `bson:"status" json:"status"`
	CreatedAt        time.Time      `bson:"created_at" json:"createdAt"`
}
