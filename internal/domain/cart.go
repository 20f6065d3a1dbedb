package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinLineQuantity = 1
	MaxLineQuantity = 100
)

// CartLine is a snapshot of a product at the time it was added. Name,
// price and image are not re-validated against the catalog until
// checkout.
type CartLine struct {
	ID          string    `bson:"line_id" json:"id"`
	ProductID   string    `bson:"product_id" json:"productId"`
	ProductName string    `bson:"product_name" json:"productName"`
	Price       float64   `bson:"price" json:"price"`
	Quantity    int64     `bson:"quantity" json:"quantity"`
	Image       string    `bson:"image,omitempty" json:"image,omitempty"`
	AddedAt     time.Time `bson:"added_at" json:"addedAt"`
}

// Cart is owned by exactly one user. It is created lazily on first
// mutation and cleared, never deleted, on successful checkout.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID    string             `bson:"user_id" json:"userId"`
	Items     []CartLine         `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Total is the derived sum of price times quantity across all lines.
func (c *Cart) Total() float64 {
	return linesSubtotal(c.Items)
}

// TotalItems is the derived sum of line quantities.
func (c *Cart) TotalItems() int64 {
	var n int64
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
