package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 500
)

// Review is one user's rating of one product. The repository enforces
// at most one review per (product, user) pair.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID string             `bson:"product_id" json:"productId"`
	UserID    string             `bson:"user_id" json:"-"`
	Username  string             `bson:"username" json:"username"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ReviewStats is the aggregated rating summary for a product.
type ReviewStats struct {
	AverageRating float64 `bson:"average_rating" json:"averageRating"`
	TotalReviews  int64   `bson:"total_reviews" json:"totalReviews"`
}
