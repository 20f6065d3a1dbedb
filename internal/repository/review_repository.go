package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tasheen2002/Security-Project/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoReviewRepository struct {
	collection *mongo.Collection
}

func NewMongoReviewRepository(db *mongo.Database) ReviewRepository {
	return &mongoReviewRepository{
		collection: db.Collection("reviews"),
	}
}

func (m *mongoReviewRepository) InsertReview(ctx context.Context, review *domain.Review) error {
	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	result, err := m.collection.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateReview
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}
	return nil
}

func (m *mongoReviewRepository) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrReviewNotFound
	}

	var review domain.Review
	err = m.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return &review, nil
}

func (m *mongoReviewRepository) ListReviewsByProduct(ctx context.Context, productID string, opts ListOptions) ([]domain.Review, int64, error) {
	filter := bson.M{"product_id": productID}

	total, err := m.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(opts.Skip()).
		SetLimit(opts.Limit)

	cursor, err := m.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []domain.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, 0, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, total, nil
}

func (m *mongoReviewRepository) ProductReviewStats(ctx context.Context, productID string) (*domain.ReviewStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"product_id": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"average_rating": bson.M{"$avg": "$rating"},
			"total_reviews":  bson.M{"$sum": 1},
		}}},
	}

	cursor, err := m.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate review stats: %w", err)
	}
	defer cursor.Close(ctx)

	var results []domain.ReviewStats
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode review stats: %w", err)
	}

	if len(results) == 0 {
		return &domain.ReviewStats{}, nil
	}

	stats := results[0]
	// Round to one decimal, matching the order confirmation display
	stats.AverageRating = float64(int(stats.AverageRating*10+0.5)) / 10
	return &stats, nil
}

func (m *mongoReviewRepository) UpdateReview(ctx context.Context, id string, rating int, comment string) (*domain.Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrReviewNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"rating":     rating,
			"comment":    comment,
			"updated_at": time.Now(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var review domain.Review
	err = m.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	return &review, nil
}

func (m *mongoReviewRepository) DeleteReview(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrReviewNotFound
	}

	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (m *mongoReviewRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create review indexes: %w", err)
	}

	return nil
}
