package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tasheen2002/Security-Project/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPurchaseRepository struct {
	collection *mongo.Collection
}

func NewMongoPurchaseRepository(db *mongo.Database) PurchaseRepository {
	return &mongoPurchaseRepository{
		collection: db.Collection("purchases"),
	}
}

func (m *mongoPurchaseRepository) InsertPurchase(ctx context.Context, purchase *domain.Purchase) error {
	purchase.CreatedAt = time.Now()

	if _, err := m.collection.InsertOne(ctx, purchase); err != nil {
		return fmt.Errorf("failed to insert purchase: %w", err)
	}
	return nil
}

func (m *mongoPurchaseRepository) GetPurchase(ctx context.Context, id string) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&purchase)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	return &purchase, nil
}

func (m *mongoPurchaseRepository) listPurchases(ctx context.Context, filter bson.M) ([]domain.Purchase, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer cursor.Close(ctx)

	var purchases []domain.Purchase
	if err := cursor.All(ctx, &purchases); err != nil {
		return nil, fmt.Errorf("failed to decode purchases: %w", err)
	}
	return purchases, nil
}

func (m *mongoPurchaseRepository) ListPurchasesByUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	return m.listPurchases(ctx, bson.M{"user_id": userID})
}

func (m *mongoPurchaseRepository) ListAllPurchases(ctx context.Context) ([]domain.Purchase, error) {
	return m.listPurchases(ctx, bson.M{})
}

func (m *mongoPurchaseRepository) UpdatePurchaseStatus(ctx context.Context, id string, status domain.PurchaseStatus) (*domain.Purchase, error) {
	update := bson.M{"$set": bson.M{"status": status}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var purchase domain.Purchase
	err := m.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&purchase)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to update purchase status: %w", err)
	}
	return &purchase, nil
}
