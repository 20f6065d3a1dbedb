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

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{
		collection: db.Collection("products"),
	}
}

func productObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrProductNotFound
	}
	return oid, nil
}

func (m *mongoProductRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := productObjectID(id)
	if err != nil {
		return nil, err
	}

	var product domain.Product
	err = m.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

func (m *mongoProductRepository) ListProducts(ctx context.Context, category string, opts ListOptions) ([]domain.Product, int64, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	total, err := m.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(opts.Skip()).
		SetLimit(opts.Limit)

	cursor, err := m.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, total, nil
}

func (m *mongoProductRepository) InsertProduct(ctx context.Context, product *domain.Product) error {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	result, err := m.collection.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}
	return nil
}

func (m *mongoProductRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"image":       product.Image,
			"category":    product.Category,
			"featured":    product.Featured,
			"updated_at":  product.UpdatedAt,
		},
	}

	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": product.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (m *mongoProductRepository) DeleteProduct(ctx context.Context, id string) error {
	oid, err := productObjectID(id)
	if err != nil {
		return err
	}

	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

// TryDecrementStock is the inventory ledger's conditional decrement:
// one atomic single-document update guarded by the stock floor, so
// concurrent callers for the same product linearize at the store and
// stock can never go negative.
func (m *mongoProductRepository) TryDecrementStock(ctx context.Context, productID string, qty int64) error {
	oid, err := productObjectID(productID)
	if err != nil {
		return err
	}

	filter := bson.M{
		"_id":   oid,
		"stock": bson.M{"$gte": qty},
	}
	update := bson.M{
		"$inc": bson.M{"stock": -qty},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if result.MatchedCount == 0 {
		// Distinguish a missing product from a short one
		count, countErr := m.collection.CountDocuments(ctx, bson.M{"_id": oid})
		if countErr != nil {
			return fmt.Errorf("failed to classify stock failure: %w", countErr)
		}
		if count == 0 {
			return ErrProductNotFound
		}
		return ErrInsufficientStock
	}

	return nil
}

// IncrementStock restores stock decremented at checkout. It is tied to
// an order's line snapshot by the callers, never to live cart state.
func (m *mongoProductRepository) IncrementStock(ctx context.Context, productID string, qty int64) error {
	oid, err := productObjectID(productID)
	if err != nil {
		return err
	}

	update := bson.M{
		"$inc": bson.M{"stock": qty},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}
