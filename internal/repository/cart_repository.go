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

type mongoCartRepository struct {
	collection *mongo.Collection
}

func NewMongoCartRepository(db *mongo.Database) CartRepository {
	return &mongoCartRepository{
		collection: db.Collection("carts"),
	}
}

func (m *mongoCartRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

func (m *mongoCartRepository) AddLine(ctx context.Context, userID string, line domain.CartLine) (*domain.Cart, error) {
	now := time.Now()
	line.AddedAt = now

	filter := bson.M{"user_id": userID}

	var existing domain.Cart
	err := m.collection.FindOne(ctx, filter).Decode(&existing)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// First mutation creates the cart
			cart := &domain.Cart{
				UserID:    userID,
				Items:     []domain.CartLine{line},
				CreatedAt: now,
				UpdatedAt: now,
			}

			if _, err := m.collection.InsertOne(ctx, cart); err != nil {
				return nil, fmt.Errorf("failed to create cart with item: %w", err)
			}
			return m.GetCart(ctx, userID)
		}
		return nil, fmt.Errorf("failed to check existing cart: %w", err)
	}

	var merged *domain.CartLine
	for i := range existing.Items {
		if existing.Items[i].ProductID == line.ProductID {
			merged = &existing.Items[i]
			break
		}
	}

	if merged != nil {
		// Quantities sum; a sum above the cap is rejected, not clamped
		newQuantity := merged.Quantity + line.Quantity
		if newQuantity > domain.MaxLineQuantity {
			return nil, ErrLineCapacity
		}

		update := bson.M{
			"$set": bson.M{
				"items.$[elem].quantity": newQuantity,
				"items.$[elem].added_at": now,
				"updated_at":             now,
			},
		}
		arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{
				bson.M{"elem.product_id": line.ProductID},
			},
		})

		if _, err := m.collection.UpdateOne(ctx, filter, update, arrayFilters); err != nil {
			return nil, fmt.Errorf("failed to merge item quantity: %w", err)
		}
	} else {
		update := bson.M{
			"$push": bson.M{"items": line},
			"$set":  bson.M{"updated_at": now},
		}

		if _, err := m.collection.UpdateOne(ctx, filter, update); err != nil {
			return nil, fmt.Errorf("failed to add new item: %w", err)
		}
	}

	return m.GetCart(ctx, userID)
}

func (m *mongoCartRepository) UpdateLineQuantity(ctx context.Context, userID, lineID string, quantity int64) (*domain.Cart, error) {
	filter := bson.M{
		"user_id":       userID,
		"items.line_id": lineID,
	}

	update := bson.M{
		"$set": bson.M{
			"items.$[elem].quantity": quantity,
			"updated_at":             time.Now(),
		},
	}

	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.line_id": lineID},
		},
	})

	result, err := m.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return nil, fmt.Errorf("failed to update item quantity: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, ErrLineNotFound
	}

	return m.GetCart(ctx, userID)
}

func (m *mongoCartRepository) RemoveLine(ctx context.Context, userID, lineID string) (*domain.Cart, error) {
	filter := bson.M{
		"user_id":       userID,
		"items.line_id": lineID,
	}
	update := bson.M{
		"$pull": bson.M{
			"items": bson.M{"line_id": lineID},
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to remove item: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, ErrLineNotFound
	}

	return m.GetCart(ctx, userID)
}

func (m *mongoCartRepository) ClearCart(ctx context.Context, userID string) error {
	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$set": bson.M{
			"items":      []domain.CartLine{},
			"updated_at": time.Now(),
		},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *mongoCartRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}

	return nil
}
