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

type mongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{
		collection: db.Collection("orders"),
	}
}

func (m *mongoOrderRepository) InsertOrder(ctx context.Context, order *domain.Order) error {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err := m.collection.InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateOrderKey
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (m *mongoOrderRepository) getOne(ctx context.Context, filter bson.M) (*domain.Order, error) {
	var order domain.Order
	err := m.collection.FindOne(ctx, filter).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (m *mongoOrderRepository) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return m.getOne(ctx, bson.M{"order_id": orderID})
}

func (m *mongoOrderRepository) GetOrderByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Order, error) {
	return m.getOne(ctx, bson.M{"user_id": userID, "idempotency_key": key})
}

func (m *mongoOrderRepository) list(ctx context.Context, filter bson.M, opts ListOptions) ([]domain.Order, int64, error) {
	total, err := m.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(opts.Skip()).
		SetLimit(opts.Limit)

	cursor, err := m.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, total, nil
}

func (m *mongoOrderRepository) ListOrdersByUser(ctx context.Context, userID string, opts ListOptions) ([]domain.Order, int64, error) {
	return m.list(ctx, bson.M{"user_id": userID}, opts)
}

func (m *mongoOrderRepository) ListAllOrders(ctx context.Context, status domain.OrderStatus, opts ListOptions) ([]domain.Order, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return m.list(ctx, filter, opts)
}

// MarkCancelled flips the order to cancelled in one conditional update:
// the filter admits only still-cancellable statuses, so of two racing
// cancels only one matches and the loser sees ErrOrderNotCancellable.
func (m *mongoOrderRepository) MarkCancelled(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	now := time.Now()

	filter := bson.M{
		"order_id": orderID,
		"status":   bson.M{"$in": domain.CancellableStatuses},
	}
	update := bson.M{
		"$set": bson.M{
			"status":              domain.OrderStatusCancelled,
			"cancelled_at":        now,
			"cancellation_reason": reason,
			"updated_at":          now,
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order domain.Order
	err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either the order does not exist or it already left the
			// cancellable window; tell them apart for the caller.
			count, countErr := m.collection.CountDocuments(ctx, bson.M{"order_id": orderID})
			if countErr != nil {
				return nil, fmt.Errorf("failed to classify cancel failure: %w", countErr)
			}
			if count == 0 {
				return nil, ErrOrderNotFound
			}
			return nil, ErrOrderNotCancellable
		}
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	return &order, nil
}

func (m *mongoOrderRepository) UpdateOrderStatus(ctx context.Context, orderID string, patch StatusPatch) (*domain.Order, error) {
	set := bson.M{
		"status":     patch.Status,
		"updated_at": time.Now(),
	}
	if patch.TrackingNumber != "" {
		set["tracking_number"] = patch.TrackingNumber
	}
	if patch.Notes != "" {
		set["notes"] = patch.Notes
	}
	if patch.EstimatedDelivery != nil {
		set["estimated_delivery"] = patch.EstimatedDelivery
	}
	if patch.DeliveredAt != nil {
		set["delivered_at"] = patch.DeliveredAt
	}
	if patch.PaymentStatus != "" {
		set["payment_status"] = patch.PaymentStatus
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order domain.Order
	err := m.collection.FindOneAndUpdate(ctx, bson.M{"order_id": orderID}, bson.M{"$set": set}, opts).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return &order, nil
}

func (m *mongoOrderRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			// Idempotency keys are unique per user, not globally, and
			// orders placed without a key stay out of the index.
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "idempotency_key", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}}),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}

	return nil
}
