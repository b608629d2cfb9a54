package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/keystonepos/backend/internal/domain/models"
)

// InsertSale persists a finalized sale record. A reused request_id trips
// the sparse unique index and yields models.ErrDuplicateKey.
func (r *Repository) InsertSale(ctx context.Context, sale *models.Sale) (string, error) {
	_, err := r.collection(saleCollection).InsertOne(ctx, sale)
	if mongo.IsDuplicateKeyError(err) {
		return "", fmt.Errorf("%w: request id %s", models.ErrDuplicateKey, sale.RequestID)
	}
	if err != nil {
		return "", fmt.Errorf("insert sale: %w", err)
	}
	return sale.ID, nil
}

// FindSaleByRequestID looks up a sale by its idempotency key.
func (r *Repository) FindSaleByRequestID(ctx context.Context, requestID string) (*models.Sale, error) {
	var sale models.Sale
	err := r.collection(saleCollection).FindOne(ctx, bson.M{"request_id": requestID}).Decode(&sale)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find sale by request id: %w", err)
	}
	return &sale, nil
}

// ListSales returns sales newest first.
func (r *Repository) ListSales(ctx context.Context) ([]models.Sale, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.collection(saleCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	var sales []models.Sale
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, fmt.Errorf("decode sales: %w", err)
	}
	return sales, nil
}

// ListSalesBetween returns sales with timestamp in [from, to).
func (r *Repository) ListSalesBetween(ctx context.Context, from, to time.Time) ([]models.Sale, error) {
	filter := bson.M{"timestamp": bson.M{"$gte": from, "$lt": to}}
	cursor, err := r.collection(saleCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sales between %s and %s: %w", from, to, err)
	}
	var sales []models.Sale
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, fmt.Errorf("decode sales: %w", err)
	}
	return sales, nil
}
