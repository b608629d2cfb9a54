package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names follow the original document store layout: one lowercase
// collection per record type.
const (
	productCollection  = "product"
	taxRateCollection  = "taxrate"
	saleCollection     = "sale"
	customerCollection = "customer"
	userCollection     = "user"
)

// Repository wraps the MongoDB client and exposes the catalog and sale
// stores backed by it.
type Repository struct {
	client *mongo.Client
	dbName string
}

// New connects to MongoDB, verifies the connection and prepares the unique
// indexes the engine relies on.
func New(ctx context.Context, uri string, dbName string) (*Repository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &Repository{client: client, dbName: dbName}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

// ensureIndexes creates the unique keys backing duplicate detection:
// product SKU, tax code and the sparse sale request_id dedupe index.
func (r *Repository) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	uniqueSparse := options.Index().SetUnique(true).SetSparse(true)

	indexes := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{productCollection, mongo.IndexModel{Keys: bson.D{{Key: "sku", Value: 1}}, Options: unique}},
		{taxRateCollection, mongo.IndexModel{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique}},
		{saleCollection, mongo.IndexModel{Keys: bson.D{{Key: "request_id", Value: 1}}, Options: uniqueSparse}},
		{saleCollection, mongo.IndexModel{Keys: bson.D{{Key: "timestamp", Value: 1}}}},
	}

	for _, idx := range indexes {
		if _, err := r.collection(idx.collection).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.collection, err)
		}
	}
	return nil
}

func (r *Repository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
