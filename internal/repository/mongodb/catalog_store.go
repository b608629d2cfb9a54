package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/keystonepos/backend/internal/domain/models"
)

// FindProductBySKU returns the product with the given SKU, or
// models.ErrNotFound when no such product exists.
func (r *Repository) FindProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := r.collection(productCollection).FindOne(ctx, bson.M{"sku": sku}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", sku, err)
	}
	return &product, nil
}

// DecrementStock reduces the product's stock by qty using an atomic $inc,
// so concurrent decrements on the same SKU never lose updates. The result
// is allowed to go negative; sufficiency policy lives in the sale engine.
func (r *Repository) DecrementStock(ctx context.Context, sku string, qty float64) error {
	result, err := r.collection(productCollection).UpdateOne(ctx,
		bson.M{"sku": sku},
		bson.M{"$inc": bson.M{"stock": -qty}})
	if err != nil {
		return fmt.Errorf("decrement stock for %s: %w", sku, err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// InsertProduct inserts a product; a taken SKU yields models.ErrDuplicateKey.
func (r *Repository) InsertProduct(ctx context.Context, product models.Product) error {
	_, err := r.collection(productCollection).InsertOne(ctx, product)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: sku %s", models.ErrDuplicateKey, product.SKU)
	}
	if err != nil {
		return fmt.Errorf("insert product %s: %w", product.SKU, err)
	}
	return nil
}

// ListProducts returns every product in the catalog.
func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	cursor, err := r.collection(productCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// CountProducts counts the product collection.
func (r *Repository) CountProducts(ctx context.Context) (int64, error) {
	count, err := r.collection(productCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

// InsertTaxRate inserts a tax rate; a taken code yields models.ErrDuplicateKey.
func (r *Repository) InsertTaxRate(ctx context.Context, rate models.TaxRate) error {
	_, err := r.collection(taxRateCollection).InsertOne(ctx, rate)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: tax code %s", models.ErrDuplicateKey, rate.Code)
	}
	if err != nil {
		return fmt.Errorf("insert tax rate %s: %w", rate.Code, err)
	}
	return nil
}

// ListTaxRates returns all known tax rates.
func (r *Repository) ListTaxRates(ctx context.Context) ([]models.TaxRate, error) {
	cursor, err := r.collection(taxRateCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list tax rates: %w", err)
	}
	var rates []models.TaxRate
	if err := cursor.All(ctx, &rates); err != nil {
		return nil, fmt.Errorf("decode tax rates: %w", err)
	}
	return rates, nil
}

// InsertCustomer inserts a customer record.
func (r *Repository) InsertCustomer(ctx context.Context, customer models.Customer) error {
	if _, err := r.collection(customerCollection).InsertOne(ctx, customer); err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// ListCustomers returns all customers.
func (r *Repository) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	cursor, err := r.collection(customerCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	var customers []models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}
	return customers, nil
}

// InsertUser inserts a user account.
func (r *Repository) InsertUser(ctx context.Context, user models.User) error {
	if _, err := r.collection(userCollection).InsertOne(ctx, user); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// ListUsers returns all user accounts.
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := r.collection(userCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// CountUsers counts the user collection.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	count, err := r.collection(userCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
