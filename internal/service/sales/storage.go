package sales

import (
	"context"
	"errors"

	"github.com/keystonepos/backend/internal/domain/models"
)

// ErrUnknownProduct is returned when a sale line references a SKU absent
// from the catalog. The whole transaction aborts; no stock is touched.
var ErrUnknownProduct = errors.New("unknown product")

// ErrInvalidLine is returned for lines rejected at the input boundary:
// non-positive quantity or negative unit price.
var ErrInvalidLine = errors.New("invalid sale line")

// ErrInsufficientStock is returned when the negative-stock policy is
// disabled and a request asks for more than the current stock snapshot.
var ErrInsufficientStock = errors.New("insufficient stock")

// CatalogStore is the slice of the catalog the engine needs: strict SKU
// lookup, the storage-level atomic stock counter, and a tax rate snapshot.
type CatalogStore interface {
	FindProductBySKU(ctx context.Context, sku string) (*models.Product, error)
	DecrementStock(ctx context.Context, sku string, qty float64) error
	ListTaxRates(ctx context.Context) ([]models.TaxRate, error)
}

// SaleStore persists finalized sales and backs the idempotency lookup.
type SaleStore interface {
	InsertSale(ctx context.Context, sale *models.Sale) (string, error)
	FindSaleByRequestID(ctx context.Context, requestID string) (*models.Sale, error)
}
