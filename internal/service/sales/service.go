package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/keystonepos/backend/internal/config"
	"github.com/keystonepos/backend/internal/domain/models"
)

// Service is the transaction coordinator: the single orchestration point
// for validating a sale request, decrementing stock and persisting the
// sale record.
type Service struct {
	catalog CatalogStore
	sales   SaleStore
	policy  config.SalesConfig
	logger  *zap.Logger
}

// NewService wires a new sale transaction service.
func NewService(catalog CatalogStore, sales SaleStore, policy config.SalesConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{catalog: catalog, sales: sales, policy: policy, logger: logger}
}

// CreateSale runs one sale request through the full transaction protocol:
//
//  1. boundary validation of every line;
//  2. idempotency lookup when the request carries a RequestID;
//  3. one tax rate snapshot for the whole transaction;
//  4. line evaluation in input order — the first unknown SKU aborts the
//     request before any stock mutation;
//  5. per-line atomic stock decrements;
//  6. aggregation and persistence of a single immutable sale record.
//
// Stock may go negative unless AllowNegativeStock is disabled. Requests
// without a RequestID are not deduplicated: resubmitting commits a second
// sale and decrements stock again.
func (s *Service) CreateSale(ctx context.Context, req models.SaleRequest) (*models.Sale, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if req.RequestID != "" {
		existing, err := s.sales.FindSaleByRequestID(ctx, req.RequestID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("dedupe lookup: %w", err)
		}
		if existing != nil {
			s.logger.Info("duplicate sale request, returning original",
				zap.String("request_id", req.RequestID),
				zap.String("sale_id", existing.ID))
			return existing, nil
		}
	}

	rates, err := s.catalog.ListTaxRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot tax rates: %w", err)
	}
	taxes := newTaxTable(rates)

	results := make([]lineResult, 0, len(req.Items))
	stock := make(map[string]float64)
	requested := make(map[string]float64)

	for _, line := range req.Items {
		product, result, err := evaluateLine(ctx, s.catalog, taxes, line)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
		stock[line.SKU] = product.Stock
		requested[line.SKU] += line.Qty
	}

	if !s.policy.AllowNegativeStock {
		for sku, qty := range requested {
			if qty > stock[sku] {
				return nil, fmt.Errorf("%w: %s (have %g, want %g)", ErrInsufficientStock, sku, stock[sku], qty)
			}
		}
	}

	// All lines validated; from here on mutations are applied. Each
	// decrement is an atomic counter update at the storage layer, so
	// concurrent sales on the same SKU cannot lose updates.
	for _, line := range req.Items {
		if err := s.catalog.DecrementStock(ctx, line.SKU, line.Qty); err != nil {
			return nil, fmt.Errorf("decrement stock for %s: %w", line.SKU, err)
		}
	}

	totals, breakdown := aggregate(results)

	sale := &models.Sale{
		ID:           uuid.NewString(),
		RequestID:    req.RequestID,
		Items:        req.Items,
		CustomerName: req.CustomerName,
		Subtotal:     totals.Subtotal,
		TaxTotal:     totals.TaxTotal,
		Total:        totals.Total,
		TaxBreakdown: breakdown,
		Payment:      req.Payment,
		User:         req.User,
		Timestamp:    time.Now().UTC(),
	}

	if _, err := s.sales.InsertSale(ctx, sale); err != nil {
		if req.RequestID != "" && errors.Is(err, models.ErrDuplicateKey) {
			// Two requests with the same ID raced past the dedupe lookup;
			// the unique index picked a winner. Return it.
			winner, findErr := s.sales.FindSaleByRequestID(ctx, req.RequestID)
			if findErr == nil {
				return winner, nil
			}
		}
		return nil, fmt.Errorf("persist sale: %w", err)
	}

	s.logger.Info("sale created",
		zap.String("sale_id", sale.ID),
		zap.Int("lines", len(sale.Items)),
		zap.Float64("total", sale.Total))

	return sale, nil
}

// validateRequest rejects malformed lines at the boundary, before any
// catalog lookup runs.
func validateRequest(req models.SaleRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: sale has no items", ErrInvalidLine)
	}
	for i, line := range req.Items {
		if line.SKU == "" {
			return fmt.Errorf("%w: item %d has no sku", ErrInvalidLine, i)
		}
		if line.Qty <= 0 {
			return fmt.Errorf("%w: item %d (%s) qty must be positive", ErrInvalidLine, i, line.SKU)
		}
		if line.UnitPrice < 0 {
			return fmt.Errorf("%w: item %d (%s) unit price must not be negative", ErrInvalidLine, i, line.SKU)
		}
	}
	if req.Payment.Paid < 0 {
		return fmt.Errorf("%w: paid amount must not be negative", ErrInvalidLine)
	}
	return nil
}
