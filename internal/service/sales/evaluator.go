package sales

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/keystonepos/backend/internal/domain/models"
)

// taxTable is the per-transaction snapshot of tax rates, keyed by code.
// It is built once per sale so every line sees the same rates even if the
// catalog changes mid-transaction.
type taxTable map[string]float64

func newTaxTable(rates []models.TaxRate) taxTable {
	table := make(taxTable, len(rates))
	for _, rate := range rates {
		table[rate.Code] = rate.Rate
	}
	return table
}

// resolve maps a tax code to its fractional rate. An absent or unrecognized
// code yields zero tax rather than an error; SKU validation is strict, tax
// resolution is deliberately permissive.
func (t taxTable) resolve(code string) (float64, bool) {
	if code == "" {
		return 0, false
	}
	rate, ok := t[code]
	if !ok {
		return 0, false
	}
	return rate, true
}

// lineResult is one evaluated line's monetary contribution.
type lineResult struct {
	amount  float64
	tax     float64
	taxCode string
}

// evaluateLine validates one sale line against the catalog and prices it.
// The caller-supplied unit price is trusted; the catalog price is
// informational only. Stock is not touched here, so evaluation stays
// read-only and replayable. The matched product is returned for policy
// checks downstream.
func evaluateLine(ctx context.Context, catalog CatalogStore, taxes taxTable, line models.SaleLine) (*models.Product, lineResult, error) {
	product, err := catalog.FindProductBySKU(ctx, line.SKU)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, lineResult{}, fmt.Errorf("%w: %s", ErrUnknownProduct, line.SKU)
		}
		return nil, lineResult{}, fmt.Errorf("lookup product %s: %w", line.SKU, err)
	}

	result := lineResult{amount: line.Qty * line.UnitPrice}
	if rate, ok := taxes.resolve(line.TaxCode); ok {
		result.tax = result.amount * rate
		result.taxCode = line.TaxCode
	}
	return product, result, nil
}

// aggregate folds evaluated lines into subtotal, tax total, total and the
// per-code tax breakdown. Rounding happens here, at finalization, not per
// line, so intermediate error does not compound.
func aggregate(results []lineResult) (models.SaleTotals, map[string]float64) {
	var subtotal, taxTotal float64
	breakdown := make(map[string]float64)

	for _, r := range results {
		subtotal += r.amount
		if r.taxCode == "" {
			continue
		}
		taxTotal += r.tax
		breakdown[r.taxCode] += r.tax
	}

	for code, amount := range breakdown {
		breakdown[code] = round3(amount)
	}
	if len(breakdown) == 0 {
		breakdown = nil
	}

	return models.SaleTotals{
		Subtotal: round3(subtotal),
		TaxTotal: round3(taxTotal),
		Total:    round3(subtotal + taxTotal),
	}, breakdown
}

// round3 rounds to 3 decimal places, the millime precision of TND amounts.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
