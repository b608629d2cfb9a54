package sales

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/keystonepos/backend/internal/config"
	"github.com/keystonepos/backend/internal/domain/models"
)

// fakeCatalog is an in-memory CatalogStore whose DecrementStock behaves
// like the storage-level atomic counter.
type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]models.Product
	rates    []models.TaxRate
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[string]models.Product{
			"MILK-1L":   {SKU: "MILK-1L", Name: "Milk 1L", Price: 2.500, Stock: 100, Unit: "pcs", TaxCode: "TVA7", IsActive: true},
			"BREAD-STD": {SKU: "BREAD-STD", Name: "Bread", Price: 0.600, Stock: 200, Unit: "pcs", TaxCode: "TVA7", IsActive: true},
			"SHMP-250":  {SKU: "SHMP-250", Name: "Shampoo 250ml", Price: 8.900, Stock: 50, Unit: "pcs", TaxCode: "TVA19", IsActive: true},
		},
		rates: models.DefaultTaxRates(),
	}
}

func (f *fakeCatalog) FindProductBySKU(_ context.Context, sku string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[sku]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &product, nil
}

func (f *fakeCatalog) DecrementStock(_ context.Context, sku string, qty float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[sku]
	if !ok {
		return models.ErrNotFound
	}
	product.Stock -= qty
	f.products[sku] = product
	return nil
}

func (f *fakeCatalog) ListTaxRates(_ context.Context) ([]models.TaxRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.TaxRate(nil), f.rates...), nil
}

func (f *fakeCatalog) stock(sku string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[sku].Stock
}

// fakeSales is an in-memory SaleStore with a unique request_id constraint.
type fakeSales struct {
	mu          sync.Mutex
	sales       []*models.Sale
	byRequest   map[string]*models.Sale
	failNext    error
	hideLookupN int
}

func newFakeSales() *fakeSales {
	return &fakeSales{byRequest: map[string]*models.Sale{}}
}

func (f *fakeSales) InsertSale(_ context.Context, sale *models.Sale) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return "", err
	}
	if sale.RequestID != "" {
		if _, ok := f.byRequest[sale.RequestID]; ok {
			return "", fmt.Errorf("%w: request id %s", models.ErrDuplicateKey, sale.RequestID)
		}
		f.byRequest[sale.RequestID] = sale
	}
	f.sales = append(f.sales, sale)
	return sale.ID, nil
}

func (f *fakeSales) FindSaleByRequestID(_ context.Context, requestID string) (*models.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hideLookupN > 0 {
		f.hideLookupN--
		return nil, models.ErrNotFound
	}
	sale, ok := f.byRequest[requestID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return sale, nil
}

func (f *fakeSales) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sales)
}

func newTestService(t *testing.T, catalog *fakeCatalog, store *fakeSales, allowNegative bool) *Service {
	t.Helper()
	return NewService(catalog, store, config.SalesConfig{AllowNegativeStock: allowNegative}, zaptest.NewLogger(t))
}

func TestCreateSale_ComputesTotalsAndDecrementsStock(t *testing.T) {
	catalog := newFakeCatalog()
	store := newFakeSales()
	svc := newTestService(t, catalog, store, true)

	sale, err := svc.CreateSale(context.Background(), models.SaleRequest{
		Items: []models.SaleLine{
			{SKU: "MILK-1L", Name: "Milk 1L", Qty: 2, UnitPrice: 2.500, TaxCode: "TVA7"},
			{SKU: "BREAD-STD", Name: "Bread", Qty: 1, UnitPrice: 0.600, TaxCode: "TVA7"},
		},
		Payment: models.Payment{Method: "cash", Paid: 6.000, Change: 0.008},
	})
	require.NoError(t, err)

	assert.Equal(t, 5.600, sale.Subtotal)
	assert.Equal(t, 0.392, sale.TaxTotal)
	assert.Equal(t, 5.992, sale.Total)
	assert.Equal(t, map[string]float64{"TVA7": 0.392}, sale.TaxBreakdown)
	assert.NotEmpty(t, sale.ID)
	assert.False(t, sale.Timestamp.IsZero())

	assert.Equal(t, 98.0, catalog.stock("MILK-1L"))
	assert.Equal(t, 199.0, catalog.stock("BREAD-STD"))
	assert.Equal(t, 1, store.count())
}

func TestCreateSale_TotalEqualsSubtotalPlusTax(t *testing.T) {
	catalog := newFakeCatalog()
	svc := newTestService(t, catalog, newFakeSales(), true)

	sale, err := svc.CreateSale(context.Background(), models.SaleRequest{
		Items: []models.SaleLine{
			{SKU: "MILK-1L", Qty: 3, UnitPrice: 2.500, TaxCode: "TVA7"},
			{SKU: "SHMP-250", Qty: 2, UnitPrice: 8.900, TaxCode: "TVA19"},
			{SKU: "BREAD-STD", Qty: 5, UnitPrice: 0.600},
		},
		Payment: models.Payment{Method: "card", Paid: 30},
	})
	require.NoError(t, err)

	assert.InDelta(t, sale.Subtotal+sale.TaxTotal, sale.Total, 0.001)

	var breakdownSum float64
	for _, amount := range sale.TaxBreakdown {
		breakdownSum += amount
	}
	assert.InDelta(t, sale.TaxTotal, breakdownSum, 0.001*float64(len(sale.TaxBreakdown)))
}

func TestCreateSale_UnknownSKUAbortsWholeTransaction(t *testing.T) {
	catalog := newFakeCatalog()
	store := newFakeSales()
	svc := newTestService(t, catalog, store, true)

	_, err := svc.CreateSale(context.Background(), models.SaleRequest{
		Items: []models.SaleLine{
			{SKU: "MILK-1L", Qty: 2, UnitPrice: 2.500, TaxCode: "TVA7"},
			{SKU: "FOO-1", Qty: 1, UnitPrice: 1.000},
			{SKU: "BREAD-STD", Qty: 1, UnitPrice: 0.600, TaxCode: "TVA7"},
		},
		Payment: models.Payment{Method: "cash", Paid: 10},
	})
	require.ErrorIs(t, err, ErrUnknownProduct)
	assert.Contains(t, err.Error(), "FOO-1")

	// No stock touched for any line, including the valid ones before and
	// after the failing one.
	assert.Equal(t, 100.0, catalog.stock("MILK-1L"))
	assert.Equal(t, 200.0, catalog.stock("BREAD-STD"))
	assert.Equal(t, 0, store.count())
}

func TestCreateSale_FirstInvalidLineWins(t *testing.T) {
	svc := newTestService(t, newFakeCatalog(), newFakeSales(), true)

	_, err := svc.CreateSale(context.Background(), models.SaleRequest{
		Items: []models.SaleLine{
			{SKU: "GHOST-1", Qty: 1, UnitPrice: 1},
			{SKU: "GHOST-2", Qty: 1, UnitPrice: 1},
		},
		Payment: models.Payment{Method: "cash", Paid: 2},
	})
	require.ErrorIs(t, err, ErrUnknownProduct)
	assert.Contains(t, err.Error(), "GHOST-1")
	assert.NotContains(t, err.Error(), "GHOST-2")
}

func TestCreateSale_UnknownTaxCodeContributesNoTax(t *testing.T) {
	svc := newTestService(t, newFakeCatalog(), newFakeSales(), true)

	sale, err := svc.CreateSale(context.Background(), models.SaleRequest{
		Items: []models.SaleLine{
			{SKU: "MILK-1L", Qty: 2, UnitPrice: 2.500, TaxCode: "TVA42"},
		},
		Payment: models.Payment{Method: "cash", Paid: 5},
	})
	require.NoError(t, err)

	assert.Equal(t, 5.0, sale.Subtotal)
	assert.Equal(t, 0.0, sale.TaxTotal)
	assert.Equal(t, 5.0, sale.Total)
	assert.NotContains(t, sale.TaxBreakdown, "TVA42")
}

func TestCreateSale_NoTaxCodeLinesSkipBreakdown(t *testing.T) {
	svc := newTestService(t, newFakeCatalog(), newFakeSales(), true)

	sale, err := svc.CreateSale(context.Background(), models.SaleRequest{
		Items: []models.SaleLine{
			{SKU: "BREAD-STD", Qty: 3, UnitPrice: 0.600},
		},
		Payment: models.Payment{Method: "cash", Paid: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 1.8, sale.Subtotal)
	assert.Equal(t, 0.0, sale.TaxTotal)
	assert.Empty(t, sale.TaxBreakdown)
}

func TestCreateSale_OrderIndependentTotals(t *testing.T) {
	lines := []models.SaleLine{
		{SKU: "MILK-1L", Qty: 2, UnitPrice: 2.500, TaxCode: "TVA7"},
		{SKU: "SHMP-250", Qty: 1, UnitPrice: 8.900, TaxCode: "TVA19"},
		{SKU: "BREAD-STD", Qty: 4, UnitPrice: 0.600, TaxCode: "TVA7"},
	}
	reversed := []models.SaleLine{lines[2], lines[1], lines[0]}

	run := func(items []models.SaleLine) *models.Sale {
		svc := newTestService(t, newFakeCatalog(), newFakeSales(), true)
		sale, err := svc.CreateSale(context.Background(), models.SaleRequest{
			Items:   items,
			Payment: models.Payment{Method: "cash", Paid: 20},
		})
		require.NoError(t, err)
		return sale
	}

	first := run(lines)
	second := run(reversed)

	assert.Equal(t, first.Subtotal, second.Subtotal)
	assert.Equal(t, first.TaxTotal, second.TaxTotal)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.TaxBreakdown, second.TaxBreakdown)
}

func TestCreateSale_RejectsInvalidLines(t *testing.T) {
	svc := newTestService(t, newFakeCatalog(), newFakeSales(), true)

	cases := []struct {
		name string
		req  models.SaleRequest
	}{
		{"no items", models.SaleRequest{Payment: models.Payment{Paid: 1}}},
		{"zero qty", models.SaleRequest{
			Items:   []models.SaleLine{{SKU: "MILK-1L", Qty: 0, UnitPrice: 2.5}},
			Payment: models.Payment{Paid: 1},
		}},
		{"negative qty", models.SaleRequest{
			Items:   []models.SaleLine{{SKU: "MILK-1L", Qty: -1, UnitPrice: 2.5}},
			Payment: models.Payment{Paid: 1},
		}},
		{"negative price", models.SaleRequest{
			Items:   []models.SaleLine{{SKU: "MILK-1L", Qty: 1, UnitPrice: -0.5}},
			Payment: models.Payment{Paid: 1},
		}},
		{"missing sku", models.SaleRequest{
			Items:   []models.SaleLine{{Qty: 1, UnitPrice: 0.5}},
			Payment: models.Payment{Paid: 1},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateSale(context.Background(), tc.req)
			assert.ErrorIs(t, err, ErrInvalidLine)
		})
	}
}

func TestCreateSale_ConcurrentSalesLoseNoDecrements(t *testing.T) {
	catalog := newFakeCatalog()
	svc := newTestService(t, catalog, newFakeSales(), true)

	const workers = 25
	const qty = 2.0

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateSale(context.Background(), models.SaleRequest{
				Items:   []models.SaleLine{{SKU: "MILK-1L", Qty: qty, UnitPrice: 2.500, TaxCode: "TVA7"}},
				Payment: models.Payment{Method: "cash", Paid: 10},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 100.0-workers*qty, catalog.stock("MILK-1L"))
}

func TestCreateSale_OversellAllowedByDefault(t *testing.T) {
	catalog := newFakeCatalog()
	svc := newTestService(t, catalog, newFakeSales(), true)

	_, err := svc.CreateSale(context.Background(), models.SaleRequest{
		Items:   []models.SaleLine{{SKU: "SHMP-250", Qty: 60, UnitPrice: 8.900, TaxCode: "TVA19"}},
		Payment: models.Payment{Method: "cash", Paid: 600},
	})
	require.NoError(t, err)
	assert.Equal(t, -10.0, catalog.stock("SHMP-250"))
}

func TestCreateSale_OversellRejectedWhenPolicyDisabled(t *testing.T) {
	catalog := newFakeCatalog()
	store := newFakeSales()
	svc := newTestService(t, catalog, store, false)

	// Two lines for the same SKU; each fits on its own but not combined.
	_, err := svc.CreateSale(context.Background(), models.SaleRequest{
		Items: []models.SaleLine{
			{SKU: "SHMP-250", Qty: 30, UnitPrice: 8.900, TaxCode: "TVA19"},
			{SKU: "SHMP-250", Qty: 30, UnitPrice: 8.900, TaxCode: "TVA19"},
		},
		Payment: models.Payment{Method: "cash", Paid: 600},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "SHMP-250")

	assert.Equal(t, 50.0, catalog.stock("SHMP-250"))
	assert.Equal(t, 0, store.count())
}

func TestCreateSale_DedupeByRequestID(t *testing.T) {
	catalog := newFakeCatalog()
	store := newFakeSales()
	svc := newTestService(t, catalog, store, true)

	req := models.SaleRequest{
		RequestID: "req-42",
		Items:     []models.SaleLine{{SKU: "MILK-1L", Qty: 2, UnitPrice: 2.500, TaxCode: "TVA7"}},
		Payment:   models.Payment{Method: "cash", Paid: 6},
	}

	first, err := svc.CreateSale(context.Background(), req)
	require.NoError(t, err)

	second, err := svc.CreateSale(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Totals(), second.Totals())
	assert.Equal(t, 1, store.count())
	assert.Equal(t, 98.0, catalog.stock("MILK-1L"))
}

func TestCreateSale_NoRequestIDMeansNoDedupe(t *testing.T) {
	catalog := newFakeCatalog()
	store := newFakeSales()
	svc := newTestService(t, catalog, store, true)

	req := models.SaleRequest{
		Items:   []models.SaleLine{{SKU: "MILK-1L", Qty: 2, UnitPrice: 2.500, TaxCode: "TVA7"}},
		Payment: models.Payment{Method: "cash", Paid: 6},
	}

	_, err := svc.CreateSale(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.CreateSale(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, store.count())
	assert.Equal(t, 96.0, catalog.stock("MILK-1L"))
}

func TestCreateSale_InsertRaceResolvesToWinner(t *testing.T) {
	catalog := newFakeCatalog()
	store := newFakeSales()
	svc := newTestService(t, catalog, store, true)

	// The dedupe lookup misses (the competing request has not committed
	// yet), then the insert trips the unique index and the winner is read
	// back.
	winner := &models.Sale{ID: "winner", RequestID: "req-7", Subtotal: 5, Total: 5}
	store.byRequest["req-7"] = winner
	store.hideLookupN = 1
	store.failNext = fmt.Errorf("%w: request id req-7", models.ErrDuplicateKey)

	sale, err := svc.CreateSale(context.Background(), models.SaleRequest{
		RequestID: "req-7",
		Items:     []models.SaleLine{{SKU: "MILK-1L", Qty: 1, UnitPrice: 2.500}},
		Payment:   models.Payment{Method: "cash", Paid: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "winner", sale.ID)
}

func TestCreateSale_StorageFailureSurfacesWrapped(t *testing.T) {
	catalog := newFakeCatalog()
	store := newFakeSales()
	store.failNext = fmt.Errorf("connection reset")
	svc := newTestService(t, catalog, store, true)

	_, err := svc.CreateSale(context.Background(), models.SaleRequest{
		Items:   []models.SaleLine{{SKU: "MILK-1L", Qty: 1, UnitPrice: 2.500}},
		Payment: models.Payment{Method: "cash", Paid: 3},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownProduct)
	assert.NotErrorIs(t, err, ErrInvalidLine)
}
