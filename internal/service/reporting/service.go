package reporting

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/keystonepos/backend/internal/domain/models"
)

// SaleReader lists finalized sales inside a time window.
type SaleReader interface {
	ListSalesBetween(ctx context.Context, from, to time.Time) ([]models.Sale, error)
}

// ProductReader lists the catalog for the low-stock scan.
type ProductReader interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Exporter receives finished daily reports. A nil exporter disables export.
type Exporter interface {
	AppendDailyReport(ctx context.Context, report models.DailyReport) error
}

// Service exposes lightweight sales analytics: per-day summaries and the
// low-stock scan feeding alerts.
type Service struct {
	sales    SaleReader
	products ProductReader
	exporter Exporter
	logger   *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(sales SaleReader, products ProductReader, exporter Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sales: sales, products: products, exporter: exporter, logger: logger}
}

// DailySummary aggregates all sales committed on the given calendar day
// (midnight to midnight in the day's location).
func (s *Service) DailySummary(ctx context.Context, day time.Time) (*models.DailyReport, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	sales, err := s.sales.ListSalesBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load sales for %s: %w", start.Format("2006-01-02"), err)
	}

	report := &models.DailyReport{Date: start, CreatedAt: time.Now().UTC()}
	for _, sale := range sales {
		report.SaleCount++
		report.Subtotal += sale.Subtotal
		report.TaxTotal += sale.TaxTotal
		report.Total += sale.Total
	}
	report.Subtotal = round3(report.Subtotal)
	report.TaxTotal = round3(report.TaxTotal)
	report.Total = round3(report.Total)

	return report, nil
}

// LowStock returns active products whose stock is at or below the threshold.
func (s *Service) LowStock(ctx context.Context, threshold float64) ([]models.LowStockItem, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var items []models.LowStockItem
	for _, p := range products {
		if !p.IsActive || p.Stock > threshold {
			continue
		}
		items = append(items, models.LowStockItem{SKU: p.SKU, Name: p.Name, Stock: p.Stock, Unit: p.Unit})
	}
	return items, nil
}

// ExportDaily hands a finished report to the configured exporter, if any.
func (s *Service) ExportDaily(ctx context.Context, report models.DailyReport) error {
	if s.exporter == nil {
		return nil
	}
	if err := s.exporter.AppendDailyReport(ctx, report); err != nil {
		return fmt.Errorf("export daily report: %w", err)
	}
	s.logger.Info("daily report exported", zap.Time("date", report.Date))
	return nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
