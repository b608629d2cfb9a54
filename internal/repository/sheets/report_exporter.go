package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/keystonepos/backend/internal/config"
	"github.com/keystonepos/backend/internal/domain/models"
)

const reportRange = "Reports!A:E"

// ReportExporter appends daily sales reports to a Google Sheet, one row per
// day: date, sale count, subtotal, tax total, total.
type ReportExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewReportExporter builds a Sheets-backed exporter instance.
func NewReportExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*ReportExporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &ReportExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendDailyReport appends one report row to the Reports sheet.
func (e *ReportExporter) AppendDailyReport(ctx context.Context, report models.DailyReport) error {
	row := []interface{}{
		report.Date.Format("2006-01-02"),
		report.SaleCount,
		report.Subtotal,
		report.TaxTotal,
		report.Total,
	}
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{row}}

	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, reportRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append report row: %w", err)
	}

	e.logger.Debug("report row appended", zap.String("date", report.Date.Format("2006-01-02")))
	return nil
}
