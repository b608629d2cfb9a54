package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/keystonepos/backend/internal/service/reporting"
)

const dateLayout = "2006-01-02"

// ReportHandler exposes the daily sales summary.
type ReportHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter for reports.
func NewReportHandler(svc *reporting.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

// Daily handles GET /api/reports/daily?date=YYYY-MM-DD. The date defaults
// to today when absent.
func (h *ReportHandler) Daily(c *gin.Context) {
	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	report, err := h.svc.DailySummary(c.Request.Context(), day)
	if err != nil {
		h.logger.Error("failed building daily report", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report unavailable"})
		return
	}

	c.JSON(http.StatusOK, report)
}
