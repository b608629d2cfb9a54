package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/keystonepos/backend/internal/domain/models"
	"github.com/keystonepos/backend/internal/service/sales"
)

// SaleLister reads back persisted sales for the listing endpoint.
type SaleLister interface {
	ListSales(ctx context.Context) ([]models.Sale, error)
}

// SalesHandler exposes the sale transaction engine over HTTP.
type SalesHandler struct {
	svc    *sales.Service
	lister SaleLister
	logger *zap.Logger
}

// NewSalesHandler constructs the HTTP handler adapter for sales.
func NewSalesHandler(svc *sales.Service, lister SaleLister, logger *zap.Logger) *SalesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesHandler{svc: svc, lister: lister, logger: logger}
}

// Create handles POST /api/sales: runs the full sale transaction and
// returns the computed totals.
func (h *SalesHandler) Create(c *gin.Context) {
	var req models.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sale payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sale, err := h.svc.CreateSale(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, sales.ErrUnknownProduct),
			errors.Is(err, sales.ErrInvalidLine),
			errors.Is(err, sales.ErrInsufficientStock):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			// Storage trouble; retryable, and internals stay unexposed.
			h.logger.Error("sale transaction failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sale could not be processed"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "created", "totals": sale.Totals()})
}

// List handles GET /api/sales.
func (h *SalesHandler) List(c *gin.Context) {
	results, err := h.lister.ListSales(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing sales", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sales unavailable"})
		return
	}
	if results == nil {
		results = []models.Sale{}
	}
	c.JSON(http.StatusOK, results)
}
