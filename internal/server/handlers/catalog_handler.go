package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/keystonepos/backend/internal/domain/models"
	"github.com/keystonepos/backend/internal/service/catalog"
)

// CatalogHandler exposes product/tax/customer/user maintenance endpoints.
type CatalogHandler struct {
	svc    *catalog.Service
	logger *zap.Logger
}

// NewCatalogHandler constructs the HTTP handler adapter for the catalog.
func NewCatalogHandler(svc *catalog.Service, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{svc: svc, logger: logger}
}

// Seed handles POST /api/seed: default taxes plus demo data.
func (h *CatalogHandler) Seed(c *gin.Context) {
	result, err := h.svc.SeedDemo(c.Request.Context())
	if err != nil {
		h.logger.Error("seed failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "seed failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"taxes_created": result.TaxesCreated,
		"products":      result.Products,
		"users":         result.Users,
	})
}

// CreateProduct handles POST /api/products.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.CreateProduct(c.Request.Context(), product); err != nil {
		h.respondCreateError(c, err, "product")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

// ListProducts handles GET /api/products.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.svc.ListProducts(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing products", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog unavailable"})
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// CreateTaxRate handles POST /api/taxes.
func (h *CatalogHandler) CreateTaxRate(c *gin.Context) {
	var rate models.TaxRate
	if err := c.ShouldBindJSON(&rate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.CreateTaxRate(c.Request.Context(), rate); err != nil {
		h.respondCreateError(c, err, "tax rate")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

// ListTaxRates handles GET /api/taxes.
func (h *CatalogHandler) ListTaxRates(c *gin.Context) {
	rates, err := h.svc.ListTaxRates(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing tax rates", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tax rates unavailable"})
		return
	}
	if rates == nil {
		rates = []models.TaxRate{}
	}
	c.JSON(http.StatusOK, rates)
}

// CreateCustomer handles POST /api/customers.
func (h *CatalogHandler) CreateCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.CreateCustomer(c.Request.Context(), customer); err != nil {
		h.respondCreateError(c, err, "customer")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

// ListCustomers handles GET /api/customers.
func (h *CatalogHandler) ListCustomers(c *gin.Context) {
	customers, err := h.svc.ListCustomers(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing customers", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "customers unavailable"})
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	c.JSON(http.StatusOK, customers)
}

// CreateUser handles POST /api/users.
func (h *CatalogHandler) CreateUser(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.CreateUser(c.Request.Context(), user); err != nil {
		h.respondCreateError(c, err, "user")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

// ListUsers handles GET /api/users.
func (h *CatalogHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing users", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "users unavailable"})
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}

func (h *CatalogHandler) respondCreateError(c *gin.Context, err error, entity string) {
	if errors.Is(err, models.ErrDuplicateKey) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("failed creating "+entity, zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "could not create " + entity})
}
