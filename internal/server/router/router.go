package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/keystonepos/backend/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(salesHandler *handlers.SalesHandler, catalogHandler *handlers.CatalogHandler, reportHandler *handlers.ReportHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"name": "Keystone POS API", "status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		api.POST("/seed", catalogHandler.Seed)

		api.GET("/products", catalogHandler.ListProducts)
		api.POST("/products", catalogHandler.CreateProduct)
		api.GET("/taxes", catalogHandler.ListTaxRates)
		api.POST("/taxes", catalogHandler.CreateTaxRate)
		api.GET("/customers", catalogHandler.ListCustomers)
		api.POST("/customers", catalogHandler.CreateCustomer)
		api.GET("/users", catalogHandler.ListUsers)
		api.POST("/users", catalogHandler.CreateUser)

		api.GET("/sales", salesHandler.List)
		api.POST("/sales", salesHandler.Create)

		api.GET("/reports/daily", reportHandler.Daily)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
