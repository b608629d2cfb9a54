package models

import "time"

// DailyReport aggregates one day of completed sales.
type DailyReport struct {
	Date      time.Time `bson:"date" json:"date"`
	SaleCount int       `bson:"sale_count" json:"sale_count"`
	Subtotal  float64   `bson:"subtotal" json:"subtotal"`
	TaxTotal  float64   `bson:"tax_total" json:"tax_total"`
	Total     float64   `bson:"total" json:"total"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// LowStockItem is one catalog entry flagged by the low-stock scan.
type LowStockItem struct {
	SKU   string  `json:"sku"`
	Name  string  `json:"name"`
	Stock float64 `json:"stock"`
	Unit  string  `json:"unit"`
}
