package models

import "time"

// SaleLine is one purchased item within a sale. SKU, name and unit price are
// copied into the line at sale time so historical sales survive catalog edits.
type SaleLine struct {
	SKU       string  `bson:"sku" json:"sku" binding:"required"`
	Name      string  `bson:"name" json:"name"`
	Qty       float64 `bson:"qty" json:"qty" binding:"required"`
	UnitPrice float64 `bson:"unit_price" json:"unit_price"`
	TaxCode   string  `bson:"tax_code,omitempty" json:"tax_code,omitempty"`
}

// Payment carries how the sale was settled.
type Payment struct {
	Method string  `bson:"method" json:"method" binding:"omitempty,oneof=cash card mixed"`
	Paid   float64 `bson:"paid" json:"paid" binding:"min=0"`
	Change float64 `bson:"change" json:"change"`
}

// SaleRequest is the inbound shape consumed by the transaction coordinator.
// RequestID is an optional client-supplied idempotency key: resubmitting a
// request with the same ID returns the original sale instead of committing a
// second one.
type SaleRequest struct {
	RequestID    string     `json:"request_id,omitempty"`
	Items        []SaleLine `json:"items" binding:"required"`
	CustomerName string     `json:"customer_name,omitempty"`
	Payment      Payment    `json:"payment"`
	User         string     `json:"user,omitempty"`
}

// Sale is the persisted record of a completed transaction. It is created
// exactly once and never mutated afterwards.
type Sale struct {
	ID           string             `bson:"_id,omitempty" json:"id"`
	RequestID    string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Items        []SaleLine         `bson:"items" json:"items"`
	CustomerName string             `bson:"customer_name,omitempty" json:"customer_name,omitempty"`
	Subtotal     float64            `bson:"subtotal" json:"subtotal"`
	TaxTotal     float64            `bson:"tax_total" json:"tax_total"`
	Total        float64            `bson:"total" json:"total"`
	TaxBreakdown map[string]float64 `bson:"tax_breakdown,omitempty" json:"tax_breakdown,omitempty"`
	Payment      Payment            `bson:"payment" json:"payment"`
	User         string             `bson:"user,omitempty" json:"user,omitempty"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
}

// SaleTotals is the computed monetary summary returned to the caller.
type SaleTotals struct {
	Subtotal float64 `json:"subtotal"`
	TaxTotal float64 `json:"tax_total"`
	Total    float64 `json:"total"`
}

// Totals extracts the monetary summary from a persisted sale.
func (s *Sale) Totals() SaleTotals {
	return SaleTotals{Subtotal: s.Subtotal, TaxTotal: s.TaxTotal, Total: s.Total}
}
