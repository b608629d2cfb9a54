package models

// Product is one sellable catalog entry, keyed by SKU.
type Product struct {
	SKU      string  `bson:"sku" json:"sku" binding:"required"`
	Name     string  `bson:"name" json:"name" binding:"required"`
	Price    float64 `bson:"price" json:"price" binding:"min=0"`
	Stock    float64 `bson:"stock" json:"stock"`
	Unit     string  `bson:"unit" json:"unit"`
	TaxCode  string  `bson:"tax_code,omitempty" json:"tax_code,omitempty"`
	Barcode  string  `bson:"barcode,omitempty" json:"barcode,omitempty"`
	Category string  `bson:"category,omitempty" json:"category,omitempty"`
	IsActive bool    `bson:"is_active" json:"is_active"`
}

// TaxRate maps a tax code to its fractional rate (0.19 means 19%).
type TaxRate struct {
	Name      string  `bson:"name" json:"name" binding:"required"`
	Rate      float64 `bson:"rate" json:"rate" binding:"min=0,max=1"`
	Code      string  `bson:"code" json:"code" binding:"required"`
	IsDefault bool    `bson:"is_default" json:"is_default"`
}

// DefaultTaxRates returns the three Tunisian TVA tiers that must exist
// before any sale is processed. TVA19 is the default rate.
func DefaultTaxRates() []TaxRate {
	return []TaxRate{
		{Name: "TVA 7%", Rate: 0.07, Code: "TVA7"},
		{Name: "TVA 13%", Rate: 0.13, Code: "TVA13"},
		{Name: "TVA 19%", Rate: 0.19, Code: "TVA19", IsDefault: true},
	}
}

// DemoProducts is the demo catalog installed by the seed endpoint when the
// product collection is empty.
func DemoProducts() []Product {
	return []Product{
		{SKU: "MILK-1L", Name: "Milk 1L", Price: 2.500, Stock: 100, Unit: "pcs", TaxCode: "TVA7", Category: "Grocery", IsActive: true},
		{SKU: "BREAD-STD", Name: "Bread", Price: 0.600, Stock: 200, Unit: "pcs", TaxCode: "TVA7", Category: "Bakery", IsActive: true},
		{SKU: "SHMP-250", Name: "Shampoo 250ml", Price: 8.900, Stock: 50, Unit: "pcs", TaxCode: "TVA19", Category: "Personal Care", IsActive: true},
		{SKU: "SUGAR-1KG", Name: "Sugar 1kg", Price: 3.200, Stock: 80, Unit: "kg", TaxCode: "TVA13", Category: "Grocery", IsActive: true},
	}
}
