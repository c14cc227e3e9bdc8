package product

import "github.com/shopspring/decimal"

// Product is a catalog entry as returned by the product service.
type Product struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}
