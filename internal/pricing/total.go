// Package pricing derives cart totals from line items and live catalog prices.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopcart/internal/models"
)

// LineTotal is quantity × the product's current price. A line without a loaded
// product contributes zero.
func LineTotal(item models.CartItem) decimal.Decimal {
	if item.Product == nil {
		return decimal.Zero
	}
	return item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// Total sums LineTotal over items.
func Total(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(LineTotal(it))
	}
	return total
}
