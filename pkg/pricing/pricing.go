// Package pricing holds the storefront's monetary rules: subtotal
// accumulation, the flat tax rate, and the free-shipping threshold.
// All functions are pure.
package pricing

import "github.com/shopspring/decimal"

var (
	taxRate           = decimal.NewFromFloat(0.15)
	freeShippingAbove = decimal.NewFromInt(100)
	flatShippingFee   = decimal.NewFromInt(10)
)

// Line is the priced portion of a cart line item.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote is a fully priced cart snapshot, rounded to two decimal places.
type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// Subtotal sums unit price times quantity without rounding. Rounding is
// deferred to QuoteFor so intermediate sums keep full precision.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Tax applies the flat 15% rate.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRate)
}

// Shipping is free strictly above the threshold; a subtotal of exactly 100
// still pays the flat fee.
func Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(freeShippingAbove) {
		return decimal.Zero
	}
	return flatShippingFee
}

// QuoteFor prices the given lines and rounds every figure to cents.
func QuoteFor(lines []Line) Quote {
	subtotal := Subtotal(lines)
	tax := Tax(subtotal)
	shipping := Shipping(subtotal)
	total := subtotal.Add(tax).Add(shipping)
	return Quote{
		Subtotal: subtotal.Round(2),
		Tax:      tax.Round(2),
		Shipping: shipping.Round(2),
		Total:    total.Round(2),
	}
}
