package domain

import "github.com/shopspring/decimal"

// TaxRate is the flat rate applied to the subtotal. Shipping is free.
var (
	TaxRate      = decimal.NewFromFloat(0.10)
	ShippingFlat = decimal.Zero
)

// ComputeTotals recomputes order totals from the line snapshots. Money
// arithmetic goes through decimal so repeated float addition cannot
// drift the stored amounts; results are rounded to cents.
func ComputeTotals(items []OrderItem) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(item.Quantity))
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(TaxRate).Round(2)
	shipping := ShippingFlat.Round(2)
	total := subtotal.Add(tax).Add(shipping).Round(2)

	return Totals{
		Subtotal: subtotal.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}

// SameAmount compares two monetary values at cent precision.
func SameAmount(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}

func linesSubtotal(lines []CartLine) float64 {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(line.Quantity)))
	}
	return subtotal.Round(2).InexactFloat64()
}
