package sales

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/tripbook/internal/units"
)

// Subtotal computes line revenue. Sack lines are priced per dozen inside the
// sack: qtySold * fillPerSack * amountSold.
func Subtotal(unit units.Type, qtySold, fillPerSack, amountSold float64) float64 {
	return subtotal(unit, qtySold, fillPerSack, amountSold).InexactFloat64()
}

func subtotal(unit units.Type, qtySold, fillPerSack, amountSold float64) decimal.Decimal {
	qty := decimal.NewFromFloat(qtySold)
	if unit == units.Sack {
		qty = qty.Mul(decimal.NewFromFloat(fillPerSack))
	}
	return qty.Mul(decimal.NewFromFloat(amountSold))
}

// Total sums item subtotals.
func Total(items []LineItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(decimal.NewFromFloat(item.Subtotal))
	}
	return sum.InexactFloat64()
}
