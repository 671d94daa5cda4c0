package sales

import "github.com/odyssey-erp/tripbook/internal/units"

// Normalize reconciles a stored sale into the current shape. Sales written
// before units existed decremented the single qty field, which is now dozens,
// so their items carry no unitType.
func (s Sale) Normalize() Sale {
	s = s.clone()
	legacy := false
	for i, item := range s.Items {
		if item.UnitType != "" {
			continue
		}
		legacy = true
		item.UnitType = units.Dozens
		if item.Subtotal == 0 {
			item.Subtotal = Subtotal(units.Dozens, item.QtySold, item.FillPerSack, item.AmountSold)
		}
		s.Items[i] = item
	}
	if legacy && s.TotalAmount == 0 {
		s.TotalAmount = Total(s.Items)
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	return s
}

// NormalizeAll reconciles a slice of stored sales.
func NormalizeAll(stored []Sale) []Sale {
	out := make([]Sale, 0, len(stored))
	for _, s := range stored {
		out = append(out, s.Normalize())
	}
	return out
}
