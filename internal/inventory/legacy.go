package inventory

import "github.com/odyssey-erp/tripbook/internal/units"

// Record is the persisted product layout. It is a superset of every shape the
// app has written: the flat qty/price layout, the per-unit base price layout
// and the current basePrice + fillPerSack layout.
type Record struct {
	Product
	Qty                *float64 `json:"qty,omitempty"`
	Price              *float64 `json:"price,omitempty"`
	BasePricePerDozens *float64 `json:"basePricePerDozens,omitempty"`
	BasePricePerSack   *float64 `json:"basePricePerSack,omitempty"`
}

// Normalize reconciles a stored record into the current Product shape.
func (r Record) Normalize() Product {
	p := r.Product
	if p.FillPerSack <= 0 && r.BasePricePerSack != nil && r.BasePricePerDozens != nil && *r.BasePricePerDozens > 0 {
		p.FillPerSack = *r.BasePricePerSack / *r.BasePricePerDozens
	}
	if p.BasePrice == 0 {
		switch {
		case r.BasePricePerDozens != nil && *r.BasePricePerDozens > 0:
			p.BasePrice = *r.BasePricePerDozens
		case r.Price != nil:
			p.BasePrice = *r.Price
		}
	}
	if p.QtyDozens == 0 && p.QtySack == 0 && r.Qty != nil {
		p.QtyDozens = clamp(*r.Qty)
		if units.Enabled(p.FillPerSack) {
			p.QtySack = units.SacksFromDozens(p.QtyDozens, p.FillPerSack)
		}
	}
	p.QtyDozens = clamp(p.QtyDozens)
	p.QtySack = clamp(p.QtySack)
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	return p
}

// NormalizeAll reconciles a slice of stored records.
func NormalizeAll(records []Record) []Product {
	out := make([]Product, 0, len(records))
	for _, r := range records {
		out = append(out, r.Normalize())
	}
	return out
}
