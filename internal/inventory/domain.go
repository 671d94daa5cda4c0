package inventory

import (
	"time"

	"github.com/odyssey-erp/tripbook/internal/units"
)

// Product is a stock line carried on the trip. Stock is kept in both units;
// while FillPerSack > 0 one unit is always derived from the other.
type Product struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	FillPerSack          float64   `json:"fillPerSack"`
	QtyDozens            float64   `json:"qtyDozens"`
	QtySack              float64   `json:"qtySack"`
	BasePrice            float64   `json:"basePrice"`
	TargetPricePerDozens float64   `json:"targetPricePerDozens"`
	TargetPricePerSack   float64   `json:"targetPricePerSack"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// InStock reports whether any stock remains in either unit.
func (p Product) InStock() bool {
	return p.QtySack > 0 || p.QtyDozens > 0
}

// Qty returns the stock held in the given unit.
func (p Product) Qty(unit units.Type) float64 {
	if unit == units.Sack {
		return p.QtySack
	}
	return p.QtyDozens
}

// Remaining returns the display split of whole sacks and leftover dozens.
func (p Product) Remaining() (sacks, dozens float64) {
	return units.Remaining(p.QtySack, p.QtyDozens, p.FillPerSack)
}

// WithStockDelta returns a copy with delta applied to the given unit,
// clamped at zero. With rederive set and conversion enabled the other unit
// is recomputed: from dozens via SacksFromDozens, from sacks as
// qtySack * fillPerSack.
func (p Product) WithStockDelta(unit units.Type, delta float64, rederive bool) Product {
	switch unit {
	case units.Dozens:
		p.QtyDozens = clamp(p.QtyDozens + delta)
		if rederive && units.Enabled(p.FillPerSack) {
			p.QtySack = units.SacksFromDozens(p.QtyDozens, p.FillPerSack)
		}
	case units.Sack:
		p.QtySack = clamp(p.QtySack + delta)
		if rederive && units.Enabled(p.FillPerSack) {
			p.QtyDozens = p.QtySack * p.FillPerSack
		}
	}
	return p
}

// Input describes a product submitted through the product form.
type Input struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name" validate:"required"`
	FillPerSack          float64  `json:"fillPerSack" validate:"gt=0"`
	QtyDozens            *float64 `json:"qtyDozens,omitempty" validate:"omitnil,gte=0"`
	QtySack              *float64 `json:"qtySack,omitempty" validate:"omitnil,gte=0"`
	BasePrice            float64  `json:"basePrice" validate:"gte=0"`
	TargetPricePerDozens float64  `json:"targetPricePerDozens" validate:"gte=0"`
	TargetPricePerSack   float64  `json:"targetPricePerSack" validate:"gte=0"`
}

// Patch carries the fields to merge into an existing product. Nil fields are
// left untouched.
type Patch struct {
	Name                 *string  `json:"name,omitempty" validate:"omitnil,min=1"`
	FillPerSack          *float64 `json:"fillPerSack,omitempty" validate:"omitnil,gt=0"`
	QtyDozens            *float64 `json:"qtyDozens,omitempty" validate:"omitnil,gte=0"`
	QtySack              *float64 `json:"qtySack,omitempty" validate:"omitnil,gte=0"`
	BasePrice            *float64 `json:"basePrice,omitempty" validate:"omitnil,gte=0"`
	TargetPricePerDozens *float64 `json:"targetPricePerDozens,omitempty" validate:"omitnil,gte=0"`
	TargetPricePerSack   *float64 `json:"targetPricePerSack,omitempty" validate:"omitnil,gte=0"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.FillPerSack == nil && p.QtyDozens == nil && p.QtySack == nil &&
		p.BasePrice == nil && p.TargetPricePerDozens == nil && p.TargetPricePerSack == nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
