// Package units converts stock quantities between dozens and sacks.
//
// Conversions are only defined for a positive fill-per-sack ratio. Callers
// check Enabled first; with conversion disabled both quantities of a product
// are tracked independently.
package units

import "math"

// Type enumerates the unit a line item is sold in.
type Type string

const (
	// Dozens is the base retail unit (losin).
	Dozens Type = "dozens"
	// Sack is the bulk unit (sak).
	Sack Type = "sack"
)

// Valid reports whether t is a known unit.
func (t Type) Valid() bool {
	return t == Dozens || t == Sack
}

// Enabled reports whether conversion is defined for the fill ratio.
func Enabled(fillPerSack float64) bool {
	return fillPerSack > 0
}

// SacksFromDozens converts dozens into sacks at one decimal of granularity.
func SacksFromDozens(dozens, fillPerSack float64) float64 {
	if !Enabled(fillPerSack) {
		return 0
	}
	return math.Floor(dozens/fillPerSack*10) / 10
}

// DozensFromSacks converts sacks into dozens at one decimal of granularity.
func DozensFromSacks(sacks, fillPerSack float64) float64 {
	if !Enabled(fillPerSack) {
		return 0
	}
	return math.Floor(sacks*fillPerSack*10) / 10
}

// Remaining splits stock for display: whole sacks as stored plus the dozens
// left over beyond whole sacks. The leftover is only reported while sacks
// remain.
func Remaining(qtySack, qtyDozens, fillPerSack float64) (sacks, dozens float64) {
	sacks = qtySack
	if qtySack <= 0 || !Enabled(fillPerSack) {
		return sacks, 0
	}
	rem := math.Mod(qtyDozens, fillPerSack)
	if rem == 0 {
		return sacks, 0
	}
	return sacks, math.Floor(rem)
}
