package sales

import (
	"time"

	"github.com/odyssey-erp/tripbook/internal/inventory"
	"github.com/odyssey-erp/tripbook/internal/units"
)

// ============================================================================
// SALE
// ============================================================================

// LineItem is a product snapshot plus the quantity and price it sold for.
// Subtotal is always computed by the Processor.
type LineItem struct {
	ProductID   string     `json:"id" validate:"required"`
	Name        string     `json:"name"`
	FillPerSack float64    `json:"fillPerSack"`
	BasePrice   float64    `json:"basePrice"`
	QtySold     float64    `json:"qtySold" validate:"gt=0"`
	UnitType    units.Type `json:"unitType" validate:"oneof=dozens sack"`
	AmountSold  float64    `json:"amountSold" validate:"gt=0"`
	Subtotal    float64    `json:"subtotal"`
}

// Sale is one stop at a shop.
type Sale struct {
	ID          string     `json:"id"`
	Store       string     `json:"store"`
	Area        string     `json:"area"`
	Items       []LineItem `json:"items"`
	TotalAmount float64    `json:"totalAmount"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (s Sale) clone() Sale {
	s.Items = append([]LineItem(nil), s.Items...)
	return s
}

// Draft is the caller-supplied content of a sale. Subtotals and totals on
// the draft are ignored.
type Draft struct {
	ID    string     `json:"id"`
	Store string     `json:"store" validate:"required"`
	Area  string     `json:"area"`
	Items []LineItem `json:"items" validate:"required,min=1,dive"`
}

// ============================================================================
// LEDGER ACCESS
// ============================================================================

// Lookup resolves live products by id.
type Lookup interface {
	Get(id string) (inventory.Product, bool)
}

// Ledger is the slice of the product ledger the processor mutates.
type Ledger interface {
	Lookup
	AdjustStock(id string, unit units.Type, delta float64, rederive bool) (inventory.Product, bool)
}

// DefaultPrice returns the suggested unit price for a product in the given unit.
func DefaultPrice(p inventory.Product, unit units.Type) float64 {
	if unit == units.Sack {
		return p.TargetPricePerSack
	}
	return p.TargetPricePerDozens
}
