package sales

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/tripbook/internal/inventory"
	"github.com/odyssey-erp/tripbook/internal/shared"
)

// ValidateDraft runs the sale form checks the processor itself does not do:
// field rules, one line per product, every product resolvable, and enough
// stock in the chosen unit. When original is set the check runs as if that
// sale had already been rolled back.
func ValidateDraft(v *validator.Validate, stock Lookup, draft Draft, original *Sale) error {
	if err := shared.ValidateStruct(v, draft); err != nil {
		return err
	}

	products := make(map[string]inventory.Product)
	get := func(id string) (inventory.Product, bool) {
		if p, ok := products[id]; ok {
			return p, true
		}
		p, ok := stock.Get(id)
		if ok {
			products[id] = p
		}
		return p, ok
	}
	if original != nil {
		for _, item := range original.Items {
			if !item.UnitType.Valid() {
				continue
			}
			if p, ok := get(item.ProductID); ok {
				products[item.ProductID] = p.WithStockDelta(item.UnitType, item.QtySold, true)
			}
		}
	}

	fields := make(map[string]string)
	seen := make(map[string]int, len(draft.Items))
	for i, item := range draft.Items {
		prefix := "items[" + strconv.Itoa(i) + "]."
		if first, dup := seen[item.ProductID]; dup {
			fields[prefix+"id"] = fmt.Sprintf("duplicates item %d", first)
			continue
		}
		seen[item.ProductID] = i

		p, ok := get(item.ProductID)
		if !ok {
			fields[prefix+"id"] = "does not match a product"
			continue
		}
		if available := p.Qty(item.UnitType); item.QtySold > available {
			fields[prefix+"qtySold"] = "exceeds available stock (" + strconv.FormatFloat(available, 'f', -1, 64) + ")"
		}
	}
	if len(fields) > 0 {
		return shared.NewValidationError(fields)
	}
	return nil
}
