package inventory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/tripbook/internal/shared"
	"github.com/odyssey-erp/tripbook/internal/units"
)

// LedgerConfig groups optional settings.
type LedgerConfig struct {
	// Strict surfaces unknown ids as shared.ErrReference instead of a no-op.
	Strict bool
	Clock  func() time.Time
	NewID  func() string
}

// Ledger owns the live product list. It is not safe for concurrent use; the
// book facade serialises access.
type Ledger struct {
	products  []Product
	strict    bool
	now       func() time.Time
	newID     func() string
	validator *validator.Validate
}

// NewLedger builds an empty Ledger.
func NewLedger(cfg LedgerConfig) *Ledger {
	l := &Ledger{strict: cfg.Strict, now: cfg.Clock, newID: cfg.NewID, validator: shared.NewValidator()}
	if l.now == nil {
		l.now = time.Now
	}
	if l.newID == nil {
		l.newID = uuid.NewString
	}
	return l
}

// Load replaces the ledger contents, typically after hydration.
func (l *Ledger) Load(products []Product) {
	l.products = append([]Product(nil), products...)
}

// Add inserts a new product after checking the form rules.
func (l *Ledger) Add(input Input) (Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := shared.ValidateStruct(l.validator, input); err != nil {
		return Product{}, err
	}
	if input.ID != "" && l.find(input.ID) >= 0 {
		return Product{}, shared.DuplicateIDError(input.ID)
	}
	now := l.now()
	p := Product{
		ID:                   input.ID,
		Name:                 input.Name,
		FillPerSack:          input.FillPerSack,
		BasePrice:            input.BasePrice,
		TargetPricePerDozens: input.TargetPricePerDozens,
		TargetPricePerSack:   input.TargetPricePerSack,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if p.ID == "" {
		p.ID = l.newID()
	}
	switch {
	case input.QtyDozens != nil:
		p.QtyDozens = clamp(*input.QtyDozens)
		p.QtySack = units.SacksFromDozens(p.QtyDozens, p.FillPerSack)
	case input.QtySack != nil:
		p.QtySack = clamp(*input.QtySack)
		p.QtyDozens = units.DozensFromSacks(p.QtySack, p.FillPerSack)
	}
	l.products = append(l.products, p)
	return p, nil
}

// Update merges patch into the product. The edited unit is authoritative and
// the other one is re-derived while conversion is enabled. An unknown id is a
// no-op reported through the bool, or ErrReference in strict mode.
func (l *Ledger) Update(id string, patch Patch) (Product, bool, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return Product{}, false, shared.NewValidationError(map[string]string{"name": "is required"})
		}
		patch.Name = &name
	}
	idx := l.find(id)
	if idx < 0 {
		return Product{}, false, l.missing(id)
	}
	p := l.products[idx]
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.FillPerSack != nil {
		p.FillPerSack = *patch.FillPerSack
	}
	if patch.BasePrice != nil {
		p.BasePrice = *patch.BasePrice
	}
	if patch.TargetPricePerDozens != nil {
		p.TargetPricePerDozens = *patch.TargetPricePerDozens
	}
	if patch.TargetPricePerSack != nil {
		p.TargetPricePerSack = *patch.TargetPricePerSack
	}
	switch {
	case patch.QtyDozens != nil:
		p.QtyDozens = clamp(*patch.QtyDozens)
		if units.Enabled(p.FillPerSack) {
			p.QtySack = units.SacksFromDozens(p.QtyDozens, p.FillPerSack)
		} else if patch.QtySack != nil {
			p.QtySack = clamp(*patch.QtySack)
		}
	case patch.QtySack != nil:
		p.QtySack = clamp(*patch.QtySack)
		if units.Enabled(p.FillPerSack) {
			p.QtyDozens = units.DozensFromSacks(p.QtySack, p.FillPerSack)
		}
	case patch.FillPerSack != nil && units.Enabled(p.FillPerSack):
		p.QtySack = units.SacksFromDozens(p.QtyDozens, p.FillPerSack)
	}
	p.UpdatedAt = l.now()
	l.products[idx] = p
	return p, true, nil
}

// AdjustStock applies a signed delta to one unit of a product. It is the
// mutation path used by the sale processor.
func (l *Ledger) AdjustStock(id string, unit units.Type, delta float64, rederive bool) (Product, bool) {
	idx := l.find(id)
	if idx < 0 {
		return Product{}, false
	}
	p := l.products[idx].WithStockDelta(unit, delta, rederive)
	p.UpdatedAt = l.now()
	l.products[idx] = p
	return p, true
}

// Delete removes a product. Historical sales keep their snapshots.
func (l *Ledger) Delete(id string) (bool, error) {
	idx := l.find(id)
	if idx < 0 {
		return false, l.missing(id)
	}
	l.products = append(l.products[:idx], l.products[idx+1:]...)
	return true, nil
}

// Reset clears every product.
func (l *Ledger) Reset() {
	l.products = nil
}

// Get looks up a product by id.
func (l *Ledger) Get(id string) (Product, bool) {
	idx := l.find(id)
	if idx < 0 {
		return Product{}, false
	}
	return l.products[idx], true
}

// FindByName looks up a product by its display name.
func (l *Ledger) FindByName(name string) (Product, bool) {
	for _, p := range l.products {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}

// All returns the products in insertion order.
func (l *Ledger) All() []Product {
	return append([]Product(nil), l.products...)
}

// List returns products with stock first, most recently updated first.
func (l *Ledger) List() []Product {
	out := l.All()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.InStock() != b.InStock() {
			return a.InStock()
		}
		return a.UpdatedAt.After(b.UpdatedAt)
	})
	return out
}

// Selectable returns products offered by the sale form picker: dozens in
// stock and a name not already used on the sale.
func (l *Ledger) Selectable(excludeNames ...string) []Product {
	excluded := make(map[string]struct{}, len(excludeNames))
	for _, n := range excludeNames {
		if n != "" {
			excluded[n] = struct{}{}
		}
	}
	var out []Product
	for _, p := range l.products {
		if p.QtyDozens <= 0 {
			continue
		}
		if _, ok := excluded[p.Name]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (l *Ledger) find(id string) int {
	for i := range l.products {
		if l.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) missing(id string) error {
	if !l.strict {
		return nil
	}
	return fmt.Errorf("inventory: product %q: %w", id, shared.ErrReference)
}
