package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/tripbook/internal/shared"
)

// ProcessorConfig groups optional processor behaviour.
type ProcessorConfig struct {
	// Strict surfaces unknown sale and product ids as shared.ErrReference and
	// resolves every item before stock is touched.
	Strict bool
	// ConsistentDeleteRestore re-derives the other unit when Delete restores
	// stock, matching the rollback done by Update. Off by default: Delete
	// restores only the unit that was sold.
	ConsistentDeleteRestore bool
	Clock                   func() time.Time
	NewID                   func() string
}

// Processor applies sales to the product ledger and keeps the sale list.
// Like the ledger it expects a single writer.
type Processor struct {
	ledger           Ledger
	sales            []Sale
	strict           bool
	consistentDelete bool
	now              func() time.Time
	newID            func() string
}

// NewProcessor builds a Processor over ledger.
func NewProcessor(ledger Ledger, cfg ProcessorConfig) *Processor {
	p := &Processor{
		ledger:           ledger,
		strict:           cfg.Strict,
		consistentDelete: cfg.ConsistentDeleteRestore,
		now:              cfg.Clock,
		newID:            cfg.NewID,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	return p
}

// Load replaces the sale list, typically after hydration.
func (p *Processor) Load(sales []Sale) {
	p.sales = make([]Sale, 0, len(sales))
	for _, s := range sales {
		p.sales = append(p.sales, s.clone())
	}
}

// Add applies draft to stock and records the sale.
func (p *Processor) Add(draft Draft) (Sale, error) {
	if draft.ID != "" && p.find(draft.ID) >= 0 {
		return Sale{}, shared.DuplicateIDError(draft.ID)
	}
	if p.strict {
		if err := p.resolve(draft.Items); err != nil {
			return Sale{}, err
		}
	}
	items, total := p.apply(draft.Items)
	now := p.now()
	sale := Sale{
		ID:          draft.ID,
		Store:       draft.Store,
		Area:        draft.Area,
		Items:       items,
		TotalAmount: total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if sale.ID == "" {
		sale.ID = p.newID()
	}
	p.sales = append(p.sales, sale)
	return sale.clone(), nil
}

// Update rolls back the stored sale against live stock, then applies draft.
// CreatedAt is kept. An unknown id changes nothing.
func (p *Processor) Update(id string, draft Draft) (Sale, bool, error) {
	idx := p.find(id)
	if idx < 0 {
		return Sale{}, false, p.missing(id)
	}
	existing := p.sales[idx]
	if p.strict {
		if err := p.resolve(existing.Items); err != nil {
			return Sale{}, false, err
		}
		if err := p.resolve(draft.Items); err != nil {
			return Sale{}, false, err
		}
	}
	p.restore(existing.Items, true)
	items, total := p.apply(draft.Items)

	existing.Store = draft.Store
	existing.Area = draft.Area
	existing.Items = items
	existing.TotalAmount = total
	existing.UpdatedAt = p.now()
	p.sales[idx] = existing
	return existing.clone(), true, nil
}

// Delete restores the stock sold by a sale and removes it.
func (p *Processor) Delete(id string) (bool, error) {
	idx := p.find(id)
	if idx < 0 {
		return false, p.missing(id)
	}
	if p.strict {
		if err := p.resolve(p.sales[idx].Items); err != nil {
			return false, err
		}
	}
	p.restore(p.sales[idx].Items, p.consistentDelete)
	p.sales = append(p.sales[:idx], p.sales[idx+1:]...)
	return true, nil
}

// Reset drops every sale without touching stock.
func (p *Processor) Reset() {
	p.sales = nil
}

// Get returns a sale by id.
func (p *Processor) Get(id string) (Sale, bool) {
	idx := p.find(id)
	if idx < 0 {
		return Sale{}, false
	}
	return p.sales[idx].clone(), true
}

// List returns every sale in recording order.
func (p *Processor) List() []Sale {
	out := make([]Sale, 0, len(p.sales))
	for _, s := range p.sales {
		out = append(out, s.clone())
	}
	return out
}

// Last returns the most recently created sale.
func (p *Processor) Last() (Sale, bool) {
	var (
		last  Sale
		found bool
	)
	for _, s := range p.sales {
		if !found || !s.CreatedAt.Before(last.CreatedAt) {
			last, found = s, true
		}
	}
	return last.clone(), found
}

// apply decrements stock for each resolvable item and returns the items with
// refreshed snapshots and subtotals. Unresolvable items stay on the sale with
// a zero subtotal.
func (p *Processor) apply(draftItems []LineItem) ([]LineItem, float64) {
	items := make([]LineItem, len(draftItems))
	total := decimal.Zero
	for i, item := range draftItems {
		item.Subtotal = 0
		product, ok := p.ledger.Get(item.ProductID)
		if !ok || !item.UnitType.Valid() {
			items[i] = item
			continue
		}
		item.Name = product.Name
		item.FillPerSack = product.FillPerSack
		item.BasePrice = product.BasePrice
		sub := subtotal(item.UnitType, item.QtySold, product.FillPerSack, item.AmountSold)
		item.Subtotal = sub.InexactFloat64()
		total = total.Add(sub)
		p.ledger.AdjustStock(product.ID, item.UnitType, -item.QtySold, true)
		items[i] = item
	}
	return items, total.InexactFloat64()
}

// restore adds sold quantities back. Missing products are skipped.
func (p *Processor) restore(items []LineItem, rederive bool) {
	for _, item := range items {
		if !item.UnitType.Valid() {
			continue
		}
		p.ledger.AdjustStock(item.ProductID, item.UnitType, item.QtySold, rederive)
	}
}

func (p *Processor) resolve(items []LineItem) error {
	for i, item := range items {
		if _, ok := p.ledger.Get(item.ProductID); !ok {
			return fmt.Errorf("sales: item %d product %q: %w", i, item.ProductID, shared.ErrReference)
		}
	}
	return nil
}

func (p *Processor) find(id string) int {
	for i := range p.sales {
		if p.sales[i].ID == id {
			return i
		}
	}
	return -1
}

func (p *Processor) missing(id string) error {
	if !p.strict {
		return nil
	}
	return fmt.Errorf("sales: sale %q: %w", id, shared.ErrReference)
}
