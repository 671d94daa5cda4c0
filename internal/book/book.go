// Package book is the facade the presentation layer talks to. It owns the
// product ledger, the sale processor and the shop directory, serialises
// every operation behind one mutex, persists changed namespaces and
// notifies subscribers after each change.
package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/tripbook/internal/inventory"
	"github.com/odyssey-erp/tripbook/internal/profit"
	"github.com/odyssey-erp/tripbook/internal/sales"
	"github.com/odyssey-erp/tripbook/internal/shared"
	"github.com/odyssey-erp/tripbook/internal/shops"
	"github.com/odyssey-erp/tripbook/internal/storage"
)

// ErrClosed is returned by mutations after Close.
var ErrClosed = errors.New("book: closed")

// Options configures a Book.
type Options struct {
	Logger *slog.Logger
	// Strict surfaces unknown ids as shared.ErrReference.
	Strict bool
	// ConsistentDeleteRestore re-derives the other unit when a sale is deleted.
	ConsistentDeleteRestore bool
	// Location decides the calendar day used for today's profit.
	Location *time.Location
	// SyncWrites persists each mutation before it returns instead of handing
	// it to the background writer.
	SyncWrites bool
	Clock      func() time.Time
	NewID      func() string
}

// Book is safe for concurrent use.
type Book struct {
	mu        sync.Mutex
	closed    bool
	logger    *slog.Logger
	store     storage.Store
	writer    *writer
	syncWrite bool
	now       func() time.Time
	validator *validator.Validate
	subs      subscribers

	ledger    *inventory.Ledger
	processor *sales.Processor
	shops     *shops.Directory
	profit    *profit.Aggregator
}

// Open hydrates a Book from store. The store stays owned by the caller.
func Open(ctx context.Context, store storage.Store, opts Options) (*Book, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	snap, err := hydrate(ctx, store)
	if err != nil {
		return nil, err
	}

	ledger := inventory.NewLedger(inventory.LedgerConfig{Strict: opts.Strict, Clock: now, NewID: opts.NewID})
	processor := sales.NewProcessor(ledger, sales.ProcessorConfig{
		Strict:                  opts.Strict,
		ConsistentDeleteRestore: opts.ConsistentDeleteRestore,
		Clock:                   now,
		NewID:                   opts.NewID,
	})
	directory := shops.NewDirectory(shops.Config{Strict: opts.Strict, Clock: now, NewID: opts.NewID})

	b := &Book{
		logger:    logger,
		store:     store,
		syncWrite: opts.SyncWrites,
		now:       now,
		validator: shared.NewValidator(),
		ledger:    ledger,
		processor: processor,
		shops:     directory,
		profit:    profit.NewAggregator(ledger, processor, profit.Config{Location: opts.Location, Clock: now}),
	}
	b.load(snap)
	if !b.syncWrite {
		b.writer = newWriter(store, logger)
	}

	logger.Info("book hydrated",
		slog.Int("products", len(snap.products)),
		slog.Int("sales", len(snap.sales)),
		slog.Int("shops", len(snap.shops)),
		slog.Any("versions", snap.versions),
	)
	return b, nil
}

// Subscribe registers fn for every state change. Events are delivered one at
// a time in mutation order, after the lock is released, on whichever mutating
// goroutine is draining the queue. The returned func unsubscribes.
func (b *Book) Subscribe(fn func(Event)) func() {
	return b.subs.add(fn)
}

// Flush waits for the background writer to persist every change made so far.
func (b *Book) Flush(ctx context.Context) error {
	if b.writer == nil {
		return nil
	}
	return b.writer.flush(ctx)
}

// Close flushes pending writes and rejects further mutations.
func (b *Book) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()
	if b.writer == nil {
		return nil
	}
	return b.writer.close(ctx)
}

// ============================================================================
// PRODUCTS
// ============================================================================

// Products lists products in inventory order.
func (b *Book) Products() []inventory.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ledger.List()
}

// Product looks up one product.
func (b *Book) Product(id string) (inventory.Product, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ledger.Get(id)
}

// SelectableProducts lists products the sale form may offer.
func (b *Book) SelectableProducts(excludeNames ...string) []inventory.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ledger.Selectable(excludeNames...)
}

// AddProduct validates and inserts a product.
func (b *Book) AddProduct(ctx context.Context, input inventory.Input) (inventory.Product, error) {
	var p inventory.Product
	err := b.do(ctx, ProductAdded, func() (string, bool, error) {
		var err error
		p, err = b.ledger.Add(input)
		return p.ID, err == nil, err
	}, storage.ProductStore)
	return p, err
}

// UpdateProduct validates patch and merges it into a product.
func (b *Book) UpdateProduct(ctx context.Context, id string, patch inventory.Patch) (inventory.Product, bool, error) {
	if err := shared.ValidateStruct(b.validator, patch); err != nil {
		return inventory.Product{}, false, err
	}
	var (
		p     inventory.Product
		found bool
	)
	err := b.do(ctx, ProductUpdated, func() (string, bool, error) {
		var err error
		p, found, err = b.ledger.Update(id, patch)
		return id, found, err
	}, storage.ProductStore)
	return p, found, err
}

// DeleteProduct removes a product. Sales referencing it are kept.
func (b *Book) DeleteProduct(ctx context.Context, id string) (bool, error) {
	var found bool
	err := b.do(ctx, ProductDeleted, func() (string, bool, error) {
		var err error
		found, err = b.ledger.Delete(id)
		return id, found, err
	}, storage.ProductStore)
	return found, err
}

// ResetProducts clears every product.
func (b *Book) ResetProducts(ctx context.Context) error {
	return b.do(ctx, ProductsReset, func() (string, bool, error) {
		b.ledger.Reset()
		return "", true, nil
	}, storage.ProductStore)
}

// ============================================================================
// SALES
// ============================================================================

// Sales lists sales in recording order.
func (b *Book) Sales() []sales.Sale {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.processor.List()
}

// Sale looks up one sale.
func (b *Book) Sale(id string) (sales.Sale, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.processor.Get(id)
}

// AddSale applies a draft without validating it.
func (b *Book) AddSale(ctx context.Context, draft sales.Draft) (sales.Sale, error) {
	return b.addSale(ctx, draft, false)
}

// SubmitSale validates a draft against live stock and applies it.
func (b *Book) SubmitSale(ctx context.Context, draft sales.Draft) (sales.Sale, error) {
	return b.addSale(ctx, draft, true)
}

func (b *Book) addSale(ctx context.Context, draft sales.Draft, validate bool) (sales.Sale, error) {
	var s sales.Sale
	err := b.do(ctx, SaleAdded, func() (string, bool, error) {
		if validate {
			if err := sales.ValidateDraft(b.validator, b.ledger, draft, nil); err != nil {
				return "", false, err
			}
		}
		var err error
		s, err = b.processor.Add(draft)
		return s.ID, err == nil, err
	}, storage.ProductStore, storage.SalesStore)
	return s, err
}

// UpdateSale rolls back and reapplies a sale without validating the draft.
func (b *Book) UpdateSale(ctx context.Context, id string, draft sales.Draft) (sales.Sale, bool, error) {
	return b.updateSale(ctx, id, draft, false)
}

// ReviseSale validates a draft, counting the original sale's items as
// available stock, then rolls back and reapplies the sale.
func (b *Book) ReviseSale(ctx context.Context, id string, draft sales.Draft) (sales.Sale, bool, error) {
	return b.updateSale(ctx, id, draft, true)
}

func (b *Book) updateSale(ctx context.Context, id string, draft sales.Draft, validate bool) (sales.Sale, bool, error) {
	var (
		s     sales.Sale
		found bool
	)
	err := b.do(ctx, SaleUpdated, func() (string, bool, error) {
		if validate {
			if original, ok := b.processor.Get(id); ok {
				if err := sales.ValidateDraft(b.validator, b.ledger, draft, &original); err != nil {
					return id, false, err
				}
			}
		}
		var err error
		s, found, err = b.processor.Update(id, draft)
		return id, found, err
	}, storage.ProductStore, storage.SalesStore)
	return s, found, err
}

// DeleteSale restores the stock of a sale and removes it.
func (b *Book) DeleteSale(ctx context.Context, id string) (bool, error) {
	var found bool
	err := b.do(ctx, SaleDeleted, func() (string, bool, error) {
		var err error
		found, err = b.processor.Delete(id)
		return id, found, err
	}, storage.ProductStore, storage.SalesStore)
	return found, err
}

// ResetSales drops every sale. Stock is not restored.
func (b *Book) ResetSales(ctx context.Context) error {
	return b.do(ctx, SalesReset, func() (string, bool, error) {
		b.processor.Reset()
		return "", true, nil
	}, storage.SalesStore)
}

// ============================================================================
// PROFIT
// ============================================================================

// TodayProfit is the gross profit of sales created today.
func (b *Book) TodayProfit() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profit.TodayProfit()
}

// TodayNetProfit is TodayProfit minus operationalCost.
func (b *Book) TodayNetProfit(operationalCost float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profit.TodayNetProfit(operationalCost)
}

// Summary returns today's dashboard figures.
func (b *Book) Summary(operationalCost float64) profit.Summary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profit.Summary(operationalCost)
}

// ProfitBetween is the gross profit of sales created in [from, to).
func (b *Book) ProfitBetween(from, to time.Time) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profit.Range(from, to)
}

// ============================================================================
// SHOPS
// ============================================================================

// Shops lists shops in insertion order.
func (b *Book) Shops() []shops.Shop {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shops.List()
}

// ShopAreas lists the distinct shop areas.
func (b *Book) ShopAreas() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shops.Areas()
}

// AddShop validates and records a shop.
func (b *Book) AddShop(ctx context.Context, input shops.Input) (shops.Shop, error) {
	var s shops.Shop
	err := b.do(ctx, ShopAdded, func() (string, bool, error) {
		var err error
		s, err = b.shops.Add(input)
		return s.ID, err == nil, err
	}, storage.ShopStorage)
	return s, err
}

// UpdateShop replaces a shop's editable fields.
func (b *Book) UpdateShop(ctx context.Context, id string, input shops.Input) (shops.Shop, bool, error) {
	var (
		s     shops.Shop
		found bool
	)
	err := b.do(ctx, ShopUpdated, func() (string, bool, error) {
		var err error
		s, found, err = b.shops.Update(id, input)
		return id, found, err
	}, storage.ShopStorage)
	return s, found, err
}

// DeleteShop removes a shop.
func (b *Book) DeleteShop(ctx context.Context, id string) (bool, error) {
	var found bool
	err := b.do(ctx, ShopDeleted, func() (string, bool, error) {
		var err error
		found, err = b.shops.Delete(id)
		return id, found, err
	}, storage.ShopStorage)
	return found, err
}

// ResetShops clears every shop.
func (b *Book) ResetShops(ctx context.Context) error {
	return b.do(ctx, ShopsReset, func() (string, bool, error) {
		b.shops.Reset()
		return "", true, nil
	}, storage.ShopStorage)
}

// ============================================================================
// INTERNALS
// ============================================================================

// do runs fn under the lock. When fn reports a change the given namespaces
// are encoded and persisted before the lock is released, so writes reach the
// store in mutation order, then subscribers are notified. With SyncWrites a
// failed write rolls the namespaces back, so memory never runs ahead of the
// store and a retry applies the change once.
func (b *Book) do(ctx context.Context, op Op, fn func() (id string, changed bool, err error), namespaces ...string) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	var before snapshot
	if b.syncWrite {
		before = b.captureLocked()
	}
	id, changed, err := fn()
	if err == nil && changed {
		if err = b.saveLocked(ctx, namespaces...); err != nil && b.syncWrite {
			b.restoreLocked(before, namespaces...)
		}
	}
	if err == nil && changed {
		b.subs.queue(Event{Op: op, ID: id, Namespaces: namespaces})
	}
	b.mu.Unlock()
	b.subs.deliver()
	return err
}

func (b *Book) saveLocked(ctx context.Context, namespaces ...string) error {
	entries, err := b.encodeLocked(namespaces...)
	if err != nil {
		return err
	}
	if b.syncWrite {
		if err := b.store.SetMany(ctx, entries); err != nil {
			return fmt.Errorf("book: persist: %w", err)
		}
		return nil
	}
	b.writer.enqueue(entries)
	return nil
}

func (b *Book) encodeLocked(namespaces ...string) (map[string][]byte, error) {
	entries := make(map[string][]byte, len(namespaces))
	for _, ns := range namespaces {
		var state any
		switch ns {
		case storage.ProductStore:
			state = productState{Products: nonNil(b.ledger.All())}
		case storage.SalesStore:
			state = salesState{Sales: nonNil(b.processor.List())}
		case storage.ShopStorage:
			state = shopState{Data: nonNil(b.shops.List())}
		default:
			return nil, fmt.Errorf("book: unknown namespace %q", ns)
		}
		data, err := storage.Encode(state)
		if err != nil {
			return nil, fmt.Errorf("book: encode %s: %w", ns, err)
		}
		entries[ns] = data
	}
	return entries, nil
}

func (b *Book) captureLocked() snapshot {
	return snapshot{products: b.ledger.All(), sales: b.processor.List(), shops: b.shops.List()}
}

func (b *Book) restoreLocked(snap snapshot, namespaces ...string) {
	for _, ns := range namespaces {
		switch ns {
		case storage.ProductStore:
			b.ledger.Load(snap.products)
		case storage.SalesStore:
			b.processor.Load(snap.sales)
		case storage.ShopStorage:
			b.shops.Load(snap.shops)
		}
	}
}

func (b *Book) load(snap snapshot) {
	b.ledger.Load(snap.products)
	b.processor.Load(snap.sales)
	b.shops.Load(snap.shops)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
