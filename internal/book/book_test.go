package book

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/tripbook/internal/inventory"
	"github.com/odyssey-erp/tripbook/internal/sales"
	"github.com/odyssey-erp/tripbook/internal/shared"
	"github.com/odyssey-erp/tripbook/internal/shops"
	"github.com/odyssey-erp/tripbook/internal/storage"
	"github.com/odyssey-erp/tripbook/internal/units"
)

var wib = time.FixedZone("WIB", 7*3600)

type failingStore struct {
	*storage.Memory
	fail atomic.Bool
}

func (f *failingStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	if f.fail.Load() {
		return errors.New("disk full")
	}
	return f.Memory.SetMany(ctx, entries)
}

func testOptions() Options {
	var seq atomic.Int64
	return Options{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Location: wib,
		Clock:    func() time.Time { return time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC) },
		NewID:    func() string { return fmt.Sprintf("id-%d", seq.Add(1)) },
	}
}

func openBook(t *testing.T, store storage.Store, opts Options) *Book {
	t.Helper()
	b, err := Open(context.Background(), store, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(context.Background()) })
	return b
}

func qty(v float64) *float64 { return &v }

func seedKopi(t *testing.T, b *Book) inventory.Product {
	t.Helper()
	p, err := b.AddProduct(context.Background(), inventory.Input{
		Name: "Kopi", FillPerSack: 10, QtyDozens: qty(30), BasePrice: 1500, TargetPricePerDozens: 2000,
	})
	require.NoError(t, err)
	return p
}

func TestBookPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	b := openBook(t, store, testOptions())

	p := seedKopi(t, b)
	sale, err := b.SubmitSale(ctx, sales.Draft{Store: "Toko ABC", Area: "Sragen", Items: []sales.LineItem{
		{ProductID: p.ID, QtySold: 5, UnitType: units.Dozens, AmountSold: 2000},
	}})
	require.NoError(t, err)
	_, err = b.AddShop(ctx, shops.Input{Name: "Toko ABC", Area: "Sragen"})
	require.NoError(t, err)
	require.NoError(t, b.Flush(ctx))

	reopened := openBook(t, store, testOptions())
	got, ok := reopened.Product(p.ID)
	require.True(t, ok)
	require.InDelta(t, 25, got.QtyDozens, 0.0001)
	require.InDelta(t, 2.5, got.QtySack, 0.0001)
	require.True(t, got.CreatedAt.Equal(p.CreatedAt))

	stored, ok := reopened.Sale(sale.ID)
	require.True(t, ok)
	require.InDelta(t, 10000, stored.TotalAmount, 0.0001)
	require.Len(t, reopened.Shops(), 1)
	require.InDelta(t, 2500, reopened.TodayProfit(), 0.0001)
}

func TestBookHydratesLegacyEnvelopes(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Set(ctx, storage.ProductStore, []byte(`{"state":{"products":[
		{"id":"1717000000000","name":"Kopi","qty":24,"price":4000,"createdAt":"2024-05-01T01:00:00.000Z"},
		{"id":"1717000000001","name":"Teh","qtyDozens":0,"qtySack":0,"qty":12,"basePricePerDozens":5000,"basePricePerSack":60000,"createdAt":"2024-05-01T01:00:00.000Z","updatedAt":"2024-05-01T02:00:00.000Z"}
	]},"version":0}`)))
	require.NoError(t, store.Set(ctx, storage.SalesStore, []byte(`{"state":{"sales":[
		{"id":"1717000000100","store":"Toko","area":"Solo","items":[{"id":"1717000000000","name":"Kopi","qtySold":2,"unitType":"dozens","amountSold":5000,"subtotal":10000}],"totalAmount":10000,"createdAt":"2024-05-01T03:00:00.000Z","updatedAt":"2024-05-01T03:00:00.000Z"},
		{"id":"1717000000101","store":"Warung","area":"Solo","items":[{"id":"1717000000001","name":"Teh","qtySold":1,"amountSold":6000}],"createdAt":"2024-05-01T04:00:00.000Z"}
	]},"version":0}`)))
	require.NoError(t, store.Set(ctx, storage.ShopStorage, []byte(`{"state":{"data":[{"id":"s1","name":"Toko","area":"Solo","createdAt":"2024-05-01T01:00:00.000Z","updatedAt":"2024-05-01T01:00:00.000Z"}]},"version":0}`)))

	b := openBook(t, store, testOptions())

	kopi, ok := b.Product("1717000000000")
	require.True(t, ok)
	require.InDelta(t, 24, kopi.QtyDozens, 0.0001)
	require.InDelta(t, 4000, kopi.BasePrice, 0.0001)
	require.Equal(t, kopi.CreatedAt, kopi.UpdatedAt)

	teh, ok := b.Product("1717000000001")
	require.True(t, ok)
	require.InDelta(t, 12, teh.FillPerSack, 0.0001)
	require.InDelta(t, 5000, teh.BasePrice, 0.0001)
	require.InDelta(t, 1, teh.QtySack, 0.0001)

	require.Len(t, b.Sales(), 2)
	require.Equal(t, []string{"Solo"}, b.ShopAreas())

	legacy, ok := b.Sale("1717000000101")
	require.True(t, ok)
	require.Equal(t, units.Dozens, legacy.Items[0].UnitType)
	require.InDelta(t, 6000, legacy.TotalAmount, 0.0001)
	require.InDelta(t, 3000, b.TodayProfit(), 0.0001)

	found, err := b.DeleteSale(context.Background(), legacy.ID)
	require.NoError(t, err)
	require.True(t, found)
	teh, _ = b.Product("1717000000001")
	require.InDelta(t, 13, teh.QtyDozens, 0.0001)
}

func TestBookRejectsCorruptNamespace(t *testing.T) {
	store := storage.NewMemory()
	require.NoError(t, store.Set(context.Background(), storage.SalesStore, []byte(`{"state":`)))

	_, err := Open(context.Background(), store, testOptions())
	require.Error(t, err)
}

func TestSubmitSaleValidatesBeforeApplying(t *testing.T) {
	ctx := context.Background()
	b := openBook(t, storage.NewMemory(), testOptions())
	p := seedKopi(t, b)

	var events int
	b.Subscribe(func(Event) { events++ })

	_, err := b.SubmitSale(ctx, sales.Draft{Store: "Toko", Items: []sales.LineItem{
		{ProductID: p.ID, QtySold: 31, UnitType: units.Dozens, AmountSold: 2000},
	}})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, shared.FieldErrors(err), "items[0].qtySold")
	require.Empty(t, b.Sales())
	require.Zero(t, events)

	got, _ := b.Product(p.ID)
	require.InDelta(t, 30, got.QtyDozens, 0.0001)
}

func TestReviseSaleCountsOriginalStock(t *testing.T) {
	ctx := context.Background()
	b := openBook(t, storage.NewMemory(), testOptions())
	p := seedKopi(t, b)

	sale, err := b.SubmitSale(ctx, sales.Draft{Store: "Toko", Items: []sales.LineItem{
		{ProductID: p.ID, QtySold: 25, UnitType: units.Dozens, AmountSold: 2000},
	}})
	require.NoError(t, err)

	revised, ok, err := b.ReviseSale(ctx, sale.ID, sales.Draft{Store: "Toko", Items: []sales.LineItem{
		{ProductID: p.ID, QtySold: 30, UnitType: units.Dozens, AmountSold: 2000},
	}})
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 60000, revised.TotalAmount, 0.0001)

	got, _ := b.Product(p.ID)
	require.Zero(t, got.QtyDozens)

	_, ok, err = b.ReviseSale(ctx, "missing", sales.Draft{Store: "Toko", Items: revised.Items})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSubscribersSeeEachChange(t *testing.T) {
	ctx := context.Background()
	b := openBook(t, storage.NewMemory(), testOptions())

	var got []Event
	unsubscribe := b.Subscribe(func(ev Event) { got = append(got, ev) })

	p := seedKopi(t, b)
	_, err := b.AddSale(ctx, sales.Draft{Store: "Toko", Items: []sales.LineItem{
		{ProductID: p.ID, QtySold: 1, UnitType: units.Dozens, AmountSold: 2000},
	}})
	require.NoError(t, err)

	_, found, err := b.UpdateProduct(ctx, "missing", inventory.Patch{QtyDozens: qty(1)})
	require.NoError(t, err)
	require.False(t, found)

	unsubscribe()
	require.NoError(t, b.ResetSales(ctx))

	require.Len(t, got, 2)
	require.Equal(t, ProductAdded, got[0].Op)
	require.Equal(t, p.ID, got[0].ID)
	require.Equal(t, SaleAdded, got[1].Op)
	require.Equal(t, []string{storage.ProductStore, storage.SalesStore}, got[1].Namespaces)
}

func TestUpdateProductValidatesPatch(t *testing.T) {
	b := openBook(t, storage.NewMemory(), testOptions())
	p := seedKopi(t, b)

	_, _, err := b.UpdateProduct(context.Background(), p.ID, inventory.Patch{FillPerSack: qty(0)})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestConcurrentSalesKeepStockConsistent(t *testing.T) {
	ctx := context.Background()
	b := openBook(t, storage.NewMemory(), testOptions())
	p := seedKopi(t, b)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.SubmitSale(ctx, sales.Draft{Store: "Toko", Items: []sales.LineItem{
				{ProductID: p.ID, QtySold: 1, UnitType: units.Dozens, AmountSold: 2000},
			}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, _ := b.Product(p.ID)
	require.InDelta(t, 20, got.QtyDozens, 0.0001)
	require.InDelta(t, 2, got.QtySack, 0.0001)
	require.Len(t, b.Sales(), 10)
	require.NoError(t, b.Flush(ctx))
}

func TestBackgroundWriteFailureSurfacesOnFlush(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Memory: storage.NewMemory()}
	b := openBook(t, store, testOptions())

	store.fail.Store(true)
	seedKopi(t, b)
	require.Error(t, b.Flush(ctx))

	store.fail.Store(false)
	_, err := b.AddShop(ctx, shops.Input{Name: "Toko", Area: "Solo"})
	require.NoError(t, err)
	require.NoError(t, b.Flush(ctx))
}

func TestSyncWritesRollBackOnStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Memory: storage.NewMemory()}
	opts := testOptions()
	opts.SyncWrites = true
	b := openBook(t, store, opts)
	p := seedKopi(t, b)

	var events atomic.Int32
	b.Subscribe(func(Event) { events.Add(1) })

	store.fail.Store(true)
	_, err := b.AddShop(ctx, shops.Input{Name: "Toko", Area: "Solo"})
	require.Error(t, err)
	require.Empty(t, b.Shops())

	draft := sales.Draft{Store: "Toko", Items: []sales.LineItem{
		{ProductID: p.ID, QtySold: 5, UnitType: units.Dozens, AmountSold: 2000},
	}}
	_, err = b.SubmitSale(ctx, draft)
	require.Error(t, err)
	require.Empty(t, b.Sales())
	got, _ := b.Product(p.ID)
	require.InDelta(t, 30, got.QtyDozens, 0.0001)
	require.Zero(t, events.Load())

	store.fail.Store(false)
	_, err = b.SubmitSale(ctx, draft)
	require.NoError(t, err)
	got, _ = b.Product(p.ID)
	require.InDelta(t, 25, got.QtyDozens, 0.0001)
	require.Len(t, b.Sales(), 1)
	require.EqualValues(t, 1, events.Load())
}

func TestSubscribersSeeMutationOrder(t *testing.T) {
	ctx := context.Background()
	b := openBook(t, storage.NewMemory(), testOptions())

	var (
		mu  sync.Mutex
		ids []string
	)
	b.Subscribe(func(ev Event) {
		mu.Lock()
		ids = append(ids, ev.ID)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 40; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.AddShop(ctx, shops.Input{ID: fmt.Sprintf("shop-%02d", i), Name: "Toko", Area: "Solo"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var want []string
	for _, s := range b.Shops() {
		want = append(want, s.ID)
	}
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, want, ids)
}

func TestSubscriberMayMutateFromCallback(t *testing.T) {
	ctx := context.Background()
	b := openBook(t, storage.NewMemory(), testOptions())

	var ops []Op
	b.Subscribe(func(ev Event) {
		ops = append(ops, ev.Op)
		if ev.Op == ShopAdded {
			_, _ = b.AddShop(ctx, shops.Input{ID: "follow-up", Name: "Warung", Area: "Sragen"})
		}
	})

	_, err := b.AddShop(ctx, shops.Input{ID: "first", Name: "Toko", Area: "Solo"})
	require.NoError(t, err)
	require.Len(t, b.Shops(), 2)
	require.Equal(t, []Op{ShopAdded, ShopAdded}, ops)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openBook(t, storage.NewMemory(), testOptions())
	p := seedKopi(t, src)
	_, err := src.SubmitSale(ctx, sales.Draft{Store: "Toko", Items: []sales.LineItem{
		{ProductID: p.ID, QtySold: 2, UnitType: units.Dozens, AmountSold: 2000},
	}})
	require.NoError(t, err)

	archive, err := src.Export(ctx)
	require.NoError(t, err)

	dstStore := storage.NewMemory()
	dst := openBook(t, dstStore, testOptions())
	_, err = dst.AddShop(ctx, shops.Input{Name: "Old", Area: "Old"})
	require.NoError(t, err)

	require.NoError(t, dst.Import(ctx, archive))
	require.NoError(t, dst.Flush(ctx))
	require.Equal(t, src.Products(), dst.Products())
	require.Equal(t, src.Sales(), dst.Sales())
	require.Empty(t, dst.Shops())

	_, err = dstStore.Get(ctx, storage.SalesStore)
	require.NoError(t, err)

	require.Error(t, dst.Import(ctx, []byte("garbage")))
}

func TestClosedBookRejectsMutations(t *testing.T) {
	b := openBook(t, storage.NewMemory(), testOptions())
	require.NoError(t, b.Close(context.Background()))

	_, err := b.AddShop(context.Background(), shops.Input{Name: "Toko", Area: "Solo"})
	require.ErrorIs(t, err, ErrClosed)
}
