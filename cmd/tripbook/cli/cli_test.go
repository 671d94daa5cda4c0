package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/tripbook/internal/book"
	"github.com/odyssey-erp/tripbook/internal/inventory"
	"github.com/odyssey-erp/tripbook/internal/profit"
	"github.com/odyssey-erp/tripbook/internal/sales"
	"github.com/odyssey-erp/tripbook/internal/storage"
	"github.com/odyssey-erp/tripbook/internal/units"
)

func openBook(t *testing.T) *book.Book {
	t.Helper()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	b, err := book.Open(context.Background(), storage.NewMemory(), book.Options{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Location:   time.UTC,
		SyncWrites: true,
		Clock:      func() time.Time { return now },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(context.Background()) })
	return b
}

func seed(t *testing.T, b *book.Book) {
	t.Helper()
	ctx := context.Background()
	qty := 30.0
	p, err := b.AddProduct(ctx, inventory.Input{Name: "Kerupuk", FillPerSack: 10, QtyDozens: &qty, BasePrice: 1000})
	require.NoError(t, err)
	_, err = b.SubmitSale(ctx, sales.Draft{Store: "Toko ABC", Area: "Sragen", Items: []sales.LineItem{
		{ProductID: p.ID, QtySold: 5, UnitType: units.Dozens, AmountSold: 2000},
	}})
	require.NoError(t, err)
}

func newCLI(t *testing.T, b *book.Book) *BookCLI {
	t.Helper()
	c, err := NewBookCLI(b)
	require.NoError(t, err)
	return c
}

func TestNewBookCLIRequiresBook(t *testing.T) {
	_, err := NewBookCLI(nil)
	require.Error(t, err)
}

func TestSummaryCommandJSON(t *testing.T) {
	b := openBook(t)
	seed(t, b)

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	exitCode := newCLI(t, b).SummaryCommand(context.Background(), SummaryOptions{
		OperationalCost: 1000,
		JSONOutput:      true,
		Stdout:          stdout,
		Stderr:          stderr,
	})
	require.Zero(t, exitCode)
	require.Empty(t, stderr.String())

	var summary profit.Summary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.Equal(t, "2024-05-01", summary.Date)
	require.Equal(t, 1, summary.SalesCount)
	require.Equal(t, 5000.0, summary.GrossProfit)
	require.Equal(t, 4000.0, summary.NetProfit)
}

func TestSummaryCommandHuman(t *testing.T) {
	b := openBook(t)
	seed(t, b)

	stdout := new(bytes.Buffer)
	exitCode := newCLI(t, b).SummaryCommand(context.Background(), SummaryOptions{Stdout: stdout, Stderr: new(bytes.Buffer)})
	require.Zero(t, exitCode)
	out := stdout.String()
	require.Contains(t, out, "Toko ABC (Sragen)")
	require.Contains(t, out, "Kerupuk")
	require.Contains(t, out, Rupiah(5000))
}

func TestSummaryCommandRejectsNegativeCost(t *testing.T) {
	stderr := new(bytes.Buffer)
	exitCode := newCLI(t, openBook(t)).SummaryCommand(context.Background(), SummaryOptions{
		OperationalCost: -1,
		Stdout:          new(bytes.Buffer),
		Stderr:          stderr,
	})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "-cost")
}

func TestRupiah(t *testing.T) {
	require.Equal(t, "Rp12.500", Rupiah(12500))
	require.Equal(t, "-Rp2.000", Rupiah(-2000))
	require.Equal(t, "Rp0", Rupiah(0.4))
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openBook(t)
	seed(t, src)
	path := filepath.Join(t.TempDir(), "backup.msgpack")

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	require.Zero(t, newCLI(t, src).ExportCommand(ctx, ExportOptions{Output: path, Stdout: stdout, Stderr: stderr}))
	require.Contains(t, stdout.String(), path)

	dst := openBook(t)
	require.Zero(t, newCLI(t, dst).ImportCommand(ctx, ImportOptions{Input: path, Stdout: new(bytes.Buffer), Stderr: stderr}))
	require.Empty(t, stderr.String())
	require.Equal(t, src.Products(), dst.Products())
	require.Equal(t, src.Sales(), dst.Sales())
}

func TestExportImportRequirePaths(t *testing.T) {
	ctx := context.Background()
	c := newCLI(t, openBook(t))

	require.Equal(t, 1, c.ExportCommand(ctx, ExportOptions{Stdout: new(bytes.Buffer), Stderr: new(bytes.Buffer)}))
	require.Equal(t, 1, c.ImportCommand(ctx, ImportOptions{Stdout: new(bytes.Buffer), Stderr: new(bytes.Buffer)}))

	stderr := new(bytes.Buffer)
	missing := filepath.Join(t.TempDir(), "missing.msgpack")
	require.Equal(t, 1, c.ImportCommand(ctx, ImportOptions{Input: missing, Stdout: new(bytes.Buffer), Stderr: stderr}))
	require.Contains(t, stderr.String(), "import:")
}

func TestExportToStdout(t *testing.T) {
	b := openBook(t)
	seed(t, b)

	stdout := new(bytes.Buffer)
	require.Zero(t, newCLI(t, b).ExportCommand(context.Background(), ExportOptions{Output: "-", Stdout: stdout, Stderr: new(bytes.Buffer)}))
	require.NotEmpty(t, stdout.Bytes())
}

func TestResetCommand(t *testing.T) {
	ctx := context.Background()
	b := openBook(t)
	seed(t, b)
	c := newCLI(t, b)

	stderr := new(bytes.Buffer)
	require.Equal(t, 2, c.ResetCommand(ctx, ResetOptions{Confirm: "yes", Stdout: new(bytes.Buffer), Stderr: stderr}))
	require.Contains(t, stderr.String(), "-confirm")
	require.Len(t, b.Sales(), 1)

	stdout := new(bytes.Buffer)
	require.Zero(t, c.ResetCommand(ctx, ResetOptions{Confirm: "sales", Stdout: stdout, Stderr: new(bytes.Buffer)}))
	require.Empty(t, b.Sales())
	require.Len(t, b.Products(), 1)

	require.Zero(t, c.ResetCommand(ctx, ResetOptions{Confirm: "ALL", Stdout: stdout, Stderr: new(bytes.Buffer)}))
	require.Empty(t, b.Products())
	require.Contains(t, stdout.String(), "reset sales, products, shops")
}
