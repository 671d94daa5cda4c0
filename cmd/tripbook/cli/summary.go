package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/odyssey-erp/tripbook/internal/profit"
)

// SummaryOptions defines available flags for the summary command.
type SummaryOptions struct {
	OperationalCost float64
	JSONOutput      bool
	Stdout          io.Writer
	Stderr          io.Writer
}

// SummaryCommand prints today's figures.
func (c *BookCLI) SummaryCommand(_ context.Context, opts SummaryOptions) int {
	stdout, stderr := streams(opts.Stdout, opts.Stderr)
	if opts.OperationalCost < 0 {
		_, _ = fmt.Fprintln(stderr, "summary: -cost must not be negative")
		return 1
	}
	summary := c.book.Summary(opts.OperationalCost)
	if opts.JSONOutput {
		if err := json.NewEncoder(stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(stderr, "summary: encode json: %v\n", err)
			return 1
		}
		return 0
	}
	renderSummaryHuman(stdout, summary)
	return 0
}

var printer = message.NewPrinter(language.Indonesian)

// Rupiah formats an amount rounded to whole rupiah, e.g. Rp12.500.
func Rupiah(amount float64) string {
	whole := int64(math.Round(amount))
	if whole < 0 {
		return printer.Sprintf("-Rp%d", -whole)
	}
	return printer.Sprintf("Rp%d", whole)
}

func renderSummaryHuman(w io.Writer, s profit.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Date\t%s\n", s.Date)
	_, _ = fmt.Fprintf(tw, "Sales\t%d\n", s.SalesCount)
	_, _ = fmt.Fprintf(tw, "Revenue\t%s\n", Rupiah(s.TotalAmount))
	_, _ = fmt.Fprintf(tw, "Sold\t%g dozens, %g sacks\n", s.SoldDozens, s.SoldSacks)
	_, _ = fmt.Fprintf(tw, "Gross profit\t%s\n", Rupiah(s.GrossProfit))
	_, _ = fmt.Fprintf(tw, "Operational cost\t%s\n", Rupiah(s.OperationalCost))
	_, _ = fmt.Fprintf(tw, "Net profit\t%s\n", Rupiah(s.NetProfit))
	if s.LastSale != nil {
		_, _ = fmt.Fprintf(tw, "Last sale\t%s (%s) %s\n", s.LastSale.Store, s.LastSale.Area, Rupiah(s.LastSale.TotalAmount))
	}
	_ = tw.Flush()
	if len(s.ByProduct) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, "\nBy product:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range s.ByProduct {
		_, _ = fmt.Fprintf(tw, "  %s\t%g dozens\t%g sacks\t%s\n", p.Name, p.SoldDozens, p.SoldSacks, Rupiah(p.Profit))
	}
	_ = tw.Flush()
}
