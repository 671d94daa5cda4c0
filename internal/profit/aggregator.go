// Package profit derives daily revenue and gross profit from recorded sales.
//
// Nothing is cached: every call walks all sales. Cost basis (basePrice and
// fillPerSack) comes from the live product, falling back to the line item
// snapshot once the product has been deleted.
package profit

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/tripbook/internal/inventory"
	"github.com/odyssey-erp/tripbook/internal/sales"
	"github.com/odyssey-erp/tripbook/internal/units"
)

// Products is the product read surface the aggregator needs.
type Products interface {
	Get(id string) (inventory.Product, bool)
	All() []inventory.Product
}

// Sales is the sale read surface the aggregator needs.
type Sales interface {
	List() []sales.Sale
}

// Config groups optional settings.
type Config struct {
	// Location decides which calendar day "today" is. Defaults to time.Local.
	Location *time.Location
	Clock    func() time.Time
}

// Aggregator computes profit figures on demand.
type Aggregator struct {
	products Products
	sales    Sales
	loc      *time.Location
	now      func() time.Time
}

// NewAggregator builds an Aggregator.
func NewAggregator(products Products, sales Sales, cfg Config) *Aggregator {
	a := &Aggregator{products: products, sales: sales, loc: cfg.Location, now: cfg.Clock}
	if a.loc == nil {
		a.loc = time.Local
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Today returns the half-open window covering the current local calendar day.
func (a *Aggregator) Today() (from, to time.Time) {
	now := a.now().In(a.loc)
	from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.loc)
	to = time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, a.loc)
	return from, to
}

// TodayProfit sums gross profit over every line item sold today.
func (a *Aggregator) TodayProfit() float64 {
	from, to := a.Today()
	return a.Range(from, to)
}

// TodayNetProfit subtracts operationalCost from today's gross profit.
func (a *Aggregator) TodayNetProfit(operationalCost float64) float64 {
	return decimal.NewFromFloat(a.TodayProfit()).Sub(decimal.NewFromFloat(operationalCost)).InexactFloat64()
}

// Range sums gross profit over sales created in [from, to).
func (a *Aggregator) Range(from, to time.Time) float64 {
	total := decimal.Zero
	for _, sale := range a.sales.List() {
		if !within(sale.CreatedAt, from, to) {
			continue
		}
		for _, item := range sale.Items {
			total = total.Add(a.lineProfit(item))
		}
	}
	return total.InexactFloat64()
}

func (a *Aggregator) lineProfit(item sales.LineItem) decimal.Decimal {
	base, fill := item.BasePrice, item.FillPerSack
	if p, ok := a.products.Get(item.ProductID); ok {
		base, fill = p.BasePrice, p.FillPerSack
	}
	return LineProfit(item.UnitType, item.QtySold, item.AmountSold, base, fill)
}

// LineProfit computes the margin of one line. Dozens lines earn
// (amountSold - basePrice) * qtySold; sack lines earn
// (amountSold*fill - basePrice*fill) * qtySold. Unknown units earn nothing.
func LineProfit(unit units.Type, qtySold, amountSold, basePrice, fillPerSack float64) decimal.Decimal {
	qty := decimal.NewFromFloat(qtySold)
	amount := decimal.NewFromFloat(amountSold)
	base := decimal.NewFromFloat(basePrice)
	switch unit {
	case units.Dozens:
		return amount.Sub(base).Mul(qty)
	case units.Sack:
		fill := decimal.NewFromFloat(fillPerSack)
		return amount.Mul(fill).Sub(base.Mul(fill)).Mul(qty)
	default:
		return decimal.Zero
	}
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
