package profit

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/tripbook/internal/sales"
	"github.com/odyssey-erp/tripbook/internal/units"
)

// ProductProfit is one product's contribution to a day.
type ProductProfit struct {
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	SoldDozens float64 `json:"soldDozens"`
	SoldSacks  float64 `json:"soldSacks"`
	Profit     float64 `json:"profit"`
}

// Summary is the dashboard view of a day.
type Summary struct {
	Date            string          `json:"date"`
	SalesCount      int             `json:"salesCount"`
	TotalAmount     float64         `json:"totalAmount"`
	SoldDozens      float64         `json:"soldDozens"`
	SoldSacks       float64         `json:"soldSacks"`
	GrossProfit     float64         `json:"grossProfit"`
	OperationalCost float64         `json:"operationalCost"`
	NetProfit       float64         `json:"netProfit"`
	LastSale        *sales.Sale     `json:"lastSale,omitempty"`
	ByProduct       []ProductProfit `json:"byProduct"`
}

// Summary builds today's dashboard figures. LastSale is the latest recorded
// sale of any day. ByProduct lists every live product, sold today or not.
func (a *Aggregator) Summary(operationalCost float64) Summary {
	from, to := a.Today()
	all := a.sales.List()

	var (
		count      int
		amount     = decimal.Zero
		soldDozens = decimal.Zero
		soldSacks  = decimal.Zero
		gross      = decimal.Zero
	)
	perProduct := make(map[string]*productAcc)
	for _, sale := range all {
		if !within(sale.CreatedAt, from, to) {
			continue
		}
		count++
		amount = amount.Add(decimal.NewFromFloat(sale.TotalAmount))
		for _, item := range sale.Items {
			qty := decimal.NewFromFloat(item.QtySold)
			profit := a.lineProfit(item)
			gross = gross.Add(profit)

			acc, ok := perProduct[item.ProductID]
			if !ok {
				acc = &productAcc{dozens: decimal.Zero, sacks: decimal.Zero, profit: decimal.Zero}
				perProduct[item.ProductID] = acc
			}
			acc.profit = acc.profit.Add(profit)
			switch item.UnitType {
			case units.Dozens:
				soldDozens = soldDozens.Add(qty)
				acc.dozens = acc.dozens.Add(qty)
			case units.Sack:
				soldSacks = soldSacks.Add(qty)
				acc.sacks = acc.sacks.Add(qty)
			}
		}
	}

	products := a.products.All()
	byProduct := make([]ProductProfit, 0, len(products))
	for _, p := range products {
		row := ProductProfit{ProductID: p.ID, Name: p.Name}
		if acc, ok := perProduct[p.ID]; ok {
			row.SoldDozens = acc.dozens.InexactFloat64()
			row.SoldSacks = acc.sacks.InexactFloat64()
			row.Profit = acc.profit.InexactFloat64()
		}
		byProduct = append(byProduct, row)
	}

	s := Summary{
		Date:            from.Format(time.DateOnly),
		SalesCount:      count,
		TotalAmount:     amount.InexactFloat64(),
		SoldDozens:      soldDozens.InexactFloat64(),
		SoldSacks:       soldSacks.InexactFloat64(),
		GrossProfit:     gross.InexactFloat64(),
		OperationalCost: operationalCost,
		NetProfit:       gross.Sub(decimal.NewFromFloat(operationalCost)).InexactFloat64(),
		ByProduct:       byProduct,
	}
	if len(all) > 0 {
		last := all[len(all)-1]
		s.LastSale = &last
	}
	return s
}

type productAcc struct {
	dozens decimal.Decimal
	sacks  decimal.Decimal
	profit decimal.Decimal
}
