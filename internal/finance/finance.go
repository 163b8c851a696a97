// Package finance computes revenue summaries from an order snapshot and a
// configured price table. Totals are exact integer cents; formatting as
// currency happens in the presentation layer.
package finance

import (
	"time"

	"padaria/internal/core"
)

// PriceTable maps each sold variant to its unit price. It is configuration,
// not derived data; variants absent from the table price at zero.
type PriceTable map[core.Variant]core.Money

// DefaultPrices returns the bakery's standing price list in cents.
func DefaultPrices() PriceTable {
	return PriceTable{
		core.Hamburger:       {Cents: 430},
		core.MediumHamburger: {Cents: 380},
		core.Bisnaga:         {Cents: 480},
		core.Baguette:        {Cents: 500},
	}
}

// Line is one variant's share of a summary.
type Line struct {
	Variant   core.Variant `json:"variant"`
	Quantity  int          `json:"quantity"`
	UnitPrice core.Money   `json:"unitPrice"`
	Total     core.Money   `json:"total"`
}

// Summary is the revenue for one period: a line per priced variant, oldest
// display order preserved, plus the exact grand total.
type Summary struct {
	Lines      []Line     `json:"lines"`
	GrandTotal core.Money `json:"grandTotal"`
}

// Daily sums revenue for orders dated exactly today (string equality on the
// YYYY-MM-DD form, so malformed dates never count).
func Daily(orders []core.Order, prices PriceTable, now time.Time, variants []core.Variant) Summary {
	today := core.FormatDay(core.Today(now))
	return summarize(orders, prices, variants, func(o core.Order) bool {
		return o.RequestDate == today
	})
}

// Monthly sums revenue for orders whose parsed year and month equal the
// current calendar month. Unparsable dates are excluded.
func Monthly(orders []core.Order, prices PriceTable, now time.Time, variants []core.Variant) Summary {
	today := core.Today(now)
	return summarize(orders, prices, variants, func(o core.Order) bool {
		day, ok := core.ParseDay(o.RequestDate)
		return ok && day.Year() == today.Year() && day.Month() == today.Month()
	})
}

func summarize(orders []core.Order, prices PriceTable, variants []core.Variant, match func(core.Order) bool) Summary {
	sums := make(core.Quantities, len(variants))
	for _, o := range orders {
		if !match(o) {
			continue
		}
		for _, v := range variants {
			if qty := o.Quantities.Get(v); qty > 0 {
				sums[v] += qty
			}
		}
	}

	s := Summary{Lines: make([]Line, 0, len(variants))}
	for _, v := range variants {
		line := Line{
			Variant:   v,
			Quantity:  sums.Get(v),
			UnitPrice: prices[v],
		}
		line.Total = line.UnitPrice.Mul(line.Quantity)
		s.Lines = append(s.Lines, line)
		s.GrandTotal = s.GrandTotal.Add(line.Total)
	}
	return s
}
