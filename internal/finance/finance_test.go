package finance

import (
	"testing"
	"time"

	"padaria/internal/core"
)

var prices = PriceTable{
	core.Hamburger:       {Cents: 430},
	core.MediumHamburger: {Cents: 380},
	core.Bisnaga:         {Cents: 480},
	core.Baguette:        {Cents: 500},
}

var ref = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

func TestDailySummary(t *testing.T) {
	orders := []core.Order{
		{ClientName: "Ana", RequestDate: "2024-01-10", Quantities: core.Quantities{core.Hamburger: 10}},
		{ClientName: "Beto", RequestDate: "2024-01-10", Quantities: core.Quantities{core.Bisnaga: 5}},
		{ClientName: "Caio", RequestDate: "2024-01-09", Quantities: core.Quantities{core.Hamburger: 99}},
		{ClientName: "Bad", RequestDate: "garbage", Quantities: core.Quantities{core.Hamburger: 99}},
	}
	s := Daily(orders, prices, ref, core.Variants())

	byVariant := map[core.Variant]Line{}
	for _, l := range s.Lines {
		byVariant[l.Variant] = l
	}
	if byVariant[core.Hamburger].Quantity != 10 {
		t.Fatalf("hamburger qty=%d, want 10", byVariant[core.Hamburger].Quantity)
	}
	if byVariant[core.Bisnaga].Quantity != 5 {
		t.Fatalf("bisnaga qty=%d, want 5", byVariant[core.Bisnaga].Quantity)
	}
	// 10×4.30 + 5×4.80 = 67.00
	if s.GrandTotal.Cents != 6700 {
		t.Fatalf("grand total=%d cents, want 6700", s.GrandTotal.Cents)
	}
}

func TestMonthlySummaryFiltersByParsedMonth(t *testing.T) {
	orders := []core.Order{
		{ClientName: "Ana", RequestDate: "2024-01-02", Quantities: core.Quantities{core.Baguette: 3}},
		{ClientName: "Ana", RequestDate: "2024-01-31", Quantities: core.Quantities{core.Baguette: 1}},
		{ClientName: "Ana", RequestDate: "2023-12-31", Quantities: core.Quantities{core.Baguette: 9}},
		{ClientName: "Ana", RequestDate: "2024-02-01", Quantities: core.Quantities{core.Baguette: 9}},
		{ClientName: "Ana", RequestDate: "2024-1-2", Quantities: core.Quantities{core.Baguette: 9}},
	}
	s := Monthly(orders, prices, ref, core.Variants())
	for _, l := range s.Lines {
		if l.Variant == core.Baguette {
			if l.Quantity != 4 {
				t.Fatalf("baguette qty=%d, want 4", l.Quantity)
			}
			if l.Total.Cents != 2000 {
				t.Fatalf("baguette total=%d, want 2000", l.Total.Cents)
			}
		}
	}
	if s.GrandTotal.Cents != 2000 {
		t.Fatalf("grand total=%d, want 2000", s.GrandTotal.Cents)
	}
}

func TestGrandTotalEqualsSumOfLines(t *testing.T) {
	orders := []core.Order{
		{ClientName: "Ana", RequestDate: "2024-01-10", Quantities: core.Quantities{
			core.Hamburger: 3, core.MediumHamburger: 7, core.Bisnaga: 11, core.Baguette: 13,
		}},
		{ClientName: "Beto", RequestDate: "2024-01-15", Quantities: core.Quantities{
			core.Hamburger: 1, core.Baguette: 2,
		}},
	}
	s := Monthly(orders, prices, ref, core.Variants())
	var sum int64
	for _, l := range s.Lines {
		if l.Total.Cents != l.UnitPrice.Cents*int64(l.Quantity) {
			t.Fatalf("line %s: total=%d, want %d", l.Variant, l.Total.Cents, l.UnitPrice.Cents*int64(l.Quantity))
		}
		sum += l.Total.Cents
	}
	if s.GrandTotal.Cents != sum {
		t.Fatalf("grand total=%d, want %d", s.GrandTotal.Cents, sum)
	}
}

func TestEmptySnapshotYieldsZeroLines(t *testing.T) {
	s := Daily(nil, prices, ref, core.Variants())
	if len(s.Lines) != len(core.Variants()) {
		t.Fatalf("lines=%d, want %d", len(s.Lines), len(core.Variants()))
	}
	for _, l := range s.Lines {
		if l.Quantity != 0 || l.Total.Cents != 0 {
			t.Fatalf("line %s not zero: %+v", l.Variant, l)
		}
	}
	if s.GrandTotal.Cents != 0 {
		t.Fatalf("grand total=%d, want 0", s.GrandTotal.Cents)
	}
}
