// Package report turns an order snapshot into the daily, weekly and monthly
// bucket series shown on the sales dashboard. All functions are pure: they
// take the snapshot plus a reference date and keep no state, so re-running
// them on every change is safe.
package report

import (
	"fmt"
	"time"

	"padaria/internal/core"
)

// Bucket is one labelled time interval with the summed quantity of every
// tracked variant. Every bucket lists every variant, zero included.
type Bucket struct {
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Totals core.Quantities `json:"totals"`
}

// Labels follow the product's pt-BR locale, matching the dashboard charts.
var (
	weekdayAbbrev = [7]string{"dom", "seg", "ter", "qua", "qui", "sex", "sáb"}
	monthAbbrev   = [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}
)

// Daily returns exactly 7 buckets, one per calendar day from today-6 to
// today, oldest first. Orders are matched by exact string equality on the
// YYYY-MM-DD form, so malformed dates fall into no bucket.
func Daily(orders []core.Order, now time.Time, variants []core.Variant) []Bucket {
	today := core.Today(now)
	buckets := make([]Bucket, 0, 7)
	index := make(map[string]int, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := core.FormatDay(day)
		index[key] = len(buckets)
		buckets = append(buckets, Bucket{
			Key:    key,
			Label:  fmt.Sprintf("%s %02d", weekdayAbbrev[day.Weekday()], day.Day()),
			Totals: zeroTotals(variants),
		})
	}
	for _, o := range orders {
		if at, ok := index[o.RequestDate]; ok {
			addTotals(buckets[at].Totals, o.Quantities, variants)
		}
	}
	return buckets
}

// Weekly returns exactly 4 buckets, oldest first. Each is an independent
// trailing 7-day window ending today-21, today-14, today-7 and today.
// Windows are deliberately not calendar weeks; the boundaries are pinned by
// tests. Dates are parsed before comparison and unparsable ones excluded.
func Weekly(orders []core.Order, now time.Time, variants []core.Variant) []Bucket {
	today := core.Today(now)
	buckets := make([]Bucket, 0, 4)
	for i := 3; i >= 0; i-- {
		end := today.AddDate(0, 0, -7*i)
		start := end.AddDate(0, 0, -6)
		b := Bucket{
			Key:    core.FormatDay(start) + "/" + core.FormatDay(end),
			Label:  weekLabel(start, end),
			Totals: zeroTotals(variants),
		}
		for _, o := range orders {
			day, ok := core.ParseDay(o.RequestDate)
			if !ok {
				continue
			}
			if day.Before(start) || day.After(end) {
				continue
			}
			addTotals(b.Totals, o.Quantities, variants)
		}
		buckets = append(buckets, b)
	}
	return buckets
}

// Monthly returns exactly 12 buckets, one per calendar month ending with the
// current month, keyed YYYY-MM and labelled "mon/YY".
func Monthly(orders []core.Order, now time.Time, variants []core.Variant) []Bucket {
	today := core.Today(now)
	buckets := make([]Bucket, 0, 12)
	index := make(map[string]int, 12)
	for i := 11; i >= 0; i-- {
		first := time.Date(today.Year(), today.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		key := monthKey(first.Year(), first.Month())
		index[key] = len(buckets)
		buckets = append(buckets, Bucket{
			Key:    key,
			Label:  fmt.Sprintf("%s/%02d", monthAbbrev[first.Month()-1], first.Year()%100),
			Totals: zeroTotals(variants),
		})
	}
	for _, o := range orders {
		day, ok := core.ParseDay(o.RequestDate)
		if !ok {
			continue
		}
		if at, ok := index[monthKey(day.Year(), day.Month())]; ok {
			addTotals(buckets[at].Totals, o.Quantities, variants)
		}
	}
	return buckets
}

func weekLabel(start, end time.Time) string {
	sm := monthAbbrev[start.Month()-1]
	em := monthAbbrev[end.Month()-1]
	if sm == em {
		return fmt.Sprintf("%d-%d %s", start.Day(), end.Day(), sm)
	}
	return fmt.Sprintf("%d %s - %d %s", start.Day(), sm, end.Day(), em)
}

func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

func zeroTotals(variants []core.Variant) core.Quantities {
	totals := make(core.Quantities, len(variants))
	for _, v := range variants {
		totals[v] = 0
	}
	return totals
}

// addTotals accumulates only the tracked variants; negative input counts as
// zero so a corrupted record can never subtract from a bucket.
func addTotals(dst core.Quantities, src core.Quantities, variants []core.Variant) {
	for _, v := range variants {
		if qty := src.Get(v); qty > 0 {
			dst[v] += qty
		}
	}
}
