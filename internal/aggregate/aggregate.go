// Package aggregate computes derived metrics over ledger entries: period
// summaries, groupings, category breakdowns and trends. Every function is
// pure; nothing here mutates its input or touches storage.
package aggregate

import (
	"sort"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/core"
)

const (
	Growth  TrendDirection = "growth"
	Decline TrendDirection = "decline"
	Stable  TrendDirection = "stable"
)

type (
	TrendDirection string

	// Summary holds the totals for an arbitrary subset of entries.
	Summary struct {
		TotalInflows  core.Money
		TotalOutflows core.Money
		Balance       core.Money
		Count         int
		InflowCount   int
		OutflowCount  int
	}

	// Group is a keyed subset of entries. Keys are YYYY for year groups
	// and YYYY-MM for month groups.
	Group struct {
		Key     string
		Entries []core.Entry
	}

	// CategoryStat describes the outflows of one category.
	CategoryStat struct {
		Category core.Category
		Total    core.Money
		Count    int
		Average  float64
		Max      core.Money
		Min      core.Money
	}

	// Trend compares the net total of the earlier half of a subset with
	// the later half.
	Trend struct {
		Direction TrendDirection
		Percent   float64
	}
)

// Label returns the display name used in reports.
func (d TrendDirection) Label() string {
	switch d {
	case Growth:
		return "Crescimento"
	case Decline:
		return "Declínio"
	default:
		return "Estável"
	}
}

// Summarize computes the period summary over a subset of entries.
func Summarize(entries []core.Entry) Summary {
	var s Summary
	s.Count = len(entries)
	for _, e := range entries {
		switch e.Kind {
		case core.Inflow:
			s.TotalInflows = s.TotalInflows.Add(e.Amount)
			s.InflowCount++
		case core.Outflow:
			s.TotalOutflows = s.TotalOutflows.Add(e.Amount)
			s.OutflowCount++
		}
	}
	s.Balance = s.TotalInflows.Sub(s.TotalOutflows)
	return s
}

// AverageInflow returns the mean inflow amount in decimal units, 0 when
// the subset holds no inflows.
func (s Summary) AverageInflow() float64 {
	if s.InflowCount == 0 {
		return 0
	}
	return s.TotalInflows.Float64() / float64(s.InflowCount)
}

// AverageOutflow returns the mean outflow amount in decimal units, 0 when
// the subset holds no outflows.
func (s Summary) AverageOutflow() float64 {
	if s.OutflowCount == 0 {
		return 0
	}
	return s.TotalOutflows.Float64() / float64(s.OutflowCount)
}

// SortByDate returns a copy of entries sorted ascending by date. The sort
// is stable so same-day entries keep their insertion order.
func SortByDate(entries []core.Entry) []core.Entry {
	sorted := make([]core.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})
	return sorted
}

// GroupByYear buckets entries by the year of their date. Groups come back
// in ascending key order so report output is deterministic.
func GroupByYear(entries []core.Entry) []Group {
	return groupBy(entries, func(e core.Entry) string { return e.Date.YearKey() })
}

// GroupByMonth buckets entries by the year-month of their date, ascending.
func GroupByMonth(entries []core.Entry) []Group {
	return groupBy(entries, func(e core.Entry) string { return e.Date.MonthKey() })
}

func groupBy(entries []core.Entry, keyFn func(core.Entry) string) []Group {
	buckets := make(map[string][]core.Entry)
	for _, e := range entries {
		k := keyFn(e)
		buckets[k] = append(buckets[k], e)
	}
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	groups := make([]Group, len(keys))
	for i, k := range keys {
		groups[i] = Group{Key: k, Entries: buckets[k]}
	}
	return groups
}

// CategoryStats breaks down the outflow entries of a subset per category.
// Outflows without a category count under Other; inflows are ignored.
// Results come back sorted by total descending, ties by category ascending,
// so report output is deterministic.
func CategoryStats(entries []core.Entry) []CategoryStat {
	byCat := make(map[core.Category]*CategoryStat)
	for _, e := range entries {
		if e.Kind != core.Outflow {
			continue
		}
		cat := e.EffectiveCategory()
		st, ok := byCat[cat]
		if !ok {
			st = &CategoryStat{Category: cat, Max: e.Amount, Min: e.Amount}
			byCat[cat] = st
		}
		st.Total = st.Total.Add(e.Amount)
		st.Count++
		if e.Amount.Cents > st.Max.Cents {
			st.Max = e.Amount
		}
		if e.Amount.Cents < st.Min.Cents {
			st.Min = e.Amount
		}
	}
	stats := make([]CategoryStat, 0, len(byCat))
	for _, st := range byCat {
		st.Average = st.Total.Float64() / float64(st.Count)
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Total.Cents != stats[j].Total.Cents {
			return stats[i].Total.Cents > stats[j].Total.Cents
		}
		return stats[i].Category < stats[j].Category
	})
	return stats
}

// CategoryPercent returns the category's share of the outflows in scope as
// a percentage, 0 when there are no outflows in scope.
func CategoryPercent(categoryTotal, totalOutflows core.Money) float64 {
	if totalOutflows.Cents == 0 {
		return 0
	}
	return categoryTotal.Float64() / totalOutflows.Float64() * 100
}

// CalcTrend sorts the subset by date, splits it into an earlier half of
// floor(n/2) entries and a later half with the remainder, and compares the
// two net signed totals. The percentage is defined as 0 when the earlier
// half nets exactly zero, so a lopsided or single-entry subset never
// divides by zero.
func CalcTrend(entries []core.Entry) Trend {
	sorted := SortByDate(entries)
	half := len(sorted) / 2

	var firstNet, secondNet int64
	for _, e := range sorted[:half] {
		firstNet += e.Signed()
	}
	for _, e := range sorted[half:] {
		secondNet += e.Signed()
	}

	t := Trend{Direction: Stable}
	switch {
	case secondNet > firstNet:
		t.Direction = Growth
	case secondNet < firstNet:
		t.Direction = Decline
	}
	if firstNet != 0 {
		abs := firstNet
		if abs < 0 {
			abs = -abs
		}
		t.Percent = float64(secondNet-firstNet) / float64(abs) * 100
	}
	return t
}
