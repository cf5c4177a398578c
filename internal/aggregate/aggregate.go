// Package aggregate computes metrics snapshots and budget forecasts from
// raw transaction rows. Snapshots are built fresh per request and all
// monetary figures are rounded to 2 decimals at construction; downstream
// code never re-rounds.
package aggregate

import (
	"math"
	"sort"

	"github.com/hisabkitab/hisab/internal/model"
)

// Totals holds the signed-sum accounting figures for a range.
type Totals struct {
	Inflow  float64
	Outflow float64
	Net     float64
}

// CategoryTotal is the per-category flow breakdown for a range.
type CategoryTotal struct {
	Name    string
	Inflow  float64
	Outflow float64
}

// DailyTotal is the per-day flow breakdown for a range.
type DailyTotal struct {
	Date    model.Day
	Inflow  float64
	Outflow float64
}

// Snapshot is the ephemeral aggregation result for one cashbook and range.
// Categories are sorted by outflow descending for display; Daily is sorted
// ascending by date. RangeDays is 0 for all-time snapshots.
type Snapshot struct {
	Start      model.Day
	End        model.Day
	Totals     Totals
	Categories []CategoryTotal
	Daily      []DailyTotal
	RangeDays  int
}

// Build aggregates transaction rows over an inclusive day range.
func Build(transactions []model.Transaction, start, end model.Day) Snapshot {
	var inflow, outflow float64
	byCategory := make(map[string]*CategoryTotal)
	byDate := make(map[model.Day]*DailyTotal)

	for _, t := range transactions {
		amount := t.Amount
		switch t.Type {
		case model.Inflow:
			inflow += amount
		case model.Outflow:
			outflow += amount
		}

		category := t.Category()
		if category == "" {
			category = "Uncategorized"
		}
		cat, ok := byCategory[category]
		if !ok {
			cat = &CategoryTotal{Name: category}
			byCategory[category] = cat
		}
		day, ok := byDate[t.Date]
		if !ok {
			day = &DailyTotal{Date: t.Date}
			byDate[t.Date] = day
		}
		switch t.Type {
		case model.Inflow:
			cat.Inflow += amount
			day.Inflow += amount
		case model.Outflow:
			cat.Outflow += amount
			day.Outflow += amount
		}
	}

	rangeDays := start.DaysUntil(end) + 1
	if rangeDays < 1 {
		rangeDays = 1
	}

	categories := make([]CategoryTotal, 0, len(byCategory))
	for _, c := range byCategory {
		categories = append(categories, CategoryTotal{
			Name:    c.Name,
			Inflow:  round2(c.Inflow),
			Outflow: round2(c.Outflow),
		})
	}
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Outflow != categories[j].Outflow {
			return categories[i].Outflow > categories[j].Outflow
		}
		return categories[i].Name < categories[j].Name
	})

	daily := make([]DailyTotal, 0, len(byDate))
	for _, d := range byDate {
		daily = append(daily, DailyTotal{
			Date:    d.Date,
			Inflow:  round2(d.Inflow),
			Outflow: round2(d.Outflow),
		})
	}
	sort.Slice(daily, func(i, j int) bool {
		return daily[i].Date.Before(daily[j].Date)
	})

	return Snapshot{
		Start:     start,
		End:       end,
		RangeDays: rangeDays,
		Totals: Totals{
			Inflow:  round2(inflow),
			Outflow: round2(outflow),
			Net:     round2(inflow - outflow),
		},
		Categories: categories,
		Daily:      daily,
	}
}

// FromBalance builds an all-time snapshot from the balance fast path,
// avoiding a full transaction scan. RangeDays is 0 and no per-category or
// per-day breakdown is available.
func FromBalance(b model.Balance) Snapshot {
	return Snapshot{
		Totals: Totals{
			Inflow:  round2(b.TotalInflow),
			Outflow: round2(b.TotalOutflow),
			Net:     round2(b.TotalInflow - b.TotalOutflow),
		},
	}
}

// round2 rounds to 2 decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
