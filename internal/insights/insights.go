// Package insights computes derived views over a snapshot of transactions:
// running totals, category breakdowns, the daily spend heatmap, the monthly
// run-rate forecast and the note-based category suggestion. All functions are
// pure; presentation layers recompute them on every store change.
package insights

import (
	"sort"
	"time"

	"moneywise/internal/core"
)

// palette assigned to category slices by first-seen order, wrapping.
var palette = []string{
	"#10b981", "#3b82f6", "#8b5cf6", "#ec4899", "#f97316", "#eab308", "#6366f1",
}

// CategorySlice is one aggregate of the expense breakdown.
type CategorySlice struct {
	Name   string
	Amount core.Money
	Color  string
}

// TotalSpent sums all expense amounts over the full transaction set.
func TotalSpent(txs []core.Transaction) core.Money {
	return sumByType(txs, core.Expense)
}

// TotalIncome sums all income amounts over the full transaction set.
func TotalIncome(txs []core.Transaction) core.Money {
	return sumByType(txs, core.Income)
}

func sumByType(txs []core.Transaction, typ core.TransactionType) core.Money {
	var cents int64
	for _, t := range txs {
		if t.Type == typ {
			cents += t.Amount.Cents
		}
	}
	return core.Money{Cents: cents}
}

// SpentToday sums expense amounts dated on the same local calendar day as now.
func SpentToday(txs []core.Transaction, now time.Time) core.Money {
	var cents int64
	for _, t := range txs {
		if t.Type == core.Expense && core.SameDay(t.Date, now) {
			cents += t.Amount.Cents
		}
	}
	return core.Money{Cents: cents}
}

// SortedByDateDesc returns a copy of the transactions sorted newest first.
// The store keeps no ordering invariant; display order is derived here.
func SortedByDateDesc(txs []core.Transaction) []core.Transaction {
	sorted := append([]core.Transaction(nil), txs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted
}

// CategoryBreakdown groups expense amounts by category label, one slice per
// distinct label in first-seen order. Colors come from a fixed palette keyed
// by that order, so they are cosmetic and may shift when the order changes.
func CategoryBreakdown(txs []core.Transaction) []CategorySlice {
	totals := make(map[string]int64)
	var order []string
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		label := t.CategoryLabel()
		if _, seen := totals[label]; !seen {
			order = append(order, label)
		}
		totals[label] += t.Amount.Cents
	}

	slices := make([]CategorySlice, 0, len(order))
	for i, label := range order {
		slices = append(slices, CategorySlice{
			Name:   label,
			Amount: core.Money{Cents: totals[label]},
			Color:  palette[i%len(palette)],
		})
	}
	return slices
}
