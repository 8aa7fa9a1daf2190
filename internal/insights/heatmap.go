package insights

import (
	"time"

	"moneywise/internal/core"
)

// Tier is the intensity bucket of a heatmap day.
type Tier int

const (
	TierNone Tier = iota // no spend
	TierLow              // > $0
	TierMedium           // > $50
	TierHigh             // > $100
)

const (
	mediumThresholdCents = 50_00
	highThresholdCents   = 100_00
)

// DayCell is one day of the current month's heatmap.
type DayCell struct {
	Day    int
	Amount core.Money
	Tier   Tier
}

// DailyHeatmap sums expense amounts per day of the month containing now and
// buckets each day into a tier. Days are local calendar days; stored dates
// come back in UTC and are converted before truncating. Boundaries are
// exclusive: a day at exactly $50.00 stays in TierLow.
func DailyHeatmap(txs []core.Transaction, now time.Time) []DayCell {
	year, month, _ := now.In(time.Local).Date()
	days := daysInMonth(year, month)

	perDay := make(map[int]int64)
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		ty, tm, td := t.Date.In(time.Local).Date()
		if ty != year || tm != month {
			continue
		}
		perDay[td] += t.Amount.Cents
	}

	cells := make([]DayCell, days)
	for d := 1; d <= days; d++ {
		cents := perDay[d]
		cells[d-1] = DayCell{
			Day:    d,
			Amount: core.Money{Cents: cents},
			Tier:   tierFor(cents),
		}
	}
	return cells
}

func tierFor(cents int64) Tier {
	switch {
	case cents > highThresholdCents:
		return TierHigh
	case cents > mediumThresholdCents:
		return TierMedium
	case cents > 0:
		return TierLow
	default:
		return TierNone
	}
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
