package insights

import (
	"math"
	"time"

	"moneywise/internal/core"
)

// minForecastTransactions gates the projection: with fewer records the
// run rate is noise, so no forecast is produced at all.
const minForecastTransactions = 3

// Forecast is a naive linear projection of this month's spend.
type Forecast struct {
	AverageDailySpend core.Money
	ProjectedSpend    core.Money
	Budget            core.Money
	// OverBudget is true when the projection exceeds the budget;
	// Difference is the projected overage, or the projected savings
	// when under budget.
	OverBudget bool
	Difference core.Money
}

// Project extrapolates the month's total expense from the spend so far:
// average daily spend is total-this-month divided by the day of the month,
// projected spend is that average times the days in the month. Returns
// ok=false when fewer than minForecastTransactions transactions exist.
func Project(txs []core.Transaction, budget core.Money, now time.Time) (Forecast, bool) {
	if len(txs) < minForecastTransactions {
		return Forecast{}, false
	}

	year, month, day := now.In(time.Local).Date()
	var spentCents int64
	for _, t := range txs {
		ty, tm, _ := t.Date.In(time.Local).Date()
		if t.Type == core.Expense && ty == year && tm == month {
			spentCents += t.Amount.Cents
		}
	}

	if day < 1 {
		day = 1
	}
	avg := float64(spentCents) / float64(day)
	projected := int64(math.Round(avg * float64(daysInMonth(year, month))))

	f := Forecast{
		AverageDailySpend: core.Money{Cents: int64(math.Round(avg))},
		ProjectedSpend:    core.Money{Cents: projected},
		Budget:            budget,
	}
	if projected > budget.Cents {
		f.OverBudget = true
		f.Difference = core.Money{Cents: projected - budget.Cents}
	} else {
		f.Difference = core.Money{Cents: budget.Cents - projected}
	}
	return f, true
}
