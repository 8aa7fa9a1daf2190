package insights

import (
	"testing"
	"time"

	"moneywise/internal/core"
)

func tx(typ core.TransactionType, cents int64, date time.Time, category string) core.Transaction {
	t := core.Transaction{
		ID:     category + date.Format("20060102") + string(typ),
		Amount: core.Money{Cents: cents},
		Date:   date,
		Type:   typ,
	}
	if category != "" {
		t.Category = &core.Category{ID: "cat-" + category, Name: category}
	}
	return t
}

func TestTotals(t *testing.T) {
	day := time.Date(2026, 8, 15, 10, 0, 0, 0, time.Local)
	txs := []core.Transaction{
		tx(core.Expense, 1000, day, "Food"),
		tx(core.Expense, 2500, day, "Transport"),
		tx(core.Income, 50000, day, ""),
	}

	if got := TotalSpent(txs); got.Cents != 3500 {
		t.Fatalf("total spent: expected 3500, got %d", got.Cents)
	}
	if got := TotalIncome(txs); got.Cents != 50000 {
		t.Fatalf("total income: expected 50000, got %d", got.Cents)
	}
}

// forceZone pins the process-local timezone for one test.
func forceZone(t *testing.T, zone *time.Location) {
	t.Helper()
	prev := time.Local
	time.Local = zone
	t.Cleanup(func() { time.Local = prev })
}

func TestSpentToday(t *testing.T) {
	now := time.Date(2026, 8, 31, 18, 0, 0, 0, time.Local)
	txs := []core.Transaction{
		tx(core.Expense, 700, time.Date(2026, 8, 31, 8, 0, 0, 0, time.Local), "Food"),
		tx(core.Expense, 900, time.Date(2026, 8, 30, 23, 59, 0, 0, time.Local), "Food"),
		tx(core.Income, 5000, now, ""),
	}

	if got := SpentToday(txs, now); got.Cents != 700 {
		t.Fatalf("spent today: expected 700, got %d", got.Cents)
	}
}

func TestSpentTodayCountsStoredUTCDates(t *testing.T) {
	forceZone(t, time.FixedZone("UTC+2", 2*60*60))

	// Entered at 00:30 local on the 31st; the persistence layer stores and
	// returns it as 22:30 UTC on the 30th.
	stored := tx(core.Expense, 12_00, time.Date(2026, 8, 30, 22, 30, 0, 0, time.UTC), "Food")
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.Local)

	if got := SpentToday([]core.Transaction{stored}, now); got.Cents != 12_00 {
		t.Fatalf("expected 1200 cents for a transaction dated today in local time, got %d", got.Cents)
	}
}

func TestSortedByDateDesc(t *testing.T) {
	older := tx(core.Expense, 100, time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local), "a")
	newer := tx(core.Expense, 100, time.Date(2026, 8, 20, 0, 0, 0, 0, time.Local), "b")
	txs := []core.Transaction{older, newer}

	sorted := SortedByDateDesc(txs)
	if sorted[0].ID != newer.ID || sorted[1].ID != older.ID {
		t.Fatal("expected newest first")
	}
	if txs[0].ID != older.ID {
		t.Fatal("input slice must not be reordered")
	}
}

func TestCategoryBreakdown(t *testing.T) {
	day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.Local)
	txs := []core.Transaction{
		tx(core.Expense, 1000, day, "Food"),
		tx(core.Expense, 500, day, "Transport"),
		tx(core.Expense, 250, day, "Food"),
		tx(core.Income, 9999, day, "Food"), // income never counts
		tx(core.Expense, 100, day, ""),
	}

	breakdown := CategoryBreakdown(txs)
	if len(breakdown) != 3 {
		t.Fatalf("expected 3 slices, got %d", len(breakdown))
	}
	if breakdown[0].Name != "Food" || breakdown[0].Amount.Cents != 1250 {
		t.Fatalf("unexpected first slice: %+v", breakdown[0])
	}
	if breakdown[1].Name != "Transport" || breakdown[1].Amount.Cents != 500 {
		t.Fatalf("unexpected second slice: %+v", breakdown[1])
	}
	if breakdown[2].Name != "Uncategorized" || breakdown[2].Amount.Cents != 100 {
		t.Fatalf("unexpected third slice: %+v", breakdown[2])
	}

	// Colors follow first-seen order through the fixed palette
	if breakdown[0].Color != palette[0] || breakdown[1].Color != palette[1] {
		t.Fatal("palette must be assigned by iteration order")
	}
}

func TestCategoryBreakdownPaletteWraps(t *testing.T) {
	day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.Local)
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	var txs []core.Transaction
	for _, n := range names {
		txs = append(txs, tx(core.Expense, 100, day, n))
	}

	breakdown := CategoryBreakdown(txs)
	if len(breakdown) != len(names) {
		t.Fatalf("expected %d slices, got %d", len(names), len(breakdown))
	}
	if breakdown[7].Color != palette[0] {
		t.Fatalf("expected eighth slice to wrap to first color, got %s", breakdown[7].Color)
	}
}
