package core

import (
	"testing"
	"time"
)

func validDraft() TransactionDraft {
	return TransactionDraft{
		Amount:      Money{Cents: 1250},
		Description: "Lunch",
		Account:     "Cash",
		Date:        time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local),
		Type:        Expense,
	}
}

func TestTransactionDraftValidate(t *testing.T) {
	if err := validDraft().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []func(*TransactionDraft){
		func(d *TransactionDraft) { d.Amount = Money{Cents: 0} },
		func(d *TransactionDraft) { d.Amount = Money{Cents: -100} },
		func(d *TransactionDraft) { d.Description = "" },
		func(d *TransactionDraft) { d.Description = "   " },
		func(d *TransactionDraft) { d.Type = "transfer" },
		func(d *TransactionDraft) { d.Type = "" },
		func(d *TransactionDraft) { d.Date = time.Time{} },
	}
	for i, mutate := range bads {
		d := validDraft()
		mutate(&d)
		if err := d.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionPatchValidate(t *testing.T) {
	if err := (TransactionPatch{}).Validate(); err != nil {
		t.Fatalf("empty patch should be valid, got %v", err)
	}

	amount := Money{Cents: 500}
	if err := (TransactionPatch{Amount: &amount}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := Money{Cents: 0}
	if err := (TransactionPatch{Amount: &zero}).Validate(); err == nil {
		t.Fatal("expected error for zero amount")
	}

	empty := "  "
	if err := (TransactionPatch{Description: &empty}).Validate(); err == nil {
		t.Fatal("expected error for blank description")
	}

	bad := TransactionType("transfer")
	if err := (TransactionPatch{Type: &bad}).Validate(); err == nil {
		t.Fatal("expected error for invalid type")
	}
}

func TestTransactionPatchEmpty(t *testing.T) {
	if !(TransactionPatch{}).Empty() {
		t.Fatal("zero patch should be empty")
	}
	note := "n"
	if (TransactionPatch{Note: &note}).Empty() {
		t.Fatal("patch with a note should not be empty")
	}
}

func TestCategoryLabel(t *testing.T) {
	tx := Transaction{Category: &Category{Name: "Food"}}
	if got := tx.CategoryLabel(); got != "Food" {
		t.Fatalf("expected Food, got %q", got)
	}
	if got := (Transaction{}).CategoryLabel(); got != "Uncategorized" {
		t.Fatalf("expected Uncategorized, got %q", got)
	}
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2026, 8, 31, 0, 15, 0, 0, time.Local)
	night := time.Date(2026, 8, 31, 23, 45, 0, 0, time.Local)
	nextDay := time.Date(2026, 9, 1, 0, 0, 1, 0, time.Local)

	if !SameDay(morning, night) {
		t.Fatal("same calendar day expected")
	}
	if SameDay(night, nextDay) {
		t.Fatal("different calendar days expected")
	}
}

func TestSameDayConvertsToLocal(t *testing.T) {
	prev := time.Local
	time.Local = time.FixedZone("UTC+2", 2*60*60)
	t.Cleanup(func() { time.Local = prev })

	// 22:30 UTC on the 30th is 00:30 local on the 31st.
	stored := time.Date(2026, 8, 30, 22, 30, 0, 0, time.UTC)
	today := time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)

	if !SameDay(stored, today) {
		t.Fatal("UTC-stored timestamp must be compared on the local calendar")
	}
	if SameDay(stored, time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local)) {
		t.Fatal("local 30th and local 31st are different days")
	}
}
