package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"moneywise/internal/core"
)

// fakeAPI is an in-memory persistence API with the same confirm-then-apply
// contract as the real server: mutations return full records, deletes are
// idempotent and unknown ids fail with core.ErrNotFound on update.
type fakeAPI struct {
	txs    []core.Transaction
	cats   []core.Category
	nextID int

	failList bool
	failCats bool
}

func (f *fakeAPI) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	if f.failList {
		return nil, errors.New("boom")
	}
	return append([]core.Transaction(nil), f.txs...), nil
}

func (f *fakeAPI) CreateTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	f.nextID++
	t := core.Transaction{
		ID:          fmt.Sprintf("tx-%d", f.nextID),
		Amount:      draft.Amount,
		Description: draft.Description,
		CategoryID:  draft.CategoryID,
		Account:     draft.Account,
		Note:        draft.Note,
		Date:        draft.Date,
		Type:        draft.Type,
	}
	f.txs = append(f.txs, t)
	return t, nil
}

func (f *fakeAPI) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	for i := range f.txs {
		if f.txs[i].ID != id {
			continue
		}
		t := f.txs[i]
		if patch.Amount != nil {
			t.Amount = *patch.Amount
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.CategoryID != nil {
			t.CategoryID = *patch.CategoryID
		}
		if patch.Account != nil {
			t.Account = *patch.Account
		}
		if patch.Note != nil {
			t.Note = *patch.Note
		}
		if patch.Date != nil {
			t.Date = *patch.Date
		}
		if patch.Type != nil {
			t.Type = *patch.Type
		}
		f.txs[i] = t
		return t, nil
	}
	return core.Transaction{}, core.ErrNotFound
}

func (f *fakeAPI) DeleteTransaction(ctx context.Context, id string) error {
	for i := range f.txs {
		if f.txs[i].ID == id {
			f.txs = append(f.txs[:i], f.txs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeAPI) ListCategories(ctx context.Context) ([]core.Category, error) {
	if f.failCats {
		return nil, errors.New("boom")
	}
	return append([]core.Category(nil), f.cats...), nil
}

func (f *fakeAPI) CreateCategory(ctx context.Context, draft core.CategoryDraft) (core.Category, error) {
	f.nextID++
	c := core.Category{
		ID:    fmt.Sprintf("cat-%d", f.nextID),
		Name:  draft.Name,
		Icon:  draft.Icon,
		Color: draft.Color,
		Type:  draft.Type,
	}
	f.cats = append(f.cats, c)
	return c, nil
}

func draft(desc string, cents int64) core.TransactionDraft {
	return core.TransactionDraft{
		Amount:      core.Money{Cents: cents},
		Description: desc,
		Account:     "Cash",
		Date:        time.Date(2026, 8, 20, 12, 0, 0, 0, time.Local),
		Type:        core.Expense,
	}
}

func TestNewDefaults(t *testing.T) {
	s := New(&fakeAPI{})
	snap := s.Snapshot()

	if snap.Budget.Cents != DefaultBudgetCents {
		t.Fatalf("expected default budget %d, got %d", DefaultBudgetCents, snap.Budget.Cents)
	}
	want := []string{"Cash", "Bank Account", "Credit Card"}
	if !reflect.DeepEqual(snap.Accounts, want) {
		t.Fatalf("expected default accounts %v, got %v", want, snap.Accounts)
	}
	if len(snap.Transactions) != 0 || snap.Loading || snap.Err != "" {
		t.Fatalf("expected clean empty state, got %+v", snap)
	}
}

func TestAddTransactionPrepends(t *testing.T) {
	s := New(&fakeAPI{})
	ctx := context.Background()

	first, err := s.AddTransaction(ctx, draft("Lunch", 12_50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.AddTransaction(ctx, draft("Bus ticket", 3_00))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID == "" || second.ID == "" || first.ID == second.ID {
		t.Fatalf("expected distinct server ids, got %q and %q", first.ID, second.ID)
	}

	snap := s.Snapshot()
	if len(snap.Transactions) != 2 {
		t.Fatalf("expected exactly 2 transactions, got %d", len(snap.Transactions))
	}
	if snap.Transactions[0].ID != second.ID {
		t.Fatal("newest transaction must be first")
	}
}

func TestAddTransactionRejectsInvalidDraft(t *testing.T) {
	api := &fakeAPI{}
	s := New(api)

	bad := draft("Lunch", 0)
	if _, err := s.AddTransaction(context.Background(), bad); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if len(api.txs) != 0 {
		t.Fatal("invalid draft must never reach the API")
	}
	if len(s.Snapshot().Transactions) != 0 {
		t.Fatal("invalid draft must not change local state")
	}
}

func TestEditTransactionReplacesOnlyPatchedFields(t *testing.T) {
	s := New(&fakeAPI{})
	ctx := context.Background()

	created, err := s.AddTransaction(ctx, draft("Lunch", 12_50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	amount := core.Money{Cents: 20_00}
	updated, err := s.EditTransaction(ctx, created.ID, core.TransactionPatch{Amount: &amount})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Amount.Cents != 20_00 {
		t.Fatalf("expected amount 2000, got %d", updated.Amount.Cents)
	}
	if updated.Description != created.Description || updated.Account != created.Account ||
		!updated.Date.Equal(created.Date) || updated.Type != created.Type {
		t.Fatalf("patch must leave other fields intact: %+v", updated)
	}

	snap := s.Snapshot()
	if len(snap.Transactions) != 1 || snap.Transactions[0].Amount.Cents != 20_00 {
		t.Fatalf("local entry not replaced: %+v", snap.Transactions)
	}
}

func TestEditTransactionEmptyPatchRoundTrip(t *testing.T) {
	s := New(&fakeAPI{})
	ctx := context.Background()

	created, err := s.AddTransaction(ctx, draft("Lunch", 12_50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.EditTransaction(ctx, created.ID, core.TransactionPatch{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, created) {
		t.Fatalf("empty patch must return the record unchanged:\n got %+v\nwant %+v", got, created)
	}
}

func TestEditTransactionUnknownID(t *testing.T) {
	s := New(&fakeAPI{})

	_, err := s.EditTransaction(context.Background(), "missing", core.TransactionPatch{})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTransactionIdempotent(t *testing.T) {
	s := New(&fakeAPI{})
	ctx := context.Background()

	created, err := s.AddTransaction(ctx, draft("Lunch", 12_50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Snapshot().Transactions) != 0 {
		t.Fatal("expected transaction removed locally")
	}

	// Second delete of the same id is a confirmed no-op.
	if err := s.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("repeated delete must not fail: %v", err)
	}
}

func TestFetchTransactionsFailureKeepsState(t *testing.T) {
	api := &fakeAPI{}
	s := New(api)
	ctx := context.Background()

	created, err := s.AddTransaction(ctx, draft("Lunch", 12_50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	api.failList = true
	if err := s.FetchTransactions(ctx); err == nil {
		t.Fatal("expected fetch error")
	}

	snap := s.Snapshot()
	if snap.Loading {
		t.Fatal("loading flag must be cleared after failure")
	}
	if snap.Err == "" || !strings.Contains(snap.Err, "transactions") {
		t.Fatalf("expected error flag, got %q", snap.Err)
	}
	if len(snap.Transactions) != 1 || snap.Transactions[0].ID != created.ID {
		t.Fatal("failed fetch must leave prior transactions intact")
	}

	// A later successful fetch clears the flag.
	api.failList = false
	if err := s.FetchTransactions(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap = s.Snapshot()
	if snap.Err != "" || len(snap.Transactions) != 1 {
		t.Fatalf("expected recovered state, got %+v", snap)
	}
}

func TestFetchCategoriesFailureKeepsState(t *testing.T) {
	api := &fakeAPI{cats: []core.Category{{ID: "c1", Name: "Food", Type: "expense"}}}
	s := New(api)
	ctx := context.Background()

	if err := s.FetchCategories(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	api.failCats = true
	if err := s.FetchCategories(ctx); err == nil {
		t.Fatal("expected fetch error")
	}

	snap := s.Snapshot()
	if snap.Err == "" {
		t.Fatal("expected error flag set")
	}
	if len(snap.Categories) != 1 || snap.Categories[0].Name != "Food" {
		t.Fatal("failed fetch must leave prior categories intact")
	}
}

func TestAddCategoryAppends(t *testing.T) {
	s := New(&fakeAPI{})

	created, err := s.AddCategory(context.Background(), core.CategoryDraft{Name: "Travel", Type: "expense"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected server-assigned id")
	}

	snap := s.Snapshot()
	if len(snap.Categories) != 1 || snap.Categories[0].Name != "Travel" {
		t.Fatalf("unexpected categories: %+v", snap.Categories)
	}
}

func TestAddAccountSkipsDuplicates(t *testing.T) {
	s := New(&fakeAPI{})

	s.AddAccount("Savings")
	s.AddAccount("Savings")
	s.AddAccount("Cash")
	s.AddAccount("")

	snap := s.Snapshot()
	want := []string{"Cash", "Bank Account", "Credit Card", "Savings"}
	if !reflect.DeepEqual(snap.Accounts, want) {
		t.Fatalf("expected accounts %v, got %v", want, snap.Accounts)
	}
}

func TestAddAccountDuplicateDoesNotNotify(t *testing.T) {
	s := New(&fakeAPI{})

	var notified int
	s.Subscribe(func(Snapshot) { notified++ })

	s.AddAccount("Savings")
	if notified != 1 {
		t.Fatalf("expected one notification for a new account, got %d", notified)
	}

	s.AddAccount("Savings")
	s.AddAccount("Cash")
	s.AddAccount("")
	if notified != 1 {
		t.Fatalf("no-op adds must not notify subscribers, got %d notifications", notified)
	}
}

func TestSubscribeNotifiesOnCommit(t *testing.T) {
	s := New(&fakeAPI{})

	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		got = append(got, snap)
	})

	s.SetBudget(core.Money{Cents: 3000_00})
	if len(got) != 1 || got[0].Budget.Cents != 3000_00 {
		t.Fatalf("expected one notification with the new budget, got %v", got)
	}

	unsubscribe()
	s.SetBudget(core.Money{Cents: 1000_00})
	if len(got) != 1 {
		t.Fatal("unsubscribed subscriber must not be called")
	}
}

func TestExportJSON(t *testing.T) {
	s := New(&fakeAPI{})
	ctx := context.Background()

	if _, err := s.AddTransaction(ctx, draft("Lunch", 12_50)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf strings.Builder
	if err := s.ExportJSON(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"description": "Lunch"`) || !strings.Contains(out, `"amount": 1250`) {
		t.Fatalf("unexpected export output:\n%s", out)
	}
}
