// Package store holds the canonical in-memory snapshot of the client's
// financial state and keeps it consistent with the persistence API. Every
// mutation round-trips to the API first and only then commits the returned
// record locally, so subscribers never observe unconfirmed data.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"moneywise/internal/core"
)

// DefaultBudgetCents is the budget a fresh store starts with.
const DefaultBudgetCents = 2000_00

// defaultAccounts seeds the growable account label set.
var defaultAccounts = []string{"Cash", "Bank Account", "Credit Card"}

// Snapshot is an immutable view of the store's state. Subscribers receive
// a fresh copy on every committed change and must treat it as read-only.
type Snapshot struct {
	Transactions []core.Transaction `json:"transactions"`
	Categories   []core.Category    `json:"categories"`
	Accounts     []string           `json:"accounts"`
	Budget       core.Money         `json:"budget"`
	Loading      bool               `json:"-"`
	Err          string             `json:"-"`
}

// CategoryNames returns the known category names in snapshot order.
func (s Snapshot) CategoryNames() []string {
	names := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		names[i] = c.Name
	}
	return names
}

// Subscriber is called synchronously after every committed state change.
type Subscriber func(Snapshot)

// Store owns the process-wide financial state. It is created at application
// start and injected into consumers; mutations are serialized by a mutex
// while API round trips run outside it, so two in-flight calls commit in
// arrival order.
type Store struct {
	api API

	mu      sync.Mutex
	state   Snapshot
	subs    map[int]Subscriber
	nextSub int
}

func New(api API) *Store {
	return &Store{
		api: api,
		state: Snapshot{
			Accounts: append([]string(nil), defaultAccounts...),
			Budget:   core.Money{Cents: DefaultBudgetCents},
		},
		subs: make(map[int]Subscriber),
	}
}

// Subscribe registers a subscriber and returns its unsubscribe function.
// The subscriber is not called until the next committed change.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyState()
}

// copyState clones the state so subscribers cannot alias internal slices.
// Callers must hold s.mu.
func (s *Store) copyState() Snapshot {
	snap := s.state
	snap.Transactions = append([]core.Transaction(nil), s.state.Transactions...)
	snap.Categories = append([]core.Category(nil), s.state.Categories...)
	snap.Accounts = append([]string(nil), s.state.Accounts...)
	return snap
}

// commit applies mutate under the lock and notifies subscribers outside it.
func (s *Store) commit(mutate func(*Snapshot)) {
	s.mu.Lock()
	mutate(&s.state)
	snap := s.copyState()
	subs := s.subscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// subscribers snapshots the subscriber set. Callers must hold s.mu.
func (s *Store) subscribers() []Subscriber {
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

// FetchTransactions bulk-loads all transactions from the persistence API.
// The loading flag is set for the duration; on failure the prior transaction
// list is left untouched and the error flag is set.
func (s *Store) FetchTransactions(ctx context.Context) error {
	s.commit(func(st *Snapshot) { st.Loading = true })

	txs, err := s.api.ListTransactions(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch transactions", "error", err)
		s.commit(func(st *Snapshot) {
			st.Loading = false
			st.Err = "failed to fetch transactions"
		})
		return fmt.Errorf("fetch transactions: %w", err)
	}

	s.commit(func(st *Snapshot) {
		st.Transactions = txs
		st.Loading = false
		st.Err = ""
	})
	return nil
}

// FetchCategories bulk-loads the category list. On failure the prior list
// is left untouched and the error flag is set.
func (s *Store) FetchCategories(ctx context.Context) error {
	cats, err := s.api.ListCategories(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch categories", "error", err)
		s.commit(func(st *Snapshot) { st.Err = "failed to fetch categories" })
		return fmt.Errorf("fetch categories: %w", err)
	}

	s.commit(func(st *Snapshot) {
		st.Categories = cats
		st.Err = ""
	})
	return nil
}

// AddTransaction sends the draft to the persistence API and, on success,
// prepends the server-returned identity-bearing record. On failure local
// state is unchanged.
func (s *Store) AddTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.api.CreateTransaction(ctx, draft)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to add transaction", "error", err)
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	s.commit(func(st *Snapshot) {
		st.Transactions = append([]core.Transaction{created}, st.Transactions...)
	})
	return created, nil
}

// EditTransaction sends a partial update and replaces the matching local
// entry with the server's returned full record. An unknown id is reported
// as core.ErrNotFound. A record the server knows but the local list does
// not is logged and left alone until the next full refetch.
func (s *Store) EditTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	if err := patch.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.api.UpdateTransaction(ctx, id, patch)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to edit transaction", "id", id, "error", err)
		return core.Transaction{}, fmt.Errorf("edit transaction %s: %w", id, err)
	}

	replaced := false
	s.commit(func(st *Snapshot) {
		for i := range st.Transactions {
			if st.Transactions[i].ID == id {
				st.Transactions[i] = updated
				replaced = true
				return
			}
		}
	})
	if !replaced {
		slog.WarnContext(ctx, "Edited transaction missing locally, awaiting refetch", "id", id)
	}
	return updated, nil
}

// DeleteTransaction confirms the delete with the persistence API before
// removing the entry locally. Deleting an id that is already gone is a
// no-op, not an error.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.api.DeleteTransaction(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to delete transaction", "id", id, "error", err)
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	s.commit(func(st *Snapshot) {
		kept := st.Transactions[:0]
		for _, t := range st.Transactions {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		st.Transactions = kept
	})
	return nil
}

// AddCategory round-trips to the persistence API and appends the returned
// identity-bearing category. Categories are additive only.
func (s *Store) AddCategory(ctx context.Context, draft core.CategoryDraft) (core.Category, error) {
	if err := draft.Validate(); err != nil {
		return core.Category{}, err
	}

	created, err := s.api.CreateCategory(ctx, draft)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to add category", "name", draft.Name, "error", err)
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}

	s.commit(func(st *Snapshot) {
		st.Categories = append(st.Categories, created)
	})
	return created, nil
}

// AddAccount appends a label to the growable account set. Purely local;
// exact duplicates are skipped without notifying subscribers, since the
// state did not change.
func (s *Store) AddAccount(name string) {
	if name == "" {
		return
	}

	s.mu.Lock()
	for _, a := range s.state.Accounts {
		if a == name {
			s.mu.Unlock()
			return
		}
	}
	s.state.Accounts = append(s.state.Accounts, name)
	snap := s.copyState()
	subs := s.subscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// SetBudget replaces the budget. Purely local, no round trip.
func (s *Store) SetBudget(budget core.Money) {
	s.commit(func(st *Snapshot) { st.Budget = budget })
}

// ExportJSON writes the current transaction list as indented JSON, the
// same shape the persistence API serves.
func (s *Store) ExportJSON(w io.Writer) error {
	snap := s.Snapshot()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap.Transactions); err != nil {
		return fmt.Errorf("export transactions: %w", err)
	}
	return nil
}
