package store

import (
	"context"

	"moneywise/internal/core"
)

// Ports for the persistence API consumed by the store. Every mutation is
// confirm-then-apply: the store only adopts full records returned here.
type (
	TransactionAPI interface {
		// ListTransactions returns all records newest-date-first with the
		// category embedded.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error)
		// UpdateTransaction applies a partial update and returns the full
		// updated record. Fails with core.ErrNotFound for unknown ids.
		UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error)
		// DeleteTransaction is idempotent: deleting an id twice is not an error.
		DeleteTransaction(ctx context.Context, id string) error
	}

	CategoryAPI interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		CreateCategory(ctx context.Context, draft core.CategoryDraft) (core.Category, error)
	}

	// API is the full persistence surface the store depends on.
	API interface {
		TransactionAPI
		CategoryAPI
	}
)
