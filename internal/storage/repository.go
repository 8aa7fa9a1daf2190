package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"moneywise/internal/core"
)

// SQLiteRepository owns the canonical transaction and category records.
// Identifiers are assigned here, never by clients.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = `
	t.id, t.amount_cents, t.description, t.account, t.note, t.date, t.type,
	c.id, c.name, c.icon, c.color, c.type`

const transactionQuery = `
SELECT` + transactionColumns + `
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id`

// ListTransactions returns all transactions newest-date-first with the
// category embedded.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, transactionQuery+` ORDER BY t.date DESC, t.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// CreateTransaction inserts the draft under a fresh identifier and returns
// the stored record with its category resolved.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, amount_cents, description, category_id, account, note, date, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, draft.Amount.Cents, draft.Description, nullable(draft.CategoryID),
		draft.Account, draft.Note, draft.Date.UTC().Format(time.RFC3339Nano), string(draft.Type))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", id,
		"type", draft.Type,
		"amount_cents", draft.Amount.Cents)

	return r.GetTransaction(ctx, id)
}

// GetTransaction returns one record or core.ErrNotFound.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, transactionQuery+` WHERE t.id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

// UpdateTransaction applies a partial update and returns the full updated
// record. Unknown ids fail with core.ErrNotFound.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	if err := patch.Validate(); err != nil {
		return core.Transaction{}, err
	}

	current, err := r.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	if patch.Amount != nil {
		current.Amount = *patch.Amount
	}
	if patch.Description != nil {
		current.Description = *patch.Description
	}
	if patch.CategoryID != nil {
		current.CategoryID = *patch.CategoryID
	}
	if patch.Account != nil {
		current.Account = *patch.Account
	}
	if patch.Note != nil {
		current.Note = *patch.Note
	}
	if patch.Date != nil {
		current.Date = *patch.Date
	}
	if patch.Type != nil {
		current.Type = *patch.Type
	}

	// A patch carrying an empty CategoryID clears the relation; an absent
	// one keeps it (CategoryID is populated from the join on reads).
	_, err = r.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount_cents = ?, description = ?, category_id = ?, account = ?, note = ?, date = ?, type = ?
		WHERE id = ?`,
		current.Amount.Cents, current.Description, nullable(current.CategoryID),
		current.Account, current.Note, current.Date.UTC().Format(time.RFC3339Nano),
		string(current.Type), id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}

	return r.GetTransaction(ctx, id)
}

// DeleteTransaction removes one record. Deleting an unknown id returns
// core.ErrNotFound so callers can decide whether that matters.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// ListCategories returns all categories in insertion order.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, icon, color, type FROM categories ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.Type); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

// CreateCategory inserts the draft under a fresh identifier.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, draft core.CategoryDraft) (core.Category, error) {
	if err := draft.Validate(); err != nil {
		return core.Category{}, err
	}

	cat := core.Category{
		ID:    uuid.NewString(),
		Name:  draft.Name,
		Icon:  draft.Icon,
		Color: draft.Color,
		Type:  draft.Type,
	}
	if cat.Type == "" {
		cat.Type = string(core.Expense)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, icon, color, type) VALUES (?, ?, ?, ?, ?)`,
		cat.ID, cat.Name, cat.Icon, cat.Color, cat.Type)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "id", cat.ID, "name", cat.Name)
	return cat, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		rawDate string
		catID   sql.NullString
		catName sql.NullString
		catIcon sql.NullString
		catCol  sql.NullString
		catType sql.NullString
	)
	err := row.Scan(
		&t.ID, &t.Amount.Cents, &t.Description, &t.Account, &t.Note, &rawDate, &t.Type,
		&catID, &catName, &catIcon, &catCol, &catType)
	if err != nil {
		return core.Transaction{}, err
	}

	t.Date, err = time.Parse(time.RFC3339Nano, rawDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", rawDate, err)
	}

	if catID.Valid {
		t.CategoryID = catID.String
		t.Category = &core.Category{
			ID:    catID.String,
			Name:  catName.String,
			Icon:  catIcon.String,
			Color: catCol.String,
			Type:  catType.String,
		}
	}
	return t, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
