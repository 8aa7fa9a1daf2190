package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	Money struct {
		Cents int64
	}

	// Category is a user-defined transaction grouping. Server-assigned
	// identity; additive only (no rename or delete).
	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Icon  string `json:"icon,omitempty"`
		Color string `json:"color,omitempty"`
		Type  string `json:"type"`
	}

	// Transaction is a single income or expense record. The embedded
	// Category is resolved server-side from CategoryID on reads.
	Transaction struct {
		ID          string          `json:"id"`
		Amount      Money           `json:"amount"`
		Description string          `json:"description"`
		Category    *Category       `json:"category"`
		CategoryID  string          `json:"category_id,omitempty"`
		Account     string          `json:"account,omitempty"`
		Note        string          `json:"note,omitempty"`
		Date        time.Time       `json:"date"`
		Type        TransactionType `json:"type"`
	}

	// TransactionDraft is a transaction before the server has assigned
	// an identifier.
	TransactionDraft struct {
		Amount      Money           `json:"amount"`
		Description string          `json:"description"`
		CategoryID  string          `json:"category_id,omitempty"`
		Account     string          `json:"account,omitempty"`
		Note        string          `json:"note,omitempty"`
		Date        time.Time       `json:"date"`
		Type        TransactionType `json:"type"`
	}

	// TransactionPatch is a partial update. Nil fields are left unchanged.
	TransactionPatch struct {
		Amount      *Money           `json:"amount,omitempty"`
		Description *string          `json:"description,omitempty"`
		CategoryID  *string          `json:"category_id,omitempty"`
		Account     *string          `json:"account,omitempty"`
		Note        *string          `json:"note,omitempty"`
		Date        *time.Time       `json:"date,omitempty"`
		Type        *TransactionType `json:"type,omitempty"`
	}

	CategoryDraft struct {
		Name  string `json:"name"`
		Icon  string `json:"icon,omitempty"`
		Color string `json:"color,omitempty"`
		Type  string `json:"type"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyName        = errors.New("empty name")

	// ErrNotFound reports an edit or delete referencing an identifier
	// the persistence layer no longer has.
	ErrNotFound = errors.New("not found")
)

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense:
		return true
	default:
		return false
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (d TransactionDraft) Validate() error {
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(d.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(d.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !d.Type.Valid() {
		return ErrInvalidType
	}
	if d.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Validate checks only the fields the patch carries.
func (p TransactionPatch) Validate() error {
	if p.Amount != nil {
		if err := p.Amount.Validate(); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if len(strings.TrimSpace(*p.Description)) == 0 {
			return ErrEmptyDescription
		}
		if len(*p.Description) > 200 {
			return errors.New("description too long (max 200 characters)")
		}
	}
	if p.Type != nil && !p.Type.Valid() {
		return ErrInvalidType
	}
	if p.Date != nil && p.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Empty reports whether the patch carries no fields at all.
func (p TransactionPatch) Empty() bool {
	return p.Amount == nil && p.Description == nil && p.CategoryID == nil &&
		p.Account == nil && p.Note == nil && p.Date == nil && p.Type == nil
}

func (d CategoryDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if len(d.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	return nil
}

// CategoryLabel returns the display label used for grouping. Transactions
// without a category share the "Uncategorized" bucket.
func (t Transaction) CategoryLabel() string {
	if t.Category != nil && t.Category.Name != "" {
		return t.Category.Name
	}
	return "Uncategorized"
}

// SameDay reports whether two timestamps fall on the same local calendar
// day. Stored dates come back in UTC, so both sides are converted to the
// local zone before truncating.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(time.Local).Date()
	by, bm, bd := b.In(time.Local).Date()
	return ay == by && am == bm && ad == bd
}
