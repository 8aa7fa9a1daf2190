// Package worker consumes transaction events from the message queue and
// appends them to a durable audit trail, enriched with the record's
// details fetched from the persistence API.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"moneywise/internal/amqp"
	"moneywise/internal/core"
)

// TransactionFetcher resolves an event's transaction id to its full record.
type TransactionFetcher interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
}

// AuditEntry is one line of the audit trail. Detail fields are empty when
// the record could not be resolved (deleted, or already gone again).
type AuditEntry struct {
	Action        string               `json:"action"`
	TransactionID string               `json:"transaction_id"`
	OccurredAt    time.Time            `json:"occurred_at"`
	RecordedAt    time.Time            `json:"recorded_at"`
	Amount        *core.Money          `json:"amount,omitempty"`
	Description   string               `json:"description,omitempty"`
	Category      string               `json:"category,omitempty"`
	Type          core.TransactionType `json:"type,omitempty"`
}

// AuditWorker turns transaction events into audit entries, one JSON line
// each. Writes are serialized so concurrent handlers cannot interleave
// partial lines.
type AuditWorker struct {
	fetcher TransactionFetcher

	mu  sync.Mutex
	out io.Writer
}

func NewAuditWorker(fetcher TransactionFetcher, out io.Writer) *AuditWorker {
	return &AuditWorker{fetcher: fetcher, out: out}
}

// HandleTransactionEvent records one event. Created and updated events are
// enriched from the persistence API; a record that has vanished since the
// event was published is recorded without detail rather than requeued.
// Transport failures return an error so the delivery is retried.
func (w *AuditWorker) HandleTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	entry := AuditEntry{
		Action:        event.Action,
		TransactionID: event.TransactionID,
		OccurredAt:    event.Timestamp,
		RecordedAt:    time.Now(),
	}

	if event.Action != amqp.ActionDeleted {
		t, err := w.fetcher.GetTransaction(ctx, event.TransactionID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			slog.WarnContext(ctx, "Audited transaction no longer exists",
				"action", event.Action, "transaction_id", event.TransactionID)
		case err != nil:
			return fmt.Errorf("resolve transaction %s: %w", event.TransactionID, err)
		default:
			entry.Amount = &t.Amount
			entry.Description = t.Description
			entry.Category = t.CategoryLabel()
			entry.Type = t.Type
		}
	}

	return w.append(entry)
}

func (w *AuditWorker) append(entry AuditEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := json.NewEncoder(w.out).Encode(entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}
