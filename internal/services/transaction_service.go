package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/store"
)

// ChangeNotifier publishes a change notification after the transaction
// store has been updated, so out-of-process consumers can recompute
// derived state. Implemented by the AMQP client.
type ChangeNotifier interface {
	PublishTransactionChange(ctx context.Context, op, id string) error
}

// TransactionService orchestrates transaction mutations: validate,
// persist, notify, reconcile. Persistence comes first; a notification
// or reconcile failure is logged but does not fail the request, because
// the store is authoritative and goals are recomputed again on the next
// change or worker tick.
type TransactionService struct {
	transactions store.TransactionStore
	notifier     ChangeNotifier
	reconciler   *GoalReconciler
	now          func() time.Time
}

func NewTransactionService(transactions store.TransactionStore, notifier ChangeNotifier, reconciler *GoalReconciler) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		notifier:     notifier,
		reconciler:   reconciler,
		now:          time.Now,
	}
}

// Create validates and persists a transaction, assigning an id and
// timestamp when absent, then triggers the derived-state recompute.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (string, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = s.now()
	}
	if err := tx.Validate(); err != nil {
		return "", err
	}

	id, err := s.transactions.Append(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id, "type", string(tx.Type), "amount_cents", tx.Amount.Cents)

	s.notify(ctx, "create", id)
	s.reconcile(ctx)
	return id, nil
}

// Delete removes a transaction and triggers the recompute. Returns
// core.ErrNotFound (wrapped) for an unknown id.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.transactions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)

	s.notify(ctx, "delete", id)
	s.reconcile(ctx)
	return nil
}

func (s *TransactionService) notify(ctx context.Context, op, id string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishTransactionChange(ctx, op, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change notification",
			"op", op, "id", id, "error", err)
	}
}

// reconcile recomputes goals from the collection just written, never a
// cached copy. Errors are logged; the recompute worker retries on its
// next tick.
func (s *TransactionService) reconcile(ctx context.Context) {
	if s.reconciler == nil {
		return
	}
	if _, err := s.reconciler.ReconcileAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Goal reconcile after mutation failed", "error", err)
	}
}
