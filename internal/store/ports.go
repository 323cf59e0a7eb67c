// Package store defines the ports for the persistence backends. The
// aggregation, reconcile and projection services take collections as
// plain arguments; these interfaces describe where those collections
// come from and where updated goals go back to.
package store

import (
	"context"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
)

type (
	// TransactionStore is the single source of truth for transactions.
	TransactionStore interface {
		Append(ctx context.Context, tx core.Transaction) (string, error)
		Delete(ctx context.Context, id string) error
		GetAllTransactions(ctx context.Context) ([]core.Transaction, error)
		// GetTransactionsForMonth returns transactions whose CreatedAt
		// falls into the YYYY-MM key, evaluated in the store's location.
		GetTransactionsForMonth(ctx context.Context, monthKey string) ([]core.Transaction, error)
	}

	// GoalStore persists the goal set. SaveGoals replaces the stored
	// set atomically; a failed save must leave the previous set intact.
	GoalStore interface {
		GetAllGoals(ctx context.Context) ([]core.Goal, error)
		SaveGoals(ctx context.Context, goals []core.Goal) error
		AppendGoal(ctx context.Context, g core.Goal) error
	}

	// RecurringStore supplies the recurring definitions the projector
	// runs against.
	RecurringStore interface {
		GetAllDefinitions(ctx context.Context) ([]core.RecurringDefinition, error)
		AppendDefinition(ctx context.Context, rd core.RecurringDefinition) error
		DeleteDefinition(ctx context.Context, id string) error
	}
)
