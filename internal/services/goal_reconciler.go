package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/store"
)

// Goals are views over the transaction history: CurrentAmount and
// Status are always recomputed from saved-type transactions across all
// months, never mutated directly.

// RecalculateGoal recomputes one goal against the full transaction
// history. The returned bool reports whether the goal changed.
func RecalculateGoal(g core.Goal, txs []core.Transaction, now time.Time) (core.Goal, bool) {
	var total int64
	for _, tx := range txs {
		if tx.Type == core.Saved && tx.GoalID == g.ID {
			total += tx.Amount.Cents
		}
	}
	return applyProgress(g, core.Money{Cents: total}, now)
}

// RecalculateAllGoals recomputes every goal in one linear pass over the
// transaction set, bucketing saved amounts by goal id. Goal order is
// preserved. The returned bool reports whether any goal changed.
func RecalculateAllGoals(goals []core.Goal, txs []core.Transaction, now time.Time) ([]core.Goal, bool) {
	sums := make(map[string]int64, len(goals))
	for _, tx := range txs {
		if tx.Type == core.Saved && tx.GoalID != "" {
			sums[tx.GoalID] += tx.Amount.Cents
		}
	}

	out := make([]core.Goal, len(goals))
	anyChanged := false
	for i, g := range goals {
		next, changed := applyProgress(g, core.Money{Cents: sums[g.ID]}, now)
		out[i] = next
		anyChanged = anyChanged || changed
	}
	return out, anyChanged
}

// applyProgress sets the derived amount and applies the status rule:
// completed iff current >= target. CompletedAt is stamped once on the
// transition into completed and never restamped while the goal stays
// completed, so repeated recomputes are idempotent.
func applyProgress(g core.Goal, current core.Money, now time.Time) (core.Goal, bool) {
	next := g
	next.CurrentAmount = current

	reached := current.Cents >= g.TargetAmount.Cents
	switch {
	case reached && g.Status == core.GoalActive:
		next.Status = core.GoalCompleted
		if next.CompletedAt.IsZero() {
			next.CompletedAt = now
		}
	case !reached && g.Status == core.GoalCompleted:
		next.Status = core.GoalActive
		next.CompletedAt = time.Time{}
	}

	changed := next.CurrentAmount != g.CurrentAmount || next.Status != g.Status
	if changed {
		next.UpdatedAt = now
	}
	return next, changed
}

// GoalReconciler ties the pure recompute to the stores: it reads the
// authoritative collections, recomputes, and persists only when
// something actually changed.
type GoalReconciler struct {
	transactions store.TransactionStore
	goals        store.GoalStore
	now          func() time.Time
}

func NewGoalReconciler(transactions store.TransactionStore, goals store.GoalStore) *GoalReconciler {
	return &GoalReconciler{
		transactions: transactions,
		goals:        goals,
		now:          time.Now,
	}
}

// WithClock overrides the reconcile timestamp source, used by tests.
func (r *GoalReconciler) WithClock(now func() time.Time) *GoalReconciler {
	r.now = now
	return r
}

// ReconcileAll recomputes every goal from a fresh read of the
// transaction store and saves the set when at least one goal changed.
// On a failed save the previous set stays authoritative and the error
// is propagated for the caller to retry or surface.
func (r *GoalReconciler) ReconcileAll(ctx context.Context) ([]core.Goal, error) {
	goals, err := r.goals.GetAllGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	txs, err := r.transactions.GetAllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	next, changed := RecalculateAllGoals(goals, txs, r.now())
	if !changed {
		return goals, nil
	}

	if err := r.goals.SaveGoals(ctx, next); err != nil {
		slog.ErrorContext(ctx, "Goal save failed, keeping previous set",
			"goals", len(goals), "error", err)
		return goals, fmt.Errorf("save goals: %w", err)
	}

	slog.InfoContext(ctx, "Goals reconciled", "goals", len(next))
	return next, nil
}

// ReconcileOne recomputes a single goal by id, persisting the full set
// when that goal changed. Returns core.ErrNotFound for an unknown id.
func (r *GoalReconciler) ReconcileOne(ctx context.Context, goalID string) (core.Goal, error) {
	goals, err := r.goals.GetAllGoals(ctx)
	if err != nil {
		return core.Goal{}, fmt.Errorf("load goals: %w", err)
	}

	idx := -1
	for i, g := range goals {
		if g.ID == goalID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.Goal{}, fmt.Errorf("goal %s: %w", goalID, core.ErrNotFound)
	}

	txs, err := r.transactions.GetAllTransactions(ctx)
	if err != nil {
		return core.Goal{}, fmt.Errorf("load transactions: %w", err)
	}

	next, changed := RecalculateGoal(goals[idx], txs, r.now())
	if !changed {
		return goals[idx], nil
	}

	updated := append([]core.Goal(nil), goals...)
	updated[idx] = next
	if err := r.goals.SaveGoals(ctx, updated); err != nil {
		return goals[idx], fmt.Errorf("save goals: %w", err)
	}
	return next, nil
}
