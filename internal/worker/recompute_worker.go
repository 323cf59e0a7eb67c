// Package worker runs the background recompute: it consumes transaction
// change notifications and periodically reconciles goals so derived
// state stays fresh even when a notification was lost.
package worker

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/amqp"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/services"
)

// Dialer opens a fresh broker connection, used for reconnects after a
// consume failure.
type Dialer func() (*amqp.Client, error)

type RecomputeWorker struct {
	dial       Dialer
	reconciler *services.GoalReconciler
	interval   time.Duration
}

func NewRecomputeWorker(dial Dialer, reconciler *services.GoalReconciler, interval time.Duration) *RecomputeWorker {
	return &RecomputeWorker{
		dial:       dial,
		reconciler: reconciler,
		interval:   interval,
	}
}

// Run blocks until the context is cancelled, driving the consumer and
// the periodic reconcile under one errgroup. A broken broker connection
// is retried with backoff; any other failure stops the worker.
func (w *RecomputeWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if w.dial != nil {
		g.Go(func() error { return w.consumeLoop(ctx) })
	}
	g.Go(func() error { return w.tickLoop(ctx) })

	return g.Wait()
}

func (w *RecomputeWorker) consumeLoop(ctx context.Context) error {
	attempt := 0
	for {
		client, err := w.dial()
		if err != nil {
			slog.ErrorContext(ctx, "Broker dial failed", "attempt", attempt, "error", err)
			if !amqp.IsConnectionError(err) {
				return err
			}
			if !w.wait(ctx, amqp.Backoff(attempt)) {
				return ctx.Err()
			}
			attempt++
			continue
		}
		attempt = 0

		err = client.ConsumeTransactionChanges(ctx, func(msg *amqp.TransactionChangeMessage) error {
			slog.InfoContext(ctx, "Recompute triggered by change", "op", msg.Op, "id", msg.ID)
			_, err := w.reconciler.ReconcileAll(ctx)
			return err
		})
		client.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.ErrorContext(ctx, "Consumer stopped, reconnecting", "error", err)
		if !w.wait(ctx, amqp.Backoff(attempt)) {
			return ctx.Err()
		}
		attempt++
	}
}

func (w *RecomputeWorker) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run once on startup so a restart converges immediately.
	w.reconcileOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.reconcileOnce(ctx)
		}
	}
}

// reconcileOnce never stops the worker: a failed save keeps the
// previous goal set and the next tick is the retry path.
func (w *RecomputeWorker) reconcileOnce(ctx context.Context) {
	if _, err := w.reconciler.ReconcileAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Periodic reconcile failed", "error", err)
	}
}

func (w *RecomputeWorker) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
