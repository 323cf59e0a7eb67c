package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/store/memory"
)

type recordingNotifier struct {
	ops  []string
	fail bool
}

func (n *recordingNotifier) PublishTransactionChange(_ context.Context, op, id string) error {
	if n.fail {
		return fmt.Errorf("broker down")
	}
	n.ops = append(n.ops, op+":"+id)
	return nil
}

func TestCreateAssignsIDAndReconciles(t *testing.T) {
	ctx := context.Background()
	s := memory.New(time.UTC)
	if err := s.AppendGoal(ctx, activeGoal("g1", 5000)); err != nil {
		t.Fatalf("append goal: %v", err)
	}

	notifier := &recordingNotifier{}
	svc := NewTransactionService(s, notifier, NewGoalReconciler(s, s))

	id, err := svc.Create(ctx, core.Transaction{Type: core.Saved, Amount: core.Money{Cents: 6000}, GoalID: "g1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}
	if len(notifier.ops) != 1 || notifier.ops[0] != "create:"+id {
		t.Fatalf("expected one create notification, got %v", notifier.ops)
	}

	// The goal was recomputed from the updated collection.
	goals, _ := s.GetAllGoals(ctx)
	if goals[0].Status != core.GoalCompleted || goals[0].CurrentAmount.Cents != 6000 {
		t.Fatalf("goal not reconciled after create: %+v", goals[0])
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	svc := NewTransactionService(memory.New(time.UTC), nil, nil)
	if _, err := svc.Create(context.Background(), core.Transaction{Type: "bogus", Amount: core.Money{Cents: 1}}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestCreateSurvivesNotifierFailure(t *testing.T) {
	ctx := context.Background()
	s := memory.New(time.UTC)
	svc := NewTransactionService(s, &recordingNotifier{fail: true}, nil)

	if _, err := svc.Create(ctx, core.Transaction{Type: core.Expense, Amount: core.Money{Cents: 100}}); err != nil {
		t.Fatalf("notification failure must not fail the request: %v", err)
	}
	all, _ := s.GetAllTransactions(ctx)
	if len(all) != 1 {
		t.Fatalf("transaction must be persisted, got %d", len(all))
	}
}

func TestDeleteReconcilesGoalsDown(t *testing.T) {
	ctx := context.Background()
	s := memory.New(time.UTC)
	if err := s.AppendGoal(ctx, activeGoal("g1", 5000)); err != nil {
		t.Fatalf("append goal: %v", err)
	}

	svc := NewTransactionService(s, nil, NewGoalReconciler(s, s))
	id, err := svc.Create(ctx, core.Transaction{Type: core.Saved, Amount: core.Money{Cents: 6000}, GoalID: "g1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	goals, _ := s.GetAllGoals(ctx)
	if goals[0].Status != core.GoalActive || goals[0].CurrentAmount.Cents != 0 {
		t.Fatalf("goal must revert after delete: %+v", goals[0])
	}
	if !goals[0].CompletedAt.IsZero() {
		t.Fatalf("CompletedAt must be cleared on revert")
	}
}

func TestDeleteUnknown(t *testing.T) {
	svc := NewTransactionService(memory.New(time.UTC), nil, nil)
	err := svc.Delete(context.Background(), "missing")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
