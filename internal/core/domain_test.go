package core

import (
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	good := Transaction{ID: "t1", Type: Expense, Amount: Money{Cents: 100}, CreatedAt: now}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{ID: "t2", Type: "transfer", Amount: Money{Cents: 100}, CreatedAt: now},
		{ID: "t3", Type: Expense, Amount: Money{Cents: 0}, CreatedAt: now},
		{ID: "t4", Type: Expense, Amount: Money{Cents: -50}, CreatedAt: now},
		{ID: "t5", Type: Expense, Amount: Money{Cents: 100}, GoalID: "g1", CreatedAt: now},
		{ID: "t6", Type: Income, Amount: Money{Cents: 100}, CreditProductID: "c1", CreatedAt: now},
		{ID: "t7", Type: Saved, Amount: Money{Cents: 100}, PaidByCreditProductID: "c1", CreatedAt: now},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}

	saved := Transaction{ID: "t8", Type: Saved, Amount: Money{Cents: 100}, GoalID: "g1", CreatedAt: now}
	if err := saved.Validate(); err != nil {
		t.Fatalf("saved with goal link should validate, got %v", err)
	}
}

func TestGoalValidate(t *testing.T) {
	good := Goal{ID: "g1", Name: "Vacation", TargetAmount: Money{Cents: 100000}, Status: GoalActive}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Goal{
		{ID: "g2", Name: "  ", TargetAmount: Money{Cents: 100}, Status: GoalActive},
		{ID: "g3", Name: "x", TargetAmount: Money{Cents: 0}, Status: GoalActive},
		{ID: "g4", Name: "x", TargetAmount: Money{Cents: 100}, CurrentAmount: Money{Cents: -1}, Status: GoalActive},
		{ID: "g5", Name: "x", TargetAmount: Money{Cents: 100}, Status: "paused"},
	}
	for i, g := range bads {
		if err := g.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestRecurringDefinitionValidate(t *testing.T) {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	good := RecurringDefinition{
		ID: "r1", Name: "Netflix", Kind: Subscription, Frequency: Monthly,
		StartDate: start, Type: Expense, Amount: Money{Cents: 999}, Category: "Entertainment",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// End date equal to start date is allowed; before is not.
	good.EndDate = start
	if err := good.Validate(); err != nil {
		t.Fatalf("end == start should validate, got %v", err)
	}
	good.EndDate = start.AddDate(0, 0, -1)
	if err := good.Validate(); err != ErrInvalidDates {
		t.Fatalf("expected ErrInvalidDates, got %v", err)
	}

	bads := []RecurringDefinition{
		{ID: "r2", Name: "", Kind: Bill, Frequency: Monthly, StartDate: start, Type: Expense, Amount: Money{Cents: 1}},
		{ID: "r3", Name: "x", Kind: "loan", Frequency: Monthly, StartDate: start, Type: Expense, Amount: Money{Cents: 1}},
		{ID: "r4", Name: "x", Kind: Bill, Frequency: "biweekly", StartDate: start, Type: Expense, Amount: Money{Cents: 1}},
		{ID: "r5", Name: "x", Kind: Bill, Frequency: Monthly, Type: Expense, Amount: Money{Cents: 1}},
		{ID: "r6", Name: "x", Kind: Bill, Frequency: Monthly, StartDate: start, Type: Expense, Amount: Money{Cents: 0}},
	}
	for i, rd := range bads {
		if err := rd.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBucketCategory(t *testing.T) {
	cases := []struct {
		category string
		want     string
	}{
		{"Groceries", "Groceries"},
		{"", Uncategorized},
		{"   ", Uncategorized},
	}
	for _, tc := range cases {
		tx := Transaction{Category: tc.category}
		if got := tx.BucketCategory(); got != tc.want {
			t.Fatalf("category %q: expected %q, got %q", tc.category, tc.want, got)
		}
	}
}
