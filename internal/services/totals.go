// Package services holds the business logic: month aggregation, goal
// reconciliation, recurring projection and transaction orchestration.
// The computation entry points are pure functions over the collections
// they are handed; they never read ambient state or touch storage.
package services

import (
	"sort"
	"time"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
)

// ComputeTotals derives the month aggregate from a transaction set and
// the configured monthly income baseline.
//
// Income is the baseline plus all income-type transactions. Credit-type
// transactions stay out of the expense total: they are debt drawdown,
// not spending against the budget. Remaining may go negative and is
// returned as-is.
func ComputeTotals(txs []core.Transaction, monthlyIncome core.Money) core.MonthlyAggregate {
	agg := core.MonthlyAggregate{Income: monthlyIncome}
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			agg.Income = agg.Income.Add(tx.Amount)
		case core.Expense:
			agg.Expenses = agg.Expenses.Add(tx.Amount)
		case core.Saved:
			agg.Saved = agg.Saved.Add(tx.Amount)
		}
	}
	agg.Remaining = agg.Income.Sub(agg.Expenses).Sub(agg.Saved)
	return agg
}

// CategoryBreakdown returns per-category expense shares, descending by
// amount with ties kept in first-encountered order. Transactions
// without a category land in the uncategorized bucket. With a zero
// expense total every percent is 0.
func CategoryBreakdown(txs []core.Transaction) []core.CategoryShare {
	var (
		order  []string
		sums   = make(map[string]int64)
		total  int64
		shares []core.CategoryShare
	)
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		bucket := tx.BucketCategory()
		if _, seen := sums[bucket]; !seen {
			order = append(order, bucket)
		}
		sums[bucket] += tx.Amount.Cents
		total += tx.Amount.Cents
	}

	shares = make([]core.CategoryShare, 0, len(order))
	for _, name := range order {
		share := core.CategoryShare{Category: name, Amount: core.Money{Cents: sums[name]}}
		if total > 0 {
			share.Percent = float64(sums[name]) / float64(total) * 100
		}
		shares = append(shares, share)
	}

	// SliceStable keeps the first-encountered order between equal amounts.
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Amount.Cents > shares[j].Amount.Cents
	})
	return shares
}

// TopCategories returns at most n leading categories from a breakdown.
func TopCategories(shares []core.CategoryShare, n int) []core.CategoryShare {
	if n < 0 {
		n = 0
	}
	if n > len(shares) {
		n = len(shares)
	}
	return append([]core.CategoryShare(nil), shares[:n]...)
}

// DaySum is one calendar day's expense total.
type DaySum struct {
	Day   string // YYYY-MM-DD in loc
	Total core.Money
}

// DailyExpenseSums groups expense amounts by calendar day in loc,
// newest day first. Transactions with a zero CreatedAt cannot be
// bucketed by date and are skipped here; they still count in
// ComputeTotals, where the date is irrelevant.
func DailyExpenseSums(txs []core.Transaction, loc *time.Location) []DaySum {
	var (
		order []string
		sums  = make(map[string]int64)
	)
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.CreatedAt.IsZero() {
			continue
		}
		key := core.DayKey(tx.CreatedAt, loc)
		if _, seen := sums[key]; !seen {
			order = append(order, key)
		}
		sums[key] += tx.Amount.Cents
	}

	out := make([]DaySum, 0, len(order))
	for _, day := range order {
		out = append(out, DaySum{Day: day, Total: core.Money{Cents: sums[day]}})
	}
	// Day keys sort lexically as dates.
	sort.Slice(out, func(i, j int) bool { return out[i].Day > out[j].Day })
	return out
}
