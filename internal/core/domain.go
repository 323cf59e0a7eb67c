package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
	Saved   TransactionType = "saved"
	Credit  TransactionType = "credit"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	Subscription RecurringKind = "subscription"
	Rent         RecurringKind = "rent"
	Salary       RecurringKind = "salary"
	Bill         RecurringKind = "bill"
	Other        RecurringKind = "other"
)

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

// Uncategorized is the reserved category bucket for transactions
// without a category.
const Uncategorized = "uncategorized"

type (
	TransactionType string
	Frequency       string
	RecurringKind   string
	GoalStatus      string

	Money struct {
		Cents int64
	}

	// Transaction is the authoritative record everything else is derived
	// from. Amounts are always positive; direction comes from Type.
	Transaction struct {
		ID                    string
		Type                  TransactionType
		Amount                Money
		Category              string // empty means uncategorized
		CreatedAt             time.Time
		GoalID                string // set only when Type == Saved
		CreditProductID       string // set only when Type == Credit
		PaidByCreditProductID string // set only when Type == Expense
	}

	Goal struct {
		ID            string
		Name          string
		TargetAmount  Money
		CurrentAmount Money // derived from saved transactions, never edited directly
		Currency      string
		Status        GoalStatus
		CreatedAt     time.Time
		UpdatedAt     time.Time
		CompletedAt   time.Time // zero while active
		Emoji         string
		Note          string
	}

	RecurringDefinition struct {
		ID        string
		Name      string
		Kind      RecurringKind
		Frequency Frequency
		StartDate time.Time
		EndDate   time.Time // zero means open-ended
		Note      string
		Type      TransactionType
		Amount    Money
		Category  string
	}

	// UpcomingTransaction is a projected occurrence of a recurring
	// definition. Display-only, never persisted.
	UpcomingTransaction struct {
		Name          string
		Type          TransactionType
		Amount        Money
		Category      string
		ScheduledDate time.Time
		DaysUntil     int
	}

	// MonthlyAggregate holds the month totals. Remaining may be negative
	// and is surfaced as-is.
	MonthlyAggregate struct {
		Income    Money
		Expenses  Money
		Saved     Money
		Remaining Money
	}

	// CategoryShare is one category's slice of the expense total.
	CategoryShare struct {
		Category string
		Amount   Money
		Percent  float64
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidKind      = errors.New("invalid recurring kind")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidTarget    = errors.New("invalid target amount")
	ErrInvalidDates     = errors.New("end date before start date")
	ErrNotFound         = errors.New("not found")
	ErrStorage          = errors.New("storage failure")
)

func (t TransactionType) Valid() bool {
	switch t {
	case Expense, Income, Saved, Credit:
		return true
	}
	return false
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (k RecurringKind) Valid() bool {
	switch k {
	case Subscription, Rent, Salary, Bill, Other:
		return true
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.GoalID != "" && t.Type != Saved {
		return errors.New("goal link allowed only on saved transactions")
	}
	if t.CreditProductID != "" && t.Type != Credit {
		return errors.New("credit product link allowed only on credit transactions")
	}
	if t.PaidByCreditProductID != "" && t.Type != Expense {
		return errors.New("paid-by-credit link allowed only on expense transactions")
	}
	return nil
}

func (g Goal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyName
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidTarget
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	switch g.Status {
	case GoalActive, GoalCompleted:
	default:
		return errors.New("invalid goal status")
	}
	return nil
}

func (rd RecurringDefinition) Validate() error {
	if len(strings.TrimSpace(rd.Name)) == 0 {
		return ErrEmptyName
	}
	if len(rd.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if !rd.Kind.Valid() {
		return ErrInvalidKind
	}
	if !rd.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if rd.StartDate.IsZero() {
		return errors.New("start date cannot be zero")
	}
	if !rd.EndDate.IsZero() && rd.EndDate.Before(rd.StartDate) {
		return ErrInvalidDates
	}
	if !rd.Type.Valid() {
		return ErrInvalidType
	}
	if err := rd.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

// BucketCategory returns the category a transaction groups under for
// breakdowns, mapping the empty category to the uncategorized bucket.
func (t Transaction) BucketCategory() string {
	if strings.TrimSpace(t.Category) == "" {
		return Uncategorized
	}
	return t.Category
}
