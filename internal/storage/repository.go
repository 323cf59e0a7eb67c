// Package storage is the SQLite persistence backend. It implements the
// store ports; all derived values (totals, breakdowns, goal progress)
// are computed in the services layer from what this package returns.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db  *sql.DB
	loc *time.Location
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath
// and runs pending migrations. Month keys are derived in loc.
func NewSQLiteRepository(dbPath string, loc *time.Location) (*SQLiteRepository, error) {
	if loc == nil {
		loc = time.Local
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, loc: loc}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements store.TransactionStore.
func (r *SQLiteRepository) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}

	createdAt, monthKey := "", ""
	if !tx.CreatedAt.IsZero() {
		createdAt = tx.CreatedAt.Format(time.RFC3339Nano)
		monthKey = core.MonthKey(tx.CreatedAt, r.loc)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions
			(id, type, amount_cents, category, created_at, month_key,
			 goal_id, credit_product_id, paid_by_credit_product_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Type), tx.Amount.Cents, tx.Category, createdAt, monthKey,
		tx.GoalID, tx.CreditProductID, tx.PaidByCreditProductID)
	if err != nil {
		return "", fmt.Errorf("create transaction: %w: %v", core.ErrStorage, err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"type", string(tx.Type),
		"amount_cents", tx.Amount.Cents,
		"month_key", monthKey)

	return tx.ID, nil
}

// Delete implements store.TransactionStore.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w: %v", core.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w: %v", core.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) GetAllTransactions(ctx context.Context) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT id, type, amount_cents, category, created_at,
		       goal_id, credit_product_id, paid_by_credit_product_id
		FROM transactions ORDER BY created_at DESC`)
}

func (r *SQLiteRepository) GetTransactionsForMonth(ctx context.Context, monthKey string) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT id, type, amount_cents, category, created_at,
		       goal_id, credit_product_id, paid_by_credit_product_id
		FROM transactions WHERE month_key = ? ORDER BY created_at DESC`, monthKey)
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w: %v", core.ErrStorage, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx        core.Transaction
			typ       string
			createdAt string
		)
		if err := rows.Scan(&tx.ID, &typ, &tx.Amount.Cents, &tx.Category, &createdAt,
			&tx.GoalID, &tx.CreditProductID, &tx.PaidByCreditProductID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w: %v", core.ErrStorage, err)
		}
		tx.Type = core.TransactionType(typ)
		tx.CreatedAt = parseTimestamp(ctx, tx.ID, createdAt)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w: %v", core.ErrStorage, err)
	}
	return out, nil
}

// parseTimestamp tolerates a malformed stored timestamp: the record
// keeps counting in type-based sums, it just loses its place in
// date-keyed groupings (zero time).
func parseTimestamp(ctx context.Context, id, s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		slog.WarnContext(ctx, "Unparseable timestamp on stored record", "id", id, "value", s)
		return time.Time{}
	}
	return t
}

// GetAllGoals implements store.GoalStore.
func (r *SQLiteRepository) GetAllGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, target_cents, current_cents, currency, status,
		       created_at, updated_at, completed_at, emoji, note
		FROM goals ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w: %v", core.ErrStorage, err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		var (
			g                               core.Goal
			status                          string
			createdAt, updatedAt, completed string
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents,
			&g.Currency, &status, &createdAt, &updatedAt, &completed, &g.Emoji, &g.Note); err != nil {
			return nil, fmt.Errorf("scan goal: %w: %v", core.ErrStorage, err)
		}
		g.Status = core.GoalStatus(status)
		g.CreatedAt = parseTimestamp(ctx, g.ID, createdAt)
		g.UpdatedAt = parseTimestamp(ctx, g.ID, updatedAt)
		g.CompletedAt = parseTimestamp(ctx, g.ID, completed)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w: %v", core.ErrStorage, err)
	}
	return out, nil
}

// SaveGoals implements store.GoalStore: the stored set is replaced in
// one database transaction, so a failure leaves the previous set
// intact for the caller's rollback contract.
func (r *SQLiteRepository) SaveGoals(ctx context.Context, goals []core.Goal) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save goals: %w: %v", core.ErrStorage, err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM goals`); err != nil {
		return fmt.Errorf("clear goals: %w: %v", core.ErrStorage, err)
	}
	for _, g := range goals {
		if err := insertGoal(ctx, dbTx, g); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit save goals: %w: %v", core.ErrStorage, err)
	}
	return nil
}

// AppendGoal implements store.GoalStore.
func (r *SQLiteRepository) AppendGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	return insertGoal(ctx, r.db, g)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertGoal(ctx context.Context, db execer, g core.Goal) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO goals
			(id, name, target_cents, current_cents, currency, status,
			 created_at, updated_at, completed_at, emoji, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents, g.Currency, string(g.Status),
		formatTimestamp(g.CreatedAt), formatTimestamp(g.UpdatedAt), formatTimestamp(g.CompletedAt),
		g.Emoji, g.Note)
	if err != nil {
		return fmt.Errorf("insert goal: %w: %v", core.ErrStorage, err)
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// GetAllDefinitions implements store.RecurringStore.
func (r *SQLiteRepository) GetAllDefinitions(ctx context.Context) ([]core.RecurringDefinition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, kind, frequency, start_date, end_date, note, type, amount_cents, category
		FROM recurring_definitions ORDER BY start_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("query recurring definitions: %w: %v", core.ErrStorage, err)
	}
	defer rows.Close()

	var out []core.RecurringDefinition
	for rows.Next() {
		var (
			rd                 core.RecurringDefinition
			kind, freq, typ    string
			startDate, endDate string
		)
		if err := rows.Scan(&rd.ID, &rd.Name, &kind, &freq, &startDate, &endDate,
			&rd.Note, &typ, &rd.Amount.Cents, &rd.Category); err != nil {
			return nil, fmt.Errorf("scan recurring definition: %w: %v", core.ErrStorage, err)
		}
		rd.Kind = core.RecurringKind(kind)
		rd.Frequency = core.Frequency(freq)
		rd.Type = core.TransactionType(typ)
		rd.StartDate = parseTimestamp(ctx, rd.ID, startDate)
		rd.EndDate = parseTimestamp(ctx, rd.ID, endDate)
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring definitions: %w: %v", core.ErrStorage, err)
	}
	return out, nil
}

// AppendDefinition implements store.RecurringStore.
func (r *SQLiteRepository) AppendDefinition(ctx context.Context, rd core.RecurringDefinition) error {
	if err := rd.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_definitions
			(id, name, kind, frequency, start_date, end_date, note, type, amount_cents, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rd.ID, rd.Name, string(rd.Kind), string(rd.Frequency),
		formatTimestamp(rd.StartDate), formatTimestamp(rd.EndDate),
		rd.Note, string(rd.Type), rd.Amount.Cents, rd.Category)
	if err != nil {
		return fmt.Errorf("insert recurring definition: %w: %v", core.ErrStorage, err)
	}
	return nil
}

// DeleteDefinition implements store.RecurringStore.
func (r *SQLiteRepository) DeleteDefinition(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_definitions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring definition: %w: %v", core.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recurring definition: %w: %v", core.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("recurring definition %s: %w", id, core.ErrNotFound)
	}
	return nil
}
