// Package memory is the in-process store backend. It backs the default
// configuration and every service test; it implements the same ports as
// the SQLite repository.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
)

type Store struct {
	mu      sync.Mutex
	loc     *time.Location
	txs     []core.Transaction
	goals   []core.Goal
	defs    []core.RecurringDefinition
	failing bool
	saves   int
}

func New(loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{loc: loc}
}

// Append stores the transaction after validation and returns its id.
func (s *Store) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, tx)
	return tx.ID, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.txs {
		if tx.ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
}

func (s *Store) GetAllTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...), nil
}

func (s *Store) GetTransactionsForMonth(_ context.Context, monthKey string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.CreatedAt.IsZero() {
			continue
		}
		if core.MonthKey(tx.CreatedAt, s.loc) == monthKey {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) GetAllGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Goal(nil), s.goals...), nil
}

// SaveGoals replaces the stored goal set. With SetFailing(true) the
// write fails and the previous set is kept, which is what the
// reconciler's rollback tests exercise.
func (s *Store) SaveGoals(_ context.Context, goals []core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return fmt.Errorf("save goals: %w", core.ErrStorage)
	}
	s.goals = append([]core.Goal(nil), goals...)
	s.saves++
	return nil
}

func (s *Store) AppendGoal(_ context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return fmt.Errorf("append goal: %w", core.ErrStorage)
	}
	s.goals = append(s.goals, g)
	return nil
}

func (s *Store) GetAllDefinitions(_ context.Context) ([]core.RecurringDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RecurringDefinition(nil), s.defs...), nil
}

func (s *Store) AppendDefinition(_ context.Context, rd core.RecurringDefinition) error {
	if err := rd.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs = append(s.defs, rd)
	return nil
}

func (s *Store) DeleteDefinition(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rd := range s.defs {
		if rd.ID == id {
			s.defs = append(s.defs[:i], s.defs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("recurring definition %s: %w", id, core.ErrNotFound)
}

// SetFailing toggles simulated goal-persistence failures.
func (s *Store) SetFailing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = v
}

// SaveCount reports how many goal saves succeeded, used to assert that
// recomputes without changes do not write.
func (s *Store) SaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
