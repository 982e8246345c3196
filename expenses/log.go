package expenses

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateExpense is returned when an expense ID is already recorded.
var ErrDuplicateExpense = errors.New("expense already exists")

// Log is an in-memory expense log, safe for concurrent use.
type Log struct {
	mu       sync.RWMutex
	expenses []Expense
	ids      map[string]bool
	seq      int
}

func NewLog() *Log {
	return &Log{ids: make(map[string]bool)}
}

// Add validates and records an expense. An empty ID is assigned one.
func (l *Log) Add(_ context.Context, e Expense) (Expense, error) {
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e.ID == "" {
		l.seq++
		e.ID = fmt.Sprintf("exp-%d", l.seq)
		for l.ids[e.ID] {
			l.seq++
			e.ID = fmt.Sprintf("exp-%d", l.seq)
		}
	}
	if l.ids[e.ID] {
		return Expense{}, fmt.Errorf("%w: %s", ErrDuplicateExpense, e.ID)
	}
	l.ids[e.ID] = true
	l.expenses = append(l.expenses, e)
	return e, nil
}

// List returns expenses newest first.
func (l *Log) List(_ context.Context) []Expense {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Expense, len(l.expenses))
	copy(out, l.expenses)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (l *Log) Reset(_ context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.expenses = nil
	l.ids = make(map[string]bool)
	l.seq = 0
}
