package loans

import (
	"context"
	"slices"
	"sync"
)

// =============================================================================
// STORE - Where loan records live
// =============================================================================

// Store holds loan records. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, id LoanID) (Loan, error)
	List(ctx context.Context) ([]Loan, error)
	Create(ctx context.Context, loan Loan) error
	Update(ctx context.Context, loan Loan) error
	Delete(ctx context.Context, id LoanID) error

	// Modify runs fn on the stored record and saves the result atomically.
	// If fn returns an error nothing is saved.
	Modify(ctx context.Context, id LoanID, fn func(*Loan) error) (Loan, error)

	// Reset removes every record.
	Reset(ctx context.Context) error
}

// =============================================================================
// MEMORY STORE - In-memory implementation
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	loans map[LoanID]Loan
	order []LoanID
}

func NewMemory() *Memory {
	return &Memory{loans: make(map[LoanID]Loan)}
}

var _ Store = (*Memory)(nil)

func (m *Memory) Get(_ context.Context, id LoanID) (Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	loan, ok := m.loans[id]
	if !ok {
		return Loan{}, notFound(id)
	}
	return loan, nil
}

// List returns loans in creation order.
func (m *Memory) List(_ context.Context) ([]Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Loan, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.loans[id])
	}
	return out, nil
}

func (m *Memory) Create(_ context.Context, loan Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.loans[loan.ID]; ok {
		return ErrDuplicateLoan
	}
	m.loans[loan.ID] = loan
	m.order = append(m.order, loan.ID)
	return nil
}

func (m *Memory) Update(_ context.Context, loan Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.loans[loan.ID]; !ok {
		return notFound(loan.ID)
	}
	m.loans[loan.ID] = loan
	return nil
}

func (m *Memory) Delete(_ context.Context, id LoanID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.loans[id]; !ok {
		return notFound(id)
	}
	delete(m.loans, id)
	if i := slices.Index(m.order, id); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
	return nil
}

func (m *Memory) Modify(_ context.Context, id LoanID, fn func(*Loan) error) (Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loan, ok := m.loans[id]
	if !ok {
		return Loan{}, notFound(id)
	}
	// fn works on a copy; the stored record only changes on success.
	working := loan
	if err := fn(&working); err != nil {
		return Loan{}, err
	}
	working.ID = id
	m.loans[id] = working
	return working, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loans = make(map[LoanID]Loan)
	m.order = nil
	return nil
}
