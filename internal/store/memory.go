package store

import (
	"context"
	"sync"

	"github.com/rafaelvasco/dindinho/internal/models"
)

// MemoryStore is a deterministic in-memory Store used by unit tests and the
// preview-only CLI paths. Safe for concurrent use; Transact serializes
// import sessions with an exclusive lock.
type MemoryStore struct {
	mu   sync.Mutex
	data *dataset
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: &dataset{}}
}

// Seed replaces the store contents. Test helper.
func (s *MemoryStore) Seed(expenses []models.Expense, ignored []models.IgnoredExpense, subs []models.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = &dataset{Expenses: expenses, Ignored: ignored, Subscriptions: subs}
}

func (s *MemoryStore) Expenses(_ context.Context) ([]models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Expense(nil), s.data.Expenses...), nil
}

func (s *MemoryStore) FindExpense(_ context.Context, key models.DedupKey) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.data.findExpense(key); e != nil {
		found := *e
		return &found, nil
	}
	return nil, nil
}

func (s *MemoryStore) UpdateExpenseCategory(_ context.Context, id, category string, confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.updateCategory(id, category, confirmed)
}

func (s *MemoryStore) IgnoredExpenses(_ context.Context) ([]models.IgnoredExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.IgnoredExpense(nil), s.data.Ignored...), nil
}

func (s *MemoryStore) FindIgnoredExpense(_ context.Context, norm string) (*models.IgnoredExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.data.findIgnored(norm); e != nil {
		found := *e
		return &found, nil
	}
	return nil, nil
}

func (s *MemoryStore) Subscriptions(_ context.Context) ([]models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Subscription, 0, len(s.data.Subscriptions))
	for _, sub := range s.data.Subscriptions {
		sub.History = append([]models.Occurrence(nil), sub.History...)
		out = append(out, sub)
	}
	return out, nil
}

func (s *MemoryStore) FindSubscription(_ context.Context, norm string) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub := s.data.findSubscription(norm); sub != nil {
		found := *sub
		found.History = append([]models.Occurrence(nil), sub.History...)
		return &found, nil
	}
	return nil, nil
}

// Transact stages mutations on a copy and swaps it in only when fn
// succeeds. The lock is held for the whole call, so concurrent commits
// against the same store never interleave.
func (s *MemoryStore) Transact(_ context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.data.clone()
	if err := fn(&txView{staged: staged}); err != nil {
		return err
	}
	s.data = staged
	return nil
}
