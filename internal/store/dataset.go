package store

import (
	"fmt"

	"github.com/rafaelvasco/dindinho/internal/models"
)

// dataset is the full persisted state. Both implementations stage commits
// against a deep copy and swap it in only when the transaction succeeds.
type dataset struct {
	Expenses      []models.Expense        `yaml:"expenses"`
	Ignored       []models.IgnoredExpense `yaml:"ignored"`
	Subscriptions []models.Subscription   `yaml:"subscriptions"`
}

func (d *dataset) clone() *dataset {
	out := &dataset{
		Expenses:      append([]models.Expense(nil), d.Expenses...),
		Ignored:       append([]models.IgnoredExpense(nil), d.Ignored...),
		Subscriptions: make([]models.Subscription, 0, len(d.Subscriptions)),
	}
	for _, s := range d.Subscriptions {
		s.History = append([]models.Occurrence(nil), s.History...)
		out.Subscriptions = append(out.Subscriptions, s)
	}
	return out
}

func (d *dataset) findExpense(key models.DedupKey) *models.Expense {
	for i := range d.Expenses {
		if d.Expenses[i].Key() == key {
			return &d.Expenses[i]
		}
	}
	return nil
}

func (d *dataset) findIgnored(norm string) *models.IgnoredExpense {
	for i := range d.Ignored {
		if d.Ignored[i].NormalizedDescription == norm {
			return &d.Ignored[i]
		}
	}
	return nil
}

func (d *dataset) findSubscription(norm string) *models.Subscription {
	for i := range d.Subscriptions {
		if d.Subscriptions[i].NormalizedDescription == norm {
			return &d.Subscriptions[i]
		}
	}
	return nil
}

// txView implements Tx over a staged dataset copy.
type txView struct {
	staged *dataset
}

func (t *txView) FindExpense(key models.DedupKey) (*models.Expense, error) {
	if e := t.staged.findExpense(key); e != nil {
		found := *e
		return &found, nil
	}
	return nil, nil
}

func (t *txView) CreateExpense(expense models.Expense) error {
	if expense.ID == "" {
		return fmt.Errorf("expense id is required")
	}
	t.staged.Expenses = append(t.staged.Expenses, expense)
	return nil
}

func (t *txView) FindIgnoredExpense(norm string) (*models.IgnoredExpense, error) {
	if e := t.staged.findIgnored(norm); e != nil {
		found := *e
		return &found, nil
	}
	return nil, nil
}

func (t *txView) PutIgnoredExpense(entry models.IgnoredExpense) error {
	if existing := t.staged.findIgnored(entry.NormalizedDescription); existing != nil {
		*existing = entry
		return nil
	}
	t.staged.Ignored = append(t.staged.Ignored, entry)
	return nil
}

func (t *txView) DeleteIgnoredExpense(norm string) error {
	for i := range t.staged.Ignored {
		if t.staged.Ignored[i].NormalizedDescription == norm {
			t.staged.Ignored = append(t.staged.Ignored[:i], t.staged.Ignored[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (t *txView) FindSubscription(norm string) (*models.Subscription, error) {
	if s := t.staged.findSubscription(norm); s != nil {
		found := *s
		found.History = append([]models.Occurrence(nil), s.History...)
		return &found, nil
	}
	return nil, nil
}

func (t *txView) PutSubscription(sub models.Subscription) error {
	if existing := t.staged.findSubscription(sub.NormalizedDescription); existing != nil {
		*existing = sub
		return nil
	}
	t.staged.Subscriptions = append(t.staged.Subscriptions, sub)
	return nil
}

func (t *txView) AppendOccurrence(norm string, occ models.Occurrence) error {
	sub := t.staged.findSubscription(norm)
	if sub == nil {
		return ErrNotFound
	}
	sub.History = append(sub.History, occ)
	return nil
}

// updateCategory applies a category edit honoring the confirmation invariant.
func (d *dataset) updateCategory(id, category string, confirmed bool) error {
	for i := range d.Expenses {
		if d.Expenses[i].ID != id {
			continue
		}
		if d.Expenses[i].CategoryConfirmed && !confirmed {
			return ErrCategoryConfirmed
		}
		d.Expenses[i].Category = models.CoerceCategory(category)
		d.Expenses[i].CategoryConfirmed = confirmed
		return nil
	}
	return ErrNotFound
}
