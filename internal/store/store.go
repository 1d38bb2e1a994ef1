// Package store provides persistence for expenses, the ignore list and the
// subscription catalogue. The pipeline only needs exact-match lookup by
// dedup key, lookup by normalized description, and an atomic multi-row
// write for each commit batch.
package store

import (
	"context"
	"errors"

	"github.com/rafaelvasco/dindinho/internal/models"
)

// ErrCategoryConfirmed is returned when an automated run tries to overwrite
// a category a human already confirmed.
var ErrCategoryConfirmed = errors.New("category is user-confirmed and cannot be overwritten automatically")

// ErrNotFound is returned by Update operations on missing records.
var ErrNotFound = errors.New("record not found")

// Store is the persistence collaborator of the import pipeline.
//
// Transact runs fn against a transactional view. Mutations are staged and
// applied atomically when fn returns nil; any error discards them all.
// Transact also serializes import sessions: while one commit is running it
// holds an exclusive intent on the ignore list, the subscription catalogue
// and the duplicate-check window.
type Store interface {
	Expenses(ctx context.Context) ([]models.Expense, error)
	FindExpense(ctx context.Context, key models.DedupKey) (*models.Expense, error)
	// UpdateExpenseCategory records a category edit. confirmed marks a human
	// edit; unconfirmed (automated) updates fail with ErrCategoryConfirmed
	// when the current category is already user-confirmed.
	UpdateExpenseCategory(ctx context.Context, id, category string, confirmed bool) error

	IgnoredExpenses(ctx context.Context) ([]models.IgnoredExpense, error)
	FindIgnoredExpense(ctx context.Context, normalizedDescription string) (*models.IgnoredExpense, error)

	Subscriptions(ctx context.Context) ([]models.Subscription, error)
	FindSubscription(ctx context.Context, normalizedDescription string) (*models.Subscription, error)

	Transact(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the mutable view inside a Transact call.
type Tx interface {
	FindExpense(key models.DedupKey) (*models.Expense, error)
	CreateExpense(expense models.Expense) error

	FindIgnoredExpense(normalizedDescription string) (*models.IgnoredExpense, error)
	PutIgnoredExpense(entry models.IgnoredExpense) error
	DeleteIgnoredExpense(normalizedDescription string) error

	FindSubscription(normalizedDescription string) (*models.Subscription, error)
	PutSubscription(sub models.Subscription) error
	AppendOccurrence(normalizedDescription string, occ models.Occurrence) error
}
