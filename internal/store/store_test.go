package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelvasco/dindinho/internal/logging"
	"github.com/rafaelvasco/dindinho/internal/models"
)

func newTestExpense(id, desc string, cents int64) models.Expense {
	return models.Expense{
		ID:                    id,
		Date:                  time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
		Description:           desc,
		NormalizedDescription: desc,
		AmountCents:           cents,
		Category:              models.CategoryOther,
	}
}

// Both implementations must behave identically; run the same suite on each.
func storesUnderTest(t *testing.T) map[string]Store {
	fileStore, err := NewFileStore(t.TempDir(), &logging.MockLogger{})
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
	}
}

func TestTransactCommitsAtomically(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			err := s.Transact(ctx, func(tx Tx) error {
				if err := tx.CreateExpense(newTestExpense("e1", "netflix", 4490)); err != nil {
					return err
				}
				return tx.PutIgnoredExpense(models.IgnoredExpense{
					NormalizedDescription: "pix enviado",
					Scope:                 models.IgnoreScopePermanent,
				})
			})
			require.NoError(t, err)

			expenses, err := s.Expenses(ctx)
			require.NoError(t, err)
			assert.Len(t, expenses, 1)

			ignored, err := s.FindIgnoredExpense(ctx, "pix enviado")
			require.NoError(t, err)
			require.NotNil(t, ignored)
			assert.Equal(t, models.IgnoreScopePermanent, ignored.Scope)
		})
	}
}

func TestTransactRollsBackOnError(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			boom := errors.New("boom")

			err := s.Transact(ctx, func(tx Tx) error {
				if err := tx.CreateExpense(newTestExpense("e1", "netflix", 4490)); err != nil {
					return err
				}
				return boom
			})
			assert.ErrorIs(t, err, boom)

			expenses, err := s.Expenses(ctx)
			require.NoError(t, err)
			assert.Empty(t, expenses, "failed transaction must leave no rows behind")
		})
	}
}

func TestFindExpenseByDedupKey(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			expense := newTestExpense("e1", "apple com bill", 11990)

			require.NoError(t, s.Transact(ctx, func(tx Tx) error {
				return tx.CreateExpense(expense)
			}))

			found, err := s.FindExpense(ctx, expense.Key())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, "e1", found.ID)

			// A different amount is a different physical transaction.
			other := expense.Key()
			other.AmountCents = 11991
			found, err = s.FindExpense(ctx, other)
			require.NoError(t, err)
			assert.Nil(t, found)
		})
	}
}

func TestUpdateExpenseCategoryConfirmation(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Transact(ctx, func(tx Tx) error {
				return tx.CreateExpense(newTestExpense("e1", "uber trip", 2350))
			}))

			// Automated update works while unconfirmed.
			require.NoError(t, s.UpdateExpenseCategory(ctx, "e1", models.CategoryTransport, false))

			// Human confirmation.
			require.NoError(t, s.UpdateExpenseCategory(ctx, "e1", models.CategoryTransport, true))

			// Automated runs can no longer overwrite.
			err := s.UpdateExpenseCategory(ctx, "e1", models.CategoryOther, false)
			assert.ErrorIs(t, err, ErrCategoryConfirmed)

			expenses, err := s.Expenses(ctx)
			require.NoError(t, err)
			require.Len(t, expenses, 1)
			assert.Equal(t, models.CategoryTransport, expenses[0].Category)
			assert.True(t, expenses[0].CategoryConfirmed)
		})
	}
}

func TestSubscriptionHistory(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			dec := time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)
			jan := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

			require.NoError(t, s.Transact(ctx, func(tx Tx) error {
				return tx.PutSubscription(models.Subscription{
					NormalizedDescription: "netflix com",
					ExpectedPeriod:        models.PeriodMonthly,
					History:               []models.Occurrence{{Date: dec, AmountCents: 4490}},
				})
			}))

			require.NoError(t, s.Transact(ctx, func(tx Tx) error {
				return tx.AppendOccurrence("netflix com", models.Occurrence{Date: jan, AmountCents: 4990})
			}))

			sub, err := s.FindSubscription(ctx, "netflix com")
			require.NoError(t, err)
			require.NotNil(t, sub)
			require.Len(t, sub.History, 2)
			last, ok := sub.LastOccurrence()
			require.True(t, ok)
			assert.Equal(t, int64(4990), last.AmountCents)
		})
	}
}

func TestDeleteIgnoredExpense(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Transact(ctx, func(tx Tx) error {
				return tx.PutIgnoredExpense(models.IgnoredExpense{
					NormalizedDescription: "pagamento fatura",
					Scope:                 models.IgnoreScopeOneTime,
				})
			}))

			require.NoError(t, s.Transact(ctx, func(tx Tx) error {
				return tx.DeleteIgnoredExpense("pagamento fatura")
			}))

			entry, err := s.FindIgnoredExpense(ctx, "pagamento fatura")
			require.NoError(t, err)
			assert.Nil(t, entry)

			err = s.Transact(ctx, func(tx Tx) error {
				return tx.DeleteIgnoredExpense("pagamento fatura")
			})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStore(dir, &logging.MockLogger{})
	require.NoError(t, err)
	require.NoError(t, first.Transact(ctx, func(tx Tx) error {
		return tx.CreateExpense(newTestExpense("e1", "apple com bill", 11990))
	}))

	reopened, err := NewFileStore(dir, &logging.MockLogger{})
	require.NoError(t, err)
	expenses, err := reopened.Expenses(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "apple com bill", expenses[0].NormalizedDescription)
}
