// Package models defines the core data types of the import pipeline:
// parsed statement rows, persisted expenses, the ignore list, subscriptions
// and the per-row import decisions surfaced for user review.
package models

import (
	"time"
)

// Dialect identifies one of the two supported statement layouts.
// The set is closed; parsers and the format detector are exhaustive over it.
type Dialect string

const (
	DialectCreditCard     Dialect = "credit_card"
	DialectAccountExtract Dialect = "account_extract"
)

// ParsedTransaction is one successfully parsed statement row. Amounts are
// signed integer centavos; expenses on credit-card statements are positive,
// money leaving an account extract is negative.
type ParsedTransaction struct {
	Date                  time.Time
	Description           string
	NormalizedDescription string
	AmountCents           int64
	SourceDialect         Dialect
}

// DedupKey identifies a physical transaction for exact duplicate detection.
// No fuzzy tolerance: two rows are duplicates only if all three fields match.
type DedupKey struct {
	Date                  string // YYYY-MM-DD
	AmountCents           int64
	NormalizedDescription string
}

// Key returns the DedupKey of a parsed transaction.
func (t ParsedTransaction) Key() DedupKey {
	return DedupKey{
		Date:                  t.Date.Format("2006-01-02"),
		AmountCents:           t.AmountCents,
		NormalizedDescription: t.NormalizedDescription,
	}
}

// Expense is a committed financial record. Created only by the importer.
type Expense struct {
	ID                    string    `yaml:"id"`
	Date                  time.Time `yaml:"date"`
	Description           string    `yaml:"description"`
	NormalizedDescription string    `yaml:"normalized_description"`
	AmountCents           int64     `yaml:"amount_cents"`
	Category              string    `yaml:"category"`
	// CategoryConfirmed marks a category edited by a human. Once set, the
	// category is immutable to automated categorization runs.
	CategoryConfirmed bool `yaml:"category_confirmed"`
	// SubscriptionRef holds the normalized description of the matched
	// subscription, empty when the expense is not recurring.
	SubscriptionRef string `yaml:"subscription_ref,omitempty"`
}

// Key returns the DedupKey of an expense.
func (e Expense) Key() DedupKey {
	return DedupKey{
		Date:                  e.Date.Format("2006-01-02"),
		AmountCents:           e.AmountCents,
		NormalizedDescription: e.NormalizedDescription,
	}
}

// IgnoreScope controls how long an ignore-list entry lives.
type IgnoreScope string

const (
	// IgnoreScopeOneTime entries are consumed after matching once.
	IgnoreScopeOneTime IgnoreScope = "one-time"
	// IgnoreScopePermanent entries persist until explicitly removed.
	IgnoreScopePermanent IgnoreScope = "permanent"
)

// IgnoredExpense suppresses future imports of matching descriptions.
type IgnoredExpense struct {
	NormalizedDescription string      `yaml:"normalized_description"`
	Scope                 IgnoreScope `yaml:"scope"`
}

// Occurrence is one recorded charge of a subscription.
type Occurrence struct {
	Date        time.Time `yaml:"date"`
	AmountCents int64     `yaml:"amount_cents"`
}

// Period is the expected cadence of a subscription.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// Days returns the nominal length of one period in days.
func (p Period) Days() int {
	if p == PeriodYearly {
		return 365
	}
	return 30
}

// Subscription tracks a recurring charge. History is ordered by date.
type Subscription struct {
	NormalizedDescription string       `yaml:"normalized_description"`
	ExpectedPeriod        Period       `yaml:"expected_period"`
	History               []Occurrence `yaml:"history"`
}

// LastOccurrence returns the most recent recorded occurrence.
func (s Subscription) LastOccurrence() (Occurrence, bool) {
	if len(s.History) == 0 {
		return Occurrence{}, false
	}
	return s.History[len(s.History)-1], true
}
