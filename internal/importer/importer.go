// Package importer drives the two-phase import session: Preview parses and
// reconciles a statement file into reviewable decisions, Commit applies the
// confirmed decisions atomically.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rafaelvasco/dindinho/internal/categorizer"
	"github.com/rafaelvasco/dindinho/internal/logging"
	"github.com/rafaelvasco/dindinho/internal/models"
	"github.com/rafaelvasco/dindinho/internal/parser"
	"github.com/rafaelvasco/dindinho/internal/parsererror"
	"github.com/rafaelvasco/dindinho/internal/reconciler"
	"github.com/rafaelvasco/dindinho/internal/store"
	"github.com/rafaelvasco/dindinho/internal/textutils"
)

// Importer orchestrates preview and commit for one statement file.
type Importer struct {
	store       store.Store
	engine      *reconciler.Engine
	categorizer *categorizer.Orchestrator
	logger      logging.Logger
}

// New wires an importer from its collaborators.
func New(s store.Store, engine *reconciler.Engine, cat *categorizer.Orchestrator, logger logging.Logger) *Importer {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Importer{store: s, engine: engine, categorizer: cat, logger: logger}
}

// PreviewResult is everything the reviewer needs to confirm a session.
type PreviewResult struct {
	Dialect   models.Dialect
	Decisions []models.ImportDecision
	// RowErrors lists rows that failed locale parsing. They never abort the
	// preview; the reviewer sees them alongside the parsed rows.
	RowErrors []parsererror.RowError
}

// Preview runs detection, parsing, reconciliation and categorization on a
// raw statement file. Nothing is persisted.
func (imp *Importer) Preview(ctx context.Context, raw []byte) (*PreviewResult, error) {
	dialect, err := parser.DetectDialect(raw)
	if err != nil {
		return nil, err
	}

	text, err := textutils.DecodeStatement(raw)
	if err != nil {
		return nil, err
	}

	p, err := parser.ForDialect(dialect, imp.logger)
	if err != nil {
		return nil, err
	}
	transactions, rowErrors, err := p.Parse(strings.NewReader(text))
	if err != nil {
		return nil, err
	}

	decisions, err := imp.engine.Reconcile(ctx, transactions)
	if err != nil {
		return nil, err
	}
	if imp.categorizer != nil {
		if err := imp.categorizer.Categorize(ctx, decisions); err != nil {
			return nil, err
		}
	}

	imp.logger.Info("Preview ready",
		logging.Field{Key: "dialect", Value: string(dialect)},
		logging.Field{Key: "decisions", Value: len(decisions)},
		logging.Field{Key: "row_errors", Value: len(rowErrors)})
	return &PreviewResult{Dialect: dialect, Decisions: decisions, RowErrors: rowErrors}, nil
}

// CommitResult summarizes an applied session.
type CommitResult struct {
	Created int
	Ignored int
	Skipped int
	// Conflicts lists rows skipped because an identical expense appeared
	// between preview and commit. The rest of the batch still applies.
	Conflicts []error
}

// Commit applies confirmed decisions in a single transaction. Either every
// row's effect is persisted or none is. Rows whose dedup key turns out to
// already exist are skipped, which makes re-running the same commit a no-op
// rather than a source of duplicates. A user who explicitly forces an
// import over a proposed duplicate bypasses that re-check.
func (imp *Importer) Commit(ctx context.Context, decisions []models.ImportDecision) (*CommitResult, error) {
	result := &CommitResult{}
	err := imp.store.Transact(ctx, func(tx store.Tx) error {
		for _, d := range decisions {
			if err := imp.applyDecision(tx, d, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	imp.logger.Info("Commit applied",
		logging.Field{Key: "created", Value: result.Created},
		logging.Field{Key: "ignored", Value: result.Ignored},
		logging.Field{Key: "skipped", Value: result.Skipped})
	return result, nil
}

func (imp *Importer) applyDecision(tx store.Tx, d models.ImportDecision, result *CommitResult) error {
	switch d.Effective() {
	case models.ActionImport:
		_, err := imp.applyImport(tx, d, result, "")
		return err

	case models.ActionSubscriptionMatch:
		ref := d.SubscriptionRef
		if ref == "" {
			ref = d.Transaction.NormalizedDescription
		}
		created, err := imp.applyImport(tx, d, result, ref)
		if err != nil || !created {
			return err
		}
		return imp.recordOccurrence(tx, ref, d.Transaction)

	case models.ActionIgnoredMatch:
		result.Ignored++
		if d.MatchedIgnoreScope != models.IgnoreScopeOneTime {
			return nil
		}
		// Consume the one-time entry. A batch can match it more than once;
		// the second delete finding nothing is fine.
		err := tx.DeleteIgnoredExpense(d.Transaction.NormalizedDescription)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return nil

	case models.ActionIgnoreAlways:
		result.Ignored++
		return tx.PutIgnoredExpense(models.IgnoredExpense{
			NormalizedDescription: d.Transaction.NormalizedDescription,
			Scope:                 models.IgnoreScopePermanent,
		})

	case models.ActionDuplicate:
		result.Skipped++
		return nil

	default:
		return fmt.Errorf("unknown action %q", d.Effective())
	}
}

// applyImport creates the expense unless an identical one already exists.
// subscriptionRef is empty for plain imports. Reports whether a row was
// actually created.
func (imp *Importer) applyImport(tx store.Tx, d models.ImportDecision, result *CommitResult, subscriptionRef string) (bool, error) {
	forced := d.UserAction == models.ActionImport && d.ProposedAction == models.ActionDuplicate
	if !forced {
		existing, err := tx.FindExpense(d.Transaction.Key())
		if err != nil {
			return false, err
		}
		if existing != nil {
			result.Skipped++
			result.Conflicts = append(result.Conflicts, &parsererror.CommitConflictError{
				Description: d.Transaction.Description,
				Date:        d.Transaction.Date.Format("2006-01-02"),
			})
			return false, nil
		}
	}

	category := d.Category
	if subscriptionRef != "" {
		category = models.CategorySubscriptions
	}
	if category == "" {
		category = models.CategoryOther
	}

	if err := tx.CreateExpense(models.Expense{
		ID:                    uuid.NewString(),
		Date:                  d.Transaction.Date,
		Description:           d.Transaction.Description,
		NormalizedDescription: d.Transaction.NormalizedDescription,
		AmountCents:           d.Transaction.AmountCents,
		Category:              models.CoerceCategory(category),
		SubscriptionRef:       subscriptionRef,
	}); err != nil {
		return false, err
	}
	result.Created++
	return true, nil
}

// recordOccurrence appends the charge to the subscription's history,
// creating a monthly catalogue entry when the user marked a brand-new
// recurring charge.
func (imp *Importer) recordOccurrence(tx store.Tx, ref string, t models.ParsedTransaction) error {
	occ := models.Occurrence{Date: t.Date, AmountCents: t.AmountCents}

	sub, err := tx.FindSubscription(ref)
	if err != nil {
		return err
	}
	if sub == nil {
		return tx.PutSubscription(models.Subscription{
			NormalizedDescription: ref,
			ExpectedPeriod:        models.PeriodMonthly,
			History:               []models.Occurrence{occ},
		})
	}
	return tx.AppendOccurrence(ref, occ)
}
