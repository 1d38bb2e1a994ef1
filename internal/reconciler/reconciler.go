// Package reconciler classifies parsed transactions against prior state:
// the ignore list, already-persisted expenses and the subscription
// catalogue. It only computes decisions; persisted state is never mutated
// here.
package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/rafaelvasco/dindinho/internal/logging"
	"github.com/rafaelvasco/dindinho/internal/models"
	"github.com/rafaelvasco/dindinho/internal/store"
)

// DefaultToleranceDays is the window around one subscription period within
// which a recurring charge still counts as the next occurrence.
const DefaultToleranceDays = 5

// Engine proposes one ImportDecision per parsed transaction.
type Engine struct {
	store         store.Store
	toleranceDays int
	logger        logging.Logger
}

// NewEngine creates a reconciliation engine. toleranceDays <= 0 selects the
// default.
func NewEngine(s store.Store, toleranceDays int, logger logging.Logger) *Engine {
	if toleranceDays <= 0 {
		toleranceDays = DefaultToleranceDays
	}
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Engine{store: s, toleranceDays: toleranceDays, logger: logger}
}

// Reconcile evaluates each transaction in file order against a fixed
// priority ladder, stopping at the first match:
//
//  1. permanent ignore entry
//  2. one-time ignore entry (consumed only at commit, never on proposal)
//  3. exact (date, amount, normalized description) duplicate, against
//     persisted expenses or earlier rows of this same batch
//  4. subscription whose last occurrence is about one period away
//  5. otherwise: import, category deferred to the categorizer
//
// Within-batch rows are comparable to each other, so a transaction present
// twice in one file yields exactly one import-eligible decision.
func (e *Engine) Reconcile(ctx context.Context, transactions []models.ParsedTransaction) ([]models.ImportDecision, error) {
	ignored, err := e.store.IgnoredExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading ignore list: %w", err)
	}
	ignoreByDesc := make(map[string]models.IgnoredExpense, len(ignored))
	for _, entry := range ignored {
		ignoreByDesc[entry.NormalizedDescription] = entry
	}

	subs, err := e.store.Subscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading subscriptions: %w", err)
	}
	subByDesc := make(map[string]models.Subscription, len(subs))
	for _, sub := range subs {
		subByDesc[sub.NormalizedDescription] = sub
	}

	expenses, err := e.store.Expenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading expenses: %w", err)
	}
	persisted := make(map[models.DedupKey]struct{}, len(expenses))
	for _, exp := range expenses {
		persisted[exp.Key()] = struct{}{}
	}

	seenInBatch := make(map[models.DedupKey]struct{}, len(transactions))
	decisions := make([]models.ImportDecision, 0, len(transactions))

	for _, tx := range transactions {
		decision := models.ImportDecision{
			Transaction: tx,
			CardPayment: tx.SourceDialect == models.DialectAccountExtract && IsCardPayment(tx.NormalizedDescription),
		}

		key := tx.Key()
		switch {
		case e.matchIgnore(&decision, ignoreByDesc, models.IgnoreScopePermanent):
		case e.matchIgnore(&decision, ignoreByDesc, models.IgnoreScopeOneTime):
		case e.matchDuplicate(key, persisted, seenInBatch):
			decision.ProposedAction = models.ActionDuplicate
		case e.matchSubscription(&decision, subByDesc):
		default:
			decision.ProposedAction = models.ActionImport
		}

		// Rows of this batch become comparable to later rows regardless of
		// their own outcome only when they would actually create a record.
		if decision.ProposedAction == models.ActionImport ||
			decision.ProposedAction == models.ActionSubscriptionMatch {
			seenInBatch[key] = struct{}{}
		}

		decisions = append(decisions, decision)
	}

	e.logger.Info("Reconciled batch",
		logging.Field{Key: "transactions", Value: len(transactions)},
		logging.Field{Key: "decisions", Value: len(decisions)})
	return decisions, nil
}

func (e *Engine) matchIgnore(d *models.ImportDecision, byDesc map[string]models.IgnoredExpense, scope models.IgnoreScope) bool {
	entry, ok := byDesc[d.Transaction.NormalizedDescription]
	if !ok || entry.Scope != scope {
		return false
	}
	d.ProposedAction = models.ActionIgnoredMatch
	d.MatchedIgnoreScope = entry.Scope
	return true
}

func (e *Engine) matchDuplicate(key models.DedupKey, persisted, seenInBatch map[models.DedupKey]struct{}) bool {
	if _, ok := persisted[key]; ok {
		return true
	}
	_, ok := seenInBatch[key]
	return ok
}

func (e *Engine) matchSubscription(d *models.ImportDecision, byDesc map[string]models.Subscription) bool {
	sub, ok := byDesc[d.Transaction.NormalizedDescription]
	if !ok {
		return false
	}
	last, ok := sub.LastOccurrence()
	if !ok {
		// A catalogue entry with no history matches on description alone.
		d.ProposedAction = models.ActionSubscriptionMatch
		d.SubscriptionRef = sub.NormalizedDescription
		return true
	}

	elapsed := int(d.Transaction.Date.Sub(last.Date).Hours() / 24)
	period := sub.ExpectedPeriod.Days()
	if elapsed < period-e.toleranceDays || elapsed > period+e.toleranceDays {
		return false
	}

	d.ProposedAction = models.ActionSubscriptionMatch
	d.SubscriptionRef = sub.NormalizedDescription
	if d.Transaction.AmountCents != last.AmountCents {
		d.AmountVaries = true
		e.logger.Debug("Subscription amount changed",
			logging.Field{Key: "subscription", Value: sub.NormalizedDescription},
			logging.Field{Key: "previous", Value: last.AmountCents},
			logging.Field{Key: "current", Value: d.Transaction.AmountCents})
	}
	return true
}

// cardPaymentPatterns are the Brazilian bank wordings for paying a
// credit-card bill from a checking account. Every term of a pattern must be
// present. Matched against the normalized (lowercase) description, with
// diacritics folded.
var cardPaymentPatterns = [][]string{
	{"pagamento", "cartao"},
	{"pagamento", "fatura"},
	{"pag", "cartao"},
	{"pag", "fatura"},
	{"pgto", "cartao"},
	{"pgto", "fatura"},
	{"fatura", "cartao"},
	{"fatura", "credito"},
	{"cartao", "credito"},
}

var diacriticFolder = strings.NewReplacer(
	"á", "a", "â", "a", "ã", "a", "à", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u",
	"ç", "c",
)

// IsCardPayment reports whether a normalized account-extract description
// looks like a credit-card bill payment. Those rows duplicate the card
// statement's individual purchases, so the reviewer usually ignores them.
func IsCardPayment(normalizedDescription string) bool {
	folded := diacriticFolder.Replace(normalizedDescription)
	for _, pattern := range cardPaymentPatterns {
		all := true
		for _, term := range pattern {
			if !strings.Contains(folded, term) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
