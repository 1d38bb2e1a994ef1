package models

// Action is the disposition of one parsed row. The reconciliation engine
// proposes one of the first four; the user may override with any action,
// including ActionIgnoreAlways to upgrade a one-time ignore to permanent.
type Action string

const (
	ActionImport            Action = "import"
	ActionDuplicate         Action = "duplicate"
	ActionIgnoredMatch      Action = "ignored-match"
	ActionSubscriptionMatch Action = "subscription-match"
	ActionIgnoreAlways      Action = "ignore-always"
)

// ImportDecision is the proposed disposition of one parsed row, pending
// user confirmation. Transient: decisions are never persisted.
type ImportDecision struct {
	Transaction    ParsedTransaction
	ProposedAction Action
	// UserAction, when non-empty, overrides ProposedAction at commit time.
	UserAction Action

	// MatchedIgnoreScope is set when ProposedAction is ActionIgnoredMatch.
	MatchedIgnoreScope IgnoreScope
	// SubscriptionRef is set when ProposedAction is ActionSubscriptionMatch.
	SubscriptionRef string
	// AmountVaries flags a subscription match whose amount differs from the
	// last recorded occurrence. Informational; it never blocks the match.
	AmountVaries bool
	// CardPayment flags an account-extract row that looks like a credit-card
	// bill payment, so the reviewer can avoid double counting.
	CardPayment bool

	// Category is resolved by the categorization orchestrator for rows
	// proposed as ActionImport. Empty until then.
	Category string
}

// Effective returns the action that will be applied at commit time.
func (d ImportDecision) Effective() Action {
	if d.UserAction != "" {
		return d.UserAction
	}
	return d.ProposedAction
}
