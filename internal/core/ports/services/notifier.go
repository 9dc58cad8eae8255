package services

import "context"

// ChangeKind names the entity collection a committed write touched.
type ChangeKind string

const (
	ChangeAccounts       ChangeKind = "accounts"
	ChangeTransactions   ChangeKind = "transactions"
	ChangeBudgets        ChangeKind = "budgets"
	ChangeDebts          ChangeKind = "debts"
	ChangeCounterparties ChangeKind = "counterparties"
	ChangeFxRates        ChangeKind = "fx_rates"
	ChangeCurrencies     ChangeKind = "currencies"
)

// ChangeEvent is published after a write has committed.
type ChangeEvent struct {
	Kind   ChangeKind
	UserID string
	IDs    []string
}

// ChangeNotifier lets collaborators invalidate their caches. Publish never blocks the ledger.
type ChangeNotifier interface {
	Publish(ctx context.Context, events ...ChangeEvent)
}
