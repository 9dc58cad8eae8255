package repositories

import "context"

// Repositories groups the repositories bound to one store transaction.
// Every write made through them commits or rolls back together.
type Repositories struct {
	Accounts       AccountRepository
	Transactions   TransactionRepository
	FxRates        FxRateRepository
	Budgets        BudgetRepository
	Debts          DebtRepository
	Counterparties CounterpartyRepository
	Currencies     CurrencyRepository
}

// TransactionManager runs units of work against the embedded store.
type TransactionManager interface {
	// Update runs fn inside one exclusive read-write transaction. Returning an error
	// from fn rolls back every write made through repos.
	Update(ctx context.Context, fn func(repos Repositories) error) error

	// View runs fn inside a read-only transaction that sees the latest committed write.
	View(ctx context.Context, fn func(repos Repositories) error) error
}
