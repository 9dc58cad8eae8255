package services

import (
	"github.com/SscSPs/money_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// goals may be nil when no planner is attached.
func NewServiceContainer(cfg *config.Config, uow portsrepo.TransactionManager, goals portssvc.GoalLinkChecker, options ...ServiceOption) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Conversion comes first since every money-moving service depends on it
	container.Conversion = NewConversionService(uow, domain.CurrencyCode(cfg.BridgeCurrency), options...)
	container.Currency = NewCurrencyService(uow, options...)
	container.FxRate = NewFxRateService(uow, container.Conversion, options...)
	container.Account = NewAccountService(uow, options...)

	// Budgets are fed by the transaction ledger inside its own unit of work
	container.Budget = NewBudgetService(uow, container.Conversion, goals, options...)
	container.Transaction = NewTransactionService(uow, container.Conversion, container.Budget, options...)

	container.Counterparty = NewCounterpartyService(uow, options...)
	container.Debt = NewDebtService(uow, container.Conversion, container.Transaction, options...)
	container.Reporting = NewReportingService(uow, container.Conversion, options...)

	return container
}
