package services

// ServiceContainer holds instances of all the ledger services.
// This is the main entry point for collaborators of the ledger.
type ServiceContainer struct {
	Currency     CurrencySvcFacade
	FxRate       FxRateSvcFacade
	Conversion   ConversionSvc
	Account      AccountSvcFacade
	Transaction  TransactionSvcFacade
	Budget       BudgetSvcFacade
	Debt         DebtSvcFacade
	Counterparty CounterpartySvcFacade
	Reporting    ReportingService
}
