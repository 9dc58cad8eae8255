package repositories

import "context"

// Collection names the on-disk document collections. They are part of the persisted schema.
const (
	CollectionAccounts       = "accounts"
	CollectionTransactions   = "transactions"
	CollectionFxRates        = "fx_rates"
	CollectionBudgets        = "budgets"
	CollectionBudgetEntries  = "budget_entries"
	CollectionDebts          = "debts"
	CollectionCounterparties = "counterparties"
	CollectionCurrencies     = "currencies"
)

// Collections lists every document collection in a stable order.
var Collections = []string{
	CollectionCurrencies,
	CollectionAccounts,
	CollectionTransactions,
	CollectionFxRates,
	CollectionBudgets,
	CollectionBudgetEntries,
	CollectionDebts,
	CollectionCounterparties,
}

// DocumentStore gives schema migrations raw access to stored documents.
type DocumentStore interface {
	// SchemaVersion returns the recorded schema version; a store that never recorded one is version 1.
	SchemaVersion() (int, error)
	SetSchemaVersion(version int) error

	// ForEachDocument visits every document of a collection in key order. doc is only valid during fn.
	ForEachDocument(collection string, fn func(key, doc []byte) error) error
	PutDocument(collection string, key, doc []byte) error

	// Reindex rebuilds the secondary indexes from the documents.
	Reindex() error
}

// DocumentManager runs a unit of work over raw documents.
type DocumentManager interface {
	UpdateDocuments(ctx context.Context, fn func(docs DocumentStore) error) error
}
