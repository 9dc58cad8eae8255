package accounting

import (
	"fmt"

	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSignedAmount applies the sign a transaction carries on one of its accounts.
// Income credits the account, expense debits it; a transfer debits the source and credits
// the destination with the amount the destination actually received.
func CalculateSignedAmount(txn domain.Transaction, accountID string) (decimal.Decimal, error) {
	switch txn.Type {
	case domain.Income:
		if accountID == txn.AccountID {
			return txn.AccountAmount, nil
		}
	case domain.Expense:
		if accountID == txn.AccountID {
			return txn.AccountAmount.Neg(), nil
		}
	case domain.Transfer:
		switch accountID {
		case txn.FromAccountID:
			return txn.AccountAmount.Neg(), nil
		case txn.ToAccountID:
			if txn.ToAmount == nil {
				return decimal.Zero, fmt.Errorf("transfer %s has no received amount", txn.TransactionID)
			}
			return *txn.ToAmount, nil
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown transaction type '%s' encountered for transaction ID %s", txn.Type, txn.TransactionID)
	}
	return decimal.Zero, fmt.Errorf("transaction %s does not touch account %s", txn.TransactionID, accountID)
}

// BalanceChanges returns the signed change the transaction applies to each account it touches.
func BalanceChanges(txn domain.Transaction) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, 2)
	for _, accountID := range txn.AccountIDs() {
		signed, err := CalculateSignedAmount(txn, accountID)
		if err != nil {
			return nil, err
		}
		changes[accountID] = changes[accountID].Add(signed)
	}
	return changes, nil
}

// ReversedChanges negates every change, producing the effect that undoes it.
func ReversedChanges(changes map[string]decimal.Decimal) map[string]decimal.Decimal {
	reversed := make(map[string]decimal.Decimal, len(changes))
	for accountID, delta := range changes {
		reversed[accountID] = delta.Neg()
	}
	return reversed
}

// MergeChanges sums several change sets account by account. Zero net changes are dropped.
func MergeChanges(sets ...map[string]decimal.Decimal) map[string]decimal.Decimal {
	merged := make(map[string]decimal.Decimal)
	for _, set := range sets {
		for accountID, delta := range set {
			merged[accountID] = merged[accountID].Add(delta)
		}
	}
	for accountID, delta := range merged {
		if delta.IsZero() {
			delete(merged, accountID)
		}
	}
	return merged
}
