package boltdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	bolt "go.etcd.io/bbolt"
)

type accountRepository struct {
	tx *bolt.Tx
}

var _ repositories.AccountRepository = (*accountRepository)(nil)

func (r *accountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	var account domain.Account
	found, err := getJSON(r.tx, repositories.CollectionAccounts, accountID, &account)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	return &account, nil
}

func (r *accountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	accounts := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if _, ok := accounts[id]; ok {
			continue
		}
		account, err := r.FindAccountByID(ctx, id)
		if err != nil {
			return nil, err
		}
		accounts[id] = *account
	}
	return accounts, nil
}

func (r *accountRepository) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	accounts, err := listJSON(r.tx, repositories.CollectionAccounts, "", func(a domain.Account) bool {
		return a.UserID == userID
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].AccountID < accounts[j].AccountID
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (r *accountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	if err := putJSON(r.tx, repositories.CollectionAccounts, account.AccountID, account); err != nil {
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

func (r *accountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	b, err := bucket(r.tx, repositories.CollectionAccounts)
	if err != nil {
		return err
	}
	if b.Get([]byte(accountID)) == nil {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	return b.Delete([]byte(accountID))
}
