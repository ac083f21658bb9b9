// Package memory provides in-memory repository implementations. They are
// the default storage backend for single-node simulation runs: aggregates
// are held by reference, so a Save after a mutation is a no-op for state
// already in the store but still required by the repository contract so
// that durable backends can be swapped in without touching the use cases.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/iho/tradesim/internal/domain"
)

// AccountRepository stores cash accounts in a map.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.CashAccount
}

// NewAccountRepository creates an empty account store.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]*domain.CashAccount),
	}
}

func (r *AccountRepository) Save(_ context.Context, account *domain.CashAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.accounts[account.ID()] = account

	return nil
}

func (r *AccountRepository) GetByID(_ context.Context, id string) (*domain.CashAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	return account, nil
}

func (r *AccountRepository) List(_ context.Context, limit, offset int) ([]*domain.CashAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.accounts))
	for id := range r.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	accounts := make([]*domain.CashAccount, 0, limit)
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(accounts) == limit {
			break
		}
		accounts = append(accounts, r.accounts[id])
	}

	return accounts, nil
}

func (r *AccountRepository) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.accounts[id]

	return ok, nil
}

func (r *AccountRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	delete(r.accounts, id)

	return nil
}
