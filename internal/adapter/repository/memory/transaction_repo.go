package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/iho/tradesim/internal/domain"
)

// TransactionRepository stores ledger entries in append order. Entries are
// immutable, so handing out the stored pointers is safe.
type TransactionRepository struct {
	mu      sync.RWMutex
	entries []*domain.Transaction
	byID    map[string]*domain.Transaction
}

// NewTransactionRepository creates an empty ledger store.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		byID: make(map[string]*domain.Transaction),
	}
}

func (r *TransactionRepository) Append(_ context.Context, entry *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[entry.ID()]; ok {
		return fmt.Errorf("%w: duplicate entry id %s", domain.ErrInvalidTransaction, entry.ID())
	}

	r.entries = append(r.entries, entry)
	r.byID[entry.ID()] = entry

	return nil
}

func (r *TransactionRepository) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, id)
	}

	return entry, nil
}

func (r *TransactionRepository) List(_ context.Context, limit, offset int) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return page(r.entries, limit, offset), nil
}

func (r *TransactionRepository) ListForAccount(_ context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.Transaction
	for _, e := range r.entries {
		if e.AccountID() == accountID {
			matched = append(matched, e)
		}
	}

	return page(matched, limit, offset), nil
}

func page(entries []*domain.Transaction, limit, offset int) []*domain.Transaction {
	if offset >= len(entries) {
		return nil
	}

	end := offset + limit
	if end > len(entries) || limit <= 0 {
		end = len(entries)
	}

	out := make([]*domain.Transaction, end-offset)
	copy(out, entries[offset:end])

	return out
}
