package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/iho/tradesim/internal/domain"
)

// MockAccountRepository is a mock implementation of AccountRepository.
// Zero-value behavior is an in-memory store; individual methods can be
// overridden through the *Func fields to inject failures.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.CashAccount

	SaveFunc    func(ctx context.Context, account *domain.CashAccount) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.CashAccount, error)
	ListFunc    func(ctx context.Context, limit, offset int) ([]*domain.CashAccount, error)
	ExistsFunc  func(ctx context.Context, id string) (bool, error)
	DeleteFunc  func(ctx context.Context, id string) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.CashAccount),
	}
}

func (m *MockAccountRepository) Save(ctx context.Context, account *domain.CashAccount) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID()] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.CashAccount, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.CashAccount, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var accounts []*domain.CashAccount
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(accounts) == limit {
			break
		}
		accounts = append(accounts, m.accounts[id])
	}
	return accounts, nil
}

func (m *MockAccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.accounts[id]
	return ok, nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(m.accounts, id)
	return nil
}

// MockPortfolioRepository is a mock implementation of PortfolioRepository.
type MockPortfolioRepository struct {
	mu         sync.RWMutex
	portfolios map[string]*domain.Portfolio

	SaveFunc        func(ctx context.Context, portfolio *domain.Portfolio) error
	GetByIDFunc     func(ctx context.Context, id string) (*domain.Portfolio, error)
	ListFunc        func(ctx context.Context, limit, offset int) ([]*domain.Portfolio, error)
	ListByOwnerFunc func(ctx context.Context, owner string) ([]*domain.Portfolio, error)
	DeleteFunc      func(ctx context.Context, id string) error
}

func NewMockPortfolioRepository() *MockPortfolioRepository {
	return &MockPortfolioRepository{
		portfolios: make(map[string]*domain.Portfolio),
	}
}

func (m *MockPortfolioRepository) Save(ctx context.Context, portfolio *domain.Portfolio) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, portfolio)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.portfolios[portfolio.ID()] = portfolio
	return nil
}

func (m *MockPortfolioRepository) GetByID(ctx context.Context, id string) (*domain.Portfolio, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.portfolios[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPortfolioNotFound
}

func (m *MockPortfolioRepository) List(ctx context.Context, limit, offset int) ([]*domain.Portfolio, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.portfolios))
	for id := range m.portfolios {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var portfolios []*domain.Portfolio
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(portfolios) == limit {
			break
		}
		portfolios = append(portfolios, m.portfolios[id])
	}
	return portfolios, nil
}

func (m *MockPortfolioRepository) ListByOwner(ctx context.Context, owner string) ([]*domain.Portfolio, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, owner)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var portfolios []*domain.Portfolio
	for _, p := range m.portfolios {
		if p.Owner() == owner {
			portfolios = append(portfolios, p)
		}
	}
	sort.Slice(portfolios, func(i, j int) bool { return portfolios[i].ID() < portfolios[j].ID() })
	return portfolios, nil
}

func (m *MockPortfolioRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.portfolios[id]; !ok {
		return domain.ErrPortfolioNotFound
	}
	delete(m.portfolios, id)
	return nil
}

// MockTransactionRepository is a mock implementation of
// TransactionRepository.
type MockTransactionRepository struct {
	mu      sync.RWMutex
	entries []*domain.Transaction

	AppendFunc         func(ctx context.Context, entry *domain.Transaction) error
	GetByIDFunc        func(ctx context.Context, id string) (*domain.Transaction, error)
	ListFunc           func(ctx context.Context, limit, offset int) ([]*domain.Transaction, error)
	ListForAccountFunc func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

func (m *MockTransactionRepository) Append(ctx context.Context, entry *domain.Transaction) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.ID() == id {
			return e, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) List(ctx context.Context, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return pageEntries(m.entries, limit, offset), nil
}

func (m *MockTransactionRepository) ListForAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListForAccountFunc != nil {
		return m.ListForAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.Transaction
	for _, e := range m.entries {
		if e.AccountID() == accountID {
			matched = append(matched, e)
		}
	}
	return pageEntries(matched, limit, offset), nil
}

// Entries returns everything appended so far.
func (m *MockTransactionRepository) Entries() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transaction, len(m.entries))
	copy(out, m.entries)
	return out
}

func pageEntries(entries []*domain.Transaction, limit, offset int) []*domain.Transaction {
	if offset >= len(entries) {
		return nil
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	out := make([]*domain.Transaction, end-offset)
	copy(out, entries[offset:end])
	return out
}

// MockIDGenerator generates sequential IDs for deterministic tests.
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return fmt.Sprintf("id-%04d", m.next)
}
