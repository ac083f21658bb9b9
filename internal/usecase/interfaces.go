package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/tradesim/internal/domain"
)

// AccountRepository defines data access for cash accounts.
type AccountRepository interface {
	Save(ctx context.Context, account *domain.CashAccount) error
	GetByID(ctx context.Context, id string) (*domain.CashAccount, error)
	List(ctx context.Context, limit, offset int) ([]*domain.CashAccount, error)
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// PortfolioRepository defines data access for portfolios.
type PortfolioRepository interface {
	Save(ctx context.Context, portfolio *domain.Portfolio) error
	GetByID(ctx context.Context, id string) (*domain.Portfolio, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Portfolio, error)
	ListByOwner(ctx context.Context, owner string) ([]*domain.Portfolio, error)
	Delete(ctx context.Context, id string) error
}

// TransactionRepository defines append and read access to the ledger.
type TransactionRepository interface {
	Append(ctx context.Context, entry *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Transaction, error)
	ListForAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
}

// PriceOracle resolves the current market price for a symbol.
type PriceOracle interface {
	Quote(ctx context.Context, symbol string) (decimal.Decimal, error)
	Symbols(ctx context.Context) ([]string, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
