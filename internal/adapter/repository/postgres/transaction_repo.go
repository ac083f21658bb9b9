package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/tradesim/internal/domain"
)

// TransactionRepository implements usecase.TransactionRepository. The
// ledger table is insert-only; rows are never updated or deleted.
type TransactionRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool, retrier *Retrier) *TransactionRepository {
	return &TransactionRepository{
		pool:    pool,
		retrier: retrier,
	}
}

// Append inserts a ledger entry.
func (r *TransactionRepository) Append(ctx context.Context, entry *domain.Transaction) error {
	var metadata []byte
	if m := entry.Metadata(); len(m) > 0 {
		var err error
		metadata, err = json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
	}

	var qty, price, pl pgtype.Numeric
	if q, ok := entry.Quantity(); ok {
		qty = decimalToNumeric(q)
	}
	if p, ok := entry.Price(); ok {
		price = decimalToNumeric(p)
	}
	if p, ok := entry.ProfitLoss(); ok {
		pl = decimalToNumeric(p)
	}

	return r.retrier.Retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO transactions
				(id, kind, account_id, portfolio_id, symbol, amount, quantity, price, profit_loss, created_at, metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			entry.ID(), string(entry.Kind()), entry.AccountID(), entry.PortfolioID(), entry.Symbol(),
			decimalToNumeric(entry.Amount()), qty, price, pl,
			timeToPgTimestamptz(entry.CreatedAt()), metadata,
		)

		return err
	})
}

// GetByID retrieves one ledger entry.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, selectTransaction+` WHERE id = $1`, id)

	entry, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, id)
		}

		return nil, err
	}

	return entry, nil
}

// List lists ledger entries in append order.
func (r *TransactionRepository) List(ctx context.Context, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, selectTransaction+` ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}

	return collectTransactions(rows)
}

// ListForAccount lists an account's ledger entries in append order.
func (r *TransactionRepository) ListForAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		selectTransaction+` WHERE account_id = $1 ORDER BY created_at, id LIMIT $2 OFFSET $3`,
		accountID, limit, offset,
	)
	if err != nil {
		return nil, err
	}

	return collectTransactions(rows)
}

const selectTransaction = `
	SELECT id, kind, account_id, portfolio_id, symbol, amount, quantity, price, profit_loss, created_at, metadata
	FROM transactions`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		id, kind, accountID    string
		portfolioID, symbol    string
		amount, qty, price, pl pgtype.Numeric
		createdAt              pgtype.Timestamptz
		metadata               []byte
	)

	if err := row.Scan(&id, &kind, &accountID, &portfolioID, &symbol, &amount, &qty, &price, &pl, &createdAt, &metadata); err != nil {
		return nil, err
	}

	amt, err := numericToDecimal(amount)
	if err != nil {
		return nil, fmt.Errorf("entry %s amount: %w", id, err)
	}

	quantity, err := numericPtrToDecimalPtr(qty)
	if err != nil {
		return nil, fmt.Errorf("entry %s quantity: %w", id, err)
	}

	pricePtr, err := numericPtrToDecimalPtr(price)
	if err != nil {
		return nil, fmt.Errorf("entry %s price: %w", id, err)
	}

	plPtr, err := numericPtrToDecimalPtr(pl)
	if err != nil {
		return nil, fmt.Errorf("entry %s profit/loss: %w", id, err)
	}

	var meta map[string]string
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &meta); err != nil {
			return nil, fmt.Errorf("entry %s metadata: %w", id, err)
		}
	}

	return domain.NewTransaction(domain.TransactionInput{
		ID:          id,
		Kind:        domain.TransactionKind(kind),
		AccountID:   accountID,
		PortfolioID: portfolioID,
		Symbol:      symbol,
		Amount:      amt,
		Quantity:    quantity,
		Price:       pricePtr,
		ProfitLoss:  plPtr,
		CreatedAt:   createdAt.Time,
		Metadata:    meta,
	})
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	defer rows.Close()

	var entries []*domain.Transaction
	for rows.Next() {
		entry, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
