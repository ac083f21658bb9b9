package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/tradesim/internal/domain"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool, retrier *Retrier) *AccountRepository {
	return &AccountRepository{
		pool:    pool,
		retrier: retrier,
	}
}

// Save upserts an account row.
func (r *AccountRepository) Save(ctx context.Context, account *domain.CashAccount) error {
	return r.retrier.Retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO accounts (id, owner, currency, balance, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET balance = EXCLUDED.balance, updated_at = EXCLUDED.updated_at`,
			account.ID(), account.Owner(), account.Currency(),
			decimalToNumeric(account.Balance()), timeToPgTimestamptz(time.Now().UTC()),
		)

		return err
	})
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.CashAccount, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, owner, currency, balance FROM accounts WHERE id = $1`, id)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
		}

		return nil, err
	}

	return account, nil
}

// List lists accounts with pagination, ordered by ID.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.CashAccount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner, currency, balance FROM accounts ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.CashAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// Exists reports whether an account row exists.
func (r *AccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists)

	return exists, err
}

// Delete removes an account row.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	return nil
}

func scanAccount(row pgx.Row) (*domain.CashAccount, error) {
	var (
		id, owner, currency string
		balance             pgtype.Numeric
	)

	if err := row.Scan(&id, &owner, &currency, &balance); err != nil {
		return nil, err
	}

	bal, err := numericToDecimal(balance)
	if err != nil {
		return nil, fmt.Errorf("account %s balance: %w", id, err)
	}

	return domain.NewCashAccount(id, owner, currency, bal)
}
