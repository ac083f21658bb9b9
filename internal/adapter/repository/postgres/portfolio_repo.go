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

// PortfolioRepository implements usecase.PortfolioRepository. A portfolio
// and its holdings are written together in one transaction; Save replaces
// the holdings set wholesale, which keeps the row state identical to the
// in-memory aggregate without tracking per-holding dirtiness.
type PortfolioRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewPortfolioRepository creates a new PortfolioRepository.
func NewPortfolioRepository(pool *pgxpool.Pool, retrier *Retrier) *PortfolioRepository {
	return &PortfolioRepository{
		pool:    pool,
		retrier: retrier,
	}
}

// Save upserts the portfolio row and replaces its holdings.
func (r *PortfolioRepository) Save(ctx context.Context, portfolio *domain.Portfolio) error {
	holdings := portfolio.Holdings()

	return r.retrier.Retry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if _, err := tx.Exec(ctx, `
			INSERT INTO portfolios (id, owner, account_id, currency, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET updated_at = EXCLUDED.updated_at`,
			portfolio.ID(), portfolio.Owner(), portfolio.AccountID(), portfolio.Currency(),
			timeToPgTimestamptz(time.Now().UTC()),
		); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM holdings WHERE portfolio_id = $1`, portfolio.ID()); err != nil {
			return err
		}

		for _, h := range holdings {
			if _, err := tx.Exec(ctx, `
				INSERT INTO holdings (portfolio_id, symbol, currency, quantity, average_cost)
				VALUES ($1, $2, $3, $4, $5)`,
				portfolio.ID(), h.Symbol, h.Currency,
				decimalToNumeric(h.Quantity), decimalToNumeric(h.AverageCost),
			); err != nil {
				return err
			}
		}

		return tx.Commit(ctx)
	})
}

// GetByID restores a portfolio and its holdings.
func (r *PortfolioRepository) GetByID(ctx context.Context, id string) (*domain.Portfolio, error) {
	var owner, accountID, currency string

	err := r.pool.QueryRow(ctx, `
		SELECT owner, account_id, currency FROM portfolios WHERE id = $1`, id).
		Scan(&owner, &accountID, &currency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPortfolioNotFound, id)
		}

		return nil, err
	}

	holdings, err := r.loadHoldings(ctx, id)
	if err != nil {
		return nil, err
	}

	return domain.RestorePortfolio(id, owner, accountID, currency, holdings)
}

// List lists portfolios with pagination, ordered by ID.
func (r *PortfolioRepository) List(ctx context.Context, limit, offset int) ([]*domain.Portfolio, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM portfolios ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}

	ids, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}

	return r.loadAll(ctx, ids)
}

// ListByOwner lists every portfolio belonging to owner.
func (r *PortfolioRepository) ListByOwner(ctx context.Context, owner string) ([]*domain.Portfolio, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM portfolios WHERE owner = $1 ORDER BY id`, owner)
	if err != nil {
		return nil, err
	}

	ids, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}

	return r.loadAll(ctx, ids)
}

// Delete removes a portfolio and its holdings.
func (r *PortfolioRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM portfolios WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrPortfolioNotFound, id)
	}

	return nil
}

func (r *PortfolioRepository) loadAll(ctx context.Context, ids []string) ([]*domain.Portfolio, error) {
	portfolios := make([]*domain.Portfolio, 0, len(ids))
	for _, id := range ids {
		p, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		portfolios = append(portfolios, p)
	}

	return portfolios, nil
}

func (r *PortfolioRepository) loadHoldings(ctx context.Context, portfolioID string) ([]domain.HoldingSnapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT symbol, currency, quantity, average_cost
		FROM holdings WHERE portfolio_id = $1 ORDER BY symbol`, portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []domain.HoldingSnapshot
	for rows.Next() {
		var (
			symbol, currency string
			qty, cost        pgtype.Numeric
		)

		if err := rows.Scan(&symbol, &currency, &qty, &cost); err != nil {
			return nil, err
		}

		quantity, err := numericToDecimal(qty)
		if err != nil {
			return nil, fmt.Errorf("holding %s quantity: %w", symbol, err)
		}

		averageCost, err := numericToDecimal(cost)
		if err != nil {
			return nil, fmt.Errorf("holding %s average cost: %w", symbol, err)
		}

		holdings = append(holdings, domain.HoldingSnapshot{
			Symbol:      symbol,
			Currency:    currency,
			Quantity:    quantity,
			AverageCost: averageCost,
		})
	}

	return holdings, rows.Err()
}

func collectIDs(rows pgx.Rows) ([]string, error) {
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}
