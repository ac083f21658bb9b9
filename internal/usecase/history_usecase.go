package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/tradesim/internal/domain"
)

// HistoryUseCase provides read access to the ledger.
type HistoryUseCase struct {
	accountRepo   AccountRepository
	portfolioRepo PortfolioRepository
	ledgerRepo    TransactionRepository
}

// NewHistoryUseCase creates a new HistoryUseCase.
func NewHistoryUseCase(accountRepo AccountRepository, portfolioRepo PortfolioRepository, ledgerRepo TransactionRepository) *HistoryUseCase {
	return &HistoryUseCase{
		accountRepo:   accountRepo,
		portfolioRepo: portfolioRepo,
		ledgerRepo:    ledgerRepo,
	}
}

// HistoryFilter narrows a ledger listing. From/To bounds are inclusive.
type HistoryFilter struct {
	AccountID string
	Kind      domain.TransactionKind
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// ListTransactions returns ledger entries newest first. An entry with a
// zero timestamp always passes the range filter; the range is only ever
// used to narrow, never to drop entries whose timestamp is unknown.
func (uc *HistoryUseCase) ListTransactions(ctx context.Context, filter HistoryFilter) ([]*domain.Transaction, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}

	var (
		entries []*domain.Transaction
		err     error
	)

	if filter.AccountID != "" {
		entries, err = uc.ledgerRepo.ListForAccount(ctx, filter.AccountID, filter.Limit, filter.Offset)
	} else {
		entries, err = uc.ledgerRepo.List(ctx, filter.Limit, filter.Offset)
	}
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Transaction, 0, len(entries))
	for _, e := range entries {
		if filter.Kind != "" && e.Kind() != filter.Kind {
			continue
		}

		if !inRange(e.CreatedAt(), filter.From, filter.To) {
			continue
		}

		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })

	return out, nil
}

// GetTransaction retrieves one ledger entry by ID.
func (uc *HistoryUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.ledgerRepo.GetByID(ctx, id)
}

// AccountActivity is a point-in-time view of an account and its ledger.
type AccountActivity struct {
	AccountID  string
	Owner      string
	Currency   string
	Balance    decimal.Decimal
	RealizedPL decimal.Decimal
	Entries    []*domain.Transaction
}

// AccountActivity returns the account's current balance together with its
// entries (newest first) and the realized P/L summed over them.
func (uc *HistoryUseCase) AccountActivity(ctx context.Context, accountID string, filter HistoryFilter) (*AccountActivity, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	filter.AccountID = accountID

	entries, err := uc.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}

	realized := decimal.Zero
	for _, e := range entries {
		if pl, ok := e.ProfitLoss(); ok {
			realized = realized.Add(pl)
		}
	}

	return &AccountActivity{
		AccountID:  account.ID(),
		Owner:      account.Owner(),
		Currency:   account.Currency(),
		Balance:    account.Balance(),
		RealizedPL: domain.RoundMoney(realized),
		Entries:    entries,
	}, nil
}

// AccountSnapshot combines an account's activity with the holdings of the
// portfolios it funds.
type AccountSnapshot struct {
	Activity *AccountActivity
	Holdings []domain.HoldingSnapshot
}

// AccountSnapshot returns the account's activity together with every
// holding in the portfolios linked to it. An account with no linked
// portfolio gets empty holdings rather than an error.
func (uc *HistoryUseCase) AccountSnapshot(ctx context.Context, accountID string, filter HistoryFilter) (*AccountSnapshot, error) {
	activity, err := uc.AccountActivity(ctx, accountID, filter)
	if err != nil {
		return nil, err
	}

	portfolios, err := uc.portfolioRepo.ListByOwner(ctx, activity.Owner)
	if err != nil {
		return nil, err
	}

	var holdings []domain.HoldingSnapshot
	for _, p := range portfolios {
		if p.AccountID() != accountID {
			continue
		}
		holdings = append(holdings, p.Holdings()...)
	}

	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })

	return &AccountSnapshot{Activity: activity, Holdings: holdings}, nil
}

func inRange(at time.Time, from, to *time.Time) bool {
	if at.IsZero() {
		return true
	}

	if from != nil && at.Before(*from) {
		return false
	}

	if to != nil && at.After(*to) {
		return false
	}

	return true
}
