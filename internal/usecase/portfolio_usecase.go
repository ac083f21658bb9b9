package usecase

import (
	"context"
	"sort"

	"github.com/iho/tradesim/internal/domain"
)

// PortfolioUseCase handles portfolio lifecycle and read access.
type PortfolioUseCase struct {
	portfolioRepo PortfolioRepository
	accountRepo   AccountRepository
	idGen         IDGenerator
}

// NewPortfolioUseCase creates a new PortfolioUseCase.
func NewPortfolioUseCase(portfolioRepo PortfolioRepository, accountRepo AccountRepository, idGen IDGenerator) *PortfolioUseCase {
	return &PortfolioUseCase{
		portfolioRepo: portfolioRepo,
		accountRepo:   accountRepo,
		idGen:         idGen,
	}
}

// CreatePortfolioInput represents input for creating a portfolio.
type CreatePortfolioInput struct {
	ID        string
	Owner     string
	AccountID string
	Currency  string
}

// CreatePortfolio creates an empty portfolio. A non-empty AccountID must
// reference an existing cash account.
func (uc *PortfolioUseCase) CreatePortfolio(ctx context.Context, input CreatePortfolioInput) (*domain.Portfolio, error) {
	id := input.ID
	if id == "" {
		id = uc.idGen.Generate()
	}

	if input.AccountID != "" {
		if _, err := uc.accountRepo.GetByID(ctx, input.AccountID); err != nil {
			return nil, err
		}
	}

	portfolio, err := domain.NewPortfolio(id, input.Owner, input.AccountID, input.Currency)
	if err != nil {
		return nil, err
	}

	if err := uc.portfolioRepo.Save(ctx, portfolio); err != nil {
		return nil, err
	}

	return portfolio, nil
}

// GetPortfolio retrieves a portfolio by ID.
func (uc *PortfolioUseCase) GetPortfolio(ctx context.Context, id string) (*domain.Portfolio, error) {
	return uc.portfolioRepo.GetByID(ctx, id)
}

// ListPortfoliosInput represents input for listing portfolios.
type ListPortfoliosInput struct {
	Owner  string
	Limit  int
	Offset int
}

// ListPortfolios lists portfolios, optionally filtered by owner.
func (uc *PortfolioUseCase) ListPortfolios(ctx context.Context, input ListPortfoliosInput) ([]*domain.Portfolio, error) {
	if input.Owner != "" {
		return uc.portfolioRepo.ListByOwner(ctx, input.Owner)
	}

	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.portfolioRepo.List(ctx, input.Limit, input.Offset)
}

// DeletePortfolio removes a portfolio. Only empty portfolios can be
// deleted.
func (uc *PortfolioUseCase) DeletePortfolio(ctx context.Context, id string) error {
	portfolio, err := uc.portfolioRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if len(portfolio.Holdings()) > 0 {
		return domain.ErrInvalidTransaction
	}

	return uc.portfolioRepo.Delete(ctx, id)
}

// ListHoldings returns snapshots of a portfolio's holdings sorted by
// symbol.
func (uc *PortfolioUseCase) ListHoldings(ctx context.Context, portfolioID string) ([]domain.HoldingSnapshot, error) {
	portfolio, err := uc.portfolioRepo.GetByID(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	holdings := portfolio.Holdings()
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })

	return holdings, nil
}
