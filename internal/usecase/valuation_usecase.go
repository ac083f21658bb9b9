package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/tradesim/internal/domain"
)

// ValuationUseCase computes read-only market values and profit/loss over
// holdings and ledger entries. It never mutates any aggregate. Explicit
// per-symbol price overrides always take precedence over the oracle.
type ValuationUseCase struct {
	portfolioRepo PortfolioRepository
	oracle        PriceOracle
}

// NewValuationUseCase creates a new ValuationUseCase. oracle may be nil,
// in which case every price must be supplied explicitly.
func NewValuationUseCase(portfolioRepo PortfolioRepository, oracle PriceOracle) *ValuationUseCase {
	return &ValuationUseCase{
		portfolioRepo: portfolioRepo,
		oracle:        oracle,
	}
}

// BreakdownRow is the per-holding view of a portfolio breakdown. Price,
// value and unrealized P/L are nil when no price could be resolved for the
// symbol.
type BreakdownRow struct {
	Symbol       string
	Quantity     decimal.Decimal
	AverageCost  decimal.Decimal
	MarketPrice  *decimal.Decimal
	MarketValue  *decimal.Decimal
	UnrealizedPL *decimal.Decimal
}

// BreakdownResult aggregates breakdown rows. Totals cover only the rows
// whose price resolved; unpriced rows are listed but excluded from the
// aggregates.
type BreakdownResult struct {
	Rows              []BreakdownRow
	TotalMarketValue  decimal.Decimal
	TotalUnrealizedPL decimal.Decimal
	PricedRows        int
}

// HoldingMarketValue values one holding at the explicit price, or at the
// oracle's quote when price is nil.
func (uc *ValuationUseCase) HoldingMarketValue(ctx context.Context, h domain.HoldingSnapshot, price *decimal.Decimal) (decimal.Decimal, error) {
	pr, err := uc.priceFor(ctx, h, price)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return domain.RoundMoney(h.Quantity.Mul(pr)), nil
}

// HoldingUnrealizedPL computes (price - average_cost) * quantity for one
// holding, quantized to cents.
func (uc *ValuationUseCase) HoldingUnrealizedPL(ctx context.Context, h domain.HoldingSnapshot, price *decimal.Decimal) (decimal.Decimal, error) {
	pr, err := uc.priceFor(ctx, h, price)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return domain.RoundMoney(pr.Sub(h.AverageCost).Mul(h.Quantity)), nil
}

// PortfolioMarketValue sums the market value of every holding. A price
// that cannot be resolved for any holding fails the whole computation.
func (uc *ValuationUseCase) PortfolioMarketValue(ctx context.Context, holdings []domain.HoldingSnapshot, overrides map[string]decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero

	for _, h := range holdings {
		mv, err := uc.HoldingMarketValue(ctx, h, overridePrice(overrides, h.Symbol))
		if err != nil {
			return decimal.Decimal{}, err
		}

		total = total.Add(mv)
	}

	return domain.RoundMoney(total), nil
}

// PortfolioUnrealizedPL sums unrealized P/L across every holding.
func (uc *ValuationUseCase) PortfolioUnrealizedPL(ctx context.Context, holdings []domain.HoldingSnapshot, overrides map[string]decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero

	for _, h := range holdings {
		pl, err := uc.HoldingUnrealizedPL(ctx, h, overridePrice(overrides, h.Symbol))
		if err != nil {
			return decimal.Decimal{}, err
		}

		total = total.Add(pl)
	}

	return domain.RoundMoney(total), nil
}

// RealizedPL sums the profit/loss recorded on ledger entries, skipping
// entries that carry none.
func (uc *ValuationUseCase) RealizedPL(entries []*domain.Transaction) decimal.Decimal {
	total := decimal.Zero

	for _, e := range entries {
		if pl, ok := e.ProfitLoss(); ok {
			total = total.Add(pl)
		}
	}

	return domain.RoundMoney(total)
}

// PortfolioBreakdown produces one row per holding, pricing each from the
// overrides or the oracle. A symbol with no resolvable price yields a row
// with nil price fields rather than failing the breakdown.
func (uc *ValuationUseCase) PortfolioBreakdown(ctx context.Context, holdings []domain.HoldingSnapshot, overrides map[string]decimal.Decimal) (BreakdownResult, error) {
	result := BreakdownResult{
		Rows:              make([]BreakdownRow, 0, len(holdings)),
		TotalMarketValue:  decimal.Zero,
		TotalUnrealizedPL: decimal.Zero,
	}

	for _, h := range holdings {
		if err := validateSnapshot(h); err != nil {
			return BreakdownResult{}, err
		}

		row := BreakdownRow{
			Symbol:      h.Symbol,
			Quantity:    h.Quantity,
			AverageCost: h.AverageCost,
		}

		pr, err := uc.priceFor(ctx, h, overridePrice(overrides, h.Symbol))
		if err == nil {
			mv := domain.RoundMoney(h.Quantity.Mul(pr))
			pl := domain.RoundMoney(pr.Sub(h.AverageCost).Mul(h.Quantity))

			row.MarketPrice = &pr
			row.MarketValue = &mv
			row.UnrealizedPL = &pl

			result.TotalMarketValue = result.TotalMarketValue.Add(mv)
			result.TotalUnrealizedPL = result.TotalUnrealizedPL.Add(pl)
			result.PricedRows++
		}

		result.Rows = append(result.Rows, row)
	}

	sort.Slice(result.Rows, func(i, j int) bool { return result.Rows[i].Symbol < result.Rows[j].Symbol })

	result.TotalMarketValue = domain.RoundMoney(result.TotalMarketValue)
	result.TotalUnrealizedPL = domain.RoundMoney(result.TotalUnrealizedPL)

	return result, nil
}

// PortfolioBreakdownByID loads a portfolio and computes its breakdown.
func (uc *ValuationUseCase) PortfolioBreakdownByID(ctx context.Context, portfolioID string, overrides map[string]decimal.Decimal) (BreakdownResult, error) {
	portfolio, err := uc.portfolioRepo.GetByID(ctx, portfolioID)
	if err != nil {
		return BreakdownResult{}, err
	}

	return uc.PortfolioBreakdown(ctx, portfolio.Holdings(), overrides)
}

func (uc *ValuationUseCase) priceFor(ctx context.Context, h domain.HoldingSnapshot, explicit *decimal.Decimal) (decimal.Decimal, error) {
	if err := validateSnapshot(h); err != nil {
		return decimal.Decimal{}, err
	}

	if explicit != nil {
		pr := domain.RoundMoney(*explicit)
		if !pr.IsPositive() {
			return decimal.Decimal{}, fmt.Errorf("%w: price for %s must be positive", domain.ErrValuation, h.Symbol)
		}

		return pr, nil
	}

	if uc.oracle == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: no price for %s and no oracle configured", domain.ErrValuation, h.Symbol)
	}

	pr, err := uc.oracle.Quote(ctx, h.Symbol)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: quote %s: %w", domain.ErrValuation, h.Symbol, err)
	}

	return domain.RoundMoney(pr), nil
}

func validateSnapshot(h domain.HoldingSnapshot) error {
	if h.Symbol == "" {
		return fmt.Errorf("%w: holding has no symbol", domain.ErrValuation)
	}

	if h.Quantity.IsNegative() {
		return fmt.Errorf("%w: holding %s has negative quantity", domain.ErrValuation, h.Symbol)
	}

	if h.AverageCost.IsNegative() {
		return fmt.Errorf("%w: holding %s has negative average cost", domain.ErrValuation, h.Symbol)
	}

	return nil
}

func overridePrice(overrides map[string]decimal.Decimal, symbol string) *decimal.Decimal {
	if overrides == nil {
		return nil
	}

	if pr, ok := overrides[symbol]; ok {
		return &pr
	}

	return nil
}
