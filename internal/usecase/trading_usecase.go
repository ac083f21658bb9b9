package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/tradesim/internal/domain"
	"github.com/iho/tradesim/internal/infrastructure/metrics"
)

// TradingUseCase orchestrates buy and sell operations across cash accounts,
// portfolios and the ledger. There is no cross-aggregate atomic commit:
// each step locks one aggregate at a time, and a downstream failure is
// undone by explicitly reversing the already-applied steps. The step order
// is part of the contract: cash is spent before holdings are credited on a
// buy, and holdings are reduced before cash is credited on a sell, so a
// half-applied trade never leaves both cash and asset missing.
type TradingUseCase struct {
	accountRepo   AccountRepository
	portfolioRepo PortfolioRepository
	ledgerRepo    TransactionRepository
	oracle        PriceOracle
	idGen         IDGenerator
	policy        *domain.SymbolPolicy
	metrics       *metrics.Metrics
	log           zerolog.Logger
}

// NewTradingUseCase creates a new TradingUseCase.
func NewTradingUseCase(
	accountRepo AccountRepository,
	portfolioRepo PortfolioRepository,
	ledgerRepo TransactionRepository,
	oracle PriceOracle,
	idGen IDGenerator,
	policy *domain.SymbolPolicy,
	m *metrics.Metrics,
	log zerolog.Logger,
) *TradingUseCase {
	if policy == nil {
		policy = domain.NewSymbolPolicy()
	}

	return &TradingUseCase{
		accountRepo:   accountRepo,
		portfolioRepo: portfolioRepo,
		ledgerRepo:    ledgerRepo,
		oracle:        oracle,
		idGen:         idGen,
		policy:        policy,
		metrics:       m,
		log:           log,
	}
}

// TradeInput represents input for a buy or sell operation. A nil Price
// means the trade executes at the oracle's current market price.
type TradeInput struct {
	AccountID     string
	PortfolioID   string
	Symbol        string
	Quantity      decimal.Decimal
	Price         *decimal.Decimal
	TransactionID string
	Metadata      map[string]string
}

// Buy purchases quantity of a symbol, spending cash first and crediting the
// holding second. On any failure after the withdrawal, the withdrawn amount
// is deposited back; a failed ledger append additionally sells the bought
// quantity back at the same price. Compensation failures are reported
// alongside the original error, never silently swallowed.
func (uc *TradingUseCase) Buy(ctx context.Context, input TradeInput) (*domain.Transaction, error) {
	start := time.Now()

	sym, err := uc.policy.Normalize(input.Symbol)
	if err != nil {
		return nil, err
	}

	price, err := uc.resolvePrice(ctx, sym, input.Price)
	if err != nil {
		return nil, err
	}

	qty := input.Quantity

	entry, err := domain.NewTransaction(domain.TransactionInput{
		ID:          uc.transactionID(input.TransactionID),
		Kind:        domain.TransactionBuy,
		AccountID:   input.AccountID,
		PortfolioID: input.PortfolioID,
		Symbol:      sym,
		Quantity:    &qty,
		Price:       &price,
		Metadata:    input.Metadata,
	})
	if err != nil {
		return nil, err
	}

	amount := entry.Amount()

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	// Withdraw validates sufficiency under the account lock; a failure
	// here leaves no state to unwind.
	if _, err := account.Withdraw(amount); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Save(ctx, account); err != nil {
		return nil, uc.failBuy(ctx, fmt.Errorf("persist account: %w", err), account, amount, nil, "", decimal.Decimal{}, decimal.Decimal{})
	}

	portfolio, err := uc.portfolioRepo.GetByID(ctx, input.PortfolioID)
	if err != nil {
		return nil, uc.failBuy(ctx, fmt.Errorf("%w: load portfolio: %w", domain.ErrTrading, err), account, amount, nil, "", decimal.Decimal{}, decimal.Decimal{})
	}

	if _, err := portfolio.Buy(sym, qty, price); err != nil {
		return nil, uc.failBuy(ctx, err, account, amount, nil, "", decimal.Decimal{}, decimal.Decimal{})
	}

	if err := uc.portfolioRepo.Save(ctx, portfolio); err != nil {
		return nil, uc.failBuy(ctx, fmt.Errorf("persist portfolio: %w", err), account, amount, portfolio, sym, qty, price)
	}

	if err := uc.ledgerRepo.Append(ctx, entry); err != nil {
		return nil, uc.failBuy(ctx, fmt.Errorf("%w: append ledger entry: %w", domain.ErrTrading, err), account, amount, portfolio, sym, qty, price)
	}

	if uc.metrics != nil {
		uc.metrics.TradesExecuted.WithLabelValues("buy").Inc()
		uc.metrics.TradeAmount.Observe(amount.InexactFloat64())
		uc.metrics.TradeDuration.Observe(time.Since(start).Seconds())
	}

	return entry, nil
}

// Sell disposes of quantity of a symbol, reducing the holding first and
// crediting cash second. A failure after the holding mutation buys the
// quantity back at the same price; a failed ledger append additionally
// withdraws the deposited proceeds.
func (uc *TradingUseCase) Sell(ctx context.Context, input TradeInput) (*domain.Transaction, error) {
	start := time.Now()

	sym, err := uc.policy.Normalize(input.Symbol)
	if err != nil {
		return nil, err
	}

	price, err := uc.resolvePrice(ctx, sym, input.Price)
	if err != nil {
		return nil, err
	}

	portfolio, err := uc.portfolioRepo.GetByID(ctx, input.PortfolioID)
	if err != nil {
		return nil, fmt.Errorf("%w: load portfolio: %w", domain.ErrTrading, err)
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if _, ok := portfolio.Holding(sym); !ok {
		return nil, fmt.Errorf("%w: no holding for %s", domain.ErrInsufficientHoldings, sym)
	}

	qty := input.Quantity

	realized, err := portfolio.Sell(sym, qty, price)
	if err != nil {
		return nil, err
	}

	if err := uc.portfolioRepo.Save(ctx, portfolio); err != nil {
		return nil, uc.failSell(ctx, fmt.Errorf("persist portfolio: %w", err), portfolio, sym, qty, price, nil, decimal.Decimal{})
	}

	entry, err := domain.NewTransaction(domain.TransactionInput{
		ID:          uc.transactionID(input.TransactionID),
		Kind:        domain.TransactionSell,
		AccountID:   input.AccountID,
		PortfolioID: input.PortfolioID,
		Symbol:      sym,
		Quantity:    &qty,
		Price:       &price,
		ProfitLoss:  &realized,
		Metadata:    input.Metadata,
	})
	if err != nil {
		return nil, uc.failSell(ctx, err, portfolio, sym, qty, price, nil, decimal.Decimal{})
	}

	proceeds := entry.Amount()

	if _, err := account.Deposit(proceeds); err != nil {
		return nil, uc.failSell(ctx, fmt.Errorf("%w: deposit proceeds: %w", domain.ErrTrading, err), portfolio, sym, qty, price, nil, decimal.Decimal{})
	}

	if err := uc.accountRepo.Save(ctx, account); err != nil {
		return nil, uc.failSell(ctx, fmt.Errorf("persist account: %w", err), portfolio, sym, qty, price, account, proceeds)
	}

	if err := uc.ledgerRepo.Append(ctx, entry); err != nil {
		return nil, uc.failSell(ctx, fmt.Errorf("%w: append ledger entry: %w", domain.ErrTrading, err), portfolio, sym, qty, price, account, proceeds)
	}

	if uc.metrics != nil {
		uc.metrics.TradesExecuted.WithLabelValues("sell").Inc()
		uc.metrics.TradeAmount.Observe(proceeds.InexactFloat64())
		uc.metrics.TradeDuration.Observe(time.Since(start).Seconds())
	}

	return entry, nil
}

func (uc *TradingUseCase) transactionID(explicit string) string {
	if explicit != "" {
		return explicit
	}

	return uc.idGen.Generate()
}

func (uc *TradingUseCase) resolvePrice(ctx context.Context, symbol string, explicit *decimal.Decimal) (decimal.Decimal, error) {
	if explicit != nil {
		return *explicit, nil
	}

	price, err := uc.oracle.Quote(ctx, symbol)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.OracleQuotes.WithLabelValues("error").Inc()
		}

		return decimal.Decimal{}, fmt.Errorf("%w: quote %s: %w", domain.ErrTrading, symbol, err)
	}

	if uc.metrics != nil {
		uc.metrics.OracleQuotes.WithLabelValues("ok").Inc()
	}

	return price, nil
}

// failBuy reverses the applied steps of a failed buy: the bought quantity
// is sold back when the portfolio was already mutated (portfolio != nil),
// and the withdrawn amount is deposited back in every case. Selling back at
// the same price does not reconstruct the prior average cost if other
// trades interleaved; that limitation is accepted.
func (uc *TradingUseCase) failBuy(
	ctx context.Context,
	cause error,
	account *domain.CashAccount,
	amount decimal.Decimal,
	portfolio *domain.Portfolio,
	symbol string,
	qty, price decimal.Decimal,
) error {
	uc.noteCompensation("buy", cause)

	var compErrs []error

	if portfolio != nil {
		if _, err := portfolio.Sell(symbol, qty, price); err != nil {
			compErrs = append(compErrs, fmt.Errorf("sell back %s %s: %w", qty, symbol, err))
		} else if err := uc.portfolioRepo.Save(ctx, portfolio); err != nil {
			compErrs = append(compErrs, fmt.Errorf("persist portfolio after sell back: %w", err))
		}
	}

	if _, err := account.Deposit(amount); err != nil {
		compErrs = append(compErrs, fmt.Errorf("deposit %s back: %w", amount, err))
	} else if err := uc.accountRepo.Save(ctx, account); err != nil {
		compErrs = append(compErrs, fmt.Errorf("persist account after refund: %w", err))
	}

	return uc.compensationOutcome("buy", cause, compErrs)
}

// failSell reverses the applied steps of a failed sell: proceeds already
// deposited are withdrawn back (account != nil), and the sold quantity is
// bought back at the same price.
func (uc *TradingUseCase) failSell(
	ctx context.Context,
	cause error,
	portfolio *domain.Portfolio,
	symbol string,
	qty, price decimal.Decimal,
	account *domain.CashAccount,
	proceeds decimal.Decimal,
) error {
	uc.noteCompensation("sell", cause)

	var compErrs []error

	if account != nil {
		if _, err := account.Withdraw(proceeds); err != nil {
			compErrs = append(compErrs, fmt.Errorf("withdraw %s back: %w", proceeds, err))
		} else if err := uc.accountRepo.Save(ctx, account); err != nil {
			compErrs = append(compErrs, fmt.Errorf("persist account after clawback: %w", err))
		}
	}

	if _, err := portfolio.Buy(symbol, qty, price); err != nil {
		compErrs = append(compErrs, fmt.Errorf("buy back %s %s: %w", qty, symbol, err))
	} else if err := uc.portfolioRepo.Save(ctx, portfolio); err != nil {
		compErrs = append(compErrs, fmt.Errorf("persist portfolio after buy back: %w", err))
	}

	return uc.compensationOutcome("sell", cause, compErrs)
}

func (uc *TradingUseCase) noteCompensation(op string, cause error) {
	uc.log.Warn().Str("operation", op).Err(cause).Msg("trade failed, compensating")

	if uc.metrics != nil {
		uc.metrics.CompensationsAttempted.WithLabelValues(op).Inc()
		uc.metrics.TradeErrors.WithLabelValues(op).Inc()
	}
}

// compensationOutcome returns the original cause when every compensation
// succeeded, and the cause joined with an inconsistent-state error when one
// did not. The cause is never masked by a compensation failure.
func (uc *TradingUseCase) compensationOutcome(op string, cause error, compErrs []error) error {
	if len(compErrs) == 0 {
		return cause
	}

	uc.log.Error().Str("operation", op).Errs("compensation_errors", compErrs).Err(cause).
		Msg("compensation failed, state may be inconsistent")

	if uc.metrics != nil {
		uc.metrics.CompensationsFailed.WithLabelValues(op).Inc()
	}

	return errors.Join(cause, fmt.Errorf("%w: %w", domain.ErrInconsistentState, errors.Join(compErrs...)))
}
