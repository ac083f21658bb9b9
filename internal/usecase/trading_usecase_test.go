package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/tradesim/internal/domain"
	"github.com/iho/tradesim/internal/usecase"
	"github.com/iho/tradesim/internal/usecase/mocks"
)

type tradingFixture struct {
	accounts   *mocks.MockAccountRepository
	portfolios *mocks.MockPortfolioRepository
	ledger     *mocks.MockTransactionRepository
	oracle     *mocks.MockPriceOracle
	uc         *usecase.TradingUseCase
}

func newTradingFixture(t *testing.T, balance string) *tradingFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &tradingFixture{
		accounts:   mocks.NewMockAccountRepository(),
		portfolios: mocks.NewMockPortfolioRepository(),
		ledger:     mocks.NewMockTransactionRepository(),
		oracle:     mocks.NewMockPriceOracle(ctrl),
	}

	account, err := domain.NewCashAccount("acc-1", "alice", "USD", decimal.RequireFromString(balance))
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if err := f.accounts.Save(context.Background(), account); err != nil {
		t.Fatalf("save account: %v", err)
	}

	portfolio, err := domain.NewPortfolio("pf-1", "alice", "acc-1", "USD")
	if err != nil {
		t.Fatalf("portfolio: %v", err)
	}
	if err := f.portfolios.Save(context.Background(), portfolio); err != nil {
		t.Fatalf("save portfolio: %v", err)
	}

	f.uc = usecase.NewTradingUseCase(
		f.accounts, f.portfolios, f.ledger, f.oracle,
		mocks.NewMockIDGenerator(), domain.NewSymbolPolicy(), nil, zerolog.Nop(),
	)

	return f
}

func (f *tradingFixture) balance(t *testing.T) string {
	t.Helper()

	account, err := f.accounts.GetByID(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("load account: %v", err)
	}

	return account.Balance().String()
}

func (f *tradingFixture) holding(t *testing.T, symbol string) (domain.HoldingSnapshot, bool) {
	t.Helper()

	portfolio, err := f.portfolios.GetByID(context.Background(), "pf-1")
	if err != nil {
		t.Fatalf("load portfolio: %v", err)
	}

	return portfolio.Holding(symbol)
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestTradingUseCase_BuySuccess(t *testing.T) {
	f := newTradingFixture(t, "1000.00")

	entry, err := f.uc.Buy(context.Background(), usecase.TradeInput{
		AccountID:   "acc-1",
		PortfolioID: "pf-1",
		Symbol:      "AAPL",
		Quantity:    decimal.NewFromInt(2),
		Price:       price("150.00"),
	})
	if err != nil {
		t.Fatalf("buy: %v", err)
	}

	if got := entry.Amount().String(); got != "300" {
		t.Errorf("entry amount = %s, want 300", got)
	}

	if got := f.balance(t); got != "700" {
		t.Errorf("balance = %s, want 700", got)
	}

	snap, ok := f.holding(t, "AAPL")
	if !ok {
		t.Fatal("holding missing after buy")
	}
	if got := snap.Quantity.String(); got != "2" {
		t.Errorf("holding quantity = %s, want 2", got)
	}

	if got := len(f.ledger.Entries()); got != 1 {
		t.Errorf("ledger entries = %d, want 1", got)
	}
}

func TestTradingUseCase_BuyInsufficientFunds(t *testing.T) {
	f := newTradingFixture(t, "10.00")
	f.oracle.EXPECT().Quote(gomock.Any(), "AAPL").Return(decimal.RequireFromString("150.00"), nil)

	_, err := f.uc.Buy(context.Background(), usecase.TradeInput{
		AccountID:   "acc-1",
		PortfolioID: "pf-1",
		Symbol:      "AAPL",
		Quantity:    decimal.NewFromInt(1),
	})

	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if got := f.balance(t); got != "10" {
		t.Errorf("balance = %s, want 10 unchanged", got)
	}

	if _, ok := f.holding(t, "AAPL"); ok {
		t.Error("holding created despite failed buy")
	}

	if got := len(f.ledger.Entries()); got != 0 {
		t.Errorf("ledger entries = %d, want 0", got)
	}
}

func TestTradingUseCase_BuyAtMarketPrice(t *testing.T) {
	f := newTradingFixture(t, "1000.00")
	f.oracle.EXPECT().Quote(gomock.Any(), "TSLA").Return(decimal.RequireFromString("720.50"), nil)

	entry, err := f.uc.Buy(context.Background(), usecase.TradeInput{
		AccountID:   "acc-1",
		PortfolioID: "pf-1",
		Symbol:      " tsla ",
		Quantity:    decimal.NewFromInt(1),
	})
	if err != nil {
		t.Fatalf("buy: %v", err)
	}

	if entry.Symbol() != "TSLA" {
		t.Errorf("symbol = %s, want TSLA", entry.Symbol())
	}

	if got := f.balance(t); got != "279.5" {
		t.Errorf("balance = %s, want 279.5", got)
	}
}

func TestTradingUseCase_BuyUnknownMarketSymbol(t *testing.T) {
	f := newTradingFixture(t, "1000.00")
	f.oracle.EXPECT().Quote(gomock.Any(), "ZZZZ").
		Return(decimal.Decimal{}, domain.ErrUnsupportedSymbol)

	_, err := f.uc.Buy(context.Background(), usecase.TradeInput{
		AccountID:   "acc-1",
		PortfolioID: "pf-1",
		Symbol:      "ZZZZ",
		Quantity:    decimal.NewFromInt(1),
	})

	if !errors.Is(err, domain.ErrTrading) {
		t.Errorf("expected ErrTrading, got %v", err)
	}

	if !errors.Is(err, domain.ErrUnsupportedSymbol) {
		t.Errorf("oracle error not preserved in chain: %v", err)
	}
}

func TestTradingUseCase_BuySymbolPolicy(t *testing.T) {
	f := newTradingFixture(t, "1000.00")
	restricted := usecase.NewTradingUseCase(
		f.accounts, f.portfolios, f.ledger, f.oracle,
		mocks.NewMockIDGenerator(), domain.NewSymbolPolicy("AAPL"), nil, zerolog.Nop(),
	)

	_, err := restricted.Buy(context.Background(), usecase.TradeInput{
		AccountID:   "acc-1",
		PortfolioID: "pf-1",
		Symbol:      "MSFT",
		Quantity:    decimal.NewFromInt(1),
		Price:       price("10.00"),
	})

	if !errors.Is(err, domain.ErrUnsupportedSymbol) {
		t.Errorf("expected ErrUnsupportedSymbol, got %v", err)
	}
}

// A ledger append failure after a committed buy must restore the account
// balance and unwind the holding.
func TestTradingUseCase_BuyCompensatesFailedAppend(t *testing.T) {
	f := newTradingFixture(t, "1000.00")

	appendErr := errors.New("ledger store unavailable")
	f.ledger.AppendFunc = func(ctx context.Context, entry *domain.Transaction) error {
		return appendErr
	}

	_, err := f.uc.Buy(context.Background(), usecase.TradeInput{
		AccountID:   "acc-1",
		PortfolioID: "pf-1",
		Symbol:      "AAPL",
		Quantity:    decimal.NewFromInt(2),
		Price:       price("150.00"),
	})

	if !errors.Is(err, appendErr) {
		t.Fatalf("original failure not propagated: %v", err)
	}

	if errors.Is(err, domain.ErrInconsistentState) {
		t.Errorf("compensation succeeded but error reports inconsistency: %v", err)
	}

	if got := f.balance(t); got != "1000" {
		t.Errorf("balance = %s, want 1000 restored", got)
	}

	if _, ok := f.holding(t, "AAPL"); ok {
		t.Error("holding still present after compensating sell-back")
	}
}

func TestTradingUseCase_BuyReportsFailedCompensation(t *testing.T) {
	f := newTradingFixture(t, "1000.00")

	appendErr := errors.New("ledger store unavailable")
	f.ledger.AppendFunc = func(ctx context.Context, entry *domain.Transaction) error {
		return appendErr
	}

	saveErr := errors.New("account store unavailable")
	var saves int
	f.accounts.SaveFunc = func(ctx context.Context, account *domain.CashAccount) error {
		saves++
		if saves > 1 {
			// First save persists the withdrawal; the refund save fails.
			return saveErr
		}
		return nil
	}

	_, err := f.uc.Buy(context.Background(), usecase.TradeInput{
		AccountID:   "acc-1",
		PortfolioID: "pf-1",
		Symbol:      "AAPL",
		Quantity:    decimal.NewFromInt(2),
		Price:       price("150.00"),
	})

	if !errors.Is(err, appendErr) {
		t.Errorf("original failure masked: %v", err)
	}

	if !errors.Is(err, domain.ErrInconsistentState) {
		t.Errorf("failed compensation not reported: %v", err)
	}

	if !errors.Is(err, saveErr) {
		t.Errorf("compensation failure cause missing from chain: %v", err)
	}
}

func TestTradingUseCase_SellSuccess(t *testing.T) {
	f := newTradingFixture(t, "1000.00")

	if _, err := f.uc.Buy(context.Background(), usecase.TradeInput{
		AccountID:   "acc-1",
		PortfolioID: "pf-1",
		Symbol:      "AAPL",
		Quantity:    decimal.NewFromInt(2),
		Price:       price("150.00"),
	}); err != nil {
		t.Fatalf("setup buy: %v", err)
	}

	entry, err := f.uc.Sell(context.Background(), usecase.TradeInput{
		AccountID:   "acc-1",
		PortfolioID: "pf-1",
		Symbol:      "AAPL",
		Quantity:    decimal.NewFromInt(2),
		Price:       price("160.00"),
	})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	pl, ok := entry.ProfitLoss()
	if !ok {
		t.Fatal("sell entry carries no profit/loss")
	}
	if got := pl.String(); got != "20" {
		t.Errorf("realized P/L = %s, want 20", got)
	}

	// 1000 - 300 + 320.
	if got := f.balance(t); got != "1020" {
		t.Errorf("balance = %s, want 1020", got)
	}

	if _, ok := f.holding(t, "AAPL"); ok {
		t.Error("holding still present after selling entire quantity")
	}
}

func TestTradingUseCase_SellWithoutHolding(t *testing.T) {
	f := newTradingFixture(t, "1000.00")

	_, err := f.uc.Sell(context.Background(), usecase.TradeInput{
		AccountID:   "acc-1",
		PortfolioID: "pf-1",
		Symbol:      "AAPL",
		Quantity:    decimal.NewFromInt(1),
		Price:       price("150.00"),
	})

	if !errors.Is(err, domain.ErrInsufficientHoldings) {
		t.Errorf("expected ErrInsufficientHoldings, got %v", err)
	}
}

// A ledger append failure after a committed sell must claw back the
// proceeds and restore the holding.
func TestTradingUseCase_SellCompensatesFailedAppend(t *testing.T) {
	f := newTradingFixture(t, "1000.00")

	if _, err := f.uc.Buy(context.Background(), usecase.TradeInput{
		AccountID:   "acc-1",
		PortfolioID: "pf-1",
		Symbol:      "AAPL",
		Quantity:    decimal.NewFromInt(2),
		Price:       price("150.00"),
	}); err != nil {
		t.Fatalf("setup buy: %v", err)
	}

	appendErr := errors.New("ledger store unavailable")
	f.ledger.AppendFunc = func(ctx context.Context, entry *domain.Transaction) error {
		if entry.Kind() == domain.TransactionSell {
			return appendErr
		}
		return nil
	}

	_, err := f.uc.Sell(context.Background(), usecase.TradeInput{
		AccountID:   "acc-1",
		PortfolioID: "pf-1",
		Symbol:      "AAPL",
		Quantity:    decimal.NewFromInt(2),
		Price:       price("160.00"),
	})

	if !errors.Is(err, appendErr) {
		t.Fatalf("original failure not propagated: %v", err)
	}

	if got := f.balance(t); got != "700" {
		t.Errorf("balance = %s, want 700 restored", got)
	}

	snap, ok := f.holding(t, "AAPL")
	if !ok {
		t.Fatal("holding not restored by compensating buy-back")
	}
	if got := snap.Quantity.String(); got != "2" {
		t.Errorf("restored quantity = %s, want 2", got)
	}
}

func TestTradingUseCase_ExplicitTransactionID(t *testing.T) {
	f := newTradingFixture(t, "1000.00")

	entry, err := f.uc.Buy(context.Background(), usecase.TradeInput{
		AccountID:     "acc-1",
		PortfolioID:   "pf-1",
		Symbol:        "AAPL",
		Quantity:      decimal.NewFromInt(1),
		Price:         price("150.00"),
		TransactionID: "trade-42",
	})
	if err != nil {
		t.Fatalf("buy: %v", err)
	}

	if entry.ID() != "trade-42" {
		t.Errorf("entry id = %s, want trade-42", entry.ID())
	}
}
