package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func mustPortfolio(t *testing.T) *Portfolio {
	t.Helper()

	p, err := NewPortfolio("pf-1", "alice", "acc-1", "USD")
	if err != nil {
		t.Fatalf("NewPortfolio: %v", err)
	}

	return p
}

func TestPortfolio_BuyCreatesHolding(t *testing.T) {
	p := mustPortfolio(t)

	snap, err := p.Buy(" aapl ", decimal.NewFromInt(2), decimal.RequireFromString("150.00"))
	if err != nil {
		t.Fatalf("buy: %v", err)
	}

	if snap.Symbol != "AAPL" {
		t.Errorf("symbol = %s, want AAPL", snap.Symbol)
	}

	if got := snap.Quantity.String(); got != "2" {
		t.Errorf("quantity = %s, want 2", got)
	}

	// Same holding is reused regardless of symbol casing.
	if _, err := p.Buy("AAPL", decimal.NewFromInt(1), decimal.RequireFromString("150.00")); err != nil {
		t.Fatalf("second buy: %v", err)
	}

	if got := len(p.Holdings()); got != 1 {
		t.Errorf("holdings count = %d, want 1", got)
	}
}

func TestPortfolio_SellUnknownSymbol(t *testing.T) {
	p := mustPortfolio(t)

	_, err := p.Sell("MSFT", decimal.NewFromInt(1), decimal.NewFromInt(10))

	if !errors.Is(err, ErrHoldingNotFound) {
		t.Errorf("expected ErrHoldingNotFound, got %v", err)
	}
}

func TestPortfolio_SellAllRemovesHolding(t *testing.T) {
	p := mustPortfolio(t)

	if _, err := p.Buy("TSLA", decimal.NewFromInt(2), decimal.RequireFromString("720.50")); err != nil {
		t.Fatalf("buy: %v", err)
	}

	realized, err := p.Sell("TSLA", decimal.NewFromInt(2), decimal.RequireFromString("730.50"))
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	if got := realized.String(); got != "20" {
		t.Errorf("realized P/L = %s, want 20", got)
	}

	if _, ok := p.Holding("TSLA"); ok {
		t.Error("holding still present after selling entire quantity")
	}

	if got := len(p.Holdings()); got != 0 {
		t.Errorf("holdings count = %d, want 0", got)
	}
}

func TestPortfolio_MarketValue(t *testing.T) {
	p := mustPortfolio(t)

	if _, err := p.Buy("AAPL", decimal.NewFromInt(2), decimal.RequireFromString("150.00")); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := p.Buy("TSLA", decimal.NewFromInt(1), decimal.RequireFromString("700.00")); err != nil {
		t.Fatalf("buy: %v", err)
	}

	resolve := PriceMap(map[string]decimal.Decimal{
		"AAPL": decimal.RequireFromString("155.00"),
		"TSLA": decimal.RequireFromString("720.50"),
	})

	total, err := p.MarketValue(resolve)
	if err != nil {
		t.Fatalf("market value: %v", err)
	}

	if got := total.String(); got != "1030.5" {
		t.Errorf("market value = %s, want 1030.5", got)
	}
}

func TestPortfolio_MarketValueMissingPrice(t *testing.T) {
	p := mustPortfolio(t)

	if _, err := p.Buy("GOOGL", decimal.NewFromInt(1), decimal.RequireFromString("2800.75")); err != nil {
		t.Fatalf("buy: %v", err)
	}

	_, err := p.MarketValue(PriceMap(map[string]decimal.Decimal{}))

	if !errors.Is(err, ErrPriceNotFound) {
		t.Errorf("expected ErrPriceNotFound, got %v", err)
	}
}

func TestRestorePortfolio(t *testing.T) {
	p, err := RestorePortfolio("pf-1", "alice", "acc-1", "USD", []HoldingSnapshot{
		{Symbol: "AAPL", Quantity: decimal.NewFromInt(3), AverageCost: decimal.RequireFromString("150.00")},
	})
	if err != nil {
		t.Fatalf("RestorePortfolio: %v", err)
	}

	snap, ok := p.Holding("AAPL")
	if !ok {
		t.Fatal("restored holding missing")
	}

	if got := snap.AverageCost.String(); got != "150" {
		t.Errorf("average cost = %s, want 150", got)
	}
}
