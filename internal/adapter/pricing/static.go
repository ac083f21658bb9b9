// Package pricing provides PriceOracle implementations.
package pricing

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/tradesim/internal/domain"
)

// StaticOracle serves quotes from a fixed price table. Lookups are
// case-insensitive; unknown symbols fail with ErrUnsupportedSymbol. The
// table is immutable after construction, so reads need no locking.
type StaticOracle struct {
	prices map[string]decimal.Decimal
}

// DefaultPrices is the built-in demo price table.
func DefaultPrices() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"AAPL":  decimal.RequireFromString("150.00"),
		"TSLA":  decimal.RequireFromString("720.50"),
		"GOOGL": decimal.RequireFromString("2800.75"),
	}
}

// NewStaticOracle creates an oracle over the given table. Keys are
// normalized to upper case; prices are quantized to cents.
func NewStaticOracle(prices map[string]decimal.Decimal) *StaticOracle {
	table := make(map[string]decimal.Decimal, len(prices))
	for sym, price := range prices {
		table[strings.ToUpper(strings.TrimSpace(sym))] = domain.RoundMoney(price)
	}

	return &StaticOracle{prices: table}
}

// Quote returns the table price for symbol.
func (o *StaticOracle) Quote(_ context.Context, symbol string) (decimal.Decimal, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	price, ok := o.prices[sym]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedSymbol, sym)
	}

	return price, nil
}

// Symbols lists the quotable symbols in sorted order.
func (o *StaticOracle) Symbols(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(o.prices))
	for sym := range o.prices {
		out = append(out, sym)
	}

	sort.Strings(out)

	return out, nil
}
