package domain

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// PriceResolver looks up the market price for a symbol.
type PriceResolver func(symbol string) (decimal.Decimal, error)

// PriceMap adapts a fixed symbol->price mapping to a PriceResolver.
func PriceMap(prices map[string]decimal.Decimal) PriceResolver {
	return func(symbol string) (decimal.Decimal, error) {
		price, ok := prices[symbol]
		if !ok {
			return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrPriceNotFound, symbol)
		}

		return price, nil
	}
}

// Portfolio owns a collection of holdings keyed by symbol. A single lock
// covers every holdings mutation so buy, sell, removal and listing are
// mutually exclusive. Holdings never outlive removal from their portfolio.
type Portfolio struct {
	mu        sync.Mutex
	id        string
	owner     string
	accountID string
	currency  string
	holdings  map[string]*Holding
}

// NewPortfolio creates an empty portfolio. accountID is an optional
// reference to the cash account funding trades in this portfolio.
func NewPortfolio(id, owner, accountID, currency string) (*Portfolio, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: portfolio id must not be empty", ErrInvalidTransaction)
	}

	if owner == "" {
		return nil, fmt.Errorf("%w: owner must not be empty", ErrInvalidTransaction)
	}

	if currency == "" {
		currency = "USD"
	}

	return &Portfolio{
		id:        id,
		owner:     owner,
		accountID: accountID,
		currency:  currency,
		holdings:  make(map[string]*Holding),
	}, nil
}

// RestorePortfolio rebuilds a portfolio and its holdings from persisted
// state.
func RestorePortfolio(id, owner, accountID, currency string, holdings []HoldingSnapshot) (*Portfolio, error) {
	p, err := NewPortfolio(id, owner, accountID, currency)
	if err != nil {
		return nil, err
	}

	for _, s := range holdings {
		h, err := RestoreHolding(s)
		if err != nil {
			return nil, err
		}

		p.holdings[h.Symbol()] = h
	}

	return p, nil
}

func (p *Portfolio) ID() string        { return p.id }
func (p *Portfolio) Owner() string     { return p.owner }
func (p *Portfolio) AccountID() string { return p.accountID }
func (p *Portfolio) Currency() string  { return p.currency }

// Buy routes a purchase to the holding for symbol, creating an empty
// holding on first reference. Returns a snapshot of the mutated holding.
func (p *Portfolio) Buy(symbol string, quantity, price decimal.Decimal) (HoldingSnapshot, error) {
	sym := normalizeHoldingSymbol(symbol)
	if sym == "" {
		return HoldingSnapshot{}, fmt.Errorf("%w: symbol must not be empty", ErrUnsupportedSymbol)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	holding, ok := p.holdings[sym]
	if !ok {
		var err error

		holding, err = NewHolding(sym, p.currency)
		if err != nil {
			return HoldingSnapshot{}, err
		}

		p.holdings[sym] = holding
	}

	if _, err := holding.Buy(quantity, price); err != nil {
		return HoldingSnapshot{}, err
	}

	return holding.Snapshot(), nil
}

// Sell routes a sale to the holding for symbol and returns the realized
// profit or loss. A holding that reaches exactly zero quantity is removed
// from the portfolio.
func (p *Portfolio) Sell(symbol string, quantity, price decimal.Decimal) (decimal.Decimal, error) {
	sym := normalizeHoldingSymbol(symbol)

	p.mu.Lock()
	defer p.mu.Unlock()

	holding, ok := p.holdings[sym]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: no holding for %s", ErrHoldingNotFound, sym)
	}

	realized, err := holding.Sell(quantity, price)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if holding.Quantity().IsZero() {
		delete(p.holdings, sym)
	}

	return realized, nil
}

// Holding returns a snapshot of the holding for symbol, if present.
func (p *Portfolio) Holding(symbol string) (HoldingSnapshot, bool) {
	sym := normalizeHoldingSymbol(symbol)

	p.mu.Lock()
	defer p.mu.Unlock()

	holding, ok := p.holdings[sym]
	if !ok {
		return HoldingSnapshot{}, false
	}

	return holding.Snapshot(), true
}

// Holdings returns snapshots of all holdings. Ordering is not guaranteed.
func (p *Portfolio) Holdings() []HoldingSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]HoldingSnapshot, 0, len(p.holdings))
	for _, h := range p.holdings {
		out = append(out, h.Snapshot())
	}

	return out
}

// MarketValue sums each holding's market value using resolve for prices.
// A missing price for any held symbol fails the whole computation. The
// total is quantized to cents.
func (p *Portfolio) MarketValue(resolve PriceResolver) (decimal.Decimal, error) {
	if resolve == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: price resolver is required", ErrPriceNotFound)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	total := decimal.Zero
	for sym, holding := range p.holdings {
		price, err := resolve(sym)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("price for %s: %w", sym, err)
		}

		mv, err := holding.MarketValue(price)
		if err != nil {
			return decimal.Decimal{}, err
		}

		total = total.Add(mv)
	}

	return RoundMoney(total), nil
}
