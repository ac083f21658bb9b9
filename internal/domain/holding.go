package domain

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Holding is a single-symbol position with a quantity and a weighted-average
// cost basis. Buys recompute the average cost as a quantity-weighted mean;
// sells realize profit or loss against the cost basis at the instant of
// sale. Quantity can never go negative, and the average cost resets to zero
// exactly when the quantity reaches zero.
type Holding struct {
	mu          sync.Mutex
	symbol      string
	currency    string
	quantity    decimal.Decimal
	averageCost decimal.Decimal
}

// HoldingSnapshot is a value copy of a holding's state. Reads hand out
// snapshots rather than live aliases so callers cannot observe torn writes.
type HoldingSnapshot struct {
	Symbol      string
	Currency    string
	Quantity    decimal.Decimal
	AverageCost decimal.Decimal
}

// NewHolding creates an empty position for symbol.
func NewHolding(symbol, currency string) (*Holding, error) {
	symbol = normalizeHoldingSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol must not be empty", ErrUnsupportedSymbol)
	}

	if currency == "" {
		currency = "USD"
	}

	return &Holding{
		symbol:      symbol,
		currency:    currency,
		quantity:    decimal.Zero,
		averageCost: decimal.Zero,
	}, nil
}

// RestoreHolding rebuilds a holding from persisted state.
func RestoreHolding(s HoldingSnapshot) (*Holding, error) {
	h, err := NewHolding(s.Symbol, s.Currency)
	if err != nil {
		return nil, err
	}

	qty := RoundQuantity(s.Quantity)
	if qty.IsNegative() {
		return nil, fmt.Errorf("%w: stored quantity %s is negative", ErrInvalidQuantity, qty)
	}

	cost := RoundMoney(s.AverageCost)
	if cost.IsNegative() {
		return nil, fmt.Errorf("%w: stored average cost %s is negative", ErrInvalidPrice, cost)
	}

	h.quantity = qty
	h.averageCost = cost

	return h, nil
}

func (h *Holding) Symbol() string   { return h.symbol }
func (h *Holding) Currency() string { return h.currency }

// Quantity returns the current quantity as a value copy.
func (h *Holding) Quantity() decimal.Decimal {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.quantity
}

// AverageCost returns the current weighted-average cost as a value copy.
func (h *Holding) AverageCost() decimal.Decimal {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.averageCost
}

// Snapshot returns a consistent value copy of the holding.
func (h *Holding) Snapshot() HoldingSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	return HoldingSnapshot{
		Symbol:      h.symbol,
		Currency:    h.currency,
		Quantity:    h.quantity,
		AverageCost: h.averageCost,
	}
}

// Buy adds quantity at price and recomputes the weighted-average cost:
// (old_qty*old_avg + qty*price) / (old_qty+qty), quantized to cents.
// Returns the new quantity.
func (h *Holding) Buy(quantity, price decimal.Decimal) (decimal.Decimal, error) {
	qty, pr, err := validateTrade(quantity, price)
	if err != nil {
		return decimal.Decimal{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	newQty := h.quantity.Add(qty)
	totalCost := h.quantity.Mul(h.averageCost).Add(qty.Mul(pr))
	h.averageCost = RoundMoney(totalCost.Div(newQty))
	h.quantity = newQty

	return h.quantity, nil
}

// Sell removes quantity at price and returns the realized profit or loss:
// (price - average_cost) * quantity, quantized to cents. The average cost is
// unchanged while the position stays open and resets to zero when it closes.
func (h *Holding) Sell(quantity, price decimal.Decimal) (decimal.Decimal, error) {
	qty, pr, err := validateTrade(quantity, price)
	if err != nil {
		return decimal.Decimal{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if qty.GreaterThan(h.quantity) {
		return decimal.Decimal{}, fmt.Errorf("%w: requested %s, held %s", ErrInsufficientHoldings, qty, h.quantity)
	}

	realized := RoundMoney(pr.Sub(h.averageCost).Mul(qty))

	h.quantity = h.quantity.Sub(qty)
	if h.quantity.IsZero() {
		h.averageCost = decimal.Zero
	}

	return realized, nil
}

// MarketValue returns quantity * price quantized to cents.
func (h *Holding) MarketValue(price decimal.Decimal) (decimal.Decimal, error) {
	pr := RoundMoney(price)
	if !pr.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: price must be positive, got %s", ErrInvalidPrice, pr)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	return RoundMoney(h.quantity.Mul(pr)), nil
}

func validateTrade(quantity, price decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	qty := RoundQuantity(quantity)
	if !qty.IsPositive() {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidQuantity, qty)
	}

	pr := RoundMoney(price)
	if !pr.IsPositive() {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("%w: price must be positive, got %s", ErrInvalidPrice, pr)
	}

	return qty, pr, nil
}
