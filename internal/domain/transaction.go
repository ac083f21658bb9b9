package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind discriminates ledger entries.
type TransactionKind string

const (
	TransactionDeposit    TransactionKind = "deposit"
	TransactionWithdrawal TransactionKind = "withdrawal"
	TransactionBuy        TransactionKind = "buy"
	TransactionSell       TransactionKind = "sell"
)

// Valid reports whether k is one of the four ledger kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case TransactionDeposit, TransactionWithdrawal, TransactionBuy, TransactionSell:
		return true
	}

	return false
}

// IsTrade reports whether k carries quantity and price.
func (k TransactionKind) IsTrade() bool {
	return k == TransactionBuy || k == TransactionSell
}

// TransactionInput carries the raw fields for one ledger entry. Optional
// fields are pointers so that absence is distinguishable from zero.
type TransactionInput struct {
	ID          string
	Kind        TransactionKind
	AccountID   string
	PortfolioID string
	Symbol      string
	Amount      decimal.Decimal
	Quantity    *decimal.Decimal
	Price       *decimal.Decimal
	ProfitLoss  *decimal.Decimal
	CreatedAt   time.Time
	Metadata    map[string]string
}

// Transaction is an immutable record of one completed cash or trade event.
// All fields are fixed at construction; reads go through accessors that
// return value copies. NewTransaction is the only way to obtain one, so a
// Transaction in hand always satisfies its kind's invariants.
type Transaction struct {
	id          string
	kind        TransactionKind
	accountID   string
	portfolioID string
	symbol      string
	amount      decimal.Decimal
	quantity    *decimal.Decimal
	price       *decimal.Decimal
	profitLoss  *decimal.Decimal
	createdAt   time.Time
	metadata    map[string]string
}

// NewTransaction validates in and constructs an immutable ledger entry.
// Cash kinds (deposit, withdrawal) require a positive amount and must not
// carry quantity or price. Trade kinds (buy, sell) require symbol, positive
// quantity and price; the amount is computed as quantity*price quantized to
// cents, and an optional profit/loss is quantized when present. A failed
// construction produces no entry.
func NewTransaction(in TransactionInput) (*Transaction, error) {
	if in.ID == "" {
		return nil, fmt.Errorf("%w: id must not be empty", ErrInvalidTransaction)
	}

	if !in.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidTransaction, in.Kind)
	}

	if in.AccountID == "" {
		return nil, fmt.Errorf("%w: account id must not be empty", ErrInvalidTransaction)
	}

	t := &Transaction{
		id:          in.ID,
		kind:        in.Kind,
		accountID:   in.AccountID,
		portfolioID: in.PortfolioID,
		createdAt:   normalizeTimestamp(in.CreatedAt),
		metadata:    copyMetadata(in.Metadata),
	}

	if in.Kind.IsTrade() {
		if err := t.fillTradeFields(in); err != nil {
			return nil, err
		}

		return t, nil
	}

	if err := t.fillCashFields(in); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Transaction) fillCashFields(in TransactionInput) error {
	if in.Quantity != nil || in.Price != nil {
		return fmt.Errorf("%w: %s must not carry quantity or price", ErrInvalidTransaction, in.Kind)
	}

	if in.ProfitLoss != nil {
		return fmt.Errorf("%w: %s must not carry profit/loss", ErrInvalidTransaction, in.Kind)
	}

	amount := RoundMoney(in.Amount)
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s amount must be positive, got %s", ErrInvalidTransaction, in.Kind, amount)
	}

	t.amount = amount

	return nil
}

func (t *Transaction) fillTradeFields(in TransactionInput) error {
	sym := normalizeHoldingSymbol(in.Symbol)
	if sym == "" {
		return fmt.Errorf("%w: %s requires a symbol", ErrInvalidTransaction, in.Kind)
	}

	if in.Quantity == nil || in.Price == nil {
		return fmt.Errorf("%w: %s requires quantity and price", ErrInvalidTransaction, in.Kind)
	}

	qty := RoundQuantity(*in.Quantity)
	if !qty.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidTransaction, qty)
	}

	price := RoundMoney(*in.Price)
	if !price.IsPositive() {
		return fmt.Errorf("%w: price must be positive, got %s", ErrInvalidTransaction, price)
	}

	t.symbol = sym
	t.quantity = &qty
	t.price = &price
	t.amount = RoundMoney(qty.Mul(price))

	if in.ProfitLoss != nil {
		pl := RoundMoney(*in.ProfitLoss)
		t.profitLoss = &pl
	}

	return nil
}

func (t *Transaction) ID() string            { return t.id }
func (t *Transaction) Kind() TransactionKind { return t.kind }
func (t *Transaction) AccountID() string     { return t.accountID }
func (t *Transaction) PortfolioID() string   { return t.portfolioID }
func (t *Transaction) Symbol() string        { return t.symbol }

// Amount returns the cash amount moved by this entry: the deposit or
// withdrawal amount for cash kinds, quantity*price for trades.
func (t *Transaction) Amount() decimal.Decimal { return t.amount }

// Quantity returns the traded quantity, or false for cash kinds.
func (t *Transaction) Quantity() (decimal.Decimal, bool) {
	if t.quantity == nil {
		return decimal.Decimal{}, false
	}

	return *t.quantity, true
}

// Price returns the execution price, or false for cash kinds.
func (t *Transaction) Price() (decimal.Decimal, bool) {
	if t.price == nil {
		return decimal.Decimal{}, false
	}

	return *t.price, true
}

// ProfitLoss returns the realized profit or loss recorded on a sell, or
// false when absent.
func (t *Transaction) ProfitLoss() (decimal.Decimal, bool) {
	if t.profitLoss == nil {
		return decimal.Decimal{}, false
	}

	return *t.profitLoss, true
}

// CreatedAt returns the entry timestamp, always in UTC.
func (t *Transaction) CreatedAt() time.Time { return t.createdAt }

// Metadata returns a copy of the entry metadata.
func (t *Transaction) Metadata() map[string]string { return copyMetadata(t.metadata) }

// normalizeTimestamp pins zero timestamps to now and converts everything
// to UTC so stored entries never carry an ambiguous zone.
func normalizeTimestamp(ts time.Time) time.Time {
	if ts.IsZero() {
		return time.Now().UTC()
	}

	return ts.UTC()
}

func copyMetadata(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}

	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}
