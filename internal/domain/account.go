package domain

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// CashAccount holds a non-negative cash balance. Deposit and withdraw are
// atomic with respect to the account's own lock; the lock covers the full
// validate+mutate sequence so no partial state is ever observable.
type CashAccount struct {
	mu       sync.Mutex
	id       string
	owner    string
	currency string
	balance  decimal.Decimal
}

// NewCashAccount creates an account with the given opening balance. The
// balance is quantized to cents and must not be negative.
func NewCashAccount(id, owner, currency string, initial decimal.Decimal) (*CashAccount, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: account id must not be empty", ErrInvalidTransaction)
	}

	if owner == "" {
		return nil, fmt.Errorf("%w: owner must not be empty", ErrInvalidTransaction)
	}

	balance := RoundMoney(initial)
	if balance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance must not be negative", ErrInvalidAmount)
	}

	if currency == "" {
		currency = "USD"
	}

	return &CashAccount{
		id:       id,
		owner:    owner,
		currency: currency,
		balance:  balance,
	}, nil
}

func (a *CashAccount) ID() string       { return a.id }
func (a *CashAccount) Owner() string    { return a.owner }
func (a *CashAccount) Currency() string { return a.currency }

// Balance returns the current quantized balance as a value copy.
func (a *CashAccount) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.balance
}

// Deposit adds a positive amount to the balance and returns the new balance.
func (a *CashAccount) Deposit(amount decimal.Decimal) (decimal.Decimal, error) {
	amt := RoundMoney(amount)
	if !amt.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: deposit must be positive, got %s", ErrInvalidAmount, amt)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.balance = RoundMoney(a.balance.Add(amt))

	return a.balance, nil
}

// Withdraw subtracts a positive amount from the balance and returns the new
// balance. The sufficiency check happens under the same lock as the
// mutation, so the balance can never go negative.
func (a *CashAccount) Withdraw(amount decimal.Decimal) (decimal.Decimal, error) {
	amt := RoundMoney(amount)
	if !amt.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: withdrawal must be positive, got %s", ErrInvalidAmount, amt)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if amt.GreaterThan(a.balance) {
		return decimal.Decimal{}, fmt.Errorf("%w: requested %s, available %s", ErrInsufficientFunds, amt, a.balance)
	}

	a.balance = RoundMoney(a.balance.Sub(amt))

	return a.balance, nil
}
