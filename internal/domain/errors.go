package domain

import "errors"

var (
	// Validation errors: raised before any mutation.
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrUnsupportedSymbol  = errors.New("unsupported symbol")

	// Insufficiency errors: business rule violations, no partial effect.
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	// Not-found errors.
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrPortfolioNotFound   = errors.New("portfolio not found")
	ErrHoldingNotFound     = errors.New("holding not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrPriceNotFound       = errors.New("price not available")

	// Orchestration errors.
	ErrTrading           = errors.New("trading operation failed")
	ErrValuation         = errors.New("valuation failed")
	ErrInconsistentState = errors.New("compensation failed; state may be inconsistent")
)
