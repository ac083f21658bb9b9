package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/tradesim/internal/usecase"
)

// CreateAccountRequest represents a request to create a cash account.
type CreateAccountRequest struct {
	ID             string          `json:"id,omitempty"`
	Owner          string          `json:"owner"`
	Currency       string          `json:"currency,omitempty"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		ID:             r.ID,
		Owner:          r.Owner,
		Currency:       r.Currency,
		InitialBalance: r.InitialBalance,
	}
}

// CashMovementRequest represents a deposit or withdrawal request.
type CashMovementRequest struct {
	Amount        decimal.Decimal   `json:"amount"`
	TransactionID string            `json:"transaction_id,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input for the given account.
func (r *CashMovementRequest) ToUseCaseInput(accountID string) usecase.CashMovementInput {
	return usecase.CashMovementInput{
		AccountID:     accountID,
		Amount:        r.Amount,
		TransactionID: r.TransactionID,
		Metadata:      r.Metadata,
	}
}

// CreatePortfolioRequest represents a request to create a portfolio.
type CreatePortfolioRequest struct {
	ID        string `json:"id,omitempty"`
	Owner     string `json:"owner"`
	AccountID string `json:"account_id,omitempty"`
	Currency  string `json:"currency,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePortfolioRequest) ToUseCaseInput() usecase.CreatePortfolioInput {
	return usecase.CreatePortfolioInput{
		ID:        r.ID,
		Owner:     r.Owner,
		AccountID: r.AccountID,
		Currency:  r.Currency,
	}
}

// TradeRequest represents a buy or sell order. A nil price means execute
// at the oracle's market price.
type TradeRequest struct {
	AccountID     string            `json:"account_id"`
	PortfolioID   string            `json:"portfolio_id"`
	Symbol        string            `json:"symbol"`
	Quantity      decimal.Decimal   `json:"quantity"`
	Price         *decimal.Decimal  `json:"price,omitempty"`
	TransactionID string            `json:"transaction_id,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *TradeRequest) ToUseCaseInput() usecase.TradeInput {
	return usecase.TradeInput{
		AccountID:     r.AccountID,
		PortfolioID:   r.PortfolioID,
		Symbol:        r.Symbol,
		Quantity:      r.Quantity,
		Price:         r.Price,
		TransactionID: r.TransactionID,
		Metadata:      r.Metadata,
	}
}
