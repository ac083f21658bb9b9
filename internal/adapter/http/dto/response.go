package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/tradesim/internal/domain"
	"github.com/iho/tradesim/internal/usecase"
)

// AccountResponse represents a cash account in API responses.
type AccountResponse struct {
	ID       string          `json:"id"`
	Owner    string          `json:"owner"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.CashAccount) *AccountResponse {
	return &AccountResponse{
		ID:       a.ID(),
		Owner:    a.Owner(),
		Currency: a.Currency(),
		Balance:  a.Balance(),
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.CashAccount) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// HoldingResponse represents a position in API responses.
type HoldingResponse struct {
	Symbol      string          `json:"symbol"`
	Currency    string          `json:"currency"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
}

// HoldingFromSnapshot converts a holding snapshot to a response.
func HoldingFromSnapshot(h domain.HoldingSnapshot) HoldingResponse {
	return HoldingResponse{
		Symbol:      h.Symbol,
		Currency:    h.Currency,
		Quantity:    h.Quantity,
		AverageCost: h.AverageCost,
	}
}

// HoldingsFromSnapshots converts holding snapshots to responses.
func HoldingsFromSnapshots(holdings []domain.HoldingSnapshot) []HoldingResponse {
	result := make([]HoldingResponse, len(holdings))
	for i, h := range holdings {
		result[i] = HoldingFromSnapshot(h)
	}
	return result
}

// PortfolioResponse represents a portfolio in API responses.
type PortfolioResponse struct {
	ID        string            `json:"id"`
	Owner     string            `json:"owner"`
	AccountID string            `json:"account_id,omitempty"`
	Currency  string            `json:"currency"`
	Holdings  []HoldingResponse `json:"holdings"`
}

// PortfolioFromDomain converts a domain portfolio to a response.
func PortfolioFromDomain(p *domain.Portfolio) *PortfolioResponse {
	return &PortfolioResponse{
		ID:        p.ID(),
		Owner:     p.Owner(),
		AccountID: p.AccountID(),
		Currency:  p.Currency(),
		Holdings:  HoldingsFromSnapshots(p.Holdings()),
	}
}

// PortfoliosFromDomain converts domain portfolios to responses.
func PortfoliosFromDomain(portfolios []*domain.Portfolio) []*PortfolioResponse {
	result := make([]*PortfolioResponse, len(portfolios))
	for i, p := range portfolios {
		result[i] = PortfolioFromDomain(p)
	}
	return result
}

// TransactionResponse represents a ledger entry in API responses.
type TransactionResponse struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	AccountID   string            `json:"account_id"`
	PortfolioID string            `json:"portfolio_id,omitempty"`
	Symbol      string            `json:"symbol,omitempty"`
	Amount      decimal.Decimal   `json:"amount"`
	Quantity    *decimal.Decimal  `json:"quantity,omitempty"`
	Price       *decimal.Decimal  `json:"price,omitempty"`
	ProfitLoss  *decimal.Decimal  `json:"profit_loss,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:          t.ID(),
		Kind:        string(t.Kind()),
		AccountID:   t.AccountID(),
		PortfolioID: t.PortfolioID(),
		Symbol:      t.Symbol(),
		Amount:      t.Amount(),
		CreatedAt:   t.CreatedAt(),
		Metadata:    t.Metadata(),
	}
	if qty, ok := t.Quantity(); ok {
		resp.Quantity = &qty
	}
	if price, ok := t.Price(); ok {
		resp.Price = &price
	}
	if pl, ok := t.ProfitLoss(); ok {
		resp.ProfitLoss = &pl
	}
	return resp
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(entries []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(entries))
	for i, t := range entries {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ValuationResponse represents a portfolio valuation in API responses.
type ValuationResponse struct {
	PortfolioID  string          `json:"portfolio_id"`
	MarketValue  decimal.Decimal `json:"market_value"`
	UnrealizedPL decimal.Decimal `json:"unrealized_pl"`
}

// BreakdownRowResponse represents one holding's valuation. Price fields
// are null when no quote was available for the symbol.
type BreakdownRowResponse struct {
	Symbol       string           `json:"symbol"`
	Quantity     decimal.Decimal  `json:"quantity"`
	AverageCost  decimal.Decimal  `json:"average_cost"`
	MarketPrice  *decimal.Decimal `json:"market_price"`
	MarketValue  *decimal.Decimal `json:"market_value"`
	UnrealizedPL *decimal.Decimal `json:"unrealized_pl"`
}

// BreakdownResponse represents a per-holding valuation breakdown.
type BreakdownResponse struct {
	PortfolioID       string                 `json:"portfolio_id"`
	Rows              []BreakdownRowResponse `json:"rows"`
	TotalMarketValue  decimal.Decimal        `json:"total_market_value"`
	TotalUnrealizedPL decimal.Decimal        `json:"total_unrealized_pl"`
	PricedRows        int                    `json:"priced_rows"`
}

// BreakdownFromResult converts a breakdown result to a response.
func BreakdownFromResult(portfolioID string, result usecase.BreakdownResult) *BreakdownResponse {
	rows := make([]BreakdownRowResponse, len(result.Rows))
	for i, row := range result.Rows {
		rows[i] = BreakdownRowResponse{
			Symbol:       row.Symbol,
			Quantity:     row.Quantity,
			AverageCost:  row.AverageCost,
			MarketPrice:  row.MarketPrice,
			MarketValue:  row.MarketValue,
			UnrealizedPL: row.UnrealizedPL,
		}
	}
	return &BreakdownResponse{
		PortfolioID:       portfolioID,
		Rows:              rows,
		TotalMarketValue:  result.TotalMarketValue,
		TotalUnrealizedPL: result.TotalUnrealizedPL,
		PricedRows:        result.PricedRows,
	}
}

// ActivityResponse represents an account activity report.
type ActivityResponse struct {
	AccountID    string                 `json:"account_id"`
	Owner        string                 `json:"owner"`
	Currency     string                 `json:"currency"`
	Balance      decimal.Decimal        `json:"balance"`
	RealizedPL   decimal.Decimal        `json:"realized_pl"`
	Transactions []*TransactionResponse `json:"transactions"`
}

// ActivityFromUseCase converts an account activity report to a response.
func ActivityFromUseCase(a *usecase.AccountActivity) *ActivityResponse {
	return &ActivityResponse{
		AccountID:    a.AccountID,
		Owner:        a.Owner,
		Currency:     a.Currency,
		Balance:      a.Balance,
		RealizedPL:   a.RealizedPL,
		Transactions: TransactionsFromDomain(a.Entries),
	}
}

// SnapshotResponse combines an account's activity with the holdings of
// its linked portfolios.
type SnapshotResponse struct {
	ActivityResponse

	Holdings []HoldingResponse `json:"holdings"`
}

// SnapshotFromUseCase converts an account snapshot to a response.
func SnapshotFromUseCase(s *usecase.AccountSnapshot) *SnapshotResponse {
	return &SnapshotResponse{
		ActivityResponse: *ActivityFromUseCase(s.Activity),
		Holdings:         HoldingsFromSnapshots(s.Holdings),
	}
}

// QuoteResponse represents a price quote in API responses.
type QuoteResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// SymbolsResponse lists the symbols the oracle can quote.
type SymbolsResponse struct {
	Symbols []string `json:"symbols"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
