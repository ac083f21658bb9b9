package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/tradesim/internal/adapter/http/dto"
	"github.com/iho/tradesim/internal/domain"
	"github.com/iho/tradesim/internal/usecase"
)

// ValuationService defines the behavior needed by ValuationHandler.
type ValuationService interface {
	PortfolioMarketValue(ctx context.Context, holdings []domain.HoldingSnapshot, overrides map[string]decimal.Decimal) (decimal.Decimal, error)
	PortfolioUnrealizedPL(ctx context.Context, holdings []domain.HoldingSnapshot, overrides map[string]decimal.Decimal) (decimal.Decimal, error)
	PortfolioBreakdownByID(ctx context.Context, portfolioID string, overrides map[string]decimal.Decimal) (usecase.BreakdownResult, error)
}

// ValuationHandler handles portfolio valuation HTTP requests.
type ValuationHandler struct {
	valuationUC ValuationService
	portfolioUC PortfolioService
}

// NewValuationHandler creates a new ValuationHandler.
func NewValuationHandler(valuationUC ValuationService, portfolioUC PortfolioService) *ValuationHandler {
	return &ValuationHandler{valuationUC: valuationUC, portfolioUC: portfolioUC}
}

// Valuation returns the portfolio's total market value and unrealized P/L.
// Every holding must have a resolvable price; otherwise the request fails.
func (h *ValuationHandler) Valuation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing portfolio ID", "")
		return
	}

	holdings, err := h.portfolioUC.ListHoldings(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to value portfolio", err.Error())
		return
	}

	marketValue, err := h.valuationUC.PortfolioMarketValue(r.Context(), holdings, nil)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to value portfolio", err.Error())
		return
	}

	unrealized, err := h.valuationUC.PortfolioUnrealizedPL(r.Context(), holdings, nil)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to value portfolio", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ValuationResponse{
		PortfolioID:  id,
		MarketValue:  marketValue,
		UnrealizedPL: unrealized,
	})
}

// Breakdown returns a per-holding valuation. Holdings without a quote are
// listed with null price fields and excluded from the totals.
func (h *ValuationHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing portfolio ID", "")
		return
	}

	result, err := h.valuationUC.PortfolioBreakdownByID(r.Context(), id, nil)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build breakdown", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BreakdownFromResult(id, result))
}
