package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/tradesim/internal/adapter/http/dto"
)

// QuoteService defines the behavior needed by QuoteHandler.
type QuoteService interface {
	Quote(ctx context.Context, symbol string) (decimal.Decimal, error)
	Symbols(ctx context.Context) ([]string, error)
}

// QuoteHandler handles price oracle HTTP requests.
type QuoteHandler struct {
	oracle QuoteService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(oracle QuoteService) *QuoteHandler {
	return &QuoteHandler{oracle: oracle}
}

// Quote returns the current price for a symbol.
func (h *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol", "")
		return
	}

	price, err := h.oracle.Quote(r.Context(), symbol)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to quote symbol", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.QuoteResponse{Symbol: symbol, Price: price})
}

// Symbols lists the symbols the oracle can quote.
func (h *QuoteHandler) Symbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.oracle.Symbols(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list symbols", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SymbolsResponse{Symbols: symbols})
}
