package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/tradesim/internal/adapter/http/dto"
	"github.com/iho/tradesim/internal/domain"
	"github.com/iho/tradesim/internal/usecase"
)

// TradingService defines the behavior needed by TradingHandler.
type TradingService interface {
	Buy(ctx context.Context, input usecase.TradeInput) (*domain.Transaction, error)
	Sell(ctx context.Context, input usecase.TradeInput) (*domain.Transaction, error)
}

// TradingHandler handles trade execution HTTP requests.
type TradingHandler struct {
	tradingUC TradingService
}

// NewTradingHandler creates a new TradingHandler.
func NewTradingHandler(tradingUC TradingService) *TradingHandler {
	return &TradingHandler{tradingUC: tradingUC}
}

// Buy executes a buy order.
func (h *TradingHandler) Buy(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.tradingUC.Buy, "failed to execute buy")
}

// Sell executes a sell order.
func (h *TradingHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.tradingUC.Sell, "failed to execute sell")
}

func (h *TradingHandler) trade(
	w http.ResponseWriter,
	r *http.Request,
	execute func(context.Context, usecase.TradeInput) (*domain.Transaction, error),
	errMsg string,
) {
	var req dto.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := execute(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), errMsg, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(entry))
}
