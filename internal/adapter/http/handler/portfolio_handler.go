package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/tradesim/internal/adapter/http/dto"
	"github.com/iho/tradesim/internal/domain"
	"github.com/iho/tradesim/internal/usecase"
)

// PortfolioService defines the behavior needed by PortfolioHandler.
type PortfolioService interface {
	CreatePortfolio(ctx context.Context, input usecase.CreatePortfolioInput) (*domain.Portfolio, error)
	GetPortfolio(ctx context.Context, id string) (*domain.Portfolio, error)
	ListPortfolios(ctx context.Context, input usecase.ListPortfoliosInput) ([]*domain.Portfolio, error)
	DeletePortfolio(ctx context.Context, id string) error
	ListHoldings(ctx context.Context, portfolioID string) ([]domain.HoldingSnapshot, error)
}

// PortfolioHandler handles portfolio-related HTTP requests.
type PortfolioHandler struct {
	portfolioUC PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioUC PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioUC: portfolioUC}
}

// Create creates a new empty portfolio.
func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	portfolio, err := h.portfolioUC.CreatePortfolio(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create portfolio", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PortfolioFromDomain(portfolio))
}

// Get retrieves a portfolio by ID.
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing portfolio ID", "")
		return
	}

	portfolio, err := h.portfolioUC.GetPortfolio(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get portfolio", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PortfolioFromDomain(portfolio))
}

// List lists portfolios, optionally filtered by owner.
func (h *PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.portfolioUC.ListPortfolios(r.Context(), usecase.ListPortfoliosInput{
		Owner:  r.URL.Query().Get("owner"),
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list portfolios", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PortfoliosFromDomain(portfolios))
}

// Delete removes an empty portfolio.
func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing portfolio ID", "")
		return
	}

	if err := h.portfolioUC.DeletePortfolio(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete portfolio", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Holdings lists the portfolio's positions.
func (h *PortfolioHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing portfolio ID", "")
		return
	}

	holdings, err := h.portfolioUC.ListHoldings(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list holdings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.HoldingsFromSnapshots(holdings))
}
