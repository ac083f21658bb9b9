package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/tradesim/internal/adapter/http/dto"
	"github.com/iho/tradesim/internal/domain"
	"github.com/iho/tradesim/internal/usecase"
)

// HistoryService defines the behavior needed by HistoryHandler.
type HistoryService interface {
	ListTransactions(ctx context.Context, filter usecase.HistoryFilter) ([]*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	AccountActivity(ctx context.Context, accountID string, filter usecase.HistoryFilter) (*usecase.AccountActivity, error)
	AccountSnapshot(ctx context.Context, accountID string, filter usecase.HistoryFilter) (*usecase.AccountSnapshot, error)
}

// HistoryHandler handles ledger query HTTP requests.
type HistoryHandler struct {
	historyUC HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyUC HistoryService) *HistoryHandler {
	return &HistoryHandler{historyUC: historyUC}
}

// List lists ledger entries, newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}
	filter.AccountID = r.URL.Query().Get("account_id")

	entries, err := h.historyUC.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(entries))
}

// Get retrieves a ledger entry by ID.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	entry, err := h.historyUC.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(entry))
}

// AccountTransactions lists one account's ledger entries.
func (h *HistoryHandler) AccountTransactions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}
	filter.AccountID = id

	entries, err := h.historyUC.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(entries))
}

// Activity returns the account's balance, realized P/L and entries.
func (h *HistoryHandler) Activity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	activity, err := h.historyUC.AccountActivity(r.Context(), id, filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account activity", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ActivityFromUseCase(activity))
}

// Snapshot returns the account's activity plus the holdings of its
// linked portfolios.
func (h *HistoryHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	snapshot, err := h.historyUC.AccountSnapshot(r.Context(), id, filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account snapshot", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SnapshotFromUseCase(snapshot))
}

// filterFromQuery builds a history filter from query parameters. Timestamps
// use RFC 3339 and both range bounds are inclusive.
func filterFromQuery(r *http.Request) (usecase.HistoryFilter, error) {
	filter := usecase.HistoryFilter{
		Kind:   domain.TransactionKind(r.URL.Query().Get("kind")),
		Limit:  parseIntQuery(r, "limit", 50),
		Offset: parseIntQuery(r, "offset", 0),
	}

	from, err := parseTimeQuery(r, "from")
	if err != nil {
		return filter, err
	}
	filter.From = from

	to, err := parseTimeQuery(r, "to")
	if err != nil {
		return filter, err
	}
	filter.To = to

	return filter, nil
}

func parseTimeQuery(r *http.Request, name string) (*time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}

	return &parsed, nil
}
