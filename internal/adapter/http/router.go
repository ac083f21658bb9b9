package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/tradesim/internal/adapter/http/handler"
	"github.com/iho/tradesim/internal/adapter/http/middleware"
	"github.com/iho/tradesim/internal/infrastructure/metrics"
	"github.com/iho/tradesim/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	PortfolioHandler *handler.PortfolioHandler
	TradingHandler   *handler.TradingHandler
	ValuationHandler *handler.ValuationHandler
	HistoryHandler   *handler.HistoryHandler
	QuoteHandler     *handler.QuoteHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	Metrics          *metrics.Metrics
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	r.Use(chimiddleware.Recoverer)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Delete("/{id}", cfg.AccountHandler.Close)
			r.Post("/{id}/deposits", cfg.AccountHandler.Deposit)
			r.Post("/{id}/withdrawals", cfg.AccountHandler.Withdraw)
			r.Get("/{id}/transactions", cfg.HistoryHandler.AccountTransactions)
			r.Get("/{id}/activity", cfg.HistoryHandler.Activity)
			r.Get("/{id}/snapshot", cfg.HistoryHandler.Snapshot)
		})

		// Portfolios
		r.Route("/portfolios", func(r chi.Router) {
			r.Post("/", cfg.PortfolioHandler.Create)
			r.Get("/", cfg.PortfolioHandler.List)
			r.Get("/{id}", cfg.PortfolioHandler.Get)
			r.Delete("/{id}", cfg.PortfolioHandler.Delete)
			r.Get("/{id}/holdings", cfg.PortfolioHandler.Holdings)
			r.Get("/{id}/valuation", cfg.ValuationHandler.Valuation)
			r.Get("/{id}/breakdown", cfg.ValuationHandler.Breakdown)
		})

		// Trades
		r.Route("/trades", func(r chi.Router) {
			r.Post("/buy", cfg.TradingHandler.Buy)
			r.Post("/sell", cfg.TradingHandler.Sell)
		})

		// Ledger
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", cfg.HistoryHandler.List)
			r.Get("/{id}", cfg.HistoryHandler.Get)
		})

		// Quotes
		r.Get("/quotes/{symbol}", cfg.QuoteHandler.Quote)
		r.Get("/symbols", cfg.QuoteHandler.Symbols)
	})

	return r
}
