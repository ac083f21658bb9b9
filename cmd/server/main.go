package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/tradesim/internal/adapter/http"
	"github.com/iho/tradesim/internal/adapter/http/handler"
	"github.com/iho/tradesim/internal/adapter/pricing"
	memoryRepo "github.com/iho/tradesim/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/tradesim/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/tradesim/internal/adapter/repository/redis"
	"github.com/iho/tradesim/internal/domain"
	"github.com/iho/tradesim/internal/infrastructure/config"
	"github.com/iho/tradesim/internal/infrastructure/logger"
	"github.com/iho/tradesim/internal/infrastructure/metrics"
	"github.com/iho/tradesim/internal/infrastructure/postgres"
	"github.com/iho/tradesim/internal/infrastructure/redis"
	"github.com/iho/tradesim/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	m := metrics.New()

	ctx := context.Background()

	repos, pool, err := buildRepositories(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}
	if pool != nil {
		defer pool.Close()
	}

	// Redis is optional. Without it there is no quote cache and no
	// request idempotency, which is fine for a single-node simulator.
	var redisClient *redislib.Client
	var cache usecase.Cache
	var idempotencyStore usecase.IdempotencyStore
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		cache = redisRepo.NewCache(redisClient, m)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}

	var oracle usecase.PriceOracle = pricing.NewStaticOracle(pricing.DefaultPrices())
	if cache != nil {
		oracle = pricing.NewCachedOracle(oracle, cache, cfg.QuoteCacheTTL, m, log)
	}

	policy := domain.NewSymbolPolicy(cfg.AllowedSymbols...)
	idGen := postgresRepo.NewULIDGenerator()

	accountUC := usecase.NewAccountUseCase(repos.accounts, repos.transactions, idGen, m, log)
	portfolioUC := usecase.NewPortfolioUseCase(repos.portfolios, repos.accounts, idGen)
	tradingUC := usecase.NewTradingUseCase(repos.accounts, repos.portfolios, repos.transactions, oracle, idGen, policy, m, log)
	valuationUC := usecase.NewValuationUseCase(repos.portfolios, oracle)
	historyUC := usecase.NewHistoryUseCase(repos.accounts, repos.portfolios, repos.transactions)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		PortfolioHandler: handler.NewPortfolioHandler(portfolioUC),
		TradingHandler:   handler.NewTradingHandler(tradingUC),
		ValuationHandler: handler.NewValuationHandler(valuationUC, portfolioUC),
		HistoryHandler:   handler.NewHistoryHandler(historyUC),
		QuoteHandler:     handler.NewQuoteHandler(oracle),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
		Metrics:          m,
		Logger:           log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("backend", cfg.StorageBackend).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

type repositories struct {
	accounts     usecase.AccountRepository
	portfolios   usecase.PortfolioRepository
	transactions usecase.TransactionRepository
}

// buildRepositories wires the configured storage backend. The returned
// pool is nil for the in-memory backend.
func buildRepositories(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repositories, *pgxpool.Pool, error) {
	switch cfg.StorageBackend {
	case "memory":
		return repositories{
			accounts:     memoryRepo.NewAccountRepository(),
			portfolios:   memoryRepo.NewPortfolioRepository(),
			transactions: memoryRepo.NewTransactionRepository(),
		}, nil, nil

	case "postgres":
		if err := postgres.RunMigrations(cfg.DatabaseURL, "migrations", log); err != nil {
			return repositories{}, nil, err
		}

		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolConfig{
			MaxConns: cfg.DatabaseMaxConns,
			MinConns: cfg.DatabaseMinConns,
		})
		if err != nil {
			return repositories{}, nil, err
		}
		log.Info().Msg("connected to postgres")

		retrier := postgresRepo.NewRetrier(log)

		return repositories{
			accounts:     postgresRepo.NewAccountRepository(pool, retrier),
			portfolios:   postgresRepo.NewPortfolioRepository(pool, retrier),
			transactions: postgresRepo.NewTransactionRepository(pool, retrier),
		}, pool, nil

	default:
		return repositories{}, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
