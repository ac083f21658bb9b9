package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Trade metrics
	TradesExecuted *prometheus.CounterVec
	TradeDuration  prometheus.Histogram
	TradeAmount    prometheus.Histogram
	TradeErrors    *prometheus.CounterVec

	// Compensation metrics
	CompensationsAttempted *prometheus.CounterVec
	CompensationsFailed    *prometheus.CounterVec

	// Account metrics
	AccountsCreated   prometheus.Counter
	AccountBalance    *prometheus.GaugeVec
	AccountOperations *prometheus.CounterVec

	// Oracle metrics
	OracleQuotes    *prometheus.CounterVec
	OracleCacheHits prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Trade metrics
		TradesExecuted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_trades_executed_total",
				Help: "Total number of trades executed",
			},
			[]string{"side"},
		),
		TradeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradesim_trade_duration_seconds",
			Help:    "Duration of trade operations",
			Buckets: prometheus.DefBuckets,
		}),
		TradeAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradesim_trade_amount",
			Help:    "Trade cash amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		TradeErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_trade_errors_total",
				Help: "Total number of trade errors by type",
			},
			[]string{"error_type"},
		),

		// Compensation metrics
		CompensationsAttempted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_compensations_attempted_total",
				Help: "Total compensations attempted after a downstream failure",
			},
			[]string{"operation"},
		),
		CompensationsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_compensations_failed_total",
				Help: "Total compensations that themselves failed",
			},
			[]string{"operation"},
		),

		// Account metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradesim_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountBalance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradesim_account_balance",
				Help: "Current account balance",
			},
			[]string{"account_id", "currency"},
		),
		AccountOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),

		// Oracle metrics
		OracleQuotes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_oracle_quotes_total",
				Help: "Total price oracle lookups by outcome",
			},
			[]string{"status"},
		),
		OracleCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradesim_oracle_cache_hits_total",
			Help: "Total oracle quotes served from cache",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradesim_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradesim_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tradesim_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),
	}
}
