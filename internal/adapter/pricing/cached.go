package pricing

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/tradesim/internal/infrastructure/metrics"
	"github.com/iho/tradesim/internal/usecase"
)

// CachedOracle decorates an oracle with a read-through cache. Quotes are
// stored as exact decimal strings so a cache round trip never loses
// precision. Cache failures degrade to the inner oracle, never to an
// error.
type CachedOracle struct {
	inner   usecase.PriceOracle
	cache   usecase.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewCachedOracle wraps inner with a quote cache.
func NewCachedOracle(inner usecase.PriceOracle, cache usecase.Cache, ttl time.Duration, m *metrics.Metrics, log zerolog.Logger) *CachedOracle {
	return &CachedOracle{
		inner:   inner,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
		log:     log,
	}
}

// Quote serves from the cache when possible, falling through to the inner
// oracle and populating the cache on a miss.
func (o *CachedOracle) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	key := quoteKey(symbol)

	if cached, err := o.cache.Get(ctx, key); err == nil && len(cached) > 0 {
		if price, perr := decimal.NewFromString(string(cached)); perr == nil {
			if o.metrics != nil {
				o.metrics.OracleCacheHits.Inc()
			}

			return price, nil
		}
	}

	price, err := o.inner.Quote(ctx, symbol)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if err := o.cache.Set(ctx, key, []byte(price.String()), o.ttl); err != nil {
		o.log.Warn().Err(err).Str("symbol", symbol).Msg("quote cache write failed")
	}

	return price, nil
}

// Symbols delegates to the inner oracle.
func (o *CachedOracle) Symbols(ctx context.Context) ([]string, error) {
	return o.inner.Symbols(ctx)
}

func quoteKey(symbol string) string {
	return "quote:" + symbol
}
