// Package cache memoizes computed analysis and forecast payloads per
// symbol/period/interval key with a time-to-live. Entries are owned by
// the store and replaced wholesale; a reader observes either a complete
// entry or a miss, never a partial write.
package cache

import (
	"context"
	"time"
)

// TTL constants per payload kind.
const (
	TTLAnalysis = 10 * time.Minute // analysis payloads go stale quickly intraday
	TTLForecast = 30 * time.Minute // forecasts tolerate a longer horizon
)

// Key kind prefixes.
const (
	KindAnalysis = "analysis"
	KindForecast = "forecast"
)

// Store is the payload cache. Values are opaque serialized bytes; a Get
// within the TTL returns them unchanged.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key builds the cache key for a payload kind and request triple.
func Key(kind, symbol, period, interval string) string {
	return kind + ":" + symbol + "|" + period + "|" + interval
}
