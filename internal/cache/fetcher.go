package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a response stays cached.
const DefaultTTL = 6 * time.Hour

// keyPrefix namespaces cache keys in a shared Redis instance.
const keyPrefix = "samradar:resp:"

// Fetcher is the request path being cached. It matches source.Fetcher.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error)
}

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// CachedFetcher wraps a Fetcher with a Redis cache. Only successful
// bodies are stored; errors always go to the caller uncached. Redis
// problems degrade to a direct fetch.
type CachedFetcher struct {
	next   Fetcher
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures a CachedFetcher.
type Option func(*CachedFetcher)

// WithTTL sets the cache lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *CachedFetcher) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CachedFetcher) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New wraps next with the given store.
func New(next Fetcher, store Store, opts ...Option) *CachedFetcher {
	c := &CachedFetcher{
		next:   next,
		store:  store,
		ttl:    DefaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dial connects to the Redis server at addr and checks it answers.
// The caller closes the returned client.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Get implements source.Fetcher.
func (c *CachedFetcher) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	key := Key(rawURL, headers)

	body, err := c.store.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		c.logger.Debug("cache hit", "key", key)
		return body, nil
	case errors.Is(err, redis.Nil):
		// miss
	default:
		c.logger.Debug("cache read failed", "error", err)
	}

	body, err = c.next.Get(ctx, rawURL, headers)
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(ctx, key, body, c.ttl).Err(); err != nil {
		c.logger.Debug("cache write failed", "error", err)
	}
	return body, nil
}

// Key returns the cache key for a request. The URL and headers are
// hashed so credentials never appear in Redis keys.
func Key(rawURL string, headers map[string]string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h.Write([]byte("\n" + strings.ToLower(name) + ":" + headers[name]))
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}
