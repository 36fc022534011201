package source

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// CachedFetcher serves a fresh cached copy when one exists, otherwise fetches
// through next and stores the result. When next fails, a stale copy is
// served instead of the error.
type CachedFetcher struct {
	next   Fetcher
	cache  *Cache
	maxAge time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewCachedFetcher wraps next with cache. A maxAge of zero always refetches.
func NewCachedFetcher(next Fetcher, cache *Cache, maxAge time.Duration, logger *slog.Logger) *CachedFetcher {
	return &CachedFetcher{
		next:   next,
		cache:  cache,
		maxAge: maxAge,
		logger: logger,
		now:    time.Now,
	}
}

// Fetch implements Fetcher.
func (c *CachedFetcher) Fetch(ctx context.Context) ([]byte, error) {
	cached, ts, cacheErr := c.cache.LoadLatest()
	if cacheErr != nil && !errors.Is(cacheErr, ErrNoCache) {
		c.logger.Warn("cache unreadable", "prefix", c.cache.prefix, "error", cacheErr)
	}
	if cacheErr == nil && c.now().Sub(ts) < c.maxAge {
		c.logger.Debug("serving cached copy", "prefix", c.cache.prefix, "age", c.now().Sub(ts).String())
		return cached, nil
	}

	data, err := c.next.Fetch(ctx)
	if err != nil {
		if cacheErr == nil {
			c.logger.Warn("fetch failed, serving stale cache",
				"prefix", c.cache.prefix,
				"age", c.now().Sub(ts).String(),
				"error", err,
			)
			return cached, nil
		}
		return nil, err
	}

	if err := c.cache.Write(data, c.now()); err != nil {
		c.logger.Warn("failed to write cache", "prefix", c.cache.prefix, "error", err)
	}
	return data, nil
}
