package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"MarketScout/internal/model"
)

type entry struct {
	v   any
	exp time.Time
}

// ttlCache is a map with per-entry expiry.
type ttlCache struct {
	mu  sync.RWMutex
	m   map[string]entry
	now func() time.Time
}

func newTTLCache() *ttlCache {
	return &ttlCache{m: make(map[string]entry), now: time.Now}
}

func (c *ttlCache) get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.v, true
}

func (c *ttlCache) set(key string, v any, ttl time.Duration) {
	c.mu.Lock()
	c.m[key] = entry{v: v, exp: c.now().Add(ttl)}
	c.mu.Unlock()
}

// CachedProvider serves repeated fetches from memory for TTL. Callers accept
// reads up to TTL old. Errors are never cached.
type CachedProvider struct {
	Inner Provider
	TTL   time.Duration
	cache *ttlCache
}

// NewCachedProvider wraps inner with a TTL cache.
func NewCachedProvider(inner Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{Inner: inner, TTL: ttl, cache: newTTLCache()}
}

func (c *CachedProvider) Name() string { return c.Inner.Name() + "+cache" }

func (c *CachedProvider) FetchSeries(ctx context.Context, symbol string, period int) (model.PriceSeries, error) {
	key := fmt.Sprintf("series:%s:%d", symbol, period)
	if v, ok := c.cache.get(key); ok {
		return v.(model.PriceSeries), nil
	}
	s, err := c.Inner.FetchSeries(ctx, symbol, period)
	if err != nil {
		return s, err
	}
	c.cache.set(key, s, c.TTL)
	return s, nil
}

func (c *CachedProvider) FetchQuote(ctx context.Context, symbol string) (model.MarketQuote, error) {
	key := "quote:" + symbol
	if v, ok := c.cache.get(key); ok {
		return v.(model.MarketQuote), nil
	}
	q, err := c.Inner.FetchQuote(ctx, symbol)
	if err != nil {
		return q, err
	}
	c.cache.set(key, q, c.TTL)
	return q, nil
}
