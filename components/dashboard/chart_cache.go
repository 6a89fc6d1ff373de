package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultChartCacheSize bounds the number of rendered charts kept in memory.
const DefaultChartCacheSize = 256

// RenderCache memoizes rendered chart HTML so repeated fetches are cheap.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache is a size-bounded TTL cache for rendered charts.
type ChartCache struct {
	lru *expirable.LRU[string, string]
}

// NewChartCache builds a cache with the provided TTL and the default size.
func NewChartCache(ttl time.Duration) *ChartCache {
	return NewChartCacheWithSize(DefaultChartCacheSize, ttl)
}

// NewChartCacheWithSize builds a cache holding at most size entries.
func NewChartCacheWithSize(size int, ttl time.Duration) *ChartCache {
	if size <= 0 {
		size = DefaultChartCacheSize
	}
	return &ChartCache{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

// GetOrRender returns a cached entry or renders/stores a new one. Render
// errors are not cached.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c == nil || c.lru == nil {
		return render()
	}
	if html, ok := c.lru.Get(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.lru.Add(key, html)
	return html, nil
}

// Len reports the number of live entries.
func (c *ChartCache) Len() int {
	if c == nil || c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

// Purge drops every entry.
func (c *ChartCache) Purge() {
	if c != nil && c.lru != nil {
		c.lru.Purge()
	}
}

// chartKey identifies a rendering of a widget. It changes whenever anything
// that affects the chart output changes.
func chartKey(w Widget) string {
	b, err := json.Marshal(struct {
		Type    ChartType   `json:"type"`
		Title   string      `json:"title"`
		DataKey DataKeys    `json:"dataKey"`
		Data    []DataPoint `json:"data"`
	}{w.Type, w.Title, w.DataKey, w.Data})
	if err != nil {
		return w.ID + ":invalid"
	}
	sum := sha1.Sum(b)
	return w.ID + ":" + hex.EncodeToString(sum[:])
}
