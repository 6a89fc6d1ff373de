package reporting

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// DefaultSchemaTTL bounds how long schema metadata is reused.
const DefaultSchemaTTL = 5 * time.Minute

const tablesKey = "tables"

// CachedClient memoizes schema lookups of another client. Failed lookups are
// not cached and queries always reach the backend.
type CachedClient struct {
	next  dashboard.ReportingClient
	cache *gocache.Cache
}

var _ dashboard.ReportingClient = (*CachedClient)(nil)

// NewCachedClient wraps next. A non-positive ttl uses DefaultSchemaTTL.
func NewCachedClient(next dashboard.ReportingClient, ttl time.Duration) *CachedClient {
	if ttl <= 0 {
		ttl = DefaultSchemaTTL
	}
	return &CachedClient{next: next, cache: gocache.New(ttl, 2*ttl)}
}

// ListDataSources serves the table list from cache when present.
func (c *CachedClient) ListDataSources(ctx context.Context) ([]string, error) {
	return cached(c.cache, tablesKey, func() ([]string, error) {
		return c.next.ListDataSources(ctx)
	})
}

// ListFields serves a table's fields from cache when present.
func (c *CachedClient) ListFields(ctx context.Context, table string) ([]string, error) {
	return cached(c.cache, "fields:"+table, func() ([]string, error) {
		return c.next.ListFields(ctx, table)
	})
}

// ListRelations serves a table's relations from cache when present.
func (c *CachedClient) ListRelations(ctx context.Context, table string) ([]dashboard.Relation, error) {
	return cached(c.cache, "relations:"+table, func() ([]dashboard.Relation, error) {
		return c.next.ListRelations(ctx, table)
	})
}

// ExecuteQuery always delegates.
func (c *CachedClient) ExecuteQuery(ctx context.Context, payload dashboard.QueryPayload) ([]dashboard.DataPoint, error) {
	return c.next.ExecuteQuery(ctx, payload)
}

// Invalidate drops every cached entry.
func (c *CachedClient) Invalidate() {
	c.cache.Flush()
}

func cached[T any](cache *gocache.Cache, key string, load func() ([]T, error)) ([]T, error) {
	if hit, ok := cache.Get(key); ok {
		return append([]T(nil), hit.([]T)...), nil
	}
	values, err := load()
	if err != nil {
		return nil, err
	}
	cache.SetDefault(key, append([]T(nil), values...))
	return values, nil
}
