package reporting

import (
	"context"
	"fmt"
	"slices"
	"sync"

	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// MockData seeds deterministic reporting responses for tests or local demos.
type MockData struct {
	// Fields maps each table to its columns.
	Fields    map[string][]string
	Relations map[string][]dashboard.Relation
	// Points answers every query whose first entity matches the key.
	Points map[string][]dashboard.DataPoint
}

// MockClient implements dashboard.ReportingClient using in-memory fixtures.
type MockClient struct {
	mu      sync.RWMutex
	data    MockData
	queries []dashboard.QueryPayload
}

var _ dashboard.ReportingClient = (*MockClient)(nil)

// NewMockClient builds a mock client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

// DemoData is a small sales schema used by `widgetctl serve --mock`.
func DemoData() MockData {
	return MockData{
		Fields: map[string][]string{
			"orders":    {"id", "customer_id", "total", "status", "created_at"},
			"customers": {"id", "name", "region"},
			"products":  {"id", "name", "price"},
		},
		Relations: map[string][]dashboard.Relation{
			"orders": {{
				ID:               "orders_customers",
				RelationshipType: "many-to-one",
				SourceTable:      "orders",
				SourceColumn:     "customer_id",
				TargetTable:      "customers",
				TargetColumn:     "id",
			}},
		},
		Points: map[string][]dashboard.DataPoint{
			"orders": {
				{Name: "cancelled", Value: 12},
				{Name: "paid", Value: 240},
				{Name: "pending", Value: 35},
			},
			"customers": {
				{Name: "emea", Value: 80},
				{Name: "na", Value: 120},
			},
		},
	}
}

// ListDataSources returns the fixture tables sorted by name.
func (c *MockClient) ListDataSources(context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tables := make([]string, 0, len(c.data.Fields))
	for table := range c.data.Fields {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	return tables, nil
}

// ListFields returns the fixture columns of table.
func (c *MockClient) ListFields(_ context.Context, table string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fields, ok := c.data.Fields[table]
	if !ok {
		return nil, dashboard.NewServerError(404, fmt.Sprintf("unknown table %s", table))
	}
	return append([]string(nil), fields...), nil
}

// ListRelations returns the fixture relations of table.
func (c *MockClient) ListRelations(_ context.Context, table string) ([]dashboard.Relation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]dashboard.Relation{}, c.data.Relations[table]...), nil
}

// ExecuteQuery returns the points keyed by the payload's first entity.
func (c *MockClient) ExecuteQuery(_ context.Context, payload dashboard.QueryPayload) ([]dashboard.DataPoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, payload.Clone())
	if len(payload.Entities) == 0 {
		return nil, dashboard.NewLocalError(fmt.Errorf("payload has no entities"))
	}
	points, ok := c.data.Points[payload.Entities[0]]
	if !ok {
		return nil, dashboard.NewServerError(400, fmt.Sprintf("no data for %s", payload.Entities[0]))
	}
	return append([]dashboard.DataPoint(nil), points...), nil
}

// Queries returns the payloads executed so far.
func (c *MockClient) Queries() []dashboard.QueryPayload {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]dashboard.QueryPayload(nil), c.queries...)
}
