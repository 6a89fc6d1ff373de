package reporting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

func TestMockClientDrivesService(t *testing.T) {
	mock := NewMockClient(DemoData())
	service := dashboard.NewService(dashboard.Options{Reporting: mock})

	widget, err := service.AddWidget(context.Background(), dashboard.AddWidgetRequest{
		WidgetSelection: dashboard.WidgetSelection{
			Title:        "Order value by region",
			DataSource:   "orders",
			Field:        "total",
			Aggregation:  "sum",
			MetricSource: "customers",
			Metric:       "region",
		},
	})
	require.NoError(t, err)
	assert.Len(t, widget.Data, 3)

	queries := mock.Queries()
	require.Len(t, queries, 1)
	assert.Equal(t, []string{"orders", "customers"}, queries[0].Entities)
	assert.NotEmpty(t, queries[0].Join)
}

func TestMockClientErrors(t *testing.T) {
	mock := NewMockClient(MockData{})
	_, err := mock.ListFields(context.Background(), "nope")
	var qe *dashboard.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 404, qe.StatusCode)

	_, err = mock.ExecuteQuery(context.Background(), dashboard.QueryPayload{Entities: []string{"orders"}})
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, dashboard.KindServer, qe.Kind)
}
