package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedLayoutAddsStarterWidgets(t *testing.T) {
	store := NewInMemoryWidgetStore()
	service := NewService(Options{Store: store})

	require.NoError(t, SeedLayout(context.Background(), service))

	widgets, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, widgets, len(ChartTypes()))
	for _, w := range widgets {
		assert.Nil(t, w.QueryPayload)
		assert.Empty(t, w.Data)
	}
	assert.Equal(t, Layout{X: 6, Y: 4, W: 6, H: 4}, widgets[3].Layout)
}

func TestSeedBoardIsIdempotent(t *testing.T) {
	ctx := context.Background()
	reporting := &fakeReporting{points: []DataPoint{{Name: "a", Value: 1}}}
	service := NewService(Options{Reporting: reporting})
	doc := &BoardManifest{
		Version: manifestVersionV1,
		Widgets: []ManifestWidget{
			{AddWidgetRequest: AddWidgetRequest{WidgetSelection: WidgetSelection{
				Title: "Orders Count", DataSource: "orders", Field: "id", Aggregation: "count",
			}}},
			{Static: true, AddWidgetRequest: AddWidgetRequest{WidgetSelection: WidgetSelection{Title: "Sample", Type: ChartPie}}},
		},
	}

	first, err := SeedBoard(ctx, service, doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders_count", "sample"}, first.Added)

	second, err := SeedBoard(ctx, service, doc)
	require.NoError(t, err)
	assert.Empty(t, second.Added)
	assert.Equal(t, []string{"orders_count", "sample"}, second.Skipped)

	widgets, err := service.Widgets(ctx)
	require.NoError(t, err)
	assert.Len(t, widgets, 2)
	assert.Equal(t, int32(1), reporting.executed.Load())
}

func TestSeedBoardJoinsFailures(t *testing.T) {
	ctx := context.Background()
	reporting := &fakeReporting{queryErr: NewServerError(500, "boom")}
	service := NewService(Options{Reporting: reporting})
	doc := &BoardManifest{
		Version: manifestVersionV1,
		Widgets: []ManifestWidget{
			{AddWidgetRequest: AddWidgetRequest{WidgetSelection: WidgetSelection{
				Title: "Broken", DataSource: "orders", Field: "id", Aggregation: "count",
			}}},
			{Static: true, AddWidgetRequest: AddWidgetRequest{WidgetSelection: WidgetSelection{Title: "Fine"}}},
		},
	}

	result, err := SeedBoard(ctx, service, doc)
	require.Error(t, err)
	var qe *QueryError
	assert.True(t, errors.As(err, &qe))
	assert.Equal(t, []string{"broken"}, result.Failed)
	assert.Equal(t, []string{"fine"}, result.Added)
}

func TestSeedBoardRequiresService(t *testing.T) {
	_, err := SeedBoard(context.Background(), nil, DefaultBoard())
	require.Error(t, err)
}
