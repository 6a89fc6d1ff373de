package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDemoServiceAddsWidget(t *testing.T) {
	svc := NewDemoService(Options{})
	widget, err := svc.AddWidget(context.Background(), AddWidgetRequest{
		WidgetSelection: WidgetSelection{
			Title:       "Orders",
			DataSource:  "orders",
			Field:       "status",
			Aggregation: "count",
		},
	})
	require.NoError(t, err)
	assert.Len(t, widget.Data, 3)

	widgets, err := svc.Widgets(context.Background())
	require.NoError(t, err)
	assert.Len(t, widgets, 1)
}

func TestNewReportingServiceCachesSchema(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"entityName":"orders","columnName":"id"}]`))
	}))
	defer srv.Close()

	svc, err := NewReportingService(srv.URL, time.Minute, Options{})
	require.NoError(t, err)

	for range 2 {
		tables, err := svc.Tables(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"orders"}, tables)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewReportingServiceRequiresURL(t *testing.T) {
	_, err := NewReportingService("", time.Minute, Options{})
	require.Error(t, err)
}
