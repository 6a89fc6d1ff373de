package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReporting struct {
	queryErr     error
	relationsErr error
}

func (s *stubReporting) ListDataSources(context.Context) ([]string, error) {
	return []string{"orders", "customers"}, nil
}

func (s *stubReporting) ListFields(context.Context, string) ([]string, error) {
	return []string{"id", "total"}, nil
}

func (s *stubReporting) ListRelations(context.Context, string) ([]dashboard.Relation, error) {
	return nil, s.relationsErr
}

func (s *stubReporting) ExecuteQuery(context.Context, dashboard.QueryPayload) ([]dashboard.DataPoint, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return []dashboard.DataPoint{{Name: "east", Value: 3}, {Name: "west", Value: 7}}, nil
}

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(_ context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

func newTestServer(t *testing.T, reporting *stubReporting) (*httptest.Server, *dashboard.Service) {
	t.Helper()
	service := dashboard.NewService(dashboard.Options{Reporting: reporting})
	renderer, err := dashboard.NewTemplateRenderer()
	require.NoError(t, err)
	handlers := NewHandlers(service, Config{
		Events: dashboard.NewBroadcastHook(),
		Board:  dashboard.NewController(dashboard.ControllerOptions{Service: service, Renderer: renderer}),
		Logger: discardLogger(),
	})
	srv := httptest.NewServer(NewRouter(handlers, "/api"))
	t.Cleanup(srv.Close)
	return srv, service
}

func doJSON(t *testing.T, method, target string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func ordersSelection() map[string]any {
	return map[string]any{
		"title":       "Orders",
		"type":        "bar",
		"dataSource":  "orders",
		"field":       "total",
		"aggregation": "sum",
	}
}

func TestAddListEditRemoveWidget(t *testing.T) {
	srv, _ := newTestServer(t, &stubReporting{})
	base := srv.URL + "/api/dashboard"

	resp := doJSON(t, http.MethodPost, base+"/widgets", ordersSelection())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dashboard.Widget
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "Orders", created.Title)
	assert.Len(t, created.Data, 2)

	resp = doJSON(t, http.MethodGet, base+"/widgets?title=ord&minValue=5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed struct {
		Widgets []dashboard.Widget `json:"widgets"`
		Active  bool               `json:"filterActive"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	assert.Len(t, listed.Widgets, 1)
	assert.True(t, listed.Active)

	resp = doJSON(t, http.MethodPatch, base+"/widgets/"+created.ID, map[string]any{"title": "Revenue", "dataKeys": "value"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var edited dashboard.Widget
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&edited))
	assert.Equal(t, "Revenue", edited.Title)

	resp = doJSON(t, http.MethodDelete, base+"/widgets/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, base+"/widgets/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddWidgetStatusMapping(t *testing.T) {
	for _, tc := range []struct {
		name   string
		err    error
		status int
		text   string
	}{
		{"server", dashboard.NewServerError(500, "boom"), http.StatusBadGateway, "Server error: 500. boom"},
		{"no response", dashboard.NewNoResponseError(errors.New("timeout")), http.StatusGatewayTimeout, "No response received from server."},
		{"local", dashboard.NewLocalError(errors.New("bad payload")), http.StatusUnprocessableEntity, "bad payload"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			srv, service := newTestServer(t, &stubReporting{queryErr: tc.err})
			resp := doJSON(t, http.MethodPost, srv.URL+"/api/dashboard/widgets", ordersSelection())
			assert.Equal(t, tc.status, resp.StatusCode)
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Contains(t, body.Message, tc.text)

			widgets, err := service.Widgets(context.Background())
			require.NoError(t, err)
			assert.Empty(t, widgets)
		})
	}
}

func TestAddWidgetValidation(t *testing.T) {
	srv, _ := newTestServer(t, &stubReporting{})
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/dashboard/widgets", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/dashboard/widgets", strings.NewReader("{"))
	require.NoError(t, err)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestLayoutEndpoints(t *testing.T) {
	srv, service := newTestServer(t, &stubReporting{})
	require.NoError(t, dashboard.SeedLayout(context.Background(), service))
	widgets, err := service.Widgets(context.Background())
	require.NoError(t, err)
	id := widgets[0].ID

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/dashboard/layout", []dashboard.GridItem{{I: id, X: 2, Y: 1, W: 5, H: 5}})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	moved, err := service.Widget(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Layout{X: 2, Y: 1, W: 5, H: 5}, moved.Layout)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/dashboard/layout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Layouts dashboard.GridLayouts `json:"layouts"`
		Grid    dashboard.GridConfig  `json:"grid"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Layouts["md"], len(widgets))
	assert.Equal(t, 12, body.Grid.Cols["lg"])
}

func TestSchemaEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, &stubReporting{})
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/dashboard/schema/tables", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tables map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tables))
	assert.Equal(t, []string{"orders", "customers"}, tables["tables"])

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/dashboard/schema/relations/orders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var relations map[string][]dashboard.Relation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&relations))
	assert.NotNil(t, relations["relations"])
}

func TestSchemaFieldsIgnoresRelationFailure(t *testing.T) {
	srv, _ := newTestServer(t, &stubReporting{relationsErr: errors.New("relations unavailable")})

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/dashboard/schema/fields/orders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fields map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fields))
	assert.Equal(t, []string{"id", "total"}, fields["fields"])

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/dashboard/schema/relations/orders", nil)
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)
}

func TestPreviewPayloadEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &stubReporting{})
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/dashboard/payload", ordersSelection())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload dashboard.QueryPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, []string{"orders"}, payload.Entities)
}

func TestBoardPageAndChart(t *testing.T) {
	srv, service := newTestServer(t, &stubReporting{})
	require.NoError(t, dashboard.SeedLayout(context.Background(), service))
	widgets, err := service.Widgets(context.Background())
	require.NoError(t, err)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/dashboard/widgets/"+widgets[0].ID+"/chart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view dashboard.ChartView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.True(t, view.Sample)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/dashboard/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), "grid-stack-item")

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/dashboard/?type=bubble", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandleRefreshWidgetConflict(t *testing.T) {
	refresh := &stubCommander[commands.RefreshWidgetInput]{err: dashboard.ErrRefreshInProgress}
	api := &Handlers{Refresh: refresh, Logger: discardLogger()}
	srv := httptest.NewServer(NewRouter(api, ""))
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/dashboard/widgets/w1/refresh", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "w1", refresh.last.WidgetID)

	refresh.err = nil
	resp = doJSON(t, http.MethodPost, srv.URL+"/dashboard/refresh", nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Empty(t, refresh.last.WidgetID)
}

func TestParseFilter(t *testing.T) {
	filter, err := ParseFilter(url.Values{
		"title":       {" Sales "},
		"type":        {"line"},
		"minValue":    {"10"},
		"maxValue":    {""},
		"startDate":   {"2024-01-01"},
		"dataSources": {"orders"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Sales", filter.Title)
	assert.Equal(t, dashboard.ChartLine, filter.Type)
	require.NotNil(t, filter.MinValue)
	assert.Equal(t, 10.0, *filter.MinValue)
	assert.Nil(t, filter.MaxValue)
	assert.Equal(t, "2024-01-01", filter.DateRange.StartDate)

	_, err = ParseFilter(url.Values{"minValue": {"ten"}})
	assert.ErrorIs(t, err, errBadFilter)
}

func TestStatusFor(t *testing.T) {
	status, code := StatusFor(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", code)

	status, _ = StatusFor(dashboard.ErrJoinPathMissing)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = StatusFor(dashboard.ErrMissingReporting)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
