package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	var app cli
	app.out = &out
	parser, err := kong.New(&app,
		kong.Name("widgetctl"),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
		kong.Exit(func(code int) { t.Fatalf("unexpected exit %d", code) }),
	)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	if err != nil {
		return "", err
	}
	err = ctx.Run(&app.Globals)
	return out.String(), err
}

func TestTablesWithMockBackend(t *testing.T) {
	out, err := run(t, "--mock", "tables")
	require.NoError(t, err)

	var tables []string
	require.NoError(t, json.Unmarshal([]byte(out), &tables))
	assert.Equal(t, []string{"customers", "orders", "products"}, tables)
}

func TestFieldsAndRelations(t *testing.T) {
	out, err := run(t, "--mock", "fields", "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "customer_id")

	out, err = run(t, "--mock", "relations", "orders")
	require.NoError(t, err)
	var relations []dashboard.Relation
	require.NoError(t, json.Unmarshal([]byte(out), &relations))
	require.Len(t, relations, 1)
	assert.Equal(t, "customers", relations[0].TargetTable)
}

func TestRequiresReportingBackend(t *testing.T) {
	_, err := run(t, "tables")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reporting.base_url")
}

func TestPayloadFromFlags(t *testing.T) {
	out, err := run(t, "--mock", "payload",
		"--title", "Revenue by region",
		"--data-source", "orders",
		"--field", "status",
		"--aggregation", "count",
		"--metric-source", "customers",
		"--metric", "region",
		"--filter", "status:=:paid",
	)
	require.NoError(t, err)

	var payload dashboard.QueryPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, []string{"orders", "customers"}, payload.Entities)
	assert.Equal(t, []string{"customers.region"}, payload.Fields)
	assert.Equal(t, []string{"customers.id = orders.customer_id"}, payload.Join)
	assert.Equal(t, []string{"status = 'paid'"}, payload.Filters)
	assert.Equal(t, []string{"count(orders.status)"}, payload.Aggregations)
}

func TestPayloadFromSelectionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selection.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`title: Orders
dataSource: orders
field: status
aggregation: sum
`), 0o600))

	out, err := run(t, "--mock", "payload", "--selection", path, "--aggregation", "max")
	require.NoError(t, err)
	var payload dashboard.QueryPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, []string{"max(orders.status)"}, payload.Aggregations)
}

func TestPayloadRejectsBadFilter(t *testing.T) {
	_, err := run(t, "--mock", "payload", "--title", "x", "--data-source", "orders",
		"--field", "status", "--aggregation", "count", "--filter", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field:operator:value")
}

func TestQueryPrintsPoints(t *testing.T) {
	out, err := run(t, "--mock", "query",
		"--title", "Orders", "--data-source", "orders", "--field", "status", "--aggregation", "count")
	require.NoError(t, err)

	var points []dashboard.DataPoint
	require.NoError(t, json.Unmarshal([]byte(out), &points))
	require.Len(t, points, 3)
	assert.Equal(t, "paid", points[1].Name)
}

func TestManifestAddAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")

	_, err := run(t, "manifest", "add", path,
		"--title", "Orders by status", "--data-source", "orders", "--field", "status", "--aggregation", "count")
	require.NoError(t, err)
	_, err = run(t, "manifest", "add", path, "--static", "--title", "Devices", "--type", "pie")
	require.NoError(t, err)

	_, err = run(t, "manifest", "add", path,
		"--title", "Orders by status", "--data-source", "orders", "--field", "total", "--aggregation", "sum")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--overwrite")

	_, err = run(t, "manifest", "add", path, "--overwrite",
		"--title", "Orders by status", "--data-source", "orders", "--field", "total", "--aggregation", "sum")
	require.NoError(t, err)

	doc, err := dashboard.ReadManifest(path)
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 2)
	assert.Equal(t, "devices", doc.Widgets[0].SeedKey())
	assert.True(t, doc.Widgets[0].Static)
	assert.Equal(t, "total", doc.Widgets[1].Field)

	out, err := run(t, "manifest", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 widgets")
}

func TestManifestAddValidatesSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	_, err := run(t, "manifest", "add", path, "--title", "Broken", "--data-source", "orders")
	require.Error(t, err)
	assert.ErrorIs(t, err, dashboard.ErrValidation)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestServeHandlerRendersBoard(t *testing.T) {
	g := &Globals{Mock: true, out: io.Discard}
	a, err := g.buildApp()
	require.NoError(t, err)
	require.NoError(t, a.seed(context.Background()))
	handler, err := a.handler()
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/dashboard")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Quarterly Sales")

	resp, err = http.Get(srv.URL + "/api/dashboard/widgets")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
