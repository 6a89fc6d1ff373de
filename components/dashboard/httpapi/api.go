package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/commands"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/queries"
)

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Add     gocommand.Commander[commands.AddWidgetInput]
	Edit    gocommand.Commander[commands.EditWidgetInput]
	Remove  gocommand.Commander[commands.RemoveWidgetInput]
	Layout  gocommand.Commander[commands.ApplyLayoutInput]
	Refresh gocommand.Commander[commands.RefreshWidgetInput]

	Widgets gocommand.Querier[dashboard.FilterState, []dashboard.Widget]
	Widget  gocommand.Querier[queries.WidgetInput, dashboard.Widget]
	Chart   gocommand.Querier[queries.WidgetInput, dashboard.ChartView]
	Layouts gocommand.Querier[dashboard.FilterState, dashboard.GridLayouts]
	Schema  gocommand.Querier[queries.SchemaInput, queries.SchemaResult]
	Payload gocommand.Querier[dashboard.WidgetSelection, dashboard.QueryPayload]

	Events *dashboard.BroadcastHook
	Board  *dashboard.Controller
	Logger *slog.Logger
}

// Config carries the optional collaborators of NewHandlers.
type Config struct {
	Telemetry dashboard.Telemetry
	Events    *dashboard.BroadcastHook
	Board     *dashboard.Controller
	Logger    *slog.Logger
}

// NewHandlers wires every endpoint to the service through the command and
// query types.
func NewHandlers(service *dashboard.Service, cfg Config) *Handlers {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		Add:     commands.NewAddWidgetCommand(service, cfg.Telemetry),
		Edit:    commands.NewEditWidgetCommand(service, cfg.Telemetry),
		Remove:  commands.NewRemoveWidgetCommand(service, cfg.Telemetry),
		Layout:  commands.NewApplyLayoutCommand(service, cfg.Telemetry),
		Refresh: commands.NewRefreshWidgetCommand(service, cfg.Telemetry),
		Widgets: queries.NewVisibleWidgetsQuery(service),
		Widget:  queries.NewWidgetQuery(service),
		Chart:   queries.NewChartQuery(service),
		Layouts: queries.NewLayoutQuery(service),
		Schema:  queries.NewSchemaQuery(service),
		Payload: queries.NewPayloadQuery(service),
		Events:  cfg.Events,
		Board:   cfg.Board,
		Logger:  logger,
	}
}

// Routes returns the dashboard routes, relative to the mount point.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleBoard)
	r.Get("/widgets", h.HandleListWidgets)
	r.Post("/widgets", h.HandleAddWidget)
	r.Get("/widgets/{widgetID}", h.HandleGetWidget)
	r.Patch("/widgets/{widgetID}", h.HandleEditWidget)
	r.Delete("/widgets/{widgetID}", h.HandleRemoveWidget)
	r.Post("/widgets/{widgetID}/refresh", h.HandleRefreshWidget)
	r.Get("/widgets/{widgetID}/chart", h.HandleChart)
	r.Post("/refresh", h.HandleRefreshAll)
	r.Get("/layout", h.HandleGetLayout)
	r.Post("/layout", h.HandleApplyLayout)
	r.Post("/payload", h.HandlePreviewPayload)
	r.Get("/schema/tables", h.HandleTables)
	r.Get("/schema/fields/{table}", h.HandleFields)
	r.Get("/schema/relations/{table}", h.HandleRelations)
	if h.Events != nil {
		r.Get("/ws", h.Events.ServeWebSocket)
		r.Get("/events", h.Events.ServeSSE)
	}
	return r
}

// HandleBoard renders the server-side board page.
func (h *Handlers) HandleBoard(w http.ResponseWriter, r *http.Request) {
	if h.Board == nil {
		h.writeError(w, r, http.StatusNotFound, "not_found", "board page is not configured")
		return
	}
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.Board.RenderTemplate(r.Context(), filter, w); err != nil {
		h.handleError(w, r, err)
	}
}

// HandleListWidgets lists the widgets passing the query-string filter.
func (h *Handlers) HandleListWidgets(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	widgets, err := h.Widgets.Query(r.Context(), filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"widgets":      widgets,
		"filter":       filter,
		"filterActive": filter.Active(),
	})
}

// HandleAddWidget runs the add pipeline. Set ?static=true to store a sample
// widget without querying.
func (h *Handlers) HandleAddWidget(w http.ResponseWriter, r *http.Request) {
	var req dashboard.AddWidgetRequest
	if !h.decode(w, r, &req) {
		return
	}
	var widget dashboard.Widget
	input := commands.AddWidgetInput{Request: req, Static: r.URL.Query().Get("static") == "true", Result: &widget}
	if err := h.Add.Execute(r.Context(), input); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, widget)
}

// HandleGetWidget returns one widget.
func (h *Handlers) HandleGetWidget(w http.ResponseWriter, r *http.Request) {
	widget, err := h.Widget.Query(r.Context(), queries.WidgetInput{WidgetID: chi.URLParam(r, "widgetID")})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, widget)
}

// HandleEditWidget applies a partial display edit.
func (h *Handlers) HandleEditWidget(w http.ResponseWriter, r *http.Request) {
	var edit dashboard.WidgetEdit
	if !h.decode(w, r, &edit) {
		return
	}
	var widget dashboard.Widget
	input := commands.EditWidgetInput{WidgetID: chi.URLParam(r, "widgetID"), Edit: edit, Result: &widget}
	if err := h.Edit.Execute(r.Context(), input); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, widget)
}

// HandleRemoveWidget deletes a widget.
func (h *Handlers) HandleRemoveWidget(w http.ResponseWriter, r *http.Request) {
	input := commands.RemoveWidgetInput{WidgetID: chi.URLParam(r, "widgetID")}
	if err := h.Remove.Execute(r.Context(), input); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefreshWidget re-runs one widget's stored query.
func (h *Handlers) HandleRefreshWidget(w http.ResponseWriter, r *http.Request) {
	var widget dashboard.Widget
	input := commands.RefreshWidgetInput{WidgetID: chi.URLParam(r, "widgetID"), Result: &widget}
	if err := h.Refresh.Execute(r.Context(), input); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, widget)
}

// HandleRefreshAll refreshes every query-backed widget.
func (h *Handlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Refresh.Execute(r.Context(), commands.RefreshWidgetInput{}); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleChart returns the rendered chart fragment for a widget.
func (h *Handlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	view, err := h.Chart.Query(r.Context(), queries.WidgetInput{WidgetID: chi.URLParam(r, "widgetID")})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(view.HTML))
		return
	}
	h.writeJSON(w, r, http.StatusOK, view)
}

// HandleGetLayout returns per-breakpoint layouts plus the grid config.
func (h *Handlers) HandleGetLayout(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	layouts, err := h.Layouts.Query(r.Context(), filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"layouts": layouts,
		"grid":    dashboard.DefaultGridConfig(),
	})
}

// HandleApplyLayout accepts the grid engine's layout report.
func (h *Handlers) HandleApplyLayout(w http.ResponseWriter, r *http.Request) {
	var items []dashboard.GridItem
	if !h.decode(w, r, &items) {
		return
	}
	if err := h.Layout.Execute(r.Context(), commands.ApplyLayoutInput{Items: items}); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePreviewPayload builds a query payload without executing it.
func (h *Handlers) HandlePreviewPayload(w http.ResponseWriter, r *http.Request) {
	var sel dashboard.WidgetSelection
	if !h.decode(w, r, &sel) {
		return
	}
	payload, err := h.Payload.Query(r.Context(), sel)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, payload)
}

// HandleTables lists data sources.
func (h *Handlers) HandleTables(w http.ResponseWriter, r *http.Request) {
	result, err := h.Schema.Query(r.Context(), queries.SchemaInput{Kind: queries.SchemaTables})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"tables": nonNil(result.Tables)})
}

// HandleFields lists the columns of a table.
func (h *Handlers) HandleFields(w http.ResponseWriter, r *http.Request) {
	result, err := h.Schema.Query(r.Context(), queries.SchemaInput{Kind: queries.SchemaFields, Table: chi.URLParam(r, "table")})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"fields": nonNil(result.Fields)})
}

// HandleRelations lists the relations of a table.
func (h *Handlers) HandleRelations(w http.ResponseWriter, r *http.Request) {
	result, err := h.Schema.Query(r.Context(), queries.SchemaInput{Kind: queries.SchemaRelations, Table: chi.URLParam(r, "table")})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	relations := result.Relations
	if relations == nil {
		relations = []dashboard.Relation{}
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"relations": relations})
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

var errBadFilter = errors.New("httpapi: invalid filter")
