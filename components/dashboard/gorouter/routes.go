package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/commands"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/httpapi"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/queries"
)

// Config wires go-router with the board controller, API handlers and hooks.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *dashboard.Controller
	API        *httpapi.Handlers
	Broadcast  *dashboard.BroadcastHook
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML      string
	Layout    string
	Widgets   string
	WidgetID  string
	Refresh   string
	Chart     string
	Schema    string
	WebSocket string
}

// Register mounts dashboard routes (HTML, JSON, WebSocket) on a go-router
// router. The JSON routes mirror the chi API.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/api"
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		filter, err := filterFromContext(ctx)
		if err != nil {
			return respondError(ctx, err)
		}
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), filter, &buf); err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		filter, err := filterFromContext(ctx)
		if err != nil {
			return respondError(ctx, err)
		}
		payload, err := cfg.Controller.LayoutPayload(ctx.Context(), filter)
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api *httpapi.Handlers, routes RouteConfig) {
	r.Get(routes.Widgets, router.WrapHandler(func(ctx router.Context) error {
		filter, err := filterFromContext(ctx)
		if err != nil {
			return respondError(ctx, err)
		}
		widgets, err := api.Widgets.Query(ctx.Context(), filter)
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"widgets": widgets, "filter": filter, "filterActive": filter.Active()})
	}))

	r.Post(routes.Widgets, router.WrapHandler(func(ctx router.Context) error {
		var req dashboard.AddWidgetRequest
		if err := json.Unmarshal(ctx.Body(), &req); err != nil {
			return respondStatus(ctx, http.StatusBadRequest, "bad_request", err.Error())
		}
		var widget dashboard.Widget
		input := commands.AddWidgetInput{Request: req, Static: ctx.Query("static") == "true", Result: &widget}
		if err := api.Add.Execute(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusCreated, widget)
	}))

	r.Get(routes.WidgetID, router.WrapHandler(func(ctx router.Context) error {
		widget, err := api.Widget.Query(ctx.Context(), queries.WidgetInput{WidgetID: ctx.Param("id")})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, widget)
	}))

	r.Patch(routes.WidgetID, router.WrapHandler(func(ctx router.Context) error {
		var edit dashboard.WidgetEdit
		if err := json.Unmarshal(ctx.Body(), &edit); err != nil {
			return respondStatus(ctx, http.StatusBadRequest, "bad_request", err.Error())
		}
		var widget dashboard.Widget
		input := commands.EditWidgetInput{WidgetID: ctx.Param("id"), Edit: edit, Result: &widget}
		if err := api.Edit.Execute(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, widget)
	}))

	r.Delete(routes.WidgetID, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondStatus(ctx, http.StatusBadRequest, "bad_request", "widget id is required")
		}
		if err := api.Remove.Execute(ctx.Context(), commands.RemoveWidgetInput{WidgetID: id}); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusNoContent, map[string]string{"status": "removed"})
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		var widget dashboard.Widget
		input := commands.RefreshWidgetInput{WidgetID: ctx.Param("id"), Result: &widget}
		if err := api.Refresh.Execute(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, widget)
	}))

	r.Get(routes.Chart, router.WrapHandler(func(ctx router.Context) error {
		view, err := api.Chart.Query(ctx.Context(), queries.WidgetInput{WidgetID: ctx.Param("id")})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))

	r.Post(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		var items []dashboard.GridItem
		if err := json.Unmarshal(ctx.Body(), &items); err != nil {
			return respondStatus(ctx, http.StatusBadRequest, "bad_request", err.Error())
		}
		if err := api.Layout.Execute(ctx.Context(), commands.ApplyLayoutInput{Items: items}); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
	}))

	r.Get(routes.Schema+"/tables", router.WrapHandler(func(ctx router.Context) error {
		result, err := api.Schema.Query(ctx.Context(), queries.SchemaInput{Kind: queries.SchemaTables})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"tables": result.Tables})
	}))

	r.Get(routes.Schema+"/fields/:table", router.WrapHandler(func(ctx router.Context) error {
		result, err := api.Schema.Query(ctx.Context(), queries.SchemaInput{Kind: queries.SchemaFields, Table: ctx.Param("table")})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"fields": result.Fields})
	}))

	r.Get(routes.Schema+"/relations/:table", router.WrapHandler(func(ctx router.Context) error {
		result, err := api.Schema.Query(ctx.Context(), queries.SchemaInput{Kind: queries.SchemaRelations, Table: ctx.Param("table")})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"relations": result.Relations})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func filterFromContext(ctx router.Context) (dashboard.FilterState, error) {
	values := url.Values{}
	for _, key := range httpapi.FilterParams {
		if v := ctx.Query(key); v != "" {
			values.Set(key, v)
		}
	}
	return httpapi.ParseFilter(values)
}

func respondError(ctx router.Context, err error) error {
	status, code, message := httpapi.Describe(err)
	return respondStatus(ctx, status, code, message)
}

func respondStatus(ctx router.Context, status int, code, message string) error {
	return ctx.JSON(status, httpapi.ErrorResponse{Code: code, Message: message})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Layout == "" {
		routes.Layout = "/dashboard/layout"
	}
	if routes.Widgets == "" {
		routes.Widgets = "/dashboard/widgets"
	}
	if routes.WidgetID == "" {
		routes.WidgetID = "/dashboard/widgets/:id"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/dashboard/widgets/:id/refresh"
	}
	if routes.Chart == "" {
		routes.Chart = "/dashboard/widgets/:id/chart"
	}
	if routes.Schema == "" {
		routes.Schema = "/dashboard/schema"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}
