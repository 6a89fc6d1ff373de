package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultWidgetLayout is the placement given to widgets created from the form.
var DefaultWidgetLayout = Layout{X: 0, Y: 0, W: 6, H: 4}

const refreshConcurrency = 4

var errMissingWidgetID = errors.New("dashboard: widget id is required")

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Store       WidgetStore
	Reporting   ReportingClient
	Validator   SelectionValidator
	Renderer    ChartRenderer
	RefreshHook RefreshHook
	Telemetry   Telemetry
	Logger      *slog.Logger
	Clock       func() time.Time
}

// Service orchestrates the widget board on top of a reporting client.
type Service struct {
	opts Options

	mu         sync.Mutex
	refreshing map[string]struct{}
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Store == nil {
		opts.Store = NewInMemoryWidgetStore()
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.Renderer == nil {
		opts.Renderer = NewEChartsRenderer()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	opts.Logger = normalizeLogger(opts.Logger)
	return &Service{opts: opts, refreshing: map[string]struct{}{}}
}

// AddWidgetRequest captures the form selection plus optional display overrides.
type AddWidgetRequest struct {
	WidgetSelection `yaml:",inline"`
	Layout          *Layout  `json:"layout,omitempty" yaml:"layout,omitempty"`
	DataKeys        DataKeys `json:"dataKey,omitempty" yaml:"dataKey,omitempty"`
}

// PreviewPayload validates the selection and builds its query without
// executing it.
func (s *Service) PreviewPayload(ctx context.Context, sel WidgetSelection) (QueryPayload, error) {
	if err := s.opts.Validator.Validate(sel); err != nil {
		return QueryPayload{}, err
	}
	var relations []Relation
	if sel.HasMetric() && s.opts.Reporting != nil {
		list, err := s.opts.Reporting.ListRelations(ctx, sel.DataSource)
		if err != nil {
			s.opts.Logger.Warn("dashboard: list relations failed", "table", sel.DataSource, "error", err)
		}
		relations = list
	}
	return BuildQueryPayload(sel.withDefaults(), relations)
}

// AddWidget validates the selection, executes its query and stores the
// resulting widget. On any failure the store is left untouched.
func (s *Service) AddWidget(ctx context.Context, req AddWidgetRequest) (Widget, error) {
	if s.opts.Reporting == nil {
		return Widget{}, ErrMissingReporting
	}
	sel := req.WidgetSelection.withDefaults()
	payload, err := s.PreviewPayload(ctx, sel)
	if err != nil {
		return Widget{}, err
	}
	points, err := s.opts.Reporting.ExecuteQuery(ctx, payload)
	if err != nil {
		s.recordTelemetry(ctx, "dashboard.widget.add_failed", map[string]any{
			"data_source": sel.DataSource,
			"error":       err.Error(),
		})
		return Widget{}, err
	}

	layout := DefaultWidgetLayout
	if req.Layout != nil {
		layout = *req.Layout
	}
	keys := normalizeDataKeys(req.DataKeys)
	if len(keys) == 0 {
		keys = DataKeys{"value"}
	}
	widget, err := s.opts.Store.Add(ctx, Widget{
		Type:         sel.Type,
		Title:        strings.TrimSpace(sel.Title),
		DataKey:      keys,
		Data:         points,
		Layout:       layout,
		QueryPayload: &payload,
		RefreshedAt:  s.opts.Clock().UTC(),
	})
	if err != nil {
		return Widget{}, err
	}
	s.notify(ctx, WidgetEvent{WidgetID: widget.ID, Widget: &widget, Reason: "add"})
	s.recordTelemetry(ctx, "dashboard.widget.add", map[string]any{
		"widget_id":   widget.ID,
		"data_source": sel.DataSource,
		"points":      len(points),
	})
	return widget, nil
}

// AddStaticWidget stores a widget without a query. It plots the sample data
// for its chart type and refreshing it is a no-op.
func (s *Service) AddStaticWidget(ctx context.Context, req AddWidgetRequest) (Widget, error) {
	sel := req.WidgetSelection.withDefaults()
	if !sel.Type.Valid() {
		return Widget{}, fmt.Errorf("%w: %q", ErrInvalidChartType, sel.Type)
	}
	widget := Widget{
		Type:    sel.Type,
		Title:   strings.TrimSpace(sel.Title),
		DataKey: normalizeDataKeys(req.DataKeys),
		Layout:  DefaultWidgetLayout,
	}
	if len(widget.DataKey) == 0 {
		widget.DataKey = DataKeys{"value"}
	}
	if req.Layout != nil {
		widget.Layout = *req.Layout
	}
	stored, err := s.opts.Store.Add(ctx, widget)
	if err != nil {
		return Widget{}, err
	}
	s.notify(ctx, WidgetEvent{WidgetID: stored.ID, Widget: &stored, Reason: "add"})
	s.recordTelemetry(ctx, "dashboard.widget.add", map[string]any{
		"widget_id": stored.ID,
		"static":    true,
	})
	return stored, nil
}

// ApplyLayout overwrites widget placements reported by the grid engine.
func (s *Service) ApplyLayout(ctx context.Context, updates []LayoutUpdate) error {
	if err := s.opts.Store.ApplyLayout(ctx, updates); err != nil {
		return err
	}
	s.notify(ctx, WidgetEvent{Reason: "layout"})
	s.recordTelemetry(ctx, "dashboard.layout.apply", map[string]any{"count": len(updates)})
	return nil
}

// ApplyGridLayout accepts the grid engine's layout array as-is.
func (s *Service) ApplyGridLayout(ctx context.Context, items []GridItem) error {
	return s.ApplyLayout(ctx, FromGridLayout(items))
}

// EditWidget changes a widget's title, chart type or data keys.
func (s *Service) EditWidget(ctx context.Context, id string, edit WidgetEdit) (Widget, error) {
	if id == "" {
		return Widget{}, errMissingWidgetID
	}
	if edit.Type != nil && !edit.Type.Valid() {
		return Widget{}, fmt.Errorf("%w: %q", ErrInvalidChartType, *edit.Type)
	}
	widget, err := s.opts.Store.Edit(ctx, id, edit)
	if err != nil {
		return Widget{}, err
	}
	s.notify(ctx, WidgetEvent{WidgetID: id, Widget: &widget, Reason: "edit"})
	s.recordTelemetry(ctx, "dashboard.widget.edit", map[string]any{"widget_id": id})
	return widget, nil
}

// RemoveWidget deletes the widget.
func (s *Service) RemoveWidget(ctx context.Context, id string) error {
	if id == "" {
		return errMissingWidgetID
	}
	if err := s.opts.Store.Remove(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, WidgetEvent{WidgetID: id, Reason: "delete"})
	s.recordTelemetry(ctx, "dashboard.widget.remove", map[string]any{"widget_id": id})
	return nil
}

// RefreshWidget re-executes the widget's stored query and replaces its data.
// Widgets without a query are returned unchanged. A failed refresh keeps the
// previous data.
func (s *Service) RefreshWidget(ctx context.Context, id string) (Widget, error) {
	if id == "" {
		return Widget{}, errMissingWidgetID
	}
	if !s.beginRefresh(id) {
		return Widget{}, fmt.Errorf("%w: %s", ErrRefreshInProgress, id)
	}
	defer s.endRefresh(id)

	widget, err := s.opts.Store.Get(ctx, id)
	if err != nil {
		return Widget{}, err
	}
	if widget.QueryPayload == nil {
		return widget, nil
	}
	if s.opts.Reporting == nil {
		return widget, ErrMissingReporting
	}
	points, err := s.opts.Reporting.ExecuteQuery(ctx, *widget.QueryPayload)
	if err != nil {
		s.recordTelemetry(ctx, "dashboard.widget.refresh_failed", map[string]any{
			"widget_id": id,
			"error":     err.Error(),
		})
		return widget, err
	}
	updated, err := s.opts.Store.ReplaceData(ctx, id, points, s.opts.Clock().UTC())
	if err != nil {
		return widget, err
	}
	s.notify(ctx, WidgetEvent{WidgetID: id, Widget: &updated, Reason: "refresh"})
	s.recordTelemetry(ctx, "dashboard.widget.refresh", map[string]any{
		"widget_id": id,
		"points":    len(points),
	})
	return updated, nil
}

// RefreshAll refreshes every query-backed widget concurrently. Individual
// failures do not stop the others; they are joined into the returned error.
func (s *Service) RefreshAll(ctx context.Context) error {
	widgets, err := s.opts.Store.List(ctx)
	if err != nil {
		return err
	}
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(refreshConcurrency)
	for _, w := range widgets {
		if w.QueryPayload == nil {
			continue
		}
		id := w.ID
		g.Go(func() error {
			if _, err := s.RefreshWidget(ctx, id); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("refresh %s: %w", id, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Widgets returns every widget in insertion order.
func (s *Service) Widgets(ctx context.Context) ([]Widget, error) {
	return s.opts.Store.List(ctx)
}

// Widget returns a single widget.
func (s *Service) Widget(ctx context.Context, id string) (Widget, error) {
	return s.opts.Store.Get(ctx, id)
}

// VisibleWidgets applies the filter to the current widgets.
func (s *Service) VisibleWidgets(ctx context.Context, filter FilterState) ([]Widget, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	widgets, err := s.opts.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	return VisibleWidgets(widgets, filter), nil
}

// GridLayouts returns the per-breakpoint layouts of the visible widgets.
func (s *Service) GridLayouts(ctx context.Context, filter FilterState) (GridLayouts, error) {
	visible, err := s.VisibleWidgets(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToGridLayouts(visible), nil
}

// RenderWidget renders the widget's chart.
func (s *Service) RenderWidget(ctx context.Context, id string) (ChartView, error) {
	widget, err := s.opts.Store.Get(ctx, id)
	if err != nil {
		return ChartView{}, err
	}
	return s.opts.Renderer.Render(ctx, widget)
}

// Tables lists the reporting data sources.
func (s *Service) Tables(ctx context.Context) ([]string, error) {
	if s.opts.Reporting == nil {
		return nil, ErrMissingReporting
	}
	return s.opts.Reporting.ListDataSources(ctx)
}

// Fields lists the columns of a data source.
func (s *Service) Fields(ctx context.Context, table string) ([]string, error) {
	if s.opts.Reporting == nil {
		return nil, ErrMissingReporting
	}
	return s.opts.Reporting.ListFields(ctx, table)
}

// Relations lists the joinable tables of a data source.
func (s *Service) Relations(ctx context.Context, table string) ([]Relation, error) {
	if s.opts.Reporting == nil {
		return nil, ErrMissingReporting
	}
	return s.opts.Reporting.ListRelations(ctx, table)
}

// NewSchemaSession opens a dependent-lookup session against the reporting client.
func (s *Service) NewSchemaSession() (*SchemaSession, error) {
	if s.opts.Reporting == nil {
		return nil, ErrMissingReporting
	}
	return NewSchemaSession(s.opts.Reporting, s.opts.Logger), nil
}

// NotifyWidgetUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyWidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.event", map[string]any{
		"widget_id": event.WidgetID,
		"reason":    event.Reason,
	})
	return nil
}

func (s *Service) notify(ctx context.Context, event WidgetEvent) {
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		s.opts.Logger.Warn("dashboard: refresh hook failed", "reason", event.Reason, "widget_id", event.WidgetID, "error", err)
	}
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func (s *Service) beginRefresh(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.refreshing[id]; busy {
		return false
	}
	s.refreshing[id] = struct{}{}
	return true
}

func (s *Service) endRefresh(id string) {
	s.mu.Lock()
	delete(s.refreshing, id)
	s.mu.Unlock()
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error {
	return nil
}
