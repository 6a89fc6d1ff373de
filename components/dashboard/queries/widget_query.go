package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

type visibleService interface {
	VisibleWidgets(ctx context.Context, filter dashboard.FilterState) ([]dashboard.Widget, error)
}

// VisibleWidgetsQuery lists the widgets passing a filter, in board order.
type VisibleWidgetsQuery struct {
	service visibleService
}

// NewVisibleWidgetsQuery builds the query.
func NewVisibleWidgetsQuery(service visibleService) *VisibleWidgetsQuery {
	return &VisibleWidgetsQuery{service: service}
}

var _ gocommand.Querier[dashboard.FilterState, []dashboard.Widget] = (*VisibleWidgetsQuery)(nil)

// Query applies the filter.
func (q *VisibleWidgetsQuery) Query(ctx context.Context, filter dashboard.FilterState) ([]dashboard.Widget, error) {
	return q.service.VisibleWidgets(ctx, filter)
}

// WidgetInput identifies one widget.
type WidgetInput struct {
	WidgetID string
}

type widgetService interface {
	Widget(ctx context.Context, id string) (dashboard.Widget, error)
	RenderWidget(ctx context.Context, id string) (dashboard.ChartView, error)
}

// WidgetQuery fetches a single widget.
type WidgetQuery struct {
	service widgetService
}

// NewWidgetQuery builds the query.
func NewWidgetQuery(service widgetService) *WidgetQuery {
	return &WidgetQuery{service: service}
}

var _ gocommand.Querier[WidgetInput, dashboard.Widget] = (*WidgetQuery)(nil)

// Query returns the widget or dashboard.ErrWidgetNotFound.
func (q *WidgetQuery) Query(ctx context.Context, input WidgetInput) (dashboard.Widget, error) {
	return q.service.Widget(ctx, input.WidgetID)
}

// ChartQuery renders a widget's chart fragment.
type ChartQuery struct {
	service widgetService
}

// NewChartQuery builds the query.
func NewChartQuery(service widgetService) *ChartQuery {
	return &ChartQuery{service: service}
}

var _ gocommand.Querier[WidgetInput, dashboard.ChartView] = (*ChartQuery)(nil)

// Query renders the chart.
func (q *ChartQuery) Query(ctx context.Context, input WidgetInput) (dashboard.ChartView, error) {
	return q.service.RenderWidget(ctx, input.WidgetID)
}
