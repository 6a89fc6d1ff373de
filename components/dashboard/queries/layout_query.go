package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

type layoutService interface {
	GridLayouts(ctx context.Context, filter dashboard.FilterState) (dashboard.GridLayouts, error)
}

// LayoutQuery resolves per-breakpoint grid layouts for the visible widgets.
type LayoutQuery struct {
	service layoutService
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(service layoutService) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[dashboard.FilterState, dashboard.GridLayouts] = (*LayoutQuery)(nil)

// Query resolves the layouts for the filter.
func (q *LayoutQuery) Query(ctx context.Context, filter dashboard.FilterState) (dashboard.GridLayouts, error) {
	return q.service.GridLayouts(ctx, filter)
}
