package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DefaultBoardTemplate is the embedded board page.
const DefaultBoardTemplate = "board.html"

const defaultBoardTitle = "Dashboard Builder"

var errMissingRenderer = errors.New("dashboard: template renderer not configured")

// BoardService is the subset of Service the controller reads from.
type BoardService interface {
	VisibleWidgets(ctx context.Context, filter FilterState) ([]Widget, error)
	RenderWidget(ctx context.Context, id string) (ChartView, error)
}

// ControllerOptions wires the board page.
type ControllerOptions struct {
	Service  BoardService
	Renderer Renderer
	Template string
	Title    string
	// APIBase is the JSON API prefix the page posts layout changes to.
	APIBase string
}

// Controller renders the server-side board page and its layout payload.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = DefaultBoardTemplate
	}
	if opts.Title == "" {
		opts.Title = defaultBoardTitle
	}
	if opts.APIBase == "" {
		opts.APIBase = "/api/dashboard"
	}
	return &Controller{opts: opts}
}

// BoardPayload is what the client grid needs to lay out the visible widgets.
type BoardPayload struct {
	Widgets []Widget    `json:"widgets"`
	Layouts GridLayouts `json:"layouts"`
	Grid    GridConfig  `json:"grid"`
	Filter  FilterState `json:"filter"`
	Active  bool        `json:"filterActive"`
}

// LayoutPayload returns the visible widgets with their per-breakpoint layouts.
func (c *Controller) LayoutPayload(ctx context.Context, filter FilterState) (BoardPayload, error) {
	if c.opts.Service == nil {
		return BoardPayload{Widgets: []Widget{}, Layouts: ToGridLayouts(nil), Grid: DefaultGridConfig()}, nil
	}
	widgets, err := c.opts.Service.VisibleWidgets(ctx, filter)
	if err != nil {
		return BoardPayload{}, err
	}
	return BoardPayload{
		Widgets: widgets,
		Layouts: ToGridLayouts(widgets),
		Grid:    DefaultGridConfig(),
		Filter:  filter,
		Active:  filter.Active(),
	}, nil
}

// RenderTemplate renders the board page for the filter into out.
func (c *Controller) RenderTemplate(ctx context.Context, filter FilterState, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errMissingRenderer
	}
	payload, err := c.LayoutPayload(ctx, filter)
	if err != nil {
		return err
	}
	tiles := make([]map[string]any, 0, len(payload.Widgets))
	for _, w := range payload.Widgets {
		view, err := c.opts.Service.RenderWidget(ctx, w.ID)
		if err != nil {
			return fmt.Errorf("dashboard: render widget %s: %w", w.ID, err)
		}
		tiles = append(tiles, map[string]any{
			"id":         w.ID,
			"title":      view.Title,
			"type":       string(w.Type),
			"data_keys":  []string(w.DataKey),
			"chart_html": view.HTML,
			"invalid":    view.Invalid,
			"sample":     view.Sample,
			"layout":     w.Layout,
		})
	}
	grid, err := json.Marshal(payload.Grid)
	if err != nil {
		return fmt.Errorf("dashboard: encode grid config: %w", err)
	}
	data := map[string]any{
		"title":         c.opts.Title,
		"api_base":      c.opts.APIBase,
		"widgets":       tiles,
		"grid_json":     string(grid),
		"filter":        payload.Filter,
		"filter_active": payload.Active,
		"chart_types":   ChartTypes(),
		"aggregations":  Aggregations(),
		"operators":     FilterOperators(),
	}
	_, err = c.opts.Renderer.Render(c.opts.Template, data, out)
	return err
}
