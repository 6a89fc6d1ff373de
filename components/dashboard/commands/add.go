package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// AddWidgetInput carries a form submission. Static widgets skip the query and
// plot sample data. When Result is set it receives the stored widget.
type AddWidgetInput struct {
	Request dashboard.AddWidgetRequest `json:"request"`
	Static  bool                       `json:"static,omitempty"`
	Result  *dashboard.Widget          `json:"-"`
}

type addService interface {
	AddWidget(ctx context.Context, req dashboard.AddWidgetRequest) (dashboard.Widget, error)
	AddStaticWidget(ctx context.Context, req dashboard.AddWidgetRequest) (dashboard.Widget, error)
}

// AddWidgetCommand wraps Service.AddWidget so transports can create widgets
// without linking directly against the service.
type AddWidgetCommand struct {
	service   addService
	telemetry Telemetry
}

// NewAddWidgetCommand creates a command instance.
func NewAddWidgetCommand(service addService, telemetry Telemetry) *AddWidgetCommand {
	return &AddWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddWidgetInput] = (*AddWidgetCommand)(nil)

// Execute delegates to the dashboard service.
func (c *AddWidgetCommand) Execute(ctx context.Context, msg AddWidgetInput) error {
	if c.service == nil {
		return errors.New("add command requires service")
	}
	add := c.service.AddWidget
	if msg.Static {
		add = c.service.AddStaticWidget
	}
	widget, err := add(ctx, msg.Request)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = widget
	}
	c.telemetry.Record(ctx, "dashboard.command.add", map[string]any{
		"widget_id": widget.ID,
		"static":    msg.Static,
	})
	return nil
}
