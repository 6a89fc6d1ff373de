package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// EditWidgetInput changes a widget's title, chart type or data keys.
type EditWidgetInput struct {
	WidgetID string               `json:"widget_id"`
	Edit     dashboard.WidgetEdit `json:"edit"`
	Result   *dashboard.Widget    `json:"-"`
}

type editService interface {
	EditWidget(ctx context.Context, id string, edit dashboard.WidgetEdit) (dashboard.Widget, error)
}

// EditWidgetCommand mutates display configuration.
type EditWidgetCommand struct {
	service   editService
	telemetry Telemetry
}

// NewEditWidgetCommand builds the command.
func NewEditWidgetCommand(service editService, telemetry Telemetry) *EditWidgetCommand {
	return &EditWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[EditWidgetInput] = (*EditWidgetCommand)(nil)

// Execute applies the edit.
func (c *EditWidgetCommand) Execute(ctx context.Context, msg EditWidgetInput) error {
	if c.service == nil {
		return errors.New("edit command requires service")
	}
	widget, err := c.service.EditWidget(ctx, msg.WidgetID, msg.Edit)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = widget
	}
	c.telemetry.Record(ctx, "dashboard.command.edit", map[string]any{"widget_id": msg.WidgetID})
	return nil
}
