package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// RemoveWidgetInput identifies the widget to delete.
type RemoveWidgetInput struct {
	WidgetID string `json:"widget_id"`
}

type removeService interface {
	RemoveWidget(ctx context.Context, widgetID string) error
}

// RemoveWidgetCommand deletes a widget from the board. Remaining widgets keep
// their order.
type RemoveWidgetCommand struct {
	service   removeService
	telemetry Telemetry
}

// NewRemoveWidgetCommand builds a command instance.
func NewRemoveWidgetCommand(service removeService, telemetry Telemetry) *RemoveWidgetCommand {
	return &RemoveWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RemoveWidgetInput] = (*RemoveWidgetCommand)(nil)

func (c *RemoveWidgetCommand) Execute(ctx context.Context, msg RemoveWidgetInput) error {
	if c.service == nil {
		return errors.New("remove command requires service")
	}
	id := strings.TrimSpace(msg.WidgetID)
	if id == "" {
		return fmt.Errorf("%w: widget id is required", dashboard.ErrValidation)
	}
	if err := c.service.RemoveWidget(ctx, id); err != nil {
		return fmt.Errorf("remove widget %s: %w", id, err)
	}
	c.telemetry.Record(ctx, "dashboard.command.remove", map[string]any{"widget_id": id})
	return nil
}
