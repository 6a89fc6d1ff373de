package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// RefreshWidgetInput re-runs one widget's stored query. An empty WidgetID
// refreshes every query-backed widget.
type RefreshWidgetInput struct {
	WidgetID string            `json:"widget_id,omitempty"`
	Result   *dashboard.Widget `json:"-"`
}

type refreshService interface {
	RefreshWidget(ctx context.Context, id string) (dashboard.Widget, error)
	RefreshAll(ctx context.Context) error
}

// RefreshWidgetCommand triggers data refreshes from any transport or a
// scheduler.
type RefreshWidgetCommand struct {
	service   refreshService
	telemetry Telemetry
}

// NewRefreshWidgetCommand creates the command.
func NewRefreshWidgetCommand(service refreshService, telemetry Telemetry) *RefreshWidgetCommand {
	return &RefreshWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshWidgetInput] = (*RefreshWidgetCommand)(nil)

// Execute refreshes the requested widget, or all of them.
func (c *RefreshWidgetCommand) Execute(ctx context.Context, msg RefreshWidgetInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.WidgetID == "" {
		if err := c.service.RefreshAll(ctx); err != nil {
			return err
		}
		c.telemetry.Record(ctx, "dashboard.command.refresh_all", nil)
		return nil
	}
	widget, err := c.service.RefreshWidget(ctx, msg.WidgetID)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = widget
	}
	c.telemetry.Record(ctx, "dashboard.command.refresh", map[string]any{"widget_id": msg.WidgetID})
	return nil
}

// NotifyWidgetInput re-broadcasts an event without touching widget data.
type NotifyWidgetInput struct {
	Event dashboard.WidgetEvent
}

type refreshNotifier interface {
	NotifyWidgetUpdated(ctx context.Context, event dashboard.WidgetEvent) error
}

// NotifyWidgetCommand triggers refresh hooks without forcing transports.
type NotifyWidgetCommand struct {
	service   refreshNotifier
	telemetry Telemetry
}

// NewNotifyWidgetCommand creates the command.
func NewNotifyWidgetCommand(service refreshNotifier, telemetry Telemetry) *NotifyWidgetCommand {
	return &NotifyWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[NotifyWidgetInput] = (*NotifyWidgetCommand)(nil)

// Execute notifies the dashboard service's refresh hook.
func (c *NotifyWidgetCommand) Execute(ctx context.Context, msg NotifyWidgetInput) error {
	if c.service == nil {
		return errors.New("notify command requires service")
	}
	if err := c.service.NotifyWidgetUpdated(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.notify", map[string]any{
		"widget_id": msg.Event.WidgetID,
		"reason":    msg.Event.Reason,
	})
	return nil
}
