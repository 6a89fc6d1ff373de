package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// ApplyLayoutInput holds either store-shaped updates or grid items as sent by
// the client grid. Both may be set.
type ApplyLayoutInput struct {
	Updates []dashboard.LayoutUpdate `json:"updates,omitempty"`
	Items   []dashboard.GridItem     `json:"items,omitempty"`
}

type layoutService interface {
	ApplyLayout(ctx context.Context, updates []dashboard.LayoutUpdate) error
	ApplyGridLayout(ctx context.Context, items []dashboard.GridItem) error
}

// ApplyLayoutCommand persists drag and resize results.
type ApplyLayoutCommand struct {
	service   layoutService
	telemetry Telemetry
}

// NewApplyLayoutCommand creates the command.
func NewApplyLayoutCommand(service layoutService, telemetry Telemetry) *ApplyLayoutCommand {
	return &ApplyLayoutCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ApplyLayoutInput] = (*ApplyLayoutCommand)(nil)

// Execute applies the layout updates.
func (c *ApplyLayoutCommand) Execute(ctx context.Context, msg ApplyLayoutInput) error {
	if c.service == nil {
		return errors.New("layout command requires service")
	}
	if len(msg.Updates) > 0 {
		if err := c.service.ApplyLayout(ctx, msg.Updates); err != nil {
			return err
		}
	}
	if len(msg.Items) > 0 {
		if err := c.service.ApplyGridLayout(ctx, msg.Items); err != nil {
			return err
		}
	}
	c.telemetry.Record(ctx, "dashboard.command.layout", map[string]any{
		"count": len(msg.Updates) + len(msg.Items),
	})
	return nil
}
