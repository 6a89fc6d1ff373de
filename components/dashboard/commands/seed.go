package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// SeedBoardInput controls bootstrap behavior. Without a manifest the built-in
// sample board is seeded.
type SeedBoardInput struct {
	Manifest *dashboard.BoardManifest
	Result   *dashboard.SeedResult `json:"-"`
}

// SeedBoardCommand populates an empty board. Re-running it skips widgets that
// already exist.
type SeedBoardCommand struct {
	service   *dashboard.Service
	telemetry Telemetry
}

// NewSeedBoardCommand wires dependencies.
func NewSeedBoardCommand(service *dashboard.Service, telemetry Telemetry) *SeedBoardCommand {
	return &SeedBoardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SeedBoardInput] = (*SeedBoardCommand)(nil)

// Execute runs the bootstrap pipeline.
func (c *SeedBoardCommand) Execute(ctx context.Context, msg SeedBoardInput) error {
	if c.service == nil {
		return errors.New("seed command requires service")
	}
	doc := msg.Manifest
	if doc == nil {
		doc = dashboard.DefaultBoard()
	}
	result, err := dashboard.SeedBoard(ctx, c.service, doc)
	if msg.Result != nil {
		*msg.Result = result
	}
	c.telemetry.Record(ctx, "dashboard.seed", map[string]any{
		"added":   len(result.Added),
		"skipped": len(result.Skipped),
		"failed":  len(result.Failed),
	})
	return err
}
