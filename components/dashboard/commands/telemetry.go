package commands

import (
	"context"

	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// Telemetry allows commands to emit structured events. It matches the service
// hook so one sink can observe both.
type Telemetry = dashboard.Telemetry

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
