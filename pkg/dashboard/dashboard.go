// Package dashboard is the public entry point for embedding the dashboard
// builder. It re-exports the core service types and adds a constructor that
// wires a reporting backend with schema caching.
package dashboard

import (
	"time"

	core "github.com/goliatone/go-dashboard-builder/components/dashboard"
	"github.com/goliatone/go-dashboard-builder/pkg/reporting"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

type (
	Widget           = core.Widget
	WidgetSelection  = core.WidgetSelection
	AddWidgetRequest = core.AddWidgetRequest
	FilterState      = core.FilterState
	BoardManifest    = core.BoardManifest
	ReportingClient  = core.ReportingClient
)

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewReportingService builds a service backed by the reporting API at
// baseURL. Schema lookups are cached for schemaTTL.
func NewReportingService(baseURL string, schemaTTL time.Duration, opts Options) (*Service, error) {
	client, err := reporting.NewHTTPClient(reporting.HTTPConfig{BaseURL: baseURL, Logger: opts.Logger})
	if err != nil {
		return nil, err
	}
	opts.Reporting = reporting.NewCachedClient(client, schemaTTL)
	return core.NewService(opts), nil
}

// NewDemoService builds a service over the built-in demo fixtures.
func NewDemoService(opts Options) *Service {
	opts.Reporting = reporting.NewMockClient(reporting.DemoData())
	return core.NewService(opts)
}
