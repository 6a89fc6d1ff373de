package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"github.com/goliatone/go-dashboard-builder/pkg/config"
	"github.com/goliatone/go-dashboard-builder/pkg/observe"
	"github.com/goliatone/go-dashboard-builder/pkg/reporting"
)

// app bundles the collaborators every command builds from configuration.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *observe.PrometheusTelemetry
	telemetry dashboard.Telemetry
	reporting dashboard.ReportingClient
	events    *dashboard.BroadcastHook
	service   *dashboard.Service
}

func (g *Globals) loadConfig() (*config.Config, error) {
	overrides := map[string]any{}
	if g.Mock {
		overrides["reporting.mock"] = true
	}
	if g.BaseURL != "" {
		overrides["reporting.base_url"] = g.BaseURL
	}
	return config.LoadWithOverrides(g.Config, overrides)
}

func (g *Globals) buildApp() (*app, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := observe.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	metrics := observe.NewPrometheusTelemetry(cfg.Telemetry.Namespace)
	telemetry := observe.MultiTelemetry{metrics, observe.SlogTelemetry{Logger: logger}}

	client, err := newReportingClient(cfg.Reporting, logger)
	if err != nil {
		return nil, err
	}

	events := dashboard.NewBroadcastHook()
	chartOptions := []dashboard.EChartsOption{
		dashboard.WithChartCache(dashboard.NewChartCache(cfg.Board.ChartCacheTTL)),
		dashboard.WithChartTheme(cfg.Board.ChartTheme),
	}
	if cfg.Board.ChartAssetsHost != "" {
		chartOptions = append(chartOptions, dashboard.WithChartAssetsHost(cfg.Board.ChartAssetsHost))
	}
	renderer := dashboard.NewEChartsRenderer(chartOptions...)
	service := dashboard.NewService(dashboard.Options{
		Reporting:   client,
		Renderer:    renderer,
		RefreshHook: dashboard.RefreshHooks{events, dashboard.LogHook{Logger: logger}},
		Telemetry:   telemetry,
		Logger:      logger,
	})
	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		telemetry: telemetry,
		reporting: client,
		events:    events,
		service:   service,
	}, nil
}

func newReportingClient(cfg config.ReportingConfig, logger *slog.Logger) (dashboard.ReportingClient, error) {
	if cfg.Mock {
		logger.Info("using mock reporting backend")
		return reporting.NewMockClient(reporting.DemoData()), nil
	}
	client, err := reporting.NewHTTPClient(reporting.HTTPConfig{
		BaseURL:           cfg.BaseURL,
		HeaderName:        cfg.HeaderName,
		HeaderValue:       cfg.HeaderValue,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("widgetctl: reporting client: %w", err)
	}
	return reporting.NewCachedClient(client, cfg.SchemaCacheTTL), nil
}
