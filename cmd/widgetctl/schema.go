package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
)

type tablesCmd struct{}

func (c *tablesCmd) Run(ctx context.Context, g *Globals) error {
	a, err := g.buildApp()
	if err != nil {
		return err
	}
	tables, err := a.service.Tables(ctx)
	if err != nil {
		return err
	}
	return g.printJSON(tables)
}

type fieldsCmd struct {
	Table string `arg:"" help:"Data source name."`
}

func (c *fieldsCmd) Run(ctx context.Context, g *Globals) error {
	a, err := g.buildApp()
	if err != nil {
		return err
	}
	fields, err := a.service.Fields(ctx, c.Table)
	if err != nil {
		return err
	}
	return g.printJSON(fields)
}

type relationsCmd struct {
	Table string `arg:"" help:"Data source name."`
}

func (c *relationsCmd) Run(ctx context.Context, g *Globals) error {
	a, err := g.buildApp()
	if err != nil {
		return err
	}
	relations, err := a.service.Relations(ctx, c.Table)
	if err != nil {
		return err
	}
	return g.printJSON(relations)
}

// selectionFlags describes a widget selection on the command line or in a
// YAML file. Flags override file values.
type selectionFlags struct {
	Selection    string   `type:"existingfile" help:"YAML file holding a widget selection."`
	Title        string   `help:"Widget title."`
	Type         string   `help:"Chart type (line, bar, area, pie)."`
	DataSource   string   `name:"data-source" help:"Primary data source."`
	Field        string   `help:"Grouping field."`
	Aggregation  string   `help:"Aggregation (count, sum, avg, min, max)."`
	MetricSource string   `name:"metric-source" help:"Joined data source for the metric."`
	Metric       string   `help:"Metric field on the metric source."`
	Filter       []string `help:"Filter as field:operator:value. Repeatable."`
}

func (f selectionFlags) build() (dashboard.WidgetSelection, error) {
	var sel dashboard.WidgetSelection
	if f.Selection != "" {
		file, err := os.Open(f.Selection)
		if err != nil {
			return sel, fmt.Errorf("widgetctl: open selection: %w", err)
		}
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(&sel); err != nil {
			return sel, fmt.Errorf("widgetctl: parse selection %s: %w", f.Selection, err)
		}
	}
	override(&sel.Title, f.Title)
	if f.Type != "" {
		sel.Type = dashboard.ChartType(f.Type)
	}
	override(&sel.DataSource, f.DataSource)
	override(&sel.Field, f.Field)
	override(&sel.Aggregation, f.Aggregation)
	override(&sel.MetricSource, f.MetricSource)
	override(&sel.Metric, f.Metric)
	for _, raw := range f.Filter {
		predicate, err := parsePredicate(raw)
		if err != nil {
			return sel, err
		}
		sel.Filters = append(sel.Filters, predicate)
	}
	return sel, nil
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func parsePredicate(raw string) (dashboard.FilterPredicate, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
		return dashboard.FilterPredicate{}, fmt.Errorf("widgetctl: filter %q must be field:operator:value", raw)
	}
	return dashboard.FilterPredicate{
		Field:    strings.TrimSpace(parts[0]),
		Operator: strings.TrimSpace(parts[1]),
		Value:    parts[2],
	}, nil
}

type payloadCmd struct {
	selectionFlags
}

func (c *payloadCmd) Run(ctx context.Context, g *Globals) error {
	sel, err := c.build()
	if err != nil {
		return err
	}
	a, err := g.buildApp()
	if err != nil {
		return err
	}
	payload, err := a.service.PreviewPayload(ctx, sel)
	if err != nil {
		return err
	}
	return g.printJSON(payload)
}

type queryCmd struct {
	selectionFlags
}

func (c *queryCmd) Run(ctx context.Context, g *Globals) error {
	sel, err := c.build()
	if err != nil {
		return err
	}
	a, err := g.buildApp()
	if err != nil {
		return err
	}
	payload, err := a.service.PreviewPayload(ctx, sel)
	if err != nil {
		return err
	}
	points, err := a.reporting.ExecuteQuery(ctx, payload)
	if err != nil {
		return err
	}
	return g.printJSON(points)
}
