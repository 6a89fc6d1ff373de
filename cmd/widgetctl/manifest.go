package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
)

type manifestCmd struct {
	Add      manifestAddCmd      `cmd:"" help:"Add or replace a widget entry in a seed manifest."`
	Validate manifestValidateCmd `cmd:"" help:"Check a seed manifest without touching the reporting API."`
}

type manifestAddCmd struct {
	selectionFlags

	Path      string   `arg:"" type:"path" help:"Manifest YAML file to update (created when missing)."`
	Key       string   `help:"Seed key (defaults to the snake_cased title)."`
	Static    bool     `help:"Store the widget as-is with sample data instead of querying."`
	DataKey   []string `name:"data-key" help:"Series keys to plot. Repeatable."`
	Overwrite bool     `help:"Replace an existing entry with the same key."`
}

func (cmd *manifestAddCmd) Run(g *Globals) error {
	sel, err := cmd.build()
	if err != nil {
		return err
	}
	path, err := filepath.Abs(cmd.Path)
	if err != nil {
		return fmt.Errorf("widgetctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(path)
	if err != nil {
		return err
	}

	entry := dashboard.ManifestWidget{
		Key:    cmd.Key,
		Static: cmd.Static,
		AddWidgetRequest: dashboard.AddWidgetRequest{
			WidgetSelection: sel,
			DataKeys:        cmd.DataKey,
		},
	}
	if !entry.Static {
		if err := dashboard.NewJSONSchemaValidator().Validate(sel); err != nil {
			return err
		}
	}

	key := entry.SeedKey()
	replaced := false
	for idx := range doc.Widgets {
		if doc.Widgets[idx].SeedKey() != key {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("widgetctl: manifest already defines widget %s (use --overwrite to replace)", key)
		}
		doc.Widgets[idx] = entry
		replaced = true
		break
	}
	if !replaced {
		doc.Widgets = append(doc.Widgets, entry)
	}
	sort.SliceStable(doc.Widgets, func(i, j int) bool {
		return doc.Widgets[i].SeedKey() < doc.Widgets[j].SeedKey()
	})
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(path, doc); err != nil {
		return err
	}
	fmt.Fprintf(g.writer(), "✓ Added %s to %s\n", key, path)
	return nil
}

type manifestValidateCmd struct {
	Path string `arg:"" type:"existingfile" help:"Manifest YAML file to check."`
}

func (cmd *manifestValidateCmd) Run(g *Globals) error {
	doc, err := dashboard.ReadManifest(cmd.Path)
	if err != nil {
		return err
	}
	validator := dashboard.NewJSONSchemaValidator()
	var errs []error
	for _, widget := range doc.Widgets {
		if widget.Static {
			continue
		}
		if err := validator.Validate(widget.WidgetSelection); err != nil {
			errs = append(errs, fmt.Errorf("widget %s: %w", widget.SeedKey(), err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	fmt.Fprintf(g.writer(), "✓ %s: %d widgets\n", cmd.Path, len(doc.Widgets))
	return nil
}

func loadOrInitManifest(path string) (*dashboard.BoardManifest, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.BoardManifest{
				Version: dashboard.ManifestVersion,
				Widgets: []dashboard.ManifestWidget{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("widgetctl: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.BoardManifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("widgetctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("widgetctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("widgetctl: write manifest: %w", err)
	}
	return nil
}
