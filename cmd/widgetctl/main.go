package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

type cli struct {
	Globals

	Serve     serveCmd     `cmd:"" help:"Serve the board page, JSON API and event streams."`
	Tables    tablesCmd    `cmd:"" help:"List reporting data sources."`
	Fields    fieldsCmd    `cmd:"" help:"List the fields of a data source."`
	Relations relationsCmd `cmd:"" help:"List the relations of a data source."`
	Payload   payloadCmd   `cmd:"" help:"Build the query payload for a selection without sending it."`
	Query     queryCmd     `cmd:"" help:"Build and execute a selection, printing the data points."`
	Manifest  manifestCmd  `cmd:"" help:"Edit and validate seed board manifests."`
}

type Globals struct {
	Config  string `short:"c" type:"path" help:"Path to a dashboard YAML config file."`
	Mock    bool   `help:"Use built-in reporting fixtures instead of the reporting API."`
	BaseURL string `name:"base-url" help:"Reporting API base URL (overrides config)."`

	out io.Writer
}

func main() {
	var app cli
	app.out = os.Stdout
	ctx := kong.Parse(&app,
		kong.Name("widgetctl"),
		kong.Description("Dashboard builder: board server and reporting API utility."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	err := ctx.Run(&app.Globals)
	ctx.FatalIfErrorf(err)
}

func (g *Globals) writer() io.Writer {
	if g.out == nil {
		return os.Stdout
	}
	return g.out
}

func (g *Globals) printJSON(v any) error {
	encoder := json.NewEncoder(g.writer())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("widgetctl: encode output: %w", err)
	}
	return nil
}
