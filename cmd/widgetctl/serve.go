package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/commands"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/httpapi"
)

type serveCmd struct {
	Addr     string `help:"Listen address for the board and API (overrides config)."`
	Manifest string `type:"existingfile" help:"Seed manifest (overrides config)."`
	NoSeed   bool   `name:"no-seed" help:"Start with an empty board."`
}

func (c *serveCmd) Run(ctx context.Context, g *Globals) error {
	a, err := g.buildApp()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		a.cfg.Server.Addr = c.Addr
	}
	if c.Manifest != "" {
		a.cfg.Board.Manifest = c.Manifest
	}
	if c.NoSeed {
		a.cfg.Board.Seed = false
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.seed(ctx); err != nil {
		return err
	}
	handler, err := a.handler()
	if err != nil {
		return err
	}

	servers := []*http.Server{{
		Addr:              a.cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if a.cfg.Server.OpsAddr != "" {
		servers = append(servers, &http.Server{
			Addr:              a.cfg.Server.OpsAddr,
			Handler:           a.opsHandler(),
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	group, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		group.Go(func() error {
			a.logger.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("widgetctl: serve %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	group.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		a.events.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})
	return group.Wait()
}

func (a *app) seed(ctx context.Context) error {
	if !a.cfg.Board.Seed {
		return nil
	}
	var manifest *dashboard.BoardManifest
	if a.cfg.Board.Manifest != "" {
		doc, err := dashboard.ReadManifest(a.cfg.Board.Manifest)
		if err != nil {
			return err
		}
		manifest = doc
	}
	var result dashboard.SeedResult
	cmd := commands.NewSeedBoardCommand(a.service, a.telemetry)
	if err := cmd.Execute(ctx, commands.SeedBoardInput{Manifest: manifest, Result: &result}); err != nil {
		return err
	}
	a.logger.Info("board seeded",
		"added", len(result.Added),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
	)
	return nil
}

func (a *app) handler() (http.Handler, error) {
	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  a.service,
		Renderer: renderer,
		Title:    a.cfg.Board.Title,
		APIBase:  a.cfg.Server.BasePath + "/dashboard",
	})
	handlers := httpapi.NewHandlers(a.service, httpapi.Config{
		Telemetry: a.telemetry,
		Events:    a.events,
		Board:     controller,
		Logger:    a.logger,
	})
	return httpapi.NewRouter(handlers, a.cfg.Server.BasePath), nil
}

func (a *app) opsHandler() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", a.metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}
