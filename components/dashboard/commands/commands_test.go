package commands

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

func TestSeedBoardCommand(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{})
	telemetry := &stubTelemetry{}
	cmd := NewSeedBoardCommand(service, telemetry)

	var result dashboard.SeedResult
	if err := cmd.Execute(context.Background(), SeedBoardInput{Result: &result}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	want := len(dashboard.DefaultBoard().Widgets)
	if len(result.Added) != want {
		t.Fatalf("expected %d added widgets, got %d", want, len(result.Added))
	}
	if err := cmd.Execute(context.Background(), SeedBoardInput{Result: &result}); err != nil {
		t.Fatalf("second Execute returned error: %v", err)
	}
	if len(result.Added) != 0 || len(result.Skipped) != want {
		t.Fatalf("expected reseed to skip everything, got %+v", result)
	}
	if telemetry.calls != 2 {
		t.Fatalf("expected telemetry per run, got %d", telemetry.calls)
	}
}

func TestSeedBoardCommandRequiresService(t *testing.T) {
	if err := NewSeedBoardCommand(nil, nil).Execute(context.Background(), SeedBoardInput{}); err == nil {
		t.Fatalf("expected error without service")
	}
}

func TestAddWidgetCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewAddWidgetCommand(service, nil)
	var widget dashboard.Widget
	req := dashboard.AddWidgetRequest{WidgetSelection: dashboard.WidgetSelection{Title: "Orders", DataSource: "orders"}}
	if err := cmd.Execute(context.Background(), AddWidgetInput{Request: req, Result: &widget}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.addCalls != 1 || widget.Title != "Orders" {
		t.Fatalf("expected add call to fill result, got %+v", widget)
	}
	if err := cmd.Execute(context.Background(), AddWidgetInput{Request: req, Static: true}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.staticCalls != 1 {
		t.Fatalf("expected static add call")
	}
}

func TestAddWidgetCommandPropagatesErrors(t *testing.T) {
	service := &stubService{err: dashboard.ErrMissingReporting}
	telemetry := &stubTelemetry{}
	err := NewAddWidgetCommand(service, telemetry).Execute(context.Background(), AddWidgetInput{})
	if !errors.Is(err, dashboard.ErrMissingReporting) {
		t.Fatalf("expected ErrMissingReporting, got %v", err)
	}
	if telemetry.calls != 0 {
		t.Fatalf("expected no telemetry on failure")
	}
}

func TestApplyLayoutCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewApplyLayoutCommand(service, nil)
	if err := cmd.Execute(context.Background(), ApplyLayoutInput{
		Updates: []dashboard.LayoutUpdate{{ID: "w1", Layout: dashboard.Layout{W: 4, H: 4}}},
		Items:   []dashboard.GridItem{{I: "w2", W: 3, H: 3}},
	}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.layoutCalls != 1 || service.gridCalls != 1 {
		t.Fatalf("expected both layout paths, got %d/%d", service.layoutCalls, service.gridCalls)
	}
}

func TestEditWidgetCommand(t *testing.T) {
	service := &stubService{}
	title := "Renamed"
	var widget dashboard.Widget
	cmd := NewEditWidgetCommand(service, nil)
	if err := cmd.Execute(context.Background(), EditWidgetInput{WidgetID: "w1", Edit: dashboard.WidgetEdit{Title: &title}, Result: &widget}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if widget.Title != title {
		t.Fatalf("expected edited widget, got %+v", widget)
	}
}

func TestRemoveWidgetCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewRemoveWidgetCommand(service, nil)
	if err := cmd.Execute(context.Background(), RemoveWidgetInput{WidgetID: "widget-1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.removeCalls != 1 {
		t.Fatalf("expected remove call")
	}

	if err := cmd.Execute(context.Background(), RemoveWidgetInput{WidgetID: "  "}); !errors.Is(err, dashboard.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if service.removeCalls != 1 {
		t.Fatalf("blank id must not reach the service")
	}

	service.err = dashboard.ErrWidgetNotFound
	if err := cmd.Execute(context.Background(), RemoveWidgetInput{WidgetID: "missing"}); !errors.Is(err, dashboard.ErrWidgetNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRefreshWidgetCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewRefreshWidgetCommand(service, nil)
	if err := cmd.Execute(context.Background(), RefreshWidgetInput{WidgetID: "w1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if err := cmd.Execute(context.Background(), RefreshWidgetInput{}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.refreshCalls != 1 || service.refreshAllCalls != 1 {
		t.Fatalf("expected one refresh and one refresh-all, got %d/%d", service.refreshCalls, service.refreshAllCalls)
	}
}

func TestNotifyWidgetCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewNotifyWidgetCommand(service, nil)
	event := dashboard.WidgetEvent{WidgetID: "w1", Reason: "refresh"}
	if err := cmd.Execute(context.Background(), NotifyWidgetInput{Event: event}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.notifyCalls != 1 {
		t.Fatalf("expected notify call")
	}
}

type stubService struct {
	err             error
	addCalls        int
	staticCalls     int
	layoutCalls     int
	gridCalls       int
	removeCalls     int
	refreshCalls    int
	refreshAllCalls int
	notifyCalls     int
}

func (s *stubService) AddWidget(_ context.Context, req dashboard.AddWidgetRequest) (dashboard.Widget, error) {
	if s.err != nil {
		return dashboard.Widget{}, s.err
	}
	s.addCalls++
	return dashboard.Widget{ID: "w1", Title: req.Title}, nil
}

func (s *stubService) AddStaticWidget(_ context.Context, req dashboard.AddWidgetRequest) (dashboard.Widget, error) {
	s.staticCalls++
	return dashboard.Widget{ID: "w2", Title: req.Title}, s.err
}

func (s *stubService) ApplyLayout(context.Context, []dashboard.LayoutUpdate) error {
	s.layoutCalls++
	return s.err
}

func (s *stubService) ApplyGridLayout(context.Context, []dashboard.GridItem) error {
	s.gridCalls++
	return s.err
}

func (s *stubService) EditWidget(_ context.Context, id string, edit dashboard.WidgetEdit) (dashboard.Widget, error) {
	widget := dashboard.Widget{ID: id}
	if edit.Title != nil {
		widget.Title = *edit.Title
	}
	return widget, s.err
}

func (s *stubService) RemoveWidget(context.Context, string) error {
	s.removeCalls++
	return s.err
}

func (s *stubService) RefreshWidget(_ context.Context, id string) (dashboard.Widget, error) {
	s.refreshCalls++
	return dashboard.Widget{ID: id}, s.err
}

func (s *stubService) RefreshAll(context.Context) error {
	s.refreshAllCalls++
	return s.err
}

func (s *stubService) NotifyWidgetUpdated(context.Context, dashboard.WidgetEvent) error {
	s.notifyCalls++
	return s.err
}

type stubTelemetry struct {
	calls int
}

func (s *stubTelemetry) Record(context.Context, string, map[string]any) {
	s.calls++
}
