package dashboard

import (
	"context"
	"errors"
	"log/slog"
)

// RefreshHooks fans widget events out to several hooks. Every hook runs even
// when an earlier one fails.
type RefreshHooks []RefreshHook

// WidgetUpdated forwards the event to each hook and joins their errors.
func (hooks RefreshHooks) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	var errs []error
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook.WidgetUpdated(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogHook writes widget events to a structured logger at debug level.
type LogHook struct {
	Logger *slog.Logger
}

// WidgetUpdated logs the event.
func (h LogHook) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if h.Logger == nil {
		return nil
	}
	h.Logger.DebugContext(ctx, "widget event", "widget_id", event.WidgetID, "reason", event.Reason)
	return nil
}
