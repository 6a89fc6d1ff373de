package dashboard

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hookFunc func(context.Context, WidgetEvent) error

func (f hookFunc) WidgetUpdated(ctx context.Context, event WidgetEvent) error { return f(ctx, event) }

func TestRefreshHooksRunsEveryHook(t *testing.T) {
	boom := errors.New("boom")
	var seen []string
	hooks := RefreshHooks{
		hookFunc(func(_ context.Context, e WidgetEvent) error {
			seen = append(seen, "first:"+e.WidgetID)
			return boom
		}),
		nil,
		hookFunc(func(_ context.Context, e WidgetEvent) error {
			seen = append(seen, "second:"+e.WidgetID)
			return nil
		}),
	}

	err := hooks.WidgetUpdated(context.Background(), WidgetEvent{WidgetID: "w1"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first:w1", "second:w1"}, seen)
}

func TestRefreshHooksDeliverToBroadcast(t *testing.T) {
	broadcast := NewBroadcastHook()
	ch, cancel := broadcast.Subscribe()
	defer cancel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := RefreshHooks{broadcast, LogHook{Logger: logger}}

	require.NoError(t, hooks.WidgetUpdated(context.Background(), WidgetEvent{WidgetID: "w2", Reason: "refresh"}))
	assert.Equal(t, "w2", (<-ch).WidgetID)
	assert.Contains(t, buf.String(), "widget_id=w2")
	assert.Contains(t, buf.String(), "reason=refresh")
}

func TestLogHookWithoutLogger(t *testing.T) {
	assert.NoError(t, LogHook{}.WidgetUpdated(context.Background(), WidgetEvent{WidgetID: "w"}))
}
