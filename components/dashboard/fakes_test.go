package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
)

type fakeReporting struct {
	mu        sync.Mutex
	tables    []string
	fields    map[string][]string
	relations map[string][]Relation
	points    []DataPoint
	tablesErr error
	fieldErr  map[string]error
	relErr    error
	queryErr  error

	// block, when set, holds ExecuteQuery until it is closed.
	block chan struct{}

	queries  []QueryPayload
	executed atomic.Int32
}

func (f *fakeReporting) ListDataSources(context.Context) ([]string, error) {
	if f.tablesErr != nil {
		return nil, f.tablesErr
	}
	return append([]string(nil), f.tables...), nil
}

func (f *fakeReporting) ListFields(ctx context.Context, table string) ([]string, error) {
	if err := f.fieldErr[table]; err != nil {
		return nil, err
	}
	return append([]string(nil), f.fields[table]...), nil
}

func (f *fakeReporting) ListRelations(ctx context.Context, table string) ([]Relation, error) {
	if f.relErr != nil {
		return nil, f.relErr
	}
	return append([]Relation(nil), f.relations[table]...), nil
}

func (f *fakeReporting) ExecuteQuery(ctx context.Context, payload QueryPayload) ([]DataPoint, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.executed.Add(1)
	f.mu.Lock()
	f.queries = append(f.queries, payload.Clone())
	points := cloneDataPoints(f.points)
	err := f.queryErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (f *fakeReporting) setPoints(points []DataPoint) {
	f.mu.Lock()
	f.points = points
	f.mu.Unlock()
}

func (f *fakeReporting) setQueryErr(err error) {
	f.mu.Lock()
	f.queryErr = err
	f.mu.Unlock()
}

func (f *fakeReporting) lastQuery() QueryPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return QueryPayload{}
	}
	return f.queries[len(f.queries)-1]
}

type recordingHook struct {
	mu     sync.Mutex
	events []WidgetEvent
}

func (h *recordingHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	h.mu.Lock()
	h.events = append(h.events, event)
	h.mu.Unlock()
	return nil
}

func (h *recordingHook) reasons() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, e := range h.events {
		out[i] = e.Reason
	}
	return out
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recordingTelemetry) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
