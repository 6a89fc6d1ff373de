package dashboard

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// MinWidgetSize is the smallest width/height a tile may occupy.
	MinWidgetSize = 3
)

// FallbackLayout is applied when a widget is stored without a layout.
var FallbackLayout = Layout{X: 0, Y: 0, W: MinWidgetSize, H: MinWidgetSize}

// InMemoryWidgetStore keeps widgets in insertion order. Every mutation swaps in
// a freshly built slice, so snapshots handed out earlier never change.
type InMemoryWidgetStore struct {
	mu      sync.RWMutex
	widgets []Widget
	version uint64
	newID   func() string
	now     func() time.Time
}

// StoreOption customizes the in-memory store.
type StoreOption func(*InMemoryWidgetStore)

// WithIDGenerator overrides widget id assignment.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *InMemoryWidgetStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(fn func() time.Time) StoreOption {
	return func(s *InMemoryWidgetStore) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewInMemoryWidgetStore creates an empty store.
func NewInMemoryWidgetStore(opts ...StoreOption) *InMemoryWidgetStore {
	s := &InMemoryWidgetStore{
		newID: func() string { return "widget-" + uuid.NewString() },
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Version increases with every mutation.
func (s *InMemoryWidgetStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Add assigns a fresh id and appends the widget. Any id on the input is ignored.
func (s *InMemoryWidgetStore) Add(_ context.Context, widget Widget) (Widget, error) {
	if widget.Type == "" {
		widget.Type = ChartLine
	}
	if !widget.Type.Valid() {
		return Widget{}, ErrInvalidChartType
	}
	w := widget.Clone()
	if isBlank(w.Title) {
		w.Title = DefaultWidgetTitle
	}
	if w.Layout.IsZero() {
		w.Layout = FallbackLayout
	}
	w.Layout = clampLayout(w.Layout)
	if w.CreatedAt.IsZero() {
		w.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	w.ID = s.uniqueID()
	next := make([]Widget, len(s.widgets), len(s.widgets)+1)
	copy(next, s.widgets)
	s.commit(append(next, w))
	return w.Clone(), nil
}

// Get returns a copy of the widget with the given id.
func (s *InMemoryWidgetStore) Get(_ context.Context, id string) (Widget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Widget{}, ErrWidgetNotFound
	}
	return s.widgets[idx].Clone(), nil
}

// List returns copies of all widgets in insertion order.
func (s *InMemoryWidgetStore) List(context.Context) ([]Widget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Widget, len(s.widgets))
	for i, w := range s.widgets {
		out[i] = w.Clone()
	}
	return out, nil
}

// ApplyLayout overwrites placement for every known id; unknown ids are ignored.
func (s *InMemoryWidgetStore) ApplyLayout(_ context.Context, updates []LayoutUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	byID := make(map[string]Layout, len(updates))
	for _, u := range updates {
		byID[u.ID] = clampLayout(u.Layout)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]Widget, len(s.widgets))
	changed := false
	for i, w := range s.widgets {
		if layout, ok := byID[w.ID]; ok && layout != w.Layout {
			w.Layout = layout
			changed = true
		}
		next[i] = w
	}
	if changed {
		s.commit(next)
	}
	return nil
}

// Edit applies a partial display update. Data and layout are never touched.
func (s *InMemoryWidgetStore) Edit(_ context.Context, id string, edit WidgetEdit) (Widget, error) {
	if edit.Type != nil && !edit.Type.Valid() {
		return Widget{}, ErrInvalidChartType
	}
	return s.update(id, func(w *Widget) {
		if edit.Title != nil {
			w.Title = *edit.Title
			if isBlank(w.Title) {
				w.Title = DefaultWidgetTitle
			}
		}
		if edit.Type != nil {
			w.Type = *edit.Type
		}
		if len(edit.DataKeys) > 0 {
			w.DataKey = append(DataKeys(nil), edit.DataKeys...)
		}
	})
}

// ReplaceData swaps the widget's fetched points.
func (s *InMemoryWidgetStore) ReplaceData(_ context.Context, id string, data []DataPoint, refreshedAt time.Time) (Widget, error) {
	points := cloneDataPoints(data)
	return s.update(id, func(w *Widget) {
		w.Data = points
		w.RefreshedAt = refreshedAt
	})
}

// Remove deletes the widget, keeping the relative order of the others.
func (s *InMemoryWidgetStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrWidgetNotFound
	}
	s.commit(slices.Delete(slices.Clone(s.widgets), idx, idx+1))
	return nil
}

func (s *InMemoryWidgetStore) update(id string, mutate func(*Widget)) (Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Widget{}, ErrWidgetNotFound
	}
	next := slices.Clone(s.widgets)
	w := next[idx].Clone()
	mutate(&w)
	next[idx] = w
	s.commit(next)
	return w.Clone(), nil
}

func (s *InMemoryWidgetStore) commit(next []Widget) {
	s.widgets = next
	s.version++
}

func (s *InMemoryWidgetStore) indexOf(id string) int {
	return slices.IndexFunc(s.widgets, func(w Widget) bool { return w.ID == id })
}

// uniqueID must be called with the write lock held.
func (s *InMemoryWidgetStore) uniqueID() string {
	id := s.newID()
	if id == "" {
		id = "widget"
	}
	candidate := id
	for n := 2; s.indexOf(candidate) >= 0; n++ {
		candidate = fmt.Sprintf("%s-%d", id, n)
	}
	return candidate
}

func clampLayout(l Layout) Layout {
	l.X = max(l.X, 0)
	l.Y = max(l.Y, 0)
	l.W = max(l.W, MinWidgetSize)
	l.H = max(l.H, MinWidgetSize)
	return l
}
