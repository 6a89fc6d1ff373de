package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const filterDateLayout = time.DateOnly

// FilterState is the visibility predicate over the widget store. Every
// dimension left at its zero value matches all widgets.
type FilterState struct {
	Title       string    `json:"title"`
	Type        ChartType `json:"type"`
	MinValue    *float64  `json:"minValue,omitempty"`
	MaxValue    *float64  `json:"maxValue,omitempty"`
	DateRange   DateRange `json:"dateRange"`
	DataSources string    `json:"dataSources"`
}

// DateRange bounds a widget's last refresh, inclusive, as YYYY-MM-DD dates.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.StartDate == "" && r.EndDate == ""
}

// Active reports whether any filter dimension is set.
func (f FilterState) Active() bool {
	return f.Title != "" ||
		f.Type != "" ||
		f.MinValue != nil ||
		f.MaxValue != nil ||
		!f.DateRange.IsZero() ||
		f.DataSources != ""
}

// Clear returns the empty filter.
func (FilterState) Clear() FilterState {
	return FilterState{}
}

// Validate checks that bounds parse and are ordered.
func (f FilterState) Validate() error {
	if f.Type != "" && !f.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidChartType, f.Type)
	}
	if f.MinValue != nil && f.MaxValue != nil && *f.MinValue > *f.MaxValue {
		return validationError("minValue %v exceeds maxValue %v", *f.MinValue, *f.MaxValue)
	}
	start, end, err := f.DateRange.bounds()
	if err != nil {
		return err
	}
	if start.After(end) {
		return validationError("startDate %s is after endDate %s", f.DateRange.StartDate, f.DateRange.EndDate)
	}
	return nil
}

// ParseFilterValue converts a form value into an optional bound. Blank input
// yields nil.
func ParseFilterValue(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, validationError("invalid numeric filter value %q", raw)
	}
	return &v, nil
}

// VisibleWidgets returns the widgets matching every filter dimension, in store
// order.
func VisibleWidgets(widgets []Widget, filter FilterState) []Widget {
	match := filter.matcher()
	out := make([]Widget, 0, len(widgets))
	for _, w := range widgets {
		if match(w) {
			out = append(out, w)
		}
	}
	return out
}

// Matches reports whether a single widget passes the filter.
func (f FilterState) Matches(w Widget) bool {
	return f.matcher()(w)
}

func (f FilterState) matcher() func(Widget) bool {
	title := strings.ToLower(f.Title)
	source := strings.ToLower(strings.TrimSpace(f.DataSources))
	checkRange := f.MinValue != nil || f.MaxValue != nil
	lo, hi := math.Inf(-1), math.Inf(1)
	if f.MinValue != nil {
		lo = *f.MinValue
	}
	if f.MaxValue != nil {
		hi = *f.MaxValue
	}
	checkDates := !f.DateRange.IsZero()
	start, end, err := f.DateRange.bounds()
	if err != nil {
		// An unparsable range matches nothing rather than everything.
		return func(Widget) bool { return false }
	}

	return func(w Widget) bool {
		if title != "" && !strings.Contains(strings.ToLower(w.Title), title) {
			return false
		}
		if f.Type != "" && w.Type != f.Type {
			return false
		}
		if checkRange && !anyValueWithin(w.Data, lo, hi) {
			return false
		}
		if checkDates && !refreshedWithin(w.RefreshedAt, start, end) {
			return false
		}
		if source != "" && !hasSource(w, source) {
			return false
		}
		return true
	}
}

func anyValueWithin(points []DataPoint, lo, hi float64) bool {
	for _, p := range points {
		if p.Value >= lo && p.Value <= hi {
			return true
		}
	}
	return false
}

func refreshedWithin(at, start, end time.Time) bool {
	if at.IsZero() {
		return false
	}
	at = at.UTC()
	return !at.Before(start) && !at.After(end)
}

func hasSource(w Widget, source string) bool {
	for _, entity := range w.Sources() {
		if strings.ToLower(entity) == source {
			return true
		}
	}
	return false
}

// bounds returns the inclusive UTC instants covered by the range. Missing
// bounds are open-ended.
func (r DateRange) bounds() (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
	if r.StartDate != "" {
		t, err := time.Parse(filterDateLayout, r.StartDate)
		if err != nil {
			return start, end, validationError("invalid startDate %q", r.StartDate)
		}
		start = t
	}
	if r.EndDate != "" {
		t, err := time.Parse(filterDateLayout, r.EndDate)
		if err != nil {
			return start, end, validationError("invalid endDate %q", r.EndDate)
		}
		end = t.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, nil
}
