package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ChartType enumerates the chart renderings a widget can declare.
type ChartType string

const (
	ChartLine ChartType = "line"
	ChartBar  ChartType = "bar"
	ChartArea ChartType = "area"
	ChartPie  ChartType = "pie"
)

// DefaultWidgetTitle is used when a widget is stored without a title.
const DefaultWidgetTitle = "Untitled Chart"

// ChartTypes lists the supported chart types in display order.
func ChartTypes() []ChartType {
	return []ChartType{ChartLine, ChartBar, ChartArea, ChartPie}
}

// Valid reports whether the chart type is part of the enumeration.
func (t ChartType) Valid() bool {
	switch t {
	case ChartLine, ChartBar, ChartArea, ChartPie:
		return true
	default:
		return false
	}
}

// WidgetStore is the authoritative, insertion-ordered widget collection.
// Implementations must hand out copies so callers never observe later mutations.
type WidgetStore interface {
	Add(ctx context.Context, widget Widget) (Widget, error)
	Get(ctx context.Context, id string) (Widget, error)
	List(ctx context.Context) ([]Widget, error)
	ApplyLayout(ctx context.Context, updates []LayoutUpdate) error
	Edit(ctx context.Context, id string, edit WidgetEdit) (Widget, error)
	ReplaceData(ctx context.Context, id string, data []DataPoint, refreshedAt time.Time) (Widget, error)
	Remove(ctx context.Context, id string) error
}

// RefreshHook notifies transports (REST/WebSocket) about widget changes.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// Widget is a single chart tile: its query, fetched data and grid placement.
type Widget struct {
	ID           string        `json:"id"`
	Type         ChartType     `json:"type"`
	Title        string        `json:"title"`
	DataKey      DataKeys      `json:"dataKey"`
	Data         []DataPoint   `json:"data,omitempty"`
	Layout       Layout        `json:"layout"`
	QueryPayload *QueryPayload `json:"queryPayload,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	RefreshedAt  time.Time     `json:"refreshedAt,omitzero"`
}

// Clone returns a deep copy of the widget.
func (w Widget) Clone() Widget {
	out := w
	out.DataKey = append(DataKeys(nil), w.DataKey...)
	out.Data = cloneDataPoints(w.Data)
	if w.QueryPayload != nil {
		payload := w.QueryPayload.Clone()
		out.QueryPayload = &payload
	}
	return out
}

// Sources returns the entities the widget's query touches.
func (w Widget) Sources() []string {
	if w.QueryPayload == nil {
		return nil
	}
	return w.QueryPayload.Entities
}

// Layout holds grid-cell coordinates and size.
type Layout struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// IsZero reports whether no layout was supplied.
func (l Layout) IsZero() bool {
	return l == Layout{}
}

// LayoutUpdate overwrites a widget's placement after a drag/resize.
type LayoutUpdate struct {
	ID     string `json:"id"`
	Layout Layout `json:"layout"`
}

// WidgetEdit is a partial update of a widget's display configuration.
type WidgetEdit struct {
	Title    *string    `json:"title,omitempty"`
	Type     *ChartType `json:"type,omitempty"`
	DataKeys DataKeys   `json:"dataKeys,omitempty"`
}

// DataPoint is one labelled value. Series carries additional named values for
// multi-series charts.
type DataPoint struct {
	Name   string             `json:"name"`
	Value  float64            `json:"value"`
	Series map[string]float64 `json:"series,omitempty"`
}

// Lookup returns the value stored under key; "value" maps to Value.
func (p DataPoint) Lookup(key string) (float64, bool) {
	if key == "" || key == "value" {
		return p.Value, true
	}
	v, ok := p.Series[key]
	return v, ok
}

func cloneDataPoints(points []DataPoint) []DataPoint {
	if points == nil {
		return nil
	}
	out := make([]DataPoint, len(points))
	for i, p := range points {
		out[i] = DataPoint{Name: p.Name, Value: p.Value}
		if p.Series != nil {
			out[i].Series = make(map[string]float64, len(p.Series))
			for k, v := range p.Series {
				out[i].Series[k] = v
			}
		}
	}
	return out
}

// DataKeys names the series a widget plots. It decodes from a single string or
// a list of strings.
type DataKeys []string

// UnmarshalJSON accepts "value" as well as ["value1","value2"].
func (k *DataKeys) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*k = nil
		return nil
	}
	if b[0] == '"' {
		var single string
		if err := json.Unmarshal(b, &single); err != nil {
			return err
		}
		*k = normalizeDataKeys([]string{single})
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("dashboard: dataKey must be a string or list of strings: %w", err)
	}
	*k = normalizeDataKeys(list)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for manifests.
func (k *DataKeys) UnmarshalYAML(unmarshal func(any) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*k = normalizeDataKeys([]string{single})
		return nil
	}
	var list []string
	if err := unmarshal(&list); err != nil {
		return err
	}
	*k = normalizeDataKeys(list)
	return nil
}

// Primary returns the first key, defaulting to "value".
func (k DataKeys) Primary() string {
	if len(k) == 0 {
		return "value"
	}
	return k[0]
}

func normalizeDataKeys(keys []string) DataKeys {
	out := make(DataKeys, 0, len(keys))
	for _, key := range keys {
		if key = strings.TrimSpace(key); key != "" {
			out = append(out, key)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// QueryPayload is the structured request sent to the reporting service.
type QueryPayload struct {
	Entities     []string `json:"entities" yaml:"entities"`
	Fields       []string `json:"fields" yaml:"fields"`
	Join         []string `json:"join" yaml:"join"`
	Filters      []string `json:"filters" yaml:"filters"`
	Aggregations []string `json:"aggregations" yaml:"aggregations"`
}

// Clone returns a deep copy with non-nil lists.
func (p QueryPayload) Clone() QueryPayload {
	return QueryPayload{
		Entities:     append([]string{}, p.Entities...),
		Fields:       append([]string{}, p.Fields...),
		Join:         append([]string{}, p.Join...),
		Filters:      append([]string{}, p.Filters...),
		Aggregations: append([]string{}, p.Aggregations...),
	}
}

// RelationID identifies a relation. Backends send it as a string or a number.
type RelationID string

// UnmarshalJSON accepts "7", 7 and null.
func (id *RelationID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RelationID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("dashboard: relation id must be a string or number: %w", err)
	}
	*id = RelationID(n.String())
	return nil
}

// Relation describes a joinable table reachable from a data source.
type Relation struct {
	ID               RelationID `json:"id"`
	RelationshipType string     `json:"relationshipType"`
	SourceColumn     string     `json:"scolumn"`
	TargetTable      string     `json:"ttable"`
	SourceTable      string     `json:"stable"`
	TargetColumn     string     `json:"tcolumn"`
}

// JoinCondition renders the relation as "target.column = source.column".
func (r Relation) JoinCondition() string {
	return fmt.Sprintf("%s.%s = %s.%s", r.TargetTable, r.TargetColumn, r.SourceTable, r.SourceColumn)
}

// WidgetEvent describes changes that transports might care about.
type WidgetEvent struct {
	WidgetID string  `json:"widgetId"`
	Widget   *Widget `json:"widget,omitempty"`
	Reason   string  `json:"reason"`
}
