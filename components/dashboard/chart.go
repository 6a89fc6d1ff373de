package dashboard

import (
	"context"
	"math"
)

// ChartRenderer turns a widget into displayable chart markup.
type ChartRenderer interface {
	Render(ctx context.Context, widget Widget) (ChartView, error)
}

// ChartView is the rendered form of a widget. Invalid is set when the widget
// declares a chart type outside the enumeration; HTML then holds a placeholder.
type ChartView struct {
	WidgetID string    `json:"widgetId"`
	Type     ChartType `json:"type"`
	Title    string    `json:"title"`
	HTML     string    `json:"html"`
	Invalid  bool      `json:"invalid,omitempty"`
	Sample   bool      `json:"sample,omitempty"`
}

// ChartSeries is one plotted series, aligned with ChartSpec.Labels.
type ChartSeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// ChartSpec is the normalized, renderer-agnostic description of a chart.
type ChartSpec struct {
	Type   ChartType     `json:"type"`
	Title  string        `json:"title"`
	Labels []string      `json:"labels"`
	Series []ChartSeries `json:"series"`
	Sample bool          `json:"sample,omitempty"`
}

// BuildChartSpec normalizes a widget's data into labels and series. Widgets
// without data plot the sample set for their chart type. Line and area charts
// plot one series per data key; bar and pie charts plot the primary key only.
// Missing keys plot as zero.
func BuildChartSpec(w Widget) ChartSpec {
	spec := ChartSpec{Type: w.Type, Title: w.Title}
	if spec.Title == "" {
		spec.Title = DefaultWidgetTitle
	}
	points := w.Data
	if len(points) == 0 {
		points = SampleData(w.Type)
		spec.Sample = true
	}
	spec.Labels = make([]string, len(points))
	for i, p := range points {
		spec.Labels[i] = p.Name
	}

	keys := []string(w.DataKey)
	switch w.Type {
	case ChartBar, ChartPie:
		keys = []string{w.DataKey.Primary()}
	default:
		if len(keys) == 0 {
			keys = []string{"value"}
		}
	}
	spec.Series = make([]ChartSeries, 0, len(keys))
	for _, key := range keys {
		spec.Series = append(spec.Series, ChartSeries{Name: key, Values: seriesValues(points, key)})
	}
	return spec
}

func seriesValues(points []DataPoint, key string) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		if v, ok := p.Lookup(key); ok && !math.IsNaN(v) {
			values[i] = v
		}
	}
	return values
}

// SampleData returns the placeholder dataset shown for a chart type before a
// widget has any data. The first named series doubles as the point value.
func SampleData(t ChartType) []DataPoint {
	switch t {
	case ChartLine:
		return samplePoints("value1", "value2", []sampleRow{
			{"Jan", 400, 240}, {"Feb", 300, 139}, {"Mar", 200, 980},
			{"Apr", 278, 390}, {"May", 189, 480}, {"Jun", 239, 380},
		})
	case ChartBar:
		return samplePoints("sales", "profit", []sampleRow{
			{"Q1", 4000, 2400}, {"Q2", 3000, 1398}, {"Q3", 2000, 9800}, {"Q4", 2780, 3908},
		})
	case ChartArea:
		return samplePoints("users", "sessions", []sampleRow{
			{"2019", 4000, 2400}, {"2020", 3000, 1398}, {"2021", 2000, 9800},
			{"2022", 2780, 3908}, {"2023", 1890, 4800},
		})
	case ChartPie:
		return []DataPoint{
			{Name: "Mobile", Value: 400},
			{Name: "Desktop", Value: 300},
			{Name: "Tablet", Value: 200},
			{Name: "Other", Value: 100},
		}
	default:
		return nil
	}
}

type sampleRow struct {
	name   string
	first  float64
	second float64
}

func samplePoints(firstKey, secondKey string, rows []sampleRow) []DataPoint {
	out := make([]DataPoint, len(rows))
	for i, r := range rows {
		out[i] = DataPoint{
			Name:   r.name,
			Value:  r.first,
			Series: map[string]float64{firstKey: r.first, secondKey: r.second},
		}
	}
	return out
}
