package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight   = "360px"
	defaultChartCacheTTL = 5 * time.Minute
)

// EChartsRenderer renders widget charts server-side with go-echarts.
type EChartsRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
	height     string
}

// EChartsOption customizes renderer behavior.
type EChartsOption func(*EChartsRenderer)

// WithChartCache injects a render cache. A nil cache disables memoization.
func WithChartCache(cache RenderCache) EChartsOption {
	return func(r *EChartsRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the chart theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsOption {
	return func(r *EChartsRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) EChartsOption {
	return func(r *EChartsRenderer) {
		r.assetsHost = ensureTrailingSlash(host)
	}
}

// WithChartHeight sets the CSS height of rendered charts.
func WithChartHeight(height string) EChartsOption {
	return func(r *EChartsRenderer) {
		if height != "" {
			r.height = height
		}
	}
}

// NewEChartsRenderer builds a renderer with a private TTL cache.
func NewEChartsRenderer(options ...EChartsOption) *EChartsRenderer {
	r := &EChartsRenderer{
		cache:      NewChartCache(defaultChartCacheTTL),
		theme:      types.ThemeWesteros,
		assetsHost: DefaultEChartsAssetsHost(),
		height:     defaultChartHeight,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render converts the widget into go-echarts markup. Unknown chart types
// produce a placeholder view instead of an error.
func (r *EChartsRenderer) Render(_ context.Context, w Widget) (ChartView, error) {
	spec := BuildChartSpec(w)
	view := ChartView{
		WidgetID: w.ID,
		Type:     w.Type,
		Title:    spec.Title,
		Sample:   spec.Sample,
	}
	if !w.Type.Valid() {
		view.Invalid = true
		view.HTML = invalidChartHTML(w.Type)
		return view, nil
	}

	renderFn := func() (string, error) {
		return r.render(w.ID, spec)
	}
	var (
		out string
		err error
	)
	if r.cache != nil {
		out, err = r.cache.GetOrRender(chartKey(w), renderFn)
	} else {
		out, err = renderFn()
	}
	if err != nil {
		return ChartView{}, fmt.Errorf("dashboard: render chart %s: %w", w.ID, err)
	}
	view.HTML = out
	return view, nil
}

func (r *EChartsRenderer) render(chartID string, spec ChartSpec) (string, error) {
	switch spec.Type {
	case ChartBar:
		return r.renderBarChart(chartID, spec)
	case ChartLine:
		return r.renderLineChart(chartID, spec, false)
	case ChartArea:
		return r.renderLineChart(chartID, spec, true)
	case ChartPie:
		return r.renderPieChart(chartID, spec)
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidChartType, spec.Type)
	}
}

func (r *EChartsRenderer) renderBarChart(chartID string, spec ChartSpec) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalChartOptions(chartID, spec.Title)...)
	bar.SetXAxis(spec.Labels)
	for _, s := range spec.Series {
		bar.AddSeries(s.Name, toBarData(spec.Labels, s.Values))
	}
	return renderChart(bar)
}

func (r *EChartsRenderer) renderLineChart(chartID string, spec ChartSpec, area bool) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(r.globalChartOptions(chartID, spec.Title)...)
	line.SetXAxis(spec.Labels)
	for _, s := range spec.Series {
		line.AddSeries(s.Name, toLineData(spec.Labels, s.Values))
	}
	seriesOpts := []charts.SeriesOpts{charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)})}
	if area {
		seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{}))
	}
	line.SetSeriesOptions(seriesOpts...)
	return renderChart(line)
}

func (r *EChartsRenderer) renderPieChart(chartID string, spec ChartSpec) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(r.globalChartOptions(chartID, spec.Title)...)
	for _, s := range spec.Series {
		pie.AddSeries(s.Name, toPieData(spec.Labels, s.Values))
	}
	return renderChart(pie)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *EChartsRenderer) globalChartOptions(chartID, title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:   r.theme,
		Width:   "100%",
		Height:  r.height,
		ChartID: chartID,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func invalidChartHTML(t ChartType) string {
	return fmt.Sprintf(`<div class="chart-invalid" data-type="%s">Invalid chart type</div>`, html.EscapeString(string(t)))
}

func toBarData(labels []string, values []float64) []opts.BarData {
	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{Name: labelAt(labels, i), Value: v}
	}
	return data
}

func toLineData(labels []string, values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Name: labelAt(labels, i), Value: v}
	}
	return data
}

func toPieData(labels []string, values []float64) []opts.PieData {
	data := make([]opts.PieData, len(values))
	for i, v := range values {
		name := labelAt(labels, i)
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{Name: name, Value: v}
	}
	return data
}

func labelAt(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return ""
}
