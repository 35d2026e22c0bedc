package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "360px"
	defaultChartTTL    = 5 * time.Minute
)

// Chart kinds understood by ChartRenderer.
const (
	ChartBar    = "bar"
	ChartLine   = "line"
	ChartArea   = "area"
	ChartPie    = "pie"
	ChartRadar  = "radar"
	ChartRadial = "radial"
)

// ChartSeries represents a set of values plotted for a given legend entry.
type ChartSeries struct {
	Name   string       `json:"name"`
	Points []ChartPoint `json:"points"`
}

// ChartPoint represents an individual labeled value.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartSpec is a chart ready to draw: prepared series plus presentation hints.
type ChartSpec struct {
	ID       string        `json:"id"`
	Kind     string        `json:"kind"`
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle,omitempty"`
	Series   []ChartSeries `json:"series"`
}

// RenderedChart is the HTML fragment for one chart.
type RenderedChart struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Theme string `json:"theme"`
	HTML  string `json:"html"`
}

// ChartRenderer turns chart specs into go-echarts markup.
type ChartRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// ChartRendererOption customizes renderer behavior.
type ChartRendererOption func(*ChartRenderer)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.theme = theme
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a renderer with a five minute cache by default.
func NewChartRenderer(options ...ChartRendererOption) *ChartRenderer {
	r := &ChartRenderer{
		cache: NewChartCache(defaultChartTTL),
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render draws one chart, consulting the cache first.
func (r *ChartRenderer) Render(spec ChartSpec) (RenderedChart, error) {
	kind := strings.ToLower(spec.Kind)
	if len(spec.Series) == 0 {
		return RenderedChart{}, fmt.Errorf("dashboard: chart %s has no series", spec.ID)
	}
	renderFn := func() (string, error) {
		return r.render(kind, spec)
	}
	var (
		html string
		err  error
	)
	if r.cache != nil {
		html, err = r.cache.GetOrRender(fmt.Sprintf("%s:%s:%s", spec.ID, kind, chartHash(spec)), renderFn)
	} else {
		html, err = renderFn()
	}
	if err != nil {
		return RenderedChart{}, err
	}
	return RenderedChart{
		ID:    spec.ID,
		Kind:  kind,
		Title: spec.Title,
		Theme: r.theme,
		HTML:  html,
	}, nil
}

// RenderAll draws every spec in order, stopping at the first failure.
func (r *ChartRenderer) RenderAll(specs []ChartSpec) ([]RenderedChart, error) {
	out := make([]RenderedChart, 0, len(specs))
	for _, spec := range specs {
		rendered, err := r.Render(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered)
	}
	return out, nil
}

func (r *ChartRenderer) render(kind string, spec ChartSpec) (string, error) {
	switch kind {
	case ChartBar:
		return r.renderBar(spec)
	case ChartLine:
		return r.renderLine(spec, false)
	case ChartArea:
		return r.renderLine(spec, true)
	case ChartPie:
		return r.renderPie(spec, nil)
	case ChartRadial:
		return r.renderPie(spec, []string{"40%", "70%"})
	case ChartRadar:
		return r.renderRadar(spec)
	default:
		return "", fmt.Errorf("dashboard: unsupported chart type: %s", kind)
	}
}

func (r *ChartRenderer) renderBar(spec ChartSpec) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalChartOptions(spec)...)
	bar.SetXAxis(axisLabels(spec.Series))
	for _, s := range spec.Series {
		bar.AddSeries(s.Name, toBarData(s.Points))
	}
	return renderChart(bar)
}

func (r *ChartRenderer) renderLine(spec ChartSpec, filled bool) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(r.globalChartOptions(spec)...)
	line.SetXAxis(axisLabels(spec.Series))
	for _, s := range spec.Series {
		line.AddSeries(s.Name, toLineData(s.Points))
	}
	seriesOpts := []charts.SeriesOpts{charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)})}
	if filled {
		seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.3)}))
	}
	line.SetSeriesOptions(seriesOpts...)
	return renderChart(line)
}

func (r *ChartRenderer) renderPie(spec ChartSpec, radius []string) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(r.globalChartOptions(spec)...)
	for _, s := range spec.Series {
		pie.AddSeries(s.Name, toPieData(s.Points))
	}
	if radius != nil {
		pie.SetSeriesOptions(charts.WithPieChartOpts(opts.PieChart{Radius: radius}))
	}
	return renderChart(pie)
}

func (r *ChartRenderer) renderRadar(spec ChartSpec) (string, error) {
	radar := charts.NewRadar()
	labels := axisLabels(spec.Series)
	var peak float64
	for _, s := range spec.Series {
		for _, p := range s.Points {
			if p.Value > peak {
				peak = p.Value
			}
		}
	}
	indicators := make([]*opts.Indicator, len(labels))
	for i, label := range labels {
		indicators[i] = &opts.Indicator{Name: label, Max: float32(peak * 1.1)}
	}
	global := append(r.globalChartOptions(spec),
		charts.WithRadarComponentOpts(opts.RadarComponent{Indicator: indicators}))
	radar.SetGlobalOptions(global...)
	for _, s := range spec.Series {
		values := make([]float64, len(s.Points))
		for i, p := range s.Points {
			values[i] = p.Value
		}
		radar.AddSeries(s.Name, []opts.RadarData{{Name: s.Name, Value: values}})
	}
	return renderChart(radar)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *ChartRenderer) globalChartOptions(spec ChartSpec) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: spec.Title, Subtitle: spec.Subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func toBarData(points []ChartPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{Name: point.Label, Value: point.Value}
	}
	return data
}

func toLineData(points []ChartPoint) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		data[i] = opts.LineData{Name: point.Label, Value: point.Value}
	}
	return data
}

func toPieData(points []ChartPoint) []opts.PieData {
	data := make([]opts.PieData, len(points))
	for i, point := range points {
		name := point.Label
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{Name: name, Value: point.Value}
	}
	return data
}

// axisLabels takes labels from the longest series, numbering unlabeled points.
func axisLabels(series []ChartSeries) []string {
	var labels []string
	longest := -1
	for _, s := range series {
		if len(s.Points) <= longest {
			continue
		}
		longest = len(s.Points)
		labels = make([]string, len(s.Points))
		for i, point := range s.Points {
			if point.Label != "" {
				labels[i] = point.Label
			} else {
				labels[i] = fmt.Sprintf("Item %d", i+1)
			}
		}
	}
	return labels
}
