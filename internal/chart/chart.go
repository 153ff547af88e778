// Package chart renders an analysis as a standalone HTML page.
package chart

import (
	"io"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

const (
	colorTG       = "#d62728"
	colorBG       = "#2ca02c"
	colorRise     = "#e4572e"
	colorFall     = "#17becf"
	emptyValue    = "-"
	chartWidth    = "1200px"
	priceHeight   = "460px"
	oscHeight     = "300px"
	zoomStartPct  = 60
	markSymbolPin = "pin"
)

// Options configures the rendered page.
type Options struct {
	Ticker string
	Name   string
}

func (o Options) title() string {
	if o.Name == "" {
		return o.Ticker
	}

	return o.Name + " (" + o.Ticker + ")"
}

// Render writes the HTML page with a price panel and an oscillator panel.
// TG rows are pinned on the price line in red and BG rows in green.
func Render(w io.Writer, rows []types.AnnotatedRow, o Options) error {
	page := components.NewPage()
	page.SetPageTitle(o.title())
	page.AddCharts(priceChart(rows, o), oscillatorChart(rows))

	if err := page.Render(w); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "render chart", err)
	}

	return nil
}

// RenderFile writes the page to path.
func RenderFile(path string, rows []types.AnnotatedRow, o Options) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "create %s", path)
	}
	defer file.Close()

	return Render(file, rows, o)
}

func dates(rows []types.AnnotatedRow) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.Date.Format(time.DateOnly)
	}

	return out
}

func priceChart(rows []types.AnnotatedRow, o Options) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: priceHeight, PageTitle: o.title()}),
		charts.WithTitleOpts(opts.Title{Title: o.title(), Subtitle: "close with TG / BG"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: zoomStartPct, End: 100}),
	)

	closes := make([]opts.LineData, len(rows))
	for i, row := range rows {
		closes[i] = opts.LineData{Value: row.Close}
	}

	line.SetXAxis(dates(rows)).AddSeries("Close", closes,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithMarkPointNameCoordItemOpts(structureMarks(rows)...),
	)

	return line
}

// structureMarks pins every TG and BG row.
func structureMarks(rows []types.AnnotatedRow) []opts.MarkPointNameCoordItem {
	var marks []opts.MarkPointNameCoordItem

	for _, row := range rows {
		var name, color string

		switch {
		case row.Structure.TG:
			name, color = "TG", colorTG
		case row.Structure.BG:
			name, color = "BG", colorBG
		default:
			continue
		}

		marks = append(marks, opts.MarkPointNameCoordItem{
			Name:       name,
			Coordinate: []interface{}{row.Date.Format(time.DateOnly), row.Close},
			Value:      name,
			Symbol:     markSymbolPin,
			SymbolSize: 40,
			ItemStyle:  &opts.ItemStyle{Color: color},
		})
	}

	return marks
}

func oscillatorChart(rows []types.AnnotatedRow) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: oscHeight}),
		charts.WithTitleOpts(opts.Title{Title: "MACD"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: zoomStartPct, End: 100}),
	)

	histogram := make([]opts.BarData, len(rows))
	for i, row := range rows {
		histogram[i] = histogramBar(row.Histogram)
	}

	bar.SetXAxis(dates(rows)).AddSeries("MACD", histogram)

	lines := charts.NewLine()
	lines.SetXAxis(dates(rows)).
		AddSeries("DIF", lineValues(rows, func(r types.AnnotatedRow) optional.Option[float64] { return r.Oscillator }),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})).
		AddSeries("DEA", lineValues(rows, func(r types.AnnotatedRow) optional.Option[float64] { return r.Signal }),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	bar.Overlap(lines)

	return bar
}

func histogramBar(v optional.Option[float64]) opts.BarData {
	if v.IsNone() {
		return opts.BarData{Value: emptyValue}
	}

	h := v.Unwrap()

	color := colorRise
	if h < 0 {
		color = colorFall
	}

	return opts.BarData{Value: h, ItemStyle: &opts.ItemStyle{Color: color}}
}

func lineValues(rows []types.AnnotatedRow, pick func(types.AnnotatedRow) optional.Option[float64]) []opts.LineData {
	out := make([]opts.LineData, len(rows))

	for i, row := range rows {
		v := pick(row)
		if v.IsNone() {
			out[i] = opts.LineData{Value: emptyValue}

			continue
		}

		out[i] = opts.LineData{Value: v.Unwrap()}
	}

	return out
}
