// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package chart

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ECharts renders an interactive HTML line chart.
type ECharts struct {
	buffers
	title string
	html  []byte
}

func NewECharts(title string) *ECharts {
	return &ECharts{title: title}
}

// Redraw renders the buffered data to HTML.
func (e *ECharts) Redraw() error {
	labels, production, consumption, err := e.snapshot()
	if err != nil {
		return err
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: e.title, Width: "100%", Height: "400px"}),
		charts.WithLegendOpts(opts.Legend{Show: false}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{
			AxisLabel: &opts.AxisLabel{Show: true, Formatter: "{value} " + AxisUnit},
		}),
	)
	line.SetXAxis(labels).
		AddSeries(ProductionName, lineData(production), seriesOpts(ProductionColor)...).
		AddSeries(ConsumptionName, lineData(consumption), seriesOpts(ConsumptionColor)...)

	buf := bytes.NewBuffer(nil)
	if err = line.Render(buf); err != nil {
		return fmt.Errorf("failed to render line chart: %w", err)
	}

	e.mu.Lock()
	e.html = buf.Bytes()
	e.mu.Unlock()
	return nil
}

// HTML returns the page rendered by the last Redraw.
func (e *ECharts) HTML() []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.html
}

func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, 0, len(values))
	for _, v := range values {
		data = append(data, opts.LineData{Value: v})
	}
	return data
}

func seriesOpts(color string) []charts.SeriesOpts {
	return []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{Smooth: true}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.1, Color: color}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: 2, Color: color}),
	}
}
