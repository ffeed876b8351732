// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package chart

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	pngWidth    = 1024
	pngHeight   = 400
	fillAlpha   = 25
	strokeWidth = 2
	headroom    = 1.1
	minAxisMax  = 0.1
)

// PNG renders a static image of the chart.
type PNG struct {
	buffers
	image []byte
}

func NewPNG() *PNG {
	return &PNG{}
}

// Redraw renders the buffered data to PNG. An empty data set clears the image.
func (p *PNG) Redraw() error {
	labels, production, consumption, err := p.snapshot()
	if err != nil {
		return err
	}
	if len(labels) == 0 {
		p.mu.Lock()
		p.image = nil
		p.mu.Unlock()
		return nil
	}
	if len(labels) == 1 {
		// go-chart needs two x values; a single hour is drawn as a flat segment.
		labels = []string{labels[0], ""}
		production = []float64{production[0], production[0]}
		consumption = []float64{consumption[0], consumption[0]}
	}

	xValues := make([]float64, len(labels))
	ticks := make([]chart.Tick, len(labels))
	for i, label := range labels {
		xValues[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}
	yMax := math.Max(minAxisMax, math.Max(maxOf(production), maxOf(consumption))) * headroom

	graph := chart.Chart{
		Width:  pngWidth,
		Height: pngHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(labels) - 1)},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f %s", f, AxisUnit)
				}
				return ""
			},
		},
		Series: []chart.Series{
			continuousSeries(ProductionName, ProductionColor, xValues, production),
			continuousSeries(ConsumptionName, ConsumptionColor, xValues, consumption),
		},
	}

	buf := bytes.NewBuffer(nil)
	if err = graph.Render(chart.PNG, buf); err != nil {
		return fmt.Errorf("failed to render chart image: %w", err)
	}

	p.mu.Lock()
	p.image = buf.Bytes()
	p.mu.Unlock()
	return nil
}

// Image returns the PNG rendered by the last Redraw.
func (p *PNG) Image() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.image
}

func continuousSeries(name, color string, xValues, yValues []float64) chart.ContinuousSeries {
	stroke := drawing.ColorFromHex(strings.TrimPrefix(color, "#"))
	return chart.ContinuousSeries{
		Name: name,
		Style: chart.Style{
			StrokeColor: stroke,
			StrokeWidth: strokeWidth,
			FillColor:   stroke.WithAlpha(fillAlpha),
		},
		XValues: xValues,
		YValues: yValues,
	}
}

func maxOf(values []float64) float64 {
	highest := 0.0
	for _, v := range values {
		highest = math.Max(highest, v)
	}
	return highest
}
