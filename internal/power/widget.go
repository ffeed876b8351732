// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package power

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wneessen/powerboard/internal/chart"
	"github.com/wneessen/powerboard/internal/dom"
	"github.com/wneessen/powerboard/internal/logger"
	"github.com/wneessen/powerboard/internal/metrics"
	"github.com/wneessen/powerboard/internal/vartype"
)

// Controls and display slots of the chart panel.
const (
	ControlTimeRange      = "timeRange"
	ControlMaxProduction  = "maxProduction"
	ControlMaxConsumption = "maxConsumption"
	ControlDate           = "dateSelector"
	SlotTimeValue         = "timeValue"
	SlotTotalProduction   = "totalProduction"
	SlotSelfUsedRatio     = "selfUsedRatio"
	SlotGridFeed          = "totalGridFeed"

	// DateFormat is the layout of the date selector value.
	DateFormat = "2006-01-02"

	lastHour      = 23
	statusSuccess = "success"
	statusFailed  = "failed"
)

// OverviewFormatter turns an Overview into display text.
type OverviewFormatter interface {
	Overview(Overview) (string, error)
}

// Widget owns the current series and keeps the chart, the controls and the stat slots of a
// document in sync.
type Widget struct {
	doc       *dom.Document
	renderer  chart.Renderer
	formatter OverviewFormatter
	clock     clockwork.Clock
	logger    *logger.Logger
	defaults  Config

	mu     sync.Mutex
	rnd    Rand
	series Series
	stats  Stats
}

func NewWidget(doc *dom.Document, renderer chart.Renderer, formatter OverviewFormatter, clock clockwork.Clock,
	rnd Rand, log *logger.Logger, defaults Config,
) (*Widget, error) {
	if doc == nil || renderer == nil || formatter == nil || clock == nil || rnd == nil || log == nil {
		return nil, errors.New("document, renderer, formatter, clock, random source and logger are required")
	}
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid default chart config: %w", err)
	}
	return &Widget{
		doc:       doc,
		renderer:  renderer,
		formatter: formatter,
		clock:     clock,
		logger:    log,
		defaults:  defaults,
		rnd:       rnd,
	}, nil
}

// Start runs the initial recompute.
func (w *Widget) Start(ctx context.Context) error {
	if err := w.Recompute(ctx); err != nil {
		return fmt.Errorf("failed to initialize power chart: %w", err)
	}
	return nil
}

// Series returns a copy of the current series.
func (w *Widget) Series() Series {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Series{
		TimeLabels:  append([]string(nil), w.series.TimeLabels...),
		Production:  append([]float64(nil), w.series.Production...),
		Consumption: append([]float64(nil), w.series.Consumption...),
	}
}

// Stats returns the stats of the current series.
func (w *Widget) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Recompute reads the controls, regenerates the series, redraws the chart and updates the
// stat slots.
func (w *Widget) Recompute(ctx context.Context) error {
	if err := w.recompute(ctx); err != nil {
		metrics.PowerRecomputes.WithLabelValues(statusFailed).Inc()
		return err
	}
	metrics.PowerRecomputes.WithLabelValues(statusSuccess).Inc()
	return nil
}

// Reset writes the default parameters into the controls and recomputes.
func (w *Widget) Reset(ctx context.Context) error {
	values := map[string]string{
		ControlTimeRange:      strconv.Itoa(w.defaults.TimeRange),
		ControlMaxProduction:  formatFloat(w.defaults.MaxProduction),
		ControlMaxConsumption: formatFloat(w.defaults.MaxConsumption),
	}
	for id, value := range values {
		if err := w.doc.SetValue(id, value); err != nil {
			return fmt.Errorf("failed to reset control: %w", err)
		}
	}
	return w.Recompute(ctx)
}

// Apply writes values into the controls and recomputes. When the recompute fails, the
// previous control values are restored and the error is returned.
func (w *Widget) Apply(ctx context.Context, values map[string]string) error {
	previous := make(map[string]string, len(values))
	for id, value := range values {
		elem, err := w.doc.Element(id)
		if err != nil {
			w.restore(previous)
			return fmt.Errorf("failed to apply control: %w", err)
		}
		previous[id] = elem.Value()
		elem.SetValue(value)
	}
	if err := w.Recompute(ctx); err != nil {
		w.restore(previous)
		return err
	}
	return nil
}

// ShowOverview formats peaks and totals of the current series. It does not change any state.
func (w *Widget) ShowOverview() (string, error) {
	overview := Summarize(w.Series())
	text, err := w.formatter.Overview(overview)
	if err != nil {
		return "", fmt.Errorf("failed to format data overview: %w", err)
	}
	return text, nil
}

func (w *Widget) recompute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg, err := w.readConfig()
	if err != nil {
		return err
	}
	if err = cfg.Validate(); err != nil {
		return err
	}
	endHour, err := w.endHour()
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	series, err := GenerateSeries(cfg, endHour, w.rnd)
	if err != nil {
		return fmt.Errorf("failed to generate power series: %w", err)
	}
	w.renderer.SetData(series.TimeLabels, series.Production, series.Consumption)
	if err = w.renderer.Redraw(); err != nil {
		w.rollbackChart()
		return fmt.Errorf("failed to redraw power chart: %w", err)
	}
	if w.doc.Has(ControlTimeRange) {
		if err = w.doc.SetText(SlotTimeValue, strconv.Itoa(cfg.TimeRange)); err != nil {
			return err
		}
	}
	stats := ComputeStats(series)
	if err = w.writeStats(stats); err != nil {
		return err
	}
	w.series, w.stats = series, stats

	metrics.PowerTotals.WithLabelValues("production").Set(stats.TotalProduction)
	metrics.PowerTotals.WithLabelValues("consumption").Set(stats.TotalConsumption)
	metrics.PowerSelfUsedRatio.Set(stats.SelfUsedRatio)
	w.logger.Debug("power chart recomputed", slog.Int("time_range", cfg.TimeRange),
		slog.Int("end_hour", endHour), slog.Float64("total_production", stats.TotalProduction),
		slog.Float64("total_consumption", stats.TotalConsumption))
	return nil
}

// rollbackChart puts the current series back into the renderers after a failed redraw, so no
// renderer keeps showing the rejected data.
func (w *Widget) rollbackChart() {
	w.renderer.SetData(w.series.TimeLabels, w.series.Production, w.series.Consumption)
	if err := w.renderer.Redraw(); err != nil {
		w.logger.Warn("failed to restore power chart", logger.Err(err))
	}
}

// readConfig reads the parameters from the controls. Absent controls keep the default.
func (w *Widget) readConfig() (Config, error) {
	var timeRange vartype.VarInt
	var maxProduction, maxConsumption vartype.VarFloat64

	if value, ok, err := w.controlValue(ControlTimeRange); err != nil {
		return Config{}, err
	} else if ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse %s control: %w", ControlTimeRange, err)
		}
		timeRange.Set(parsed)
	}
	for _, control := range []struct {
		id  string
		val *vartype.VarFloat64
	}{
		{ControlMaxProduction, &maxProduction},
		{ControlMaxConsumption, &maxConsumption},
	} {
		value, ok, err := w.controlValue(control.id)
		if err != nil {
			return Config{}, err
		}
		if !ok {
			continue
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse %s control: %w", control.id, err)
		}
		control.val.Set(parsed)
	}

	return Config{
		TimeRange:      timeRange.Or(w.defaults.TimeRange),
		MaxProduction:  maxProduction.Or(w.defaults.MaxProduction),
		MaxConsumption: maxConsumption.Or(w.defaults.MaxConsumption),
	}, nil
}

// endHour returns the last hour of the window: the current hour for today, an empty or a
// future selection, 23 for past days.
func (w *Widget) endHour() (int, error) {
	now := w.clock.Now()
	value, ok, err := w.controlValue(ControlDate)
	if err != nil {
		return 0, err
	}
	if !ok || value == "" {
		return now.Hour(), nil
	}
	selected, err := time.ParseInLocation(DateFormat, value, now.Location())
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s control: %w", ControlDate, err)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if selected.Before(today) {
		return lastHour, nil
	}
	return now.Hour(), nil
}

func (w *Widget) controlValue(id string) (string, bool, error) {
	if !w.doc.Has(id) {
		return "", false, nil
	}
	elem, err := w.doc.Element(id)
	if err != nil {
		return "", false, err
	}
	return elem.Value(), true, nil
}

func (w *Widget) writeStats(stats Stats) error {
	fields := []struct {
		slot string
		text string
	}{
		{SlotTotalProduction, fmt.Sprintf("%.2fMWh", stats.TotalProduction)},
		{SlotSelfUsedRatio, fmt.Sprintf("%.1f%%", stats.SelfUsedRatio)},
		{SlotGridFeed, fmt.Sprintf("%.1fMWh", stats.GridFeedIn)},
	}
	for _, field := range fields {
		if err := w.doc.SetText(field.slot, field.text); err != nil {
			return err
		}
	}
	return nil
}

func (w *Widget) restore(values map[string]string) {
	for id, value := range values {
		if err := w.doc.SetValue(id, value); err != nil {
			w.logger.Warn("failed to restore control value", logger.Err(err), slog.String("control", id))
		}
	}
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}

// Slots returns the ids of the display slots the widget writes to.
func Slots() []string {
	return []string{SlotTimeValue, SlotTotalProduction, SlotSelfUsedRatio, SlotGridFeed}
}
