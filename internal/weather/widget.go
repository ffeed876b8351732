// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/wneessen/powerboard/internal/dom"
	"github.com/wneessen/powerboard/internal/logger"
	"github.com/wneessen/powerboard/internal/metrics"
	"github.com/wneessen/powerboard/internal/schedule"
)

// Display slots and controls of the weather card.
const (
	SlotLocation       = "location"
	SlotCurrentTemp    = "current-temp"
	SlotCondition      = "weather-condition"
	SlotTempRange      = "temp-range"
	SlotIcon           = "weather-icon"
	SlotSunrise        = "sunrise"
	SlotSunset         = "sunset"
	SlotUpdateTime     = "update-time"
	ControlRefresh     = "refresh"
	slotForecastDay    = "day"
	slotForecastCond   = "condition"
	slotForecastTemp   = "temp"
	transformRotated   = "rotate(360deg)"
	transformReset     = "rotate(0deg)"
	refreshTransition  = "transform 0.5s ease"
	timestampJobName   = "weather_timestamp_job"
	refreshJobName     = "weather_refresh_job"
	animationJobName   = "weather_refresh_animation_job"
	maxFakeMinutesAgo  = 10
	triggerTimer       = "timer"
	triggerManual      = "manual"
	statusSuccess      = "success"
	statusFailed       = "failed"
	defaultTempMin     = 35
	defaultTempMax     = 45
	defaultTimestamp   = time.Minute
	defaultRefresh     = time.Minute * 5
	defaultAnimation   = time.Millisecond * 500
	forecastSlotFormat = "%s%d"
)

// Rand is the random source the widget draws temperatures and timestamp labels from.
type Rand interface {
	IntN(n int) int
}

// Options tune the refresh behaviour. Zero values fall back to the defaults.
type Options struct {
	TempMin           int
	TempMax           int
	TimestampInterval time.Duration
	RefreshInterval   time.Duration
	AnimationInterval time.Duration
}

// Widget owns the weather record and keeps the card slots of a document up to date.
type Widget struct {
	doc    *dom.Document
	ticker schedule.Ticker
	logger *logger.Logger
	opts   Options

	mu        sync.Mutex
	record    Record
	rnd       Rand
	regs      []*schedule.Registration
	animation *schedule.Registration
}

// Slots returns the ids of all display slots the widget writes to.
func Slots() []string {
	slots := []string{SlotLocation, SlotCurrentTemp, SlotCondition, SlotTempRange, SlotIcon, SlotSunrise,
		SlotSunset, SlotUpdateTime}
	for i := 1; i <= ForecastDays; i++ {
		slots = append(slots, forecastSlot(slotForecastDay, i), forecastSlot(slotForecastCond, i),
			forecastSlot(slotForecastTemp, i))
	}
	return slots
}

func NewWidget(record Record, doc *dom.Document, ticker schedule.Ticker, rnd Rand, log *logger.Logger,
	opts Options,
) (*Widget, error) {
	if doc == nil || ticker == nil || rnd == nil || log == nil {
		return nil, errors.New("document, ticker, random source and logger are required")
	}
	if opts.TempMin == 0 && opts.TempMax == 0 {
		opts.TempMin, opts.TempMax = defaultTempMin, defaultTempMax
	}
	if opts.TempMin >= opts.TempMax {
		return nil, fmt.Errorf("invalid temperature range: %d to %d", opts.TempMin, opts.TempMax)
	}
	if opts.TimestampInterval <= 0 {
		opts.TimestampInterval = defaultTimestamp
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = defaultRefresh
	}
	if opts.AnimationInterval <= 0 {
		opts.AnimationInterval = defaultAnimation
	}

	return &Widget{
		doc:    doc,
		ticker: ticker,
		logger: log,
		opts:   opts,
		record: record,
		rnd:    rnd,
	}, nil
}

// Record returns a copy of the current record.
func (w *Widget) Record() Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	record := w.record
	record.Forecast = append([]ForecastDay(nil), w.record.Forecast...)
	return record
}

// Start renders the card and registers the timestamp and refresh timers. Errors during the
// initial render point at a wiring defect and are returned.
func (w *Widget) Start(ctx context.Context) error {
	if err := w.Render(ctx); err != nil {
		return fmt.Errorf("failed to render weather card: %w", err)
	}
	if err := w.UpdateTimestamp(ctx); err != nil {
		return fmt.Errorf("failed to update weather timestamp: %w", err)
	}

	timestamp, err := w.ticker.Every(ctx, timestampJobName, w.opts.TimestampInterval, w.timestampTick)
	if err != nil {
		return err
	}
	w.track(timestamp)
	refresh, err := w.ticker.Every(ctx, refreshJobName, w.opts.RefreshInterval, w.RefreshCycle)
	if err != nil {
		return errors.Join(err, w.Stop())
	}
	w.track(refresh)
	return nil
}

// Stop cancels every timer the widget registered.
func (w *Widget) Stop() error {
	w.mu.Lock()
	regs := w.regs
	if w.animation != nil {
		regs = append(regs, w.animation)
	}
	w.regs, w.animation = nil, nil
	w.mu.Unlock()

	var errs []error
	for _, reg := range regs {
		if err := w.ticker.Cancel(reg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Render writes the record to the card slots. The forecast weekdays and dates are recomputed
// from the current day, conditions and temperatures come from the stored forecast.
func (w *Widget) Render(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.renderLocked()
}

// UpdateTimestamp writes the decorative "Updated N minutes ago" label.
func (w *Widget) UpdateTimestamp(context.Context) error {
	w.mu.Lock()
	minutes := w.rnd.IntN(maxFakeMinutesAgo) + 1
	w.mu.Unlock()

	return w.doc.SetText(SlotUpdateTime, fmt.Sprintf("Updated %d minutes ago", minutes))
}

// RefreshCycle draws a new current temperature and re-renders the card. Failures are logged
// and leave the previous display in place.
func (w *Widget) RefreshCycle(ctx context.Context) {
	w.refreshCycle(ctx, triggerTimer)
}

// HandleRefresh runs a refresh cycle immediately and plays the rotation animation on the
// refresh control. The revert outlives ctx, so a request scoped context may end right after
// the call. A missing refresh control is returned as error.
func (w *Widget) HandleRefresh(ctx context.Context) error {
	control, err := w.doc.Element(ControlRefresh)
	if err != nil {
		return fmt.Errorf("failed to look up refresh control: %w", err)
	}
	control.SetStyle("transform", transformRotated)
	control.SetStyle("transition", refreshTransition)

	revert, err := w.ticker.After(context.WithoutCancel(ctx), animationJobName, w.opts.AnimationInterval,
		func(context.Context) {
			control.SetStyle("transform", transformReset)
		})
	if err != nil {
		return err
	}
	if err = w.replaceAnimation(revert); err != nil {
		w.logger.Warn("failed to cancel previous refresh animation", logger.Err(err))
	}

	w.refreshCycle(ctx, triggerManual)
	return nil
}

// replaceAnimation keeps reg as the only animation revert the widget holds and cancels the
// previous one.
func (w *Widget) replaceAnimation(reg *schedule.Registration) error {
	w.mu.Lock()
	previous := w.animation
	w.animation = reg
	w.mu.Unlock()
	if previous == nil {
		return nil
	}
	return w.ticker.Cancel(previous)
}

func (w *Widget) refreshCycle(ctx context.Context, trigger string) {
	if err := w.refresh(ctx); err != nil {
		metrics.WeatherRefreshes.WithLabelValues(trigger, statusFailed).Inc()
		w.logger.Error("failed to refresh weather data", logger.Err(err), slog.String("trigger", trigger))
		return
	}
	metrics.WeatherRefreshes.WithLabelValues(trigger, statusSuccess).Inc()
}

func (w *Widget) refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	w.record.CurrentTemp = w.opts.TempMin + w.rnd.IntN(w.opts.TempMax-w.opts.TempMin)
	temp, location := w.record.CurrentTemp, w.record.Location
	err := w.renderLocked()
	w.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to render weather card: %w", err)
	}
	metrics.WeatherTemperature.Set(float64(temp))

	if err = w.UpdateTimestamp(ctx); err != nil {
		return fmt.Errorf("failed to update weather timestamp: %w", err)
	}
	w.logger.Debug("weather data updated", slog.String("location", location),
		slog.Int("temperature", temp))
	return nil
}

func (w *Widget) renderLocked() error {
	rec := w.record
	fields := []struct {
		slot string
		text string
	}{
		{SlotLocation, rec.Location},
		{SlotCurrentTemp, strconv.Itoa(rec.CurrentTemp)},
		{SlotCondition, rec.WeatherCondition},
		{SlotTempRange, rec.TempRange},
		{SlotIcon, IconFor(rec.WeatherCondition)},
		{SlotSunrise, rec.Sunrise},
		{SlotSunset, rec.Sunset},
	}
	for _, field := range fields {
		if err := w.doc.SetText(field.slot, field.text); err != nil {
			return err
		}
	}

	forecast := ComputeForecastDates(w.ticker.Clock().Now(), ForecastDays, rec.Forecast)
	for i, day := range forecast {
		num := i + 1
		if err := w.doc.SetText(forecastSlot(slotForecastDay, num), day.Day+" "+day.Date); err != nil {
			return err
		}
		if err := w.doc.SetText(forecastSlot(slotForecastCond, num), day.Condition); err != nil {
			return err
		}
		if err := w.doc.SetText(forecastSlot(slotForecastTemp, num), day.Temp); err != nil {
			return err
		}
	}
	return nil
}

func (w *Widget) timestampTick(ctx context.Context) {
	if err := w.UpdateTimestamp(ctx); err != nil {
		w.logger.Error("failed to update weather timestamp", logger.Err(err))
	}
}

func (w *Widget) track(reg *schedule.Registration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.regs = append(w.regs, reg)
}

func forecastSlot(prefix string, num int) string {
	return fmt.Sprintf(forecastSlotFormat, prefix, num)
}
