// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package power

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/wneessen/powerboard/internal/chart"
	"github.com/wneessen/powerboard/internal/dom"
	"github.com/wneessen/powerboard/internal/logger"
	"github.com/wneessen/powerboard/internal/metrics"
)

var testNow = time.Date(2025, 6, 11, 14, 30, 0, 0, time.UTC)

// recordingRenderer keeps the last data set and counts redraws.
type recordingRenderer struct {
	labels      []string
	production  []float64
	consumption []float64
	redraws     int
	err         error
}

func (r *recordingRenderer) SetData(labels []string, production, consumption []float64) {
	r.labels, r.production, r.consumption = labels, production, consumption
}

func (r *recordingRenderer) Redraw() error {
	r.redraws++
	return r.err
}

type textFormatter struct{}

func (textFormatter) Overview(o Overview) (string, error) {
	return fmt.Sprintf("%.2f/%.2f", o.PeakProduction, o.PeakConsumption), nil
}

func TestWidget_Recompute(t *testing.T) {
	t.Run("defaults without controls", func(t *testing.T) {
		doc := testDocument(t, false)
		renderer := &recordingRenderer{}
		w := testWidget(t, doc, renderer)
		if err := w.Recompute(t.Context()); err != nil {
			t.Fatalf("failed to recompute: %s", err)
		}

		series := w.Series()
		if series.Len() != 24 {
			t.Fatalf("expected 24 slots, got %d", series.Len())
		}
		if got := series.TimeLabels[23]; got != "14:00" {
			t.Errorf("expected window to end at the current hour, got %q", got)
		}
		if renderer.redraws != 1 || len(renderer.labels) != 24 {
			t.Errorf("expected one redraw with 24 labels, got %d redraws and %d labels", renderer.redraws,
				len(renderer.labels))
		}
		stats := w.Stats()
		if got, want := elementText(t, doc, SlotTotalProduction), fmt.Sprintf("%.2fMWh",
			stats.TotalProduction); got != want {
			t.Errorf("expected total production %q, got %q", want, got)
		}
		if got, want := elementText(t, doc, SlotSelfUsedRatio), fmt.Sprintf("%.1f%%", stats.SelfUsedRatio); got != want {
			t.Errorf("expected self used ratio %q, got %q", want, got)
		}
		if got, want := elementText(t, doc, SlotGridFeed), fmt.Sprintf("%.1fMWh", stats.GridFeedIn); got != want {
			t.Errorf("expected grid feed %q, got %q", want, got)
		}
	})
	t.Run("controls drive the config", func(t *testing.T) {
		doc := testDocument(t, true)
		setValue(t, doc, ControlTimeRange, "6")
		setValue(t, doc, ControlMaxProduction, "2")
		setValue(t, doc, ControlMaxConsumption, "0")
		w := testWidget(t, doc, &recordingRenderer{})
		if err := w.Recompute(t.Context()); err != nil {
			t.Fatalf("failed to recompute: %s", err)
		}
		series := w.Series()
		want := []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00"}
		if series.Len() != len(want) {
			t.Fatalf("expected %d slots, got %d", len(want), series.Len())
		}
		for i := range want {
			if series.TimeLabels[i] != want[i] {
				t.Errorf("expected label %d to be %q, got %q", i, want[i], series.TimeLabels[i])
			}
		}
		if series.Production[3] != 2 {
			t.Errorf("expected noon production of 2, got %v", series.Production[3])
		}
		if got := elementText(t, doc, SlotTimeValue); got != "6" {
			t.Errorf("expected time value %q, got %q", "6", got)
		}
	})
	t.Run("past date ends the window at 23:00", func(t *testing.T) {
		doc := testDocument(t, true)
		setValue(t, doc, ControlDate, "2025-06-10")
		w := testWidget(t, doc, &recordingRenderer{})
		if err := w.Recompute(t.Context()); err != nil {
			t.Fatalf("failed to recompute: %s", err)
		}
		series := w.Series()
		if series.TimeLabels[0] != "00:00" || series.TimeLabels[23] != "23:00" {
			t.Errorf("expected full past day, got %q to %q", series.TimeLabels[0], series.TimeLabels[23])
		}
	})
	t.Run("today ends the window at the current hour", func(t *testing.T) {
		doc := testDocument(t, true)
		setValue(t, doc, ControlDate, "2025-06-11")
		w := testWidget(t, doc, &recordingRenderer{})
		if err := w.Recompute(t.Context()); err != nil {
			t.Fatalf("failed to recompute: %s", err)
		}
		if got := w.Series().TimeLabels[23]; got != "14:00" {
			t.Errorf("expected window to end at 14:00, got %q", got)
		}
	})
	t.Run("unparsable control fails", func(t *testing.T) {
		doc := testDocument(t, true)
		setValue(t, doc, ControlMaxProduction, "lots")
		w := testWidget(t, doc, &recordingRenderer{})
		failed := metrics.PowerRecomputes.WithLabelValues(statusFailed)
		before := testutil.ToFloat64(failed)
		if err := w.Recompute(t.Context()); err == nil {
			t.Error("expected recompute to fail")
		}
		if after := testutil.ToFloat64(failed); after != before+1 {
			t.Errorf("expected failed recompute counter to increase by 1, got %v -> %v", before, after)
		}
	})
	t.Run("out of range control fails", func(t *testing.T) {
		doc := testDocument(t, true)
		setValue(t, doc, ControlTimeRange, "48")
		w := testWidget(t, doc, &recordingRenderer{})
		if err := w.Recompute(t.Context()); !errors.Is(err, ErrInvalidTimeRange) {
			t.Errorf("expected ErrInvalidTimeRange, got %v", err)
		}
	})
	t.Run("missing stat slot fails", func(t *testing.T) {
		doc := dom.New()
		w := testWidget(t, doc, &recordingRenderer{})
		if err := w.Recompute(t.Context()); !errors.Is(err, dom.ErrNoSuchElement) {
			t.Errorf("expected ErrNoSuchElement, got %v", err)
		}
		if w.Series().Len() != 0 {
			t.Error("expected failed recompute not to replace the series")
		}
	})
	t.Run("renderer failure fails", func(t *testing.T) {
		w := testWidget(t, testDocument(t, false), &recordingRenderer{err: errors.New("broken")})
		if err := w.Recompute(t.Context()); err == nil {
			t.Error("expected recompute to fail")
		}
	})
	t.Run("renderer failure keeps the previous window everywhere", func(t *testing.T) {
		doc := testDocument(t, true)
		renderer := &recordingRenderer{}
		w := testWidget(t, doc, renderer)
		if err := w.Start(t.Context()); err != nil {
			t.Fatalf("failed to start widget: %s", err)
		}

		renderer.err = errors.New("broken")
		if err := w.Apply(t.Context(), map[string]string{ControlTimeRange: "6"}); err == nil {
			t.Fatal("expected apply to fail")
		}
		if got := elementText(t, doc, SlotTimeValue); got != "24" {
			t.Errorf("expected time value to stay %q, got %q", "24", got)
		}
		if w.Series().Len() != 24 {
			t.Errorf("expected series to keep 24 slots, got %d", w.Series().Len())
		}
		if len(renderer.labels) != 24 {
			t.Errorf("expected renderer to get the previous 24 labels back, got %d", len(renderer.labels))
		}
	})
	t.Run("every time range renders with the chart renderers", func(t *testing.T) {
		doc := testDocument(t, true)
		echarts, png := chart.NewECharts("Power"), chart.NewPNG()
		w := testWidget(t, doc, chart.Multi{echarts, png})
		for hours := 1; hours <= 24; hours++ {
			if err := w.Apply(t.Context(), map[string]string{ControlTimeRange: strconv.Itoa(hours)}); err != nil {
				t.Fatalf("failed to recompute %d hour window: %s", hours, err)
			}
			if w.Series().Len() != hours {
				t.Errorf("expected %d slots, got %d", hours, w.Series().Len())
			}
			if got := elementText(t, doc, SlotTimeValue); got != strconv.Itoa(hours) {
				t.Errorf("expected time value %d, got %q", hours, got)
			}
			if len(echarts.HTML()) == 0 || len(png.Image()) == 0 {
				t.Errorf("expected both renderers to produce output for %d hours", hours)
			}
		}
	})
}

func TestWidget_Reset(t *testing.T) {
	doc := testDocument(t, true)
	setValue(t, doc, ControlTimeRange, "3")
	setValue(t, doc, ControlMaxProduction, "9")
	setValue(t, doc, ControlMaxConsumption, "9")
	w := testWidget(t, doc, &recordingRenderer{})
	if err := w.Start(t.Context()); err != nil {
		t.Fatalf("failed to start widget: %s", err)
	}
	if w.Series().Len() != 3 {
		t.Fatalf("expected 3 slots before reset, got %d", w.Series().Len())
	}

	if err := w.Reset(t.Context()); err != nil {
		t.Fatalf("failed to reset: %s", err)
	}
	want := map[string]string{ControlTimeRange: "24", ControlMaxProduction: "1.8", ControlMaxConsumption: "0.8"}
	for id, value := range want {
		elem, err := doc.Element(id)
		if err != nil {
			t.Fatalf("failed to look up %q: %s", id, err)
		}
		if elem.Value() != value {
			t.Errorf("expected control %q to be %q, got %q", id, value, elem.Value())
		}
	}
	if w.Series().Len() != 24 {
		t.Errorf("expected 24 slots after reset, got %d", w.Series().Len())
	}
	if got := elementText(t, doc, SlotTimeValue); got != "24" {
		t.Errorf("expected time value %q, got %q", "24", got)
	}
}

func TestWidget_Apply(t *testing.T) {
	t.Run("valid values are applied", func(t *testing.T) {
		doc := testDocument(t, true)
		w := testWidget(t, doc, &recordingRenderer{})
		if err := w.Apply(t.Context(), map[string]string{ControlTimeRange: "12"}); err != nil {
			t.Fatalf("failed to apply controls: %s", err)
		}
		if w.Series().Len() != 12 {
			t.Errorf("expected 12 slots, got %d", w.Series().Len())
		}
	})
	t.Run("invalid values are rolled back", func(t *testing.T) {
		doc := testDocument(t, true)
		w := testWidget(t, doc, &recordingRenderer{})
		err := w.Apply(t.Context(), map[string]string{ControlTimeRange: "0", ControlMaxProduction: "3"})
		if !errors.Is(err, ErrInvalidTimeRange) {
			t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
		}
		for id, want := range map[string]string{ControlTimeRange: "24", ControlMaxProduction: "1.8"} {
			elem, err := doc.Element(id)
			if err != nil {
				t.Fatalf("failed to look up %q: %s", id, err)
			}
			if elem.Value() != want {
				t.Errorf("expected control %q to be restored to %q, got %q", id, want, elem.Value())
			}
		}
	})
	t.Run("unknown control fails", func(t *testing.T) {
		w := testWidget(t, testDocument(t, true), &recordingRenderer{})
		if err := w.Apply(t.Context(), map[string]string{"bogus": "1"}); !errors.Is(err, dom.ErrNoSuchElement) {
			t.Errorf("expected ErrNoSuchElement, got %v", err)
		}
	})
}

func TestWidget_ShowOverview(t *testing.T) {
	doc := testDocument(t, false)
	w := testWidget(t, doc, &recordingRenderer{})
	if err := w.Recompute(t.Context()); err != nil {
		t.Fatalf("failed to recompute: %s", err)
	}
	before := w.Series()
	text, err := w.ShowOverview()
	if err != nil {
		t.Fatalf("failed to show overview: %s", err)
	}
	overview := Summarize(before)
	if want := fmt.Sprintf("%.2f/%.2f", overview.PeakProduction, overview.PeakConsumption); text != want {
		t.Errorf("expected overview %q, got %q", want, text)
	}
	if after := w.Series(); after.Len() != before.Len() || after.Production[12] != before.Production[12] {
		t.Error("expected overview not to change the series")
	}
}

func testDocument(t *testing.T, withControls bool) *dom.Document {
	t.Helper()
	doc := dom.New()
	ids := Slots()
	if withControls {
		ids = append(ids, ControlTimeRange, ControlMaxProduction, ControlMaxConsumption, ControlDate)
	}
	for _, id := range ids {
		if _, err := doc.Add(id, ""); err != nil {
			t.Fatalf("failed to add element %q: %s", id, err)
		}
	}
	if withControls {
		setValue(t, doc, ControlTimeRange, "24")
		setValue(t, doc, ControlMaxProduction, "1.8")
		setValue(t, doc, ControlMaxConsumption, "0.8")
	}
	return doc
}

func testWidget(t *testing.T, doc *dom.Document, renderer chart.Renderer) *Widget {
	t.Helper()
	w, err := NewWidget(doc, renderer, textFormatter{}, clockwork.NewFakeClockAt(testNow), fixedRand{value: 0.5},
		logger.NewLogger(slog.LevelError, bytes.NewBuffer(nil)), DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create widget: %s", err)
	}
	return w
}

func setValue(t *testing.T, doc *dom.Document, id, value string) {
	t.Helper()
	if err := doc.SetValue(id, value); err != nil {
		t.Fatalf("failed to set %q: %s", id, err)
	}
}

func elementText(t *testing.T, doc *dom.Document, id string) string {
	t.Helper()
	elem, err := doc.Element(id)
	if err != nil {
		t.Fatalf("failed to look up %q: %s", id, err)
	}
	return elem.Text()
}
