// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/wneessen/powerboard/internal/config"
	"github.com/wneessen/powerboard/internal/power"
	"github.com/wneessen/powerboard/internal/weather"
)

var now = time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	t.Run("creating a new presenter succeeds", func(t *testing.T) {
		pres, err := New(testConfig(t))
		if err != nil {
			t.Fatalf("failed to create presenter: %s", err)
		}
		if pres == nil {
			t.Fatal("expected presenter to be non-nil")
		}
	})
	t.Run("creating presenter with invalid templates fails", func(t *testing.T) {
		tests := []struct {
			name       string
			templateFn func(conf *config.Config)
		}{
			{"card", func(conf *config.Config) { conf.Templates.Card = "{{invalid" }},
			{"overview", func(conf *config.Config) { conf.Templates.Overview = "{{invalid" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				conf := testConfig(t)
				tt.templateFn(conf)
				_, err := New(conf)
				if err == nil {
					t.Fatal("expected presenter to fail, but didn't")
				}
				wantErr := "failed to parse"
				if !strings.Contains(err.Error(), wantErr) {
					t.Errorf("expected error to contain %q, got %q", wantErr, err)
				}
			})
		}
	})
	t.Run("creating presenter with template execution errors fails", func(t *testing.T) {
		tests := []struct {
			name       string
			templateFn func(conf *config.Config)
		}{
			{"card", func(conf *config.Config) { conf.Templates.Card = "{{.Data}}" }},
			{"overview", func(conf *config.Config) { conf.Templates.Overview = "{{.Data}}" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				conf := testConfig(t)
				tt.templateFn(conf)
				_, err := New(conf)
				if err == nil {
					t.Fatal("expected presenter to fail, but didn't")
				}
				wantErr := "failed to render"
				if !strings.Contains(err.Error(), wantErr) {
					t.Errorf("expected error to contain %q, got %q", wantErr, err)
				}
			})
		}
	})
}

func TestPresenter_Card(t *testing.T) {
	pres, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("failed to create presenter: %s", err)
	}
	record := weather.DefaultRecord()
	record.WeatherCondition = "Cloudy"
	ctx := pres.BuildCardContext(record, now)
	if ctx.Icon != "☁️" {
		t.Errorf("expected cloudy icon, got %q", ctx.Icon)
	}
	card, err := pres.Card(ctx)
	if err != nil {
		t.Fatalf("failed to render card: %s", err)
	}
	for _, want := range []string{
		"West: 40°C, Cloudy (46/30°C)",
		"Sunrise: 05:23  Sunset: 19:19",
		"Thursday 06/12: Sunny 47/38°C",
		"Saturday 06/14: Cloudy 47/37°C",
	} {
		if !strings.Contains(card, want) {
			t.Errorf("expected card to contain %q, got %q", want, card)
		}
	}
}

func TestPresenter_Overview(t *testing.T) {
	pres, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("failed to create presenter: %s", err)
	}
	text, err := pres.Overview(power.Overview{
		PeakProduction:   1.8234,
		PeakConsumption:  1.116,
		TotalProduction:  12.3456,
		TotalConsumption: 17,
	})
	if err != nil {
		t.Fatalf("failed to render overview: %s", err)
	}
	want := "Production Peak: 1.82 MW\nConsumption Peak: 1.12 MW\nTotal Production: 12.35 MWh\n" +
		"Total Consumption: 17.00 MWh\n"
	if text != want {
		t.Errorf("expected overview %q, got %q", want, text)
	}
}

func TestEmojiWithSpace(t *testing.T) {
	tests := []struct {
		name  string
		emoji string
	}{
		{"sun", "☀️"},
		{"cloud", "⛅"},
		{"thunder", "⛈️"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EmojiWithSpace(tt.emoji)
			want := tt.emoji + strings.Repeat(" ", runewidth.StringWidth(tt.emoji)+1)
			if got != want {
				t.Errorf("expected %q, got %q", want, got)
			}
		})
	}
	t.Run("empty emoji", func(t *testing.T) {
		if got := EmojiWithSpace(""); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

func TestFloatFormat(t *testing.T) {
	if got := floatFormat(1.005001, 2); got != "1.01" {
		t.Errorf("expected %q, got %q", "1.01", got)
	}
	if got := floatFormat(3, 1); got != "3.0" {
		t.Errorf("expected %q, got %q", "3.0", got)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	conf, err := config.New()
	if err != nil {
		t.Fatalf("failed to load config: %s", err)
	}
	return conf
}
