// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv = "POWERBOARD"

	DefaultCardTpl = "{{emoji .Icon}}{{.Record.Location}}: {{.Record.CurrentTemp}}°C, {{.Record.WeatherCondition}} " +
		"({{.Record.TempRange}})\nSunrise: {{.Record.Sunrise}}  Sunset: {{.Record.Sunset}}\n" +
		"{{range .Forecast}}{{.Day}} {{.Date}}: {{.Condition}} {{.Temp}}\n{{end}}"
	DefaultOverviewTpl = "Production Peak: {{floatFormat .PeakProduction 2}} MW\n" +
		"Consumption Peak: {{floatFormat .PeakConsumption 2}} MW\n" +
		"Total Production: {{floatFormat .TotalProduction 2}} MWh\n" +
		"Total Consumption: {{floatFormat .TotalConsumption 2}} MWh\n"
)

// Config represents the application's configuration structure.
type Config struct {
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Weather struct {
		Location  string  `fig:"location" default:"West"`
		Latitude  float64 `fig:"latitude"`
		Longitude float64 `fig:"longitude"`
		// Refreshed temperatures are drawn from [TempMin, TempMax)
		TempMin int `fig:"temp_min"`
		TempMax int `fig:"temp_max"`
	} `fig:"weather"`

	Power struct {
		// Allowed values: 1 to 24
		TimeRange      int     `fig:"time_range"`
		MaxProduction  float64 `fig:"max_production"`
		MaxConsumption float64 `fig:"max_consumption"`
	} `fig:"power"`

	Intervals struct {
		Timestamp        time.Duration `fig:"timestamp"`
		Refresh          time.Duration `fig:"refresh"`
		RefreshAnimation time.Duration `fig:"refresh_animation"`
	} `fig:"intervals"`

	Sidebar struct {
		Breakpoint int `fig:"breakpoint"`
	} `fig:"sidebar"`

	Server struct {
		Address string `fig:"address" default:"127.0.0.1:8080"`
		// Manual refreshes per second and burst size
		RefreshRate  float64 `fig:"refresh_rate"`
		RefreshBurst int     `fig:"refresh_burst"`
	} `fig:"server"`

	Templates struct {
		Card     string `fig:"card"`
		Overview string `fig:"overview"`
	} `fig:"templates"`

	Random struct {
		// A zero seed picks a time based seed
		Seed uint64 `fig:"seed"`
	} `fig:"random"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := newDefault()
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := newDefault()
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load config: %w", err)
	}

	return conf, conf.Validate()
}

// newDefault returns a Config holding the defaults of all fields where zero is a valid or a
// rejected setting. fig fills default tags only into zero fields, so an explicit zero from the
// file or the environment has to override a pre-set value instead.
func newDefault() *Config {
	conf := new(Config)
	conf.Weather.TempMin = 35
	conf.Weather.TempMax = 45
	conf.Power.TimeRange = 24
	conf.Power.MaxProduction = 1.8
	conf.Power.MaxConsumption = 0.8
	conf.Intervals.Timestamp = time.Minute
	conf.Intervals.Refresh = time.Minute * 5
	conf.Intervals.RefreshAnimation = time.Millisecond * 500
	conf.Sidebar.Breakpoint = 768
	conf.Server.RefreshRate = 1
	conf.Server.RefreshBurst = 3
	return conf
}

func (c *Config) Validate() error {
	if c.Power.TimeRange < 1 || c.Power.TimeRange > 24 {
		return fmt.Errorf("invalid time range: %d", c.Power.TimeRange)
	}
	if !validMaximum(c.Power.MaxProduction) {
		return fmt.Errorf("invalid max production: %f", c.Power.MaxProduction)
	}
	if !validMaximum(c.Power.MaxConsumption) {
		return fmt.Errorf("invalid max consumption: %f", c.Power.MaxConsumption)
	}
	if c.Weather.TempMin >= c.Weather.TempMax {
		return fmt.Errorf("invalid temperature range: %d to %d", c.Weather.TempMin, c.Weather.TempMax)
	}
	if c.Weather.Latitude < -90 || c.Weather.Latitude > 90 {
		return fmt.Errorf("invalid latitude: %f", c.Weather.Latitude)
	}
	if c.Weather.Longitude < -180 || c.Weather.Longitude > 180 {
		return fmt.Errorf("invalid longitude: %f", c.Weather.Longitude)
	}
	if c.Intervals.Timestamp <= 0 || c.Intervals.Refresh <= 0 || c.Intervals.RefreshAnimation <= 0 {
		return fmt.Errorf("intervals must be positive")
	}
	if c.Sidebar.Breakpoint <= 0 {
		return fmt.Errorf("invalid sidebar breakpoint: %d", c.Sidebar.Breakpoint)
	}
	if c.Server.RefreshRate <= 0 || c.Server.RefreshBurst < 1 {
		return fmt.Errorf("invalid refresh rate limit: %f/%d", c.Server.RefreshRate, c.Server.RefreshBurst)
	}
	if c.Templates.Card == "" {
		c.Templates.Card = DefaultCardTpl
	}
	if c.Templates.Overview == "" {
		c.Templates.Overview = DefaultOverviewTpl
	}

	return nil
}

// HasCoordinates reports whether a location was configured for sunrise and sunset computation.
func (c *Config) HasCoordinates() bool {
	return c.Weather.Latitude != 0 || c.Weather.Longitude != 0
}

func validMaximum(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0) && val >= 0
}
