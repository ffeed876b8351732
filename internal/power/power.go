// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package power synthesizes hourly solar production and consumption series and derives the
// summary statistics shown next to the chart.
package power

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultTimeRange      = 24
	DefaultMaxProduction  = 1.8
	DefaultMaxConsumption = 0.8

	hoursPerDay       = 24
	productionStart   = 6
	productionEnd     = 18
	productionPeak    = 12
	productionSpread  = 6
	consumptionStart  = 7
	consumptionEnd    = 22
	consumptionPeriod = 15
	baseLoadShare     = 0.2
	dayLoadShare      = 0.6
	noiseAmplitude    = 0.1
	minConsumption    = 0.1
)

var (
	// ErrInvalidTimeRange is returned for time ranges outside 1..24 hours.
	ErrInvalidTimeRange = errors.New("time range must be between 1 and 24 hours")

	// ErrInvalidMaximum is returned for negative or non-finite production/consumption maxima.
	ErrInvalidMaximum = errors.New("maximum must be a finite, non-negative number")

	// ErrInvalidHour is returned when the window end is not an hour of the day.
	ErrInvalidHour = errors.New("hour must be between 0 and 23")
)

// Rand is the random source the noise term is drawn from.
type Rand interface {
	Float64() float64
}

// Config holds the chart parameters.
type Config struct {
	TimeRange      int     `json:"timeRange"`
	MaxProduction  float64 `json:"maxProduction"`
	MaxConsumption float64 `json:"maxConsumption"`
}

// Series holds one value per hour slot. All three slices always have the same length.
type Series struct {
	TimeLabels  []string  `json:"timeLabels"`
	Production  []float64 `json:"productionData"`
	Consumption []float64 `json:"consumptionData"`
}

// Stats are derived from a Series and never stored on their own.
type Stats struct {
	TotalProduction  float64 `json:"totalProduction"`
	TotalConsumption float64 `json:"totalConsumption"`
	SelfUsedRatio    float64 `json:"selfUsedRatio"`
	GridFeedIn       float64 `json:"gridFeedIn"`
}

// Overview is the data summary shown on request.
type Overview struct {
	PeakProduction   float64
	PeakConsumption  float64
	TotalProduction  float64
	TotalConsumption float64
}

// DefaultConfig returns the parameters the chart starts with and resets to.
func DefaultConfig() Config {
	return Config{
		TimeRange:      DefaultTimeRange,
		MaxProduction:  DefaultMaxProduction,
		MaxConsumption: DefaultMaxConsumption,
	}
}

// Validate checks the parameters for values the generator cannot work with.
func (c Config) Validate() error {
	if c.TimeRange < 1 || c.TimeRange > hoursPerDay {
		return fmt.Errorf("%w: %d", ErrInvalidTimeRange, c.TimeRange)
	}
	if !validMaximum(c.MaxProduction) {
		return fmt.Errorf("max production %w: %v", ErrInvalidMaximum, c.MaxProduction)
	}
	if !validMaximum(c.MaxConsumption) {
		return fmt.Errorf("max consumption %w: %v", ErrInvalidMaximum, c.MaxConsumption)
	}
	return nil
}

// GenerateSeries builds the series for the cfg.TimeRange hours ending at endHour, wrapping
// around midnight.
func GenerateSeries(cfg Config, endHour int, rnd Rand) (Series, error) {
	if err := cfg.Validate(); err != nil {
		return Series{}, err
	}
	if endHour < 0 || endHour >= hoursPerDay {
		return Series{}, fmt.Errorf("%w: %d", ErrInvalidHour, endHour)
	}
	if rnd == nil {
		return Series{}, errors.New("random source is required")
	}

	series := Series{
		TimeLabels:  make([]string, 0, cfg.TimeRange),
		Production:  make([]float64, 0, cfg.TimeRange),
		Consumption: make([]float64, 0, cfg.TimeRange),
	}
	startHour := ((endHour-cfg.TimeRange+1)%hoursPerDay + hoursPerDay) % hoursPerDay
	for i := 0; i < cfg.TimeRange; i++ {
		hour := (startHour + i) % hoursPerDay
		series.TimeLabels = append(series.TimeLabels, fmt.Sprintf("%02d:00", hour))
		series.Production = append(series.Production, production(hour, cfg.MaxProduction, rnd))
		series.Consumption = append(series.Consumption, consumption(hour, cfg.MaxConsumption, rnd))
	}
	return series, nil
}

// ComputeStats sums up the series. The ratio is 0 when nothing was consumed.
func ComputeStats(series Series) Stats {
	stats := Stats{
		TotalProduction:  round(sum(series.Production), 2),
		TotalConsumption: round(sum(series.Consumption), 2),
	}
	if stats.TotalConsumption > 0 {
		covered := math.Min(stats.TotalProduction, stats.TotalConsumption)
		stats.SelfUsedRatio = round(covered/stats.TotalConsumption*100, 1)
	}
	stats.GridFeedIn = round(math.Max(0, stats.TotalProduction-stats.TotalConsumption), 1)
	return stats
}

// Summarize returns peaks and totals of the series. Peaks of an empty series are 0.
func Summarize(series Series) Overview {
	return Overview{
		PeakProduction:   peak(series.Production),
		PeakConsumption:  peak(series.Consumption),
		TotalProduction:  sum(series.Production),
		TotalConsumption: sum(series.Consumption),
	}
}

// Len returns the number of hour slots.
func (s Series) Len() int {
	return len(s.TimeLabels)
}

func production(hour int, maxProduction float64, rnd Rand) float64 {
	if hour < productionStart || hour > productionEnd {
		return 0
	}
	angle := float64(hour-productionPeak) / productionSpread
	value := maxProduction*math.Exp(-2*angle*angle) + noise(rnd)
	return math.Max(0, value)
}

func consumption(hour int, maxConsumption float64, rnd Rand) float64 {
	value := maxConsumption * baseLoadShare
	if hour >= consumptionStart && hour <= consumptionEnd {
		value += maxConsumption * dayLoadShare * (1 + math.Sin(float64(hour-consumptionStart)*math.Pi/consumptionPeriod))
	}
	value += noise(rnd)
	return math.Max(minConsumption, value)
}

// noise is uniform in [-0.05, 0.05).
func noise(rnd Rand) float64 {
	return (rnd.Float64() - 0.5) * noiseAmplitude
}

func validMaximum(val float64) bool {
	return val >= 0 && !math.IsInf(val, 0) && !math.IsNaN(val)
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func peak(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	highest := values[0]
	for _, v := range values[1:] {
		highest = math.Max(highest, v)
	}
	return highest
}

func round(val float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(val*scale) / scale
}
