// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"strings"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// ForecastDays is the number of forecast entries shown on the card.
const ForecastDays = 3

// Record holds the current conditions and the short forecast shown on the weather card.
type Record struct {
	Location         string        `json:"location"`
	CurrentTemp      int           `json:"currentTemp"`
	WeatherCondition string        `json:"weatherCondition"`
	TempRange        string        `json:"tempRange"`
	Sunrise          string        `json:"sunrise"`
	Sunset           string        `json:"sunset"`
	Forecast         []ForecastDay `json:"forecast"`
}

// ForecastDay is a single day of the forecast.
type ForecastDay struct {
	Day       string `json:"day,omitempty"`
	Date      string `json:"date,omitempty"`
	Condition string `json:"condition"`
	Temp      string `json:"temp"`
}

// conditionIcons maps lower-case condition names to their card glyph
var conditionIcons = map[string]string{
	"sunny":         "☀️",
	"cloudy":        "☁️",
	"rainy":         "🌧️",
	"snowy":         "❄️",
	"partly cloudy": "⛅",
	"thunderstorm":  "⛈️",
}

// DefaultIcon is returned for conditions outside the known vocabulary.
var DefaultIcon = conditionIcons["sunny"]

// DefaultRecord returns the record the card starts with.
func DefaultRecord() Record {
	return Record{
		Location:         "West",
		CurrentTemp:      40,
		WeatherCondition: "Sunny",
		TempRange:        "46/30°C",
		Sunrise:          "05:23",
		Sunset:           "19:19",
		Forecast: []ForecastDay{
			{Day: "Thursday", Date: "06/12", Condition: "Sunny", Temp: "47/38°C"},
			{Day: "Friday", Date: "06/13", Condition: "Sunny", Temp: "48/38°C"},
			{Day: "Saturday", Date: "06/14", Condition: "Cloudy", Temp: "47/37°C"},
		},
	}
}

// IconFor returns the glyph for the given condition. Matching is case-insensitive; unknown
// conditions get DefaultIcon.
func IconFor(condition string) string {
	if icon, ok := conditionIcons[strings.ToLower(condition)]; ok {
		return icon
	}
	return DefaultIcon
}

// ComputeForecastDates returns days entries starting the day after base. Weekday and date
// are recomputed from base, condition and temperature are taken positionally from stored.
func ComputeForecastDates(base time.Time, days int, stored []ForecastDay) []ForecastDay {
	if days <= 0 {
		return []ForecastDay{}
	}
	forecast := make([]ForecastDay, 0, days)
	for i := 1; i <= days; i++ {
		date := base.AddDate(0, 0, i)
		day := ForecastDay{
			Day:  date.Weekday().String(),
			Date: date.Format("01/02"),
		}
		if i-1 < len(stored) {
			day.Condition = stored[i-1].Condition
			day.Temp = stored[i-1].Temp
		}
		forecast = append(forecast, day)
	}
	return forecast
}

// SunTimes returns sunrise and sunset as "HH:MM" in the location of day. During polar day
// or night both are "--:--".
func SunTimes(latitude, longitude float64, day time.Time) (string, string) {
	rise, set := sunrise.SunriseSunset(latitude, longitude, day.Year(), day.Month(), day.Day())
	if rise.IsZero() || set.IsZero() {
		return "--:--", "--:--"
	}
	return rise.In(day.Location()).Format("15:04"), set.In(day.Location()).Format("15:04")
}
