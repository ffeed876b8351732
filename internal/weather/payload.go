// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/tidwall/gjson"
)

const (
	unknownValue   = "Unknown"
	defaultSunrise = "06:00"
	defaultSunset  = "18:00"
	missingTemp    = "--"
)

// ErrInvalidPayload is returned when the payload is not a JSON document.
var ErrInvalidPayload = errors.New("payload is not valid JSON")

// AdaptExternalPayload maps a WeatherAPI.com style forecast response into a Record. Every
// field is optional; missing values fall back to defaults instead of failing.
func AdaptExternalPayload(raw []byte) (Record, error) {
	if !gjson.ValidBytes(raw) {
		return Record{}, ErrInvalidPayload
	}
	doc := gjson.ParseBytes(raw)

	record := Record{
		Location:         stringOr(doc.Get("location.name"), unknownValue),
		WeatherCondition: stringOr(doc.Get("current.condition.text"), unknownValue),
		Sunrise:          stringOr(doc.Get("forecast.forecastday.0.astro.sunrise"), defaultSunrise),
		Sunset:           stringOr(doc.Get("forecast.forecastday.0.astro.sunset"), defaultSunset),
		Forecast:         []ForecastDay{},
	}
	if temp := doc.Get("current.temp_c"); temp.Type == gjson.Number {
		record.CurrentTemp = roundHalfUp(temp.Float())
	}
	record.TempRange = formatTempRange(doc.Get("forecast.forecastday.0.day"))

	days := doc.Get("forecast.forecastday").Array()
	for i := 1; i < len(days) && i <= ForecastDays; i++ {
		record.Forecast = append(record.Forecast, ForecastDay{
			Condition: days[i].Get("day.condition.text").String(),
			Temp:      formatTempRange(days[i].Get("day")),
		})
	}

	return record, nil
}

func formatTempRange(day gjson.Result) string {
	return fmt.Sprintf("%s/%s°C", tempOr(day.Get("maxtemp_c")), tempOr(day.Get("mintemp_c")))
}

func tempOr(val gjson.Result) string {
	if val.Type != gjson.Number {
		return missingTemp
	}
	return strconv.Itoa(roundHalfUp(val.Float()))
}

func stringOr(val gjson.Result, fallback string) string {
	if s := val.String(); s != "" {
		return s
	}
	return fallback
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(val float64) int {
	return int(math.Floor(val + 0.5))
}
