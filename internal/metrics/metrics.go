// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WeatherRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "powerboard_weather_refreshes_total",
			Help: "Total weather card refresh cycles by outcome",
		},
		[]string{"trigger", "status"},
	)

	WeatherTemperature = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "powerboard_weather_current_temperature_celsius",
			Help: "Temperature currently shown on the weather card",
		},
	)

	PowerRecomputes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "powerboard_power_recomputes_total",
			Help: "Total power chart recomputes by outcome",
		},
		[]string{"status"},
	)

	PowerTotals = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "powerboard_power_total_mwh",
			Help: "Totals of the currently displayed power series",
		},
		[]string{"series"},
	)

	PowerSelfUsedRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "powerboard_power_self_used_ratio_percent",
			Help: "Share of consumption covered by production in the displayed window",
		},
	)

	RefreshRequestsLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "powerboard_refresh_requests_limited_total",
			Help: "Manual refresh requests rejected by the rate limiter",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "powerboard_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "code"},
	)
)
