// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package server exposes the dashboard, its controls and a JSON API over HTTP.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/wneessen/powerboard/internal/dom"
	"github.com/wneessen/powerboard/internal/logger"
	"github.com/wneessen/powerboard/internal/metrics"
	"github.com/wneessen/powerboard/internal/power"
	"github.com/wneessen/powerboard/internal/weather"
)

const (
	readHeaderTimeout = time.Second * 5
	maxBodySize       = 1 << 16
)

//go:embed templates/*
var templateFS embed.FS

// WeatherWidget is the part of the weather widget the server drives.
type WeatherWidget interface {
	Record() weather.Record
	HandleRefresh(ctx context.Context) error
}

// PowerWidget is the part of the power chart widget the server drives.
type PowerWidget interface {
	Series() power.Series
	Stats() power.Stats
	Apply(ctx context.Context, values map[string]string) error
	Reset(ctx context.Context) error
	ShowOverview() (string, error)
}

// Sidebar is the responsive navigation panel.
type Sidebar interface {
	Toggle() bool
	Resize(width int)
	Click(target *dom.Element)
	IsOpen() bool
}

// Components are the parts of the dashboard the server serves.
type Components struct {
	Document *dom.Document
	Weather  WeatherWidget
	Power    PowerWidget
	Sidebar  Sidebar
	Chart    interface{ HTML() []byte }
	Image    interface{ Image() []byte }
}

// Options configure the listener and the manual refresh limiter.
type Options struct {
	Address      string
	RefreshRate  float64
	RefreshBurst int
}

type Server struct {
	components Components
	logger     *logger.Logger
	limiter    *rate.Limiter
	tmpl       *template.Template
	httpServer *http.Server
}

func New(opts Options, components Components, log *logger.Logger) (*Server, error) {
	if components.Document == nil || components.Weather == nil || components.Power == nil ||
		components.Sidebar == nil || components.Chart == nil || components.Image == nil {
		return nil, errors.New("all dashboard components are required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	s := &Server{
		components: components,
		logger:     log,
		limiter:    rate.NewLimiter(rate.Limit(opts.RefreshRate), opts.RefreshBurst),
		tmpl:       tmpl,
	}
	s.httpServer = &http.Server{
		Addr:              opts.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"GET /{$}", s.handleIndex},
		{"GET /chart", s.handleChart},
		{"GET /chart.png", s.handleChartImage},
		{"GET /api/weather", s.handleAPIWeather},
		{"POST /weather/refresh", s.handleWeatherRefresh},
		{"GET /api/power", s.handleAPIPower},
		{"POST /power", s.handlePowerUpdate},
		{"POST /power/reset", s.handlePowerReset},
		{"GET /power/overview", s.handlePowerOverview},
		{"POST /sidebar/toggle", s.handleSidebarToggle},
		{"POST /sidebar/event", s.handleSidebarEvent},
		{"GET /health", s.handleHealth},
	}
	for _, route := range routes {
		mux.Handle(route.pattern, s.instrument(route.pattern, route.handler))
	}
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// ListenAndServe blocks until the server is shut down. A regular shutdown is not an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting HTTP server", slog.String("address", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// statusRecorder captures the status code for the latency histogram.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		metrics.HTTPRequestDuration.WithLabelValues(route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
