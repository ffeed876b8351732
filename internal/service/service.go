// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wneessen/powerboard/internal/chart"
	"github.com/wneessen/powerboard/internal/config"
	"github.com/wneessen/powerboard/internal/dom"
	"github.com/wneessen/powerboard/internal/logger"
	"github.com/wneessen/powerboard/internal/page"
	"github.com/wneessen/powerboard/internal/power"
	"github.com/wneessen/powerboard/internal/presenter"
	"github.com/wneessen/powerboard/internal/schedule"
	"github.com/wneessen/powerboard/internal/server"
	"github.com/wneessen/powerboard/internal/sidebar"
	"github.com/wneessen/powerboard/internal/weather"
)

const (
	ChartTitle      = "Power Production & Consumption"
	shutdownTimeout = time.Second * 5
	weatherStream   = 1
	powerStream     = 2
)

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	clock     clockwork.Clock
	scheduler *schedule.Scheduler
	presenter *presenter.Presenter

	document *dom.Document
	weather  *weather.Widget
	power    *power.Widget
	sidebar  *sidebar.Sidebar
	echarts  *chart.ECharts
	png      *chart.PNG
	server   *server.Server

	SignalSrc signalSource
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the real clock of the scheduler and the widgets.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func New(conf *config.Config, log *logger.Logger, opts ...Option) (*Service, error) {
	if conf == nil || log == nil {
		return nil, errors.New("config and logger are required")
	}
	service := &Service{
		config:    conf,
		logger:    log,
		clock:     clockwork.NewRealClock(),
		echarts:   chart.NewECharts(ChartTitle),
		png:       chart.NewPNG(),
		SignalSrc: stdLibSignalSource{},
	}
	for _, opt := range opts {
		opt(service)
	}

	scheduler, err := schedule.New(log, schedule.WithClock(service.clock))
	if err != nil {
		return nil, err
	}
	service.scheduler = scheduler

	pres, err := presenter.New(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	service.presenter = pres

	defaults := power.Config{
		TimeRange:      conf.Power.TimeRange,
		MaxProduction:  conf.Power.MaxProduction,
		MaxConsumption: conf.Power.MaxConsumption,
	}
	doc, err := page.New(defaults)
	if err != nil {
		return nil, err
	}
	service.document = doc

	seed := conf.Random.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	service.weather, err = weather.NewWidget(service.initialRecord(), doc, scheduler,
		rand.New(rand.NewPCG(seed, weatherStream)), log, weather.Options{
			TempMin:           conf.Weather.TempMin,
			TempMax:           conf.Weather.TempMax,
			TimestampInterval: conf.Intervals.Timestamp,
			RefreshInterval:   conf.Intervals.Refresh,
			AnimationInterval: conf.Intervals.RefreshAnimation,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create weather widget: %w", err)
	}

	service.power, err = power.NewWidget(doc, chart.Multi{service.echarts, service.png}, pres, service.clock,
		rand.New(rand.NewPCG(seed, powerStream)), log, defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to create power chart widget: %w", err)
	}

	service.sidebar, err = sidebar.New(doc, conf.Sidebar.Breakpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create sidebar: %w", err)
	}

	service.server, err = server.New(server.Options{
		Address:      conf.Server.Address,
		RefreshRate:  conf.Server.RefreshRate,
		RefreshBurst: conf.Server.RefreshBurst,
	}, server.Components{
		Document: doc,
		Weather:  service.weather,
		Power:    service.power,
		Sidebar:  service.sidebar,
		Chart:    service.echarts,
		Image:    service.png,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	return service, nil
}

// Run starts the widgets, their timers and the HTTP server and blocks until ctx is cancelled
// or the server fails. All timers are cancelled before Run returns.
func (s *Service) Run(ctx context.Context) error {
	s.scheduler.Start()
	if err := s.weather.Start(ctx); err != nil {
		return errors.Join(err, s.teardown())
	}
	if err := s.power.Start(ctx); err != nil {
		return errors.Join(err, s.teardown())
	}

	sigChan := make(chan os.Signal, 1)
	s.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
	go func() {
		defer s.SignalSrc.Stop(sigChan)
		s.HandleSignals(ctx, sigChan)
	}()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- s.server.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")
	case runErr = <-serverErr:
	}
	return errors.Join(runErr, s.teardown())
}

// Render renders both widgets once without starting any timer and writes the weather card
// and the data overview to w.
func (s *Service) Render(ctx context.Context, w io.Writer) error {
	if err := s.weather.Render(ctx); err != nil {
		return fmt.Errorf("failed to render weather card: %w", err)
	}
	if err := s.power.Recompute(ctx); err != nil {
		return fmt.Errorf("failed to compute power chart: %w", err)
	}

	card, err := s.presenter.Card(s.presenter.BuildCardContext(s.weather.Record(), s.clock.Now()))
	if err != nil {
		return err
	}
	overview, err := s.power.ShowOverview()
	if err != nil {
		return err
	}
	stats := s.power.Stats()
	if _, err = fmt.Fprintf(w, "%s\n%sSelf used: %.1f%%  Grid feed-in: %.1f MWh\n", card, overview,
		stats.SelfUsedRatio, stats.GridFeedIn); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Close releases the scheduler of a service that was only used for Render.
func (s *Service) Close() error {
	return s.scheduler.Shutdown()
}

// Document returns the document the widgets render into.
func (s *Service) Document() *dom.Document {
	return s.document
}

// teardown cancels the widget timers, stops the scheduler and shuts down the HTTP server.
func (s *Service) teardown() error {
	var errs []error
	if err := s.weather.Stop(); err != nil {
		errs = append(errs, err)
	}
	if err := s.scheduler.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// initialRecord returns the default record with the configured location. With coordinates
// configured, sunrise and sunset are computed for today.
func (s *Service) initialRecord() weather.Record {
	record := weather.DefaultRecord()
	record.Location = s.config.Weather.Location
	if s.config.HasCoordinates() {
		record.Sunrise, record.Sunset = weather.SunTimes(s.config.Weather.Latitude, s.config.Weather.Longitude,
			s.clock.Now())
		s.logger.Debug("computed sun times", slog.String("sunrise", record.Sunrise),
			slog.String("sunset", record.Sunset))
	}
	return record
}
