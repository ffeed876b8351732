// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wneessen/powerboard/internal/logger"
)

type signalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

// stdLibSignalSource is the production implementation.
type stdLibSignalSource struct{}

func (stdLibSignalSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (stdLibSignalSource) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// HandleSignals triggers a manual weather refresh on SIGUSR1 and logs the current power
// stats on SIGUSR2.
func (s *Service) HandleSignals(ctx context.Context, sigChan chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGUSR1:
				if err := s.weather.HandleRefresh(ctx); err != nil {
					s.logger.Error("failed to handle weather refresh", logger.Err(err))
				}
			case syscall.SIGUSR2:
				stats := s.power.Stats()
				s.logger.Info("current power stats",
					slog.Float64("total_production", stats.TotalProduction),
					slog.Float64("total_consumption", stats.TotalConsumption),
					slog.Float64("self_used_ratio", stats.SelfUsedRatio),
					slog.Float64("grid_feed_in", stats.GridFeedIn))
			}
		}
	}
}
