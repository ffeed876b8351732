// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package schedule provides the ticking abstraction the widgets register their timers with.
// It is backed by gocron and takes a clockwork clock, so tests can advance virtual time.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"github.com/wneessen/powerboard/internal/logger"
)

var (
	// ErrInvalidInterval is returned for non-positive intervals and delays.
	ErrInvalidInterval = errors.New("interval must be positive")

	// ErrNilTask is returned when a nil task is registered.
	ErrNilTask = errors.New("task must not be nil")
)

// Ticker is the register/cancel interface handed to the widgets.
type Ticker interface {
	Every(ctx context.Context, name string, interval time.Duration, task func(context.Context)) (*Registration, error)
	After(ctx context.Context, name string, delay time.Duration, task func(context.Context)) (*Registration, error)
	Cancel(reg *Registration) error
	Clock() clockwork.Clock
}

// Registration identifies a registered task.
type Registration struct {
	name string
	job  gocron.Job
}

// Name returns the name the task was registered with.
func (r *Registration) Name() string {
	return r.name
}

// Scheduler implements Ticker on top of a gocron scheduler.
type Scheduler struct {
	clock     clockwork.Clock
	logger    *logger.Logger
	scheduler gocron.Scheduler

	mu      sync.Mutex
	started bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the real clock, typically with clockwork.NewFakeClock in tests.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

func New(log *logger.Logger, opts ...Option) (*Scheduler, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}
	s := &Scheduler{
		clock:  clockwork.NewRealClock(),
		logger: log,
	}
	for _, opt := range opts {
		opt(s)
	}

	scheduler, err := gocron.NewScheduler(gocron.WithClock(s.clock), gocron.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	s.scheduler = scheduler
	return s, nil
}

// Clock returns the clock the scheduler runs on.
func (s *Scheduler) Clock() clockwork.Clock {
	return s.clock
}

// Start starts executing registered tasks. Calling Start more than once is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.scheduler.Start()
	s.started = true
}

// Every registers a repeating task. The first run happens one interval after registration.
// A tick that fires while the previous run is still executing is rescheduled.
func (s *Scheduler) Every(ctx context.Context, name string, interval time.Duration,
	task func(context.Context),
) (*Registration, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("failed to register %s: %w", name, ErrInvalidInterval)
	}
	return s.register(ctx, name, gocron.DurationJob(interval), task)
}

// After registers a task that runs once after the given delay.
func (s *Scheduler) After(ctx context.Context, name string, delay time.Duration,
	task func(context.Context),
) (*Registration, error) {
	if delay <= 0 {
		return nil, fmt.Errorf("failed to register %s: %w", name, ErrInvalidInterval)
	}
	at := s.clock.Now().Add(delay)
	return s.register(ctx, name, gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(at)), task)
}

// Cancel removes a registered task. Cancelling a task that already finished or was cancelled
// before is not an error.
func (s *Scheduler) Cancel(reg *Registration) error {
	if reg == nil {
		return nil
	}
	if err := s.scheduler.RemoveJob(reg.job.ID()); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
		return fmt.Errorf("failed to cancel %s: %w", reg.name, err)
	}
	return nil
}

// Shutdown stops the scheduler and waits for running tasks to return.
func (s *Scheduler) Shutdown() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down scheduler: %w", err)
	}
	return nil
}

func (s *Scheduler) register(ctx context.Context, name string, def gocron.JobDefinition,
	task func(context.Context),
) (*Registration, error) {
	if task == nil {
		return nil, fmt.Errorf("failed to register %s: %w", name, ErrNilTask)
	}
	job, err := s.scheduler.NewJob(
		def,
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(name),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", name, err)
	}
	return &Registration{name: name, job: job}, nil
}
