package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Task is a unit of periodic work.
type Task func(ctx context.Context) error

// Scheduler runs named maintenance tasks at fixed intervals.
type Scheduler struct {
	inner  gocron.Scheduler
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a stopped scheduler.
func New(logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{inner: inner, logger: logger, ctx: ctx, cancel: cancel}, nil
}

// Every registers task to run each interval. Overlapping runs are skipped.
func (s *Scheduler) Every(name string, interval time.Duration, task Task) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}
	wrapped := func() {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("scheduled job panicked", zap.String("job", name), zap.Any("panic", r))
			}
		}()
		if err := task(s.ctx); err != nil {
			s.logger.Warn("scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.logger.Debug("scheduled job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
	}

	_, err := s.inner.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(wrapped),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}
	s.logger.Info("scheduled job registered", zap.String("job", name), zap.Duration("interval", interval))
	return nil
}

// Start begins running registered jobs.
func (s *Scheduler) Start() {
	s.inner.Start()
}

// Shutdown stops the scheduler and waits for running jobs.
func (s *Scheduler) Shutdown() error {
	s.cancel()
	return s.inner.Shutdown()
}
