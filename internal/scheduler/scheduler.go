package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-procurement-api/internal/service"
)

// Engine is the auto-selection entry point the scheduler drives.
type Engine interface {
	RunAutoSelection(ctx context.Context) (*service.SweepResult, error)
}

// Config tunes the sweep schedule.
type Config struct {
	Interval     time.Duration
	RunOnStartup bool
}

// Scheduler fires the auto-selection sweep on a fixed interval. It is an
// explicit process-wide component with a start/stop lifecycle; a failed run
// is retried on the next tick, never immediately.
type Scheduler struct {
	engine   Engine
	interval time.Duration
	runFirst bool
	logger   *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// New builds a scheduler around the selection engine.
func New(engine Engine, cfg Config, logger *zap.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		engine:   engine,
		interval: cfg.Interval,
		runFirst: cfg.RunOnStartup,
		logger:   logger,
	}
}

// Start launches the ticker loop. Safe to call once.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.started = true

	go s.loop(ctx)
	s.logger.Info("auto-award scheduler started", zap.Duration("interval", s.interval))
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.started = false
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("auto-award scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	if s.runFirst {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	result, err := s.engine.RunAutoSelection(ctx)
	if err != nil {
		s.logger.Error("auto-selection run failed", zap.Error(err))
		return
	}
	s.logger.Info("auto-selection run completed",
		zap.Int("candidates", result.Candidates),
		zap.Int("awarded", result.Awarded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
}
