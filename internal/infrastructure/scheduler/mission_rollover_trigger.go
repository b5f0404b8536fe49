// Package scheduler runs background jobs that keep time-based state
// current without waiting for a request to notice it.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/farmacia/backend/internal/domain/gamification"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// MissionRotator creates the current week's missions when they are missing
type MissionRotator interface {
	EnsureWeeklyMissions(ctx context.Context) ([]gamification.Mission, error)
}

// MissionRolloverConfig holds configuration for the rollover trigger
type MissionRolloverConfig struct {
	// CheckInterval is how often the ISO week is compared with the last
	// initialised one.
	CheckInterval time.Duration
}

// DefaultMissionRolloverConfig checks once a minute
func DefaultMissionRolloverConfig() MissionRolloverConfig {
	return MissionRolloverConfig{CheckInterval: time.Minute}
}

// MissionRolloverTrigger initialises weekly missions at start-up and again
// whenever the ISO week changes.
type MissionRolloverTrigger struct {
	config  MissionRolloverConfig
	rotator MissionRotator
	clock   clockz.Clock
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastWeek  string
}

// NewMissionRolloverTrigger creates a new trigger
func NewMissionRolloverTrigger(
	config MissionRolloverConfig,
	rotator MissionRotator,
	clock clockz.Clock,
	logger *zap.Logger,
) *MissionRolloverTrigger {
	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultMissionRolloverConfig().CheckInterval
	}
	if clock == nil {
		clock = clockz.RealClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MissionRolloverTrigger{
		config:  config,
		rotator: rotator,
		clock:   clock,
		logger:  logger,
	}
}

// Start runs the first rollover synchronously and then checks in the
// background. Calling Start on a running trigger does nothing.
func (t *MissionRolloverTrigger) Start(ctx context.Context) error {
	if t.rotator == nil {
		return ErrRotatorRequired
	}
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	if err := t.Check(ctx); err != nil {
		t.logger.Warn("Initial mission rollover failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Mission rollover trigger started",
		zap.Duration("check_interval", t.config.CheckInterval),
	)
	return nil
}

// Stop cancels the loop and waits for it to exit or for ctx to expire
func (t *MissionRolloverTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Mission rollover trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the background loop is active
func (t *MissionRolloverTrigger) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isRunning
}

func (t *MissionRolloverTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.clock.After(t.config.CheckInterval):
			if err := t.Check(ctx); err != nil {
				t.logger.Warn("Mission rollover failed", zap.Error(err))
			}
		}
	}
}

// Check initialises the current week's missions unless it already did so
// for this week. A failed attempt is retried on the next check.
func (t *MissionRolloverTrigger) Check(ctx context.Context) error {
	week := gamification.WeekOf(t.clock.Now()).Key()

	t.mu.Lock()
	if t.lastWeek == week {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	missions, err := t.rotator.EnsureWeeklyMissions(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.lastWeek = week
	t.mu.Unlock()

	t.logger.Info("Weekly missions ready",
		zap.String("week", week),
		zap.Int("missions", len(missions)),
	)
	return nil
}
