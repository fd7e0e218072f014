package worker

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/observability"
	"github.com/spec-kit/sla-service/internal/service"
)

const sweepLockKey = "sla:breach-sweep:lock"

// BreachSweeper runs the breach sweep on a cron schedule. When Redis is
// available a distributed lock ensures only one instance sweeps per tick;
// the sweep itself is idempotent either way, the lock just avoids wasted work.
type BreachSweeper struct {
	tracking *service.TrackingService
	locker   *redislock.Client
	logger   *zap.Logger
	metrics  *observability.Metrics
	cfg      config.SweepConfig
	cron     *cron.Cron
}

// NewBreachSweeper constructs the sweeper. redisClient may be nil.
func NewBreachSweeper(tracking *service.TrackingService, redisClient *redis.Client, metrics *observability.Metrics, logger *zap.Logger, cfg config.SweepConfig) *BreachSweeper {
	var locker *redislock.Client
	if redisClient != nil {
		locker = redislock.New(redisClient)
	}
	return &BreachSweeper{
		tracking: tracking,
		locker:   locker,
		logger:   logger,
		metrics:  metrics,
		cfg:      cfg,
	}
}

// Start schedules the sweep. Returns an error when the cron expression is invalid.
func (s *BreachSweeper) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.logger.Info("breach sweep disabled")
		return nil
	}
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.RunOnce(ctx, time.Now().UTC())
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("breach sweep scheduled", zap.String("schedule", s.cfg.Schedule))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *BreachSweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// RunOnce executes a single sweep pass at the given instant.
func (s *BreachSweeper) RunOnce(ctx context.Context, now time.Time) {
	if s.locker != nil {
		lock, err := s.locker.Obtain(ctx, sweepLockKey, s.cfg.LockTTL(), nil)
		if err != nil {
			if errors.Is(err, redislock.ErrNotObtained) {
				s.logger.Debug("breach sweep lock held elsewhere; skipping tick")
				return
			}
			s.logger.Warn("breach sweep lock error; sweeping anyway", zap.Error(err))
		} else {
			defer lock.Release(ctx) //nolint:errcheck
		}
	}

	started := time.Now()
	flagged, err := s.tracking.CheckAndUpdateBreaches(ctx, now)
	if err != nil {
		s.logger.Error("breach sweep failed", zap.Error(err), zap.Int("flagged_before_failure", flagged))
		return
	}
	if s.metrics != nil {
		s.metrics.RecordSweep(flagged, time.Since(started))
	}
	s.logger.Info("breach sweep completed",
		zap.Int("flagged", flagged),
		zap.Duration("took", time.Since(started)))
}
