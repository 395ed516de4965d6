package scheduler

import (
	"context"
	"time"

	"leadintake_backend/platform/logger"
)

const defaultDrainSweepInterval = 5 * time.Minute

// DrainSweep periodically reprocesses the waiting queue. It backs up the
// event-driven drain so leads queued while no worker was listening still
// get picked up.
type DrainSweep struct {
	drainer  QueueDrainer
	log      *logger.Logger
	interval time.Duration
}

func NewDrainSweep(drainer QueueDrainer, log *logger.Logger, interval time.Duration) *DrainSweep {
	if interval <= 0 {
		interval = defaultDrainSweepInterval
	}

	return &DrainSweep{
		drainer:  drainer,
		log:      log,
		interval: interval,
	}
}

func (s *DrainSweep) Run(ctx context.Context) {
	if s == nil || s.drainer == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *DrainSweep) sweep(ctx context.Context) {
	res, err := s.drainer.DrainWaitingQueue(ctx)
	if err != nil {
		s.log.Warn("queue drain sweep failed", "error", err)
		return
	}

	if res.Assigned > 0 || res.Updated > 0 || res.Dropped > 0 {
		s.log.Info("queue drain sweep processed waiting leads",
			"assigned", res.Assigned,
			"updated", res.Updated,
			"dropped", res.Dropped,
			"requeued", res.Requeued)
	}
}
