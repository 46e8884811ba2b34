package expiry

import (
	"context"
	"log"
	"time"
)

const defaultInterval = time.Minute

type Engine interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

// Sweeper periodically expires overdue pending actions. It is a liveness
// guarantee, not a correctness dependency: lazy expiry on the read path
// already keeps stale actions from being observed or acted on.
type Sweeper struct {
	Engine   Engine
	Interval time.Duration
	Now      func() time.Time
	Logf     func(format string, args ...any)
}

// Run sweeps on a fixed interval until the context is cancelled. A
// failed sweep is logged and retried on the next tick.
func (s Sweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single pass. Exported so tests can drive sweeps with
// a fake clock instead of sleeping.
func (s Sweeper) SweepOnce(ctx context.Context) {
	logf := s.Logf
	if logf == nil {
		logf = log.Printf
	}
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	count, err := s.Engine.ExpireDue(ctx, now)
	if err != nil {
		logf("expiry sweep failed, will retry next tick: %v", err)
		return
	}
	if count > 0 {
		logf("expiry sweep: %d pending actions expired", count)
	}
}
