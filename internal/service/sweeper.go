package service

import (
	"context"
	"time"

	"github.com/boardlink-dev/boardlink/internal/logger"
)

// Sweeper periodically purges expired share links. Expired rows are
// filtered out of reads already, so the sweep only reclaims storage;
// running it late or twice changes nothing observable.
type Sweeper struct {
	share         ShareService
	lastSweepStat SweepStats
}

// SweepStats tracks metrics from the last sweep run.
type SweepStats struct {
	RunAt      time.Time
	Removed    int64
	DurationMs int64
}

func NewSweeper(share ShareService) *Sweeper {
	return &Sweeper{share: share}
}

// StartBackground starts a goroutine that runs the sweep periodically
// until ctx is cancelled.
func (s *Sweeper) StartBackground(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("started share link sweeper", "interval", interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.RunSweep(ctx); err != nil {
					logger.Log.Error("sweep failed", "error", err)
				} else {
					stats := s.LastSweepStats()
					logger.Log.Info("sweep completed",
						"removed", stats.Removed,
						"duration_ms", stats.DurationMs,
					)
				}
			case <-ctx.Done():
				logger.Log.Info("sweeper shutting down")
				return
			}
		}
	}()
}

// RunSweep executes a single sweep cycle. It can be called manually for
// testing or maintenance.
func (s *Sweeper) RunSweep(ctx context.Context) error {
	start := time.Now()
	removed, err := s.share.SweepExpired(ctx)
	if err != nil {
		return err
	}
	s.lastSweepStat = SweepStats{
		RunAt:      start,
		Removed:    removed,
		DurationMs: time.Since(start).Milliseconds(),
	}
	return nil
}

// LastSweepStats returns statistics from the last sweep run.
func (s *Sweeper) LastSweepStats() SweepStats {
	return s.lastSweepStat
}
