package jobs

import (
	"context"
	"time"

	"github.com/kujilab/kuji/domain/repository"
	"github.com/kujilab/kuji/infrastructure/logger"
	"github.com/kujilab/kuji/infrastructure/metrics"
	"go.uber.org/zap"
)

// RoomSweepJob periodically deletes rooms past their TTL. Runs are
// sequential on one goroutine, so the sweep never overlaps itself; a failed
// run is logged and the loop simply waits for the next tick.
type RoomSweepJob struct {
	store    repository.RoomStore
	logger   *logger.Logger
	interval time.Duration
	stopChan chan struct{}
}

func NewRoomSweepJob(store repository.RoomStore, log *logger.Logger, interval time.Duration) *RoomSweepJob {
	return &RoomSweepJob{
		store:    store,
		logger:   log,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (j *RoomSweepJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("room sweep started",
		zap.Duration("interval", j.interval),
	)

	// Sweep once on boot so a restart clears anything that aged out while
	// the process was down.
	j.runSweep(ctx)

	for {
		select {
		case <-ticker.C:
			j.runSweep(ctx)
		case <-j.stopChan:
			j.logger.Info("room sweep stopped")
			return
		case <-ctx.Done():
			j.logger.Info("room sweep context cancelled")
			return
		}
	}
}

func (j *RoomSweepJob) Stop() {
	close(j.stopChan)
}

func (j *RoomSweepJob) runSweep(ctx context.Context) {
	start := time.Now()

	removed, err := j.store.ExpireRooms(ctx)
	if err != nil {
		j.logger.Error("room sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return
	}

	metrics.RoomsExpired.Add(float64(removed))

	if removed > 0 {
		j.logger.Info("room sweep completed",
			zap.Int("removed", removed),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
