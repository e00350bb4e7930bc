package dependency

import (
	"time"

	"github.com/kujilab/kuji/infrastructure/jobs"
)

func (c *Container) initBackgroundJobs() {
	c.SweepJob = jobs.NewRoomSweepJob(c.RoomStore, c.Logger, c.Config.Room.SweepInterval)

	go func() {
		time.Sleep(2 * time.Second) // Wait for all dependencies to initialize
		c.Logger.Info("Starting background jobs...")
		c.SweepJob.Start(c.ctx)
	}()

	c.Logger.Info("Background jobs initialized and started successfully")
}
