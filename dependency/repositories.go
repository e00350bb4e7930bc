package dependency

import (
	"fmt"

	"github.com/kujilab/kuji/infrastructure/cache"
	"github.com/kujilab/kuji/infrastructure/config"
	"github.com/kujilab/kuji/infrastructure/persistence/repository"
	"go.uber.org/zap"
)

// initStore picks the room store from configuration. In auto mode the
// durable backend is tried first and the process falls back to the
// volatile one when it is unreachable; the fallback is logged once so
// the consequences (single node, loss on restart) are visible.
func (c *Container) initStore() error {
	switch c.Config.Room.Backend {
	case config.BackendRedis:
		if err := cache.InitRedis(c.Config); err != nil {
			return fmt.Errorf("redis backend required but unavailable: %w", err)
		}
		c.RoomStore = repository.NewRedisRoomStore(cache.GetRedis(), c.Config.Room.TTL, c.Logger)
		c.Backend = config.BackendRedis

	case config.BackendMemory:
		c.RoomStore = repository.NewMemoryRoomStore(c.Config.Room.TTL, c.Logger)
		c.Backend = config.BackendMemory

	case config.BackendAuto:
		if err := cache.InitRedis(c.Config); err != nil {
			c.Logger.Warn("redis unreachable, falling back to in-memory room store; rooms will not survive a restart and cannot be shared across nodes",
				zap.String("addr", c.Config.GetRedisAddress()),
				zap.Error(err),
			)
			c.RoomStore = repository.NewMemoryRoomStore(c.Config.Room.TTL, c.Logger)
			c.Backend = config.BackendMemory
			break
		}
		c.RoomStore = repository.NewRedisRoomStore(cache.GetRedis(), c.Config.Room.TTL, c.Logger)
		c.Backend = config.BackendRedis

	default:
		return fmt.Errorf("unknown room backend %q", c.Config.Room.Backend)
	}

	c.Logger.Info("Room store initialized", zap.String("backend", c.Backend))

	return nil
}
