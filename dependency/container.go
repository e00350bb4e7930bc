package dependency

import (
	"context"
	"fmt"

	roomUseCase "github.com/kujilab/kuji/application/usecases/room"
	"github.com/kujilab/kuji/domain/repository"
	"github.com/kujilab/kuji/infrastructure/config"
	"github.com/kujilab/kuji/infrastructure/jobs"
	"github.com/kujilab/kuji/infrastructure/logger"
	"github.com/kujilab/kuji/infrastructure/websocket"
	"github.com/kujilab/kuji/presentation/controllers/room"
	wsCtrl "github.com/kujilab/kuji/presentation/controllers/websocket"
)

type Container struct {
	Config *config.Config
	Logger *logger.Logger

	// Backend is the store actually in use, which differs from the
	// configured one after an auto fallback.
	Backend string

	RoomStore repository.RoomStore

	WSRegistry *websocket.TopicRegistry
	WSCore     *websocket.Core
	Notifier   *websocket.Notifier

	RoomUC roomUseCase.RoomUseCase

	RoomController      room.RoomController
	WebsocketController wsCtrl.WebSocketController

	SweepJob *jobs.RoomSweepJob

	ctx    context.Context
	cancel context.CancelFunc
}

func NewContainer() (*Container, error) {
	c := &Container{}

	c.Config = config.GetConfig()

	loggerInstance, err := logger.NewLogger(c.Config.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("error initializing logger: %w", err)
	}
	c.Logger = loggerInstance

	c.Logger.Info("Initializing kuji dependencies")

	if err := c.initStore(); err != nil {
		return nil, fmt.Errorf("error initializing room store: %w", err)
	}

	c.initWebSocket()

	c.initUseCases()

	c.initControllers()

	c.initBackgroundJobs()

	c.Logger.Info("All dependencies initialized successfully")

	return c, nil
}
