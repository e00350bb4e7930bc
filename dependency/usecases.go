package dependency

import (
	roomUseCase "github.com/kujilab/kuji/application/usecases/room"
)

func (c *Container) initUseCases() {
	c.RoomUC = roomUseCase.NewRoomUseCase(c.RoomStore, c.Notifier, c.Logger)

	c.Logger.Info("Use cases initialized successfully")
}
