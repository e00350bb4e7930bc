package dependency

import (
	"context"

	"github.com/kujilab/kuji/infrastructure/websocket"
)

func (c *Container) initWebSocket() {
	c.WSRegistry = websocket.NewTopicRegistry()
	c.WSCore = websocket.NewCore(c.WSRegistry, c.Logger)
	c.Notifier = websocket.NewNotifier(c.WSCore, c.Logger)

	c.ctx, c.cancel = context.WithCancel(context.Background())

	go c.WSCore.Run(c.ctx)

	c.Logger.Info("WebSocket components initialized successfully")
}
