package websocket

import (
	"context"
	"sync"

	"github.com/kujilab/kuji/infrastructure/logger"
	"go.uber.org/zap"
)

// Core is the hub loop: it owns the topic registry and serializes
// subscribe, unsubscribe and broadcast traffic through one goroutine.
type Core struct {
	registry   *TopicRegistry
	register   chan *Client
	unregister chan *Client
	broadcast  chan *WSMessage

	logger *logger.Logger

	shutdown chan struct{}
	once     sync.Once
}

func NewCore(registry *TopicRegistry, log *logger.Logger) *Core {
	return &Core{
		registry:   registry,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *WSMessage, 256),
		logger:     log,
		shutdown:   make(chan struct{}),
	}
}

func (c *Core) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("websocket core shutting down")
			c.Shutdown()
			return

		case <-c.shutdown:
			return

		case cl := <-c.register:
			c.registry.Subscribe(cl)

		case cl := <-c.unregister:
			c.registry.Unsubscribe(cl)

		case msg := <-c.broadcast:
			n := c.registry.Dispatch(msg)
			c.logger.Debug("event dispatched",
				zap.String("topic", msg.Topic),
				zap.String("type", msg.Type),
				zap.Int("subscribers", n),
			)
		}
	}
}

func (c *Core) Register() chan<- *Client {
	return c.register
}

func (c *Core) Unregister() chan<- *Client {
	return c.unregister
}

func (c *Core) Broadcast() chan<- *WSMessage {
	return c.broadcast
}

func (c *Core) Shutdown() {
	c.once.Do(func() {
		close(c.shutdown)
		c.registry.DisconnectAll()
	})
}
