package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kujilab/kuji/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
)

// Client is one connected viewer of a room topic. Viewers only receive;
// inbound frames exist solely to keep the connection's read side honest.
type Client struct {
	conn    *websocket.Conn
	Message chan *WSMessage
	ID      string
	Topic   string

	logger *logger.Logger

	closeOnce sync.Once
	closed    chan struct{}
	writeMu   sync.Mutex
}

func NewClient(conn *websocket.Conn, id, topic string, log *logger.Logger) *Client {
	return &Client{
		conn:    conn,
		Message: make(chan *WSMessage, 64),
		ID:      id,
		Topic:   topic,
		logger:  log,
		closed:  make(chan struct{}),
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.writeMu.Lock()
		_ = c.conn.Close()
		c.writeMu.Unlock()
	})
}

// Done is closed when the client has shut down, for observers that track
// connection lifetime.
func (c *Client) Done() <-chan struct{} {
	return c.closed
}

func (c *Client) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Send queues an event without ever blocking the caller. A client that
// cannot keep up loses the event; the next full snapshot heals it.
func (c *Client) Send(msg *WSMessage) {
	if c.IsClosed() {
		return
	}
	select {
	case c.Message <- msg:
	default:
		c.logger.Warn("client buffer full, dropping event",
			zap.String("clientID", c.ID),
			zap.String("topic", c.Topic),
		)
	}
}

// ReadPump drains the connection until it drops, unregistering on exit.
// Inbound payloads are discarded; this transport is one-way.
func (c *Client) ReadPump(core *Core) {
	defer func() {
		core.Unregister() <- c
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.closed:
			return
		default:
		}

		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Debug("ws read error",
					zap.String("clientID", c.ID),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// WritePump serializes queued events onto the wire and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	defer c.Close()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.Message:
			c.writeMu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteJSON(msg)
			c.writeMu.Unlock()

			if err != nil {
				c.logger.Debug("ws write error",
					zap.String("clientID", c.ID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			c.writeMu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()

			if err != nil {
				return
			}

		case <-c.closed:
			return
		}
	}
}
