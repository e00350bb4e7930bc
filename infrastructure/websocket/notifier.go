package websocket

import (
	"github.com/kujilab/kuji/infrastructure/logger"
	"github.com/kujilab/kuji/infrastructure/metrics"
	"go.uber.org/zap"
)

// Notifier is the update broadcaster commands talk to. Delivery is
// best-effort: nothing here returns an error and nothing here may fail a
// command. A dropped event only delays the client until its next poll.
type Notifier struct {
	core   *Core
	logger *logger.Logger
}

func NewNotifier(core *Core, log *logger.Logger) *Notifier {
	return &Notifier{
		core:   core,
		logger: log,
	}
}

// PublishParticipants pushes the full current name list to the room topic.
func (n *Notifier) PublishParticipants(roomID string, names []string) {
	n.publish(NewParticipantsEvent(roomID, names))
}

// PublishSelection pushes the latest draw to the room topic.
func (n *Notifier) PublishSelection(roomID string, names []string, count int) {
	n.publish(NewSelectionEvent(roomID, names, count))
}

func (n *Notifier) publish(msg *WSMessage) {
	select {
	case n.core.Broadcast() <- msg:
		metrics.BroadcastsPublished.WithLabelValues(msg.Type).Inc()
	default:
		metrics.BroadcastsDropped.Inc()
		n.logger.Warn("broadcast queue full, event dropped",
			zap.String("topic", msg.Topic),
			zap.String("type", msg.Type),
		)
	}
}
