package websocket

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type topic struct {
	name    string
	clients map[string]*Client
	mu      sync.RWMutex
}

// TopicRegistry tracks which clients listen on which room topic. Topics come
// and go with their subscribers; an empty topic holds no resources.
type TopicRegistry struct {
	topics map[string]*topic
	mu     sync.RWMutex
}

func NewTopicRegistry() *TopicRegistry {
	return &TopicRegistry{
		topics: make(map[string]*topic),
	}
}

func (tr *TopicRegistry) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return upgrader.Upgrade(w, r, nil)
}

func (tr *TopicRegistry) Subscribe(cl *Client) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	t, ok := tr.topics[cl.Topic]
	if !ok {
		t = &topic{
			name:    cl.Topic,
			clients: make(map[string]*Client),
		}
		tr.topics[cl.Topic] = t
	}

	t.mu.Lock()
	t.clients[cl.ID] = cl
	t.mu.Unlock()
}

func (tr *TopicRegistry) Unsubscribe(cl *Client) {
	tr.mu.Lock()
	t, ok := tr.topics[cl.Topic]
	if ok {
		t.mu.Lock()
		delete(t.clients, cl.ID)
		empty := len(t.clients) == 0
		t.mu.Unlock()

		if empty {
			delete(tr.topics, cl.Topic)
		}
	}
	tr.mu.Unlock()

	cl.Close()
}

// Dispatch fans an event out to every subscriber of its topic. Slow clients
// drop the event rather than stalling the hub.
func (tr *TopicRegistry) Dispatch(msg *WSMessage) int {
	tr.mu.RLock()
	t, ok := tr.topics[msg.Topic]
	tr.mu.RUnlock()

	if !ok {
		return 0
	}

	t.mu.RLock()
	clients := make([]*Client, 0, len(t.clients))
	for _, cl := range t.clients {
		clients = append(clients, cl)
	}
	t.mu.RUnlock()

	delivered := 0
	for _, cl := range clients {
		if cl.IsClosed() {
			continue
		}
		cl.Send(msg)
		delivered++
	}
	return delivered
}

func (tr *TopicRegistry) SubscriberCount(topicName string) int {
	tr.mu.RLock()
	t, ok := tr.topics[topicName]
	tr.mu.RUnlock()

	if !ok {
		return 0
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.clients)
}

func (tr *TopicRegistry) DisconnectAll() {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	for _, t := range tr.topics {
		t.mu.Lock()
		for _, cl := range t.clients {
			cl.Close()
		}
		t.mu.Unlock()
	}

	tr.topics = make(map[string]*topic)
}
