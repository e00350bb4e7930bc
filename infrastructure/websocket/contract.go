package websocket

import "fmt"

// Event types pushed over a room topic. Clients re-render from these; every
// event carries full state for its concern, never a delta.
const (
	EventParticipants = "participants"
	EventSelection    = "selection"
)

type WSMessage struct {
	Type  string `json:"type"`
	Topic string `json:"-"`

	Participants []NamePayload `json:"participants,omitempty"`
	Selected     []NamePayload `json:"selected,omitempty"`
	Count        int           `json:"count,omitempty"`
}

type NamePayload struct {
	Name string `json:"name"`
}

// TopicForRoom derives the push topic name from a room id.
func TopicForRoom(roomID string) string {
	return fmt.Sprintf("room_%s", roomID)
}

func NewParticipantsEvent(roomID string, names []string) *WSMessage {
	return &WSMessage{
		Type:         EventParticipants,
		Topic:        TopicForRoom(roomID),
		Participants: toNamePayloads(names),
	}
}

func NewSelectionEvent(roomID string, names []string, count int) *WSMessage {
	return &WSMessage{
		Type:     EventSelection,
		Topic:    TopicForRoom(roomID),
		Selected: toNamePayloads(names),
		Count:    count,
	}
}

func toNamePayloads(names []string) []NamePayload {
	payloads := make([]NamePayload, 0, len(names))
	for _, n := range names {
		payloads = append(payloads, NamePayload{Name: n})
	}
	return payloads
}
