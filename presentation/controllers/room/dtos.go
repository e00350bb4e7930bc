package room

import "time"

type CreateRoomRequest struct {
	OwnerName string `json:"ownerName" binding:"required"`
}

type CreateRoomResponse struct {
	RoomID     string `json:"roomId"`
	OwnerToken string `json:"ownerToken"`
}

type JoinRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

type JoinRoomResponse struct {
	ParticipantToken string `json:"participantToken"`
}

// RunSelectionRequest carries no binding constraint on Count: zero and
// negative values must reach the validation layer so the caller gets a
// reasoned 422 rather than a bare parse error.
type RunSelectionRequest struct {
	Count int `json:"count"`
	// OwnerToken may arrive in the body for form-like clients; headers are
	// checked first.
	OwnerToken string `json:"ownerToken"`
}

type NameEntry struct {
	Name string `json:"name"`
}

type SelectionResponse struct {
	Selected []NameEntry `json:"selected"`
	Count    int         `json:"count"`
}

type SelectionView struct {
	Selected   []NameEntry `json:"selected"`
	Count      int         `json:"count"`
	SelectedAt time.Time   `json:"selectedAt"`
}

type SnapshotResponse struct {
	Participants []NameEntry    `json:"participants"`
	Selection    *SelectionView `json:"selection,omitempty"`
}

type RoomResponse struct {
	ID        string      `json:"id"`
	OwnerName string      `json:"ownerName"`
	CreatedAt time.Time   `json:"createdAt"`
	Members   []NameEntry `json:"members"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}
