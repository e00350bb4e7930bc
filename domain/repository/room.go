package repository

import (
	"context"

	"github.com/kujilab/kuji/domain/model"
)

// RoomStore owns all room and participant state. Two interchangeable
// implementations exist: an in-process volatile store and a redis-backed
// durable store. The backend is chosen once at startup and injected
// everywhere; call sites never know which one they hold.
type RoomStore interface {
	// CreateRoom allocates a unique 6-char room id and an owner token and
	// stores the new room. Fails only when the backend is unavailable.
	CreateRoom(ctx context.Context, ownerName string) (*model.Room, string, error)

	// FindRoom returns model.ErrRoomNotFound for unknown ids.
	FindRoom(ctx context.Context, id string) (*model.Room, error)

	// AddParticipant allocates a participant token and appends the new
	// member. Returns model.ErrRoomNotFound for unknown rooms.
	AddParticipant(ctx context.Context, roomID, name string) (*model.Participant, error)

	// ParticipantList returns the canonical member order: participants in
	// join order, synthetic owner entry last.
	ParticipantList(ctx context.Context, roomID string) ([]model.Participant, error)

	// SelectRandom draws min(count, member count) members uniformly at
	// random without replacement and persists the result as the room's
	// last selection. Count validation happens in the usecase layer; the
	// store only clamps. Unknown rooms yield an empty draw and no error.
	SelectRandom(ctx context.Context, roomID string, count int) ([]model.Participant, error)

	// RoomExists is consistent with FindRoom within the same call epoch.
	RoomExists(ctx context.Context, id string) (bool, error)

	// ExpireRooms removes rooms older than the TTL and reports how many
	// were deleted. Idempotent; safe alongside concurrent creates/joins.
	ExpireRooms(ctx context.Context) (int, error)

	// Ping reports backend reachability; the startup fallback decision
	// rests on it.
	Ping(ctx context.Context) error

	Close() error
}
