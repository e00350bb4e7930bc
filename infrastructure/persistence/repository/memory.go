package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kujilab/kuji/domain/model"
	"github.com/kujilab/kuji/domain/repository"
	"github.com/kujilab/kuji/domain/selection"
	"github.com/kujilab/kuji/infrastructure/logger"
	"github.com/kujilab/kuji/infrastructure/security"
	"go.uber.org/zap"
)

// memoryRoomStore is the volatile backend: an in-process map guarded by one
// process-wide mutex. Every mutation takes the exclusive section because the
// participant list is shared mutable state and a draw's read-then-write must
// be atomic with respect to concurrent joins. Rooms are small and short-lived,
// so the coarse lock is acceptable.
type memoryRoomStore struct {
	mu    sync.Mutex
	rooms map[string]*model.Room
	ttl   time.Duration

	logger *logger.Logger
	now    func() time.Time
}

func NewMemoryRoomStore(ttl time.Duration, log *logger.Logger) repository.RoomStore {
	return &memoryRoomStore{
		rooms:  make(map[string]*model.Room),
		ttl:    ttl,
		logger: log,
		now:    time.Now,
	}
}

func (s *memoryRoomStore) CreateRoom(ctx context.Context, ownerName string) (*model.Room, string, error) {
	ownerToken, err := security.GenerateOwnerToken()
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.uniqueRoomIDLocked()
	if err != nil {
		return nil, "", err
	}

	room := &model.Room{
		ID:           id,
		OwnerToken:   ownerToken,
		OwnerName:    ownerName,
		Participants: []model.Participant{},
		CreatedAt:    s.now(),
	}
	s.rooms[id] = room

	s.logger.Info("room created",
		zap.String("roomID", id),
		zap.String("owner", ownerName),
	)

	return cloneRoom(room), ownerToken, nil
}

func (s *memoryRoomStore) FindRoom(ctx context.Context, id string) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return cloneRoom(room), nil
}

func (s *memoryRoomStore) AddParticipant(ctx context.Context, roomID, name string) (*model.Participant, error) {
	token, err := security.GenerateParticipantToken()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, model.ErrRoomNotFound
	}

	participant := model.Participant{
		Token:    token,
		Name:     name,
		JoinedAt: s.now(),
	}
	room.Participants = append(room.Participants, participant)

	s.logger.Info("participant added",
		zap.String("roomID", roomID),
		zap.String("name", name),
	)

	return &participant, nil
}

func (s *memoryRoomStore) ParticipantList(ctx context.Context, roomID string) ([]model.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return []model.Participant{}, nil
	}
	return room.MemberList(), nil
}

func (s *memoryRoomStore) SelectRandom(ctx context.Context, roomID string, count int) ([]model.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return []model.Participant{}, nil
	}

	selected := selection.Sample(room.MemberList(), count)
	room.LastSelection = &model.SelectionResult{
		RequestedCount: count,
		SelectedNames:  selection.Names(selected),
		SelectedAt:     s.now(),
	}

	return selected, nil
}

func (s *memoryRoomStore) RoomExists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.rooms[id]
	return ok, nil
}

func (s *memoryRoomStore) ExpireRooms(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, room := range s.rooms {
		if room.ExpiresAfter(s.ttl, now) {
			delete(s.rooms, id)
			removed++
			s.logger.Info("expired room removed", zap.String("roomID", id))
		}
	}
	return removed, nil
}

// Ping always succeeds: the volatile backend is the process itself.
func (s *memoryRoomStore) Ping(ctx context.Context) error {
	return nil
}

func (s *memoryRoomStore) Close() error {
	return nil
}

func (s *memoryRoomStore) uniqueRoomIDLocked() (string, error) {
	for attempt := 0; attempt < 100; attempt++ {
		id, err := security.GenerateRoomID()
		if err != nil {
			return "", err
		}
		if _, taken := s.rooms[id]; !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate a free room id")
}

// cloneRoom hands callers a copy so nothing outside the lock aliases the
// stored participant slice.
func cloneRoom(room *model.Room) *model.Room {
	clone := *room
	clone.Participants = make([]model.Participant, len(room.Participants))
	copy(clone.Participants, room.Participants)
	if room.LastSelection != nil {
		sel := *room.LastSelection
		sel.SelectedNames = append([]string(nil), room.LastSelection.SelectedNames...)
		clone.LastSelection = &sel
	}
	return &clone
}
