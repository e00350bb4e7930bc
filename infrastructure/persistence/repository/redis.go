package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kujilab/kuji/domain/model"
	"github.com/kujilab/kuji/domain/repository"
	"github.com/kujilab/kuji/domain/selection"
	"github.com/kujilab/kuji/infrastructure/logger"
	"github.com/kujilab/kuji/infrastructure/security"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const roomKeyPrefix = "room:"

// redisRoomStore is the durable backend: one serialized record per room,
// written with a TTL that is refreshed on every write. Mutations are
// read-modify-write with last-writer-wins; concurrent joins or draws on the
// same room may race and the later write survives. Brief staleness is
// tolerable here, so that trade-off is deliberate.
type redisRoomStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewRedisRoomStore(client *redis.Client, ttl time.Duration, log *logger.Logger) repository.RoomStore {
	return &redisRoomStore{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

func (s *redisRoomStore) CreateRoom(ctx context.Context, ownerName string) (*model.Room, string, error) {
	ownerToken, err := security.GenerateOwnerToken()
	if err != nil {
		return nil, "", err
	}

	id, err := s.uniqueRoomID(ctx)
	if err != nil {
		return nil, "", err
	}

	room := &model.Room{
		ID:           id,
		OwnerToken:   ownerToken,
		OwnerName:    ownerName,
		Participants: []model.Participant{},
		CreatedAt:    time.Now(),
	}

	if err := s.storeRoom(ctx, room); err != nil {
		return nil, "", err
	}

	s.logger.Info("room created",
		zap.String("roomID", id),
		zap.String("owner", ownerName),
	)

	return room, ownerToken, nil
}

func (s *redisRoomStore) FindRoom(ctx context.Context, id string) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		s.logger.Error("corrupt room record",
			zap.String("roomID", id),
			zap.Error(err),
		)
		return nil, model.ErrRoomNotFound
	}
	return &room, nil
}

func (s *redisRoomStore) AddParticipant(ctx context.Context, roomID, name string) (*model.Participant, error) {
	room, err := s.FindRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	token, err := security.GenerateParticipantToken()
	if err != nil {
		return nil, err
	}

	participant := model.Participant{
		Token:    token,
		Name:     name,
		JoinedAt: time.Now(),
	}
	room.Participants = append(room.Participants, participant)

	if err := s.storeRoom(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Info("participant added",
		zap.String("roomID", roomID),
		zap.String("name", name),
	)

	return &participant, nil
}

func (s *redisRoomStore) ParticipantList(ctx context.Context, roomID string) ([]model.Participant, error) {
	room, err := s.FindRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return []model.Participant{}, nil
		}
		return nil, err
	}
	return room.MemberList(), nil
}

func (s *redisRoomStore) SelectRandom(ctx context.Context, roomID string, count int) ([]model.Participant, error) {
	room, err := s.FindRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return []model.Participant{}, nil
		}
		return nil, err
	}

	selected := selection.Sample(room.MemberList(), count)
	room.LastSelection = &model.SelectionResult{
		RequestedCount: count,
		SelectedNames:  selection.Names(selected),
		SelectedAt:     time.Now(),
	}

	if err := s.storeRoom(ctx, room); err != nil {
		return nil, err
	}

	return selected, nil
}

func (s *redisRoomStore) RoomExists(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, roomKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}
	return n > 0, nil
}

// ExpireRooms is a no-op on redis: every record carries its own TTL and the
// store expires it for us. The sweep still calls this so both backends share
// one lifecycle.
func (s *redisRoomStore) ExpireRooms(ctx context.Context) (int, error) {
	return 0, nil
}

func (s *redisRoomStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}
	return nil
}

// Close is a no-op. The shared client is owned by the cache package.
func (s *redisRoomStore) Close() error {
	return nil
}

// storeRoom serializes the whole room and refreshes its TTL. Expiry is
// measured from the last write, which keeps active rooms alive slightly
// longer than the volatile backend would; acceptable for this domain.
func (s *redisRoomStore) storeRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room %s: %w", room.ID, err)
	}

	if err := s.client.Set(ctx, roomKey(room.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}
	return nil
}

func (s *redisRoomStore) uniqueRoomID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 100; attempt++ {
		id, err := security.GenerateRoomID()
		if err != nil {
			return "", err
		}
		taken, err := s.RoomExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate a free room id")
}

func roomKey(id string) string {
	return roomKeyPrefix + id
}
