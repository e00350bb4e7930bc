package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/kujilab/kuji/application/usecases/auth"
	"github.com/kujilab/kuji/domain/model"
	"github.com/kujilab/kuji/domain/repository"
	"github.com/kujilab/kuji/infrastructure/logger"
	"github.com/kujilab/kuji/infrastructure/metrics"
	"go.uber.org/zap"
)

// Broadcaster is what the usecase needs from the push layer. Calls never
// fail; the update layer absorbs its own errors.
type Broadcaster interface {
	PublishParticipants(roomID string, names []string)
	PublishSelection(roomID string, names []string, count int)
}

// Snapshot is the full read model both the poll endpoint and freshly
// subscribed push clients receive.
type Snapshot struct {
	Participants []string
	Selection    *model.SelectionResult
}

type RoomUseCase interface {
	Create(ctx context.Context, ownerName string) (*model.Room, string, error)
	Join(ctx context.Context, roomID, name string) (*model.Participant, error)
	RunSelection(ctx context.Context, roomID string, count int, callerToken string) (*model.SelectionResult, error)
	GetSnapshot(ctx context.Context, roomID string) (*Snapshot, error)
	GetByID(ctx context.Context, id string) (*model.Room, error)
}

type roomUseCase struct {
	store       repository.RoomStore
	broadcaster Broadcaster
	logger      *logger.Logger
}

func NewRoomUseCase(store repository.RoomStore, broadcaster Broadcaster, log *logger.Logger) RoomUseCase {
	return &roomUseCase{
		store:       store,
		broadcaster: broadcaster,
		logger:      log,
	}
}

func (uc *roomUseCase) Create(ctx context.Context, ownerName string) (*model.Room, string, error) {
	if ownerName == "" {
		return nil, "", fmt.Errorf("owner name cannot be empty")
	}

	room, ownerToken, err := uc.store.CreateRoom(ctx, ownerName)
	if err != nil {
		uc.logger.Error("failed to create room", zap.Error(err), zap.String("owner", ownerName))
		return nil, "", fmt.Errorf("failed to create room: %w", err)
	}

	metrics.RoomsCreated.Inc()
	return room, ownerToken, nil
}

func (uc *roomUseCase) Join(ctx context.Context, roomID, name string) (*model.Participant, error) {
	if roomID == "" || name == "" {
		return nil, fmt.Errorf("room ID and name cannot be empty")
	}

	participant, err := uc.store.AddParticipant(ctx, roomID, name)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return nil, err
		}
		uc.logger.Error("failed to add participant", zap.Error(err), zap.String("roomID", roomID))
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	metrics.ParticipantsJoined.Inc()
	uc.broadcastParticipants(ctx, roomID)

	return participant, nil
}

func (uc *roomUseCase) RunSelection(ctx context.Context, roomID string, count int, callerToken string) (*model.SelectionResult, error) {
	room, err := uc.store.FindRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	caller, ok := auth.Resolve(room, callerToken, "")
	if !ok || !caller.IsOwner() {
		uc.logger.Warn("selection refused, caller is not the owner",
			zap.String("roomID", roomID),
		)
		return nil, model.ErrForbidden
	}

	members := room.MemberList()
	if count <= 0 {
		return nil, model.NewValidationError(model.ReasonCountNotPositive,
			"requested count must be at least 1, got %d", count)
	}
	if count > len(members) {
		return nil, model.NewValidationError(model.ReasonCountExceedsMembers,
			"requested count %d exceeds member count %d", count, len(members))
	}

	selected, err := uc.store.SelectRandom(ctx, roomID, count)
	if err != nil {
		uc.logger.Error("selection failed", zap.Error(err), zap.String("roomID", roomID))
		return nil, fmt.Errorf("failed to run selection: %w", err)
	}

	result := &model.SelectionResult{
		RequestedCount: count,
		SelectedNames:  make([]string, 0, len(selected)),
	}
	for _, p := range selected {
		result.SelectedNames = append(result.SelectedNames, p.Name)
	}

	metrics.SelectionsRun.Inc()
	uc.logger.Info("selection run",
		zap.String("roomID", roomID),
		zap.Int("count", count),
		zap.Int("members", len(members)),
	)

	uc.broadcaster.PublishSelection(roomID, result.SelectedNames, count)

	return result, nil
}

func (uc *roomUseCase) GetSnapshot(ctx context.Context, roomID string) (*Snapshot, error) {
	room, err := uc.store.FindRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	return buildSnapshot(room), nil
}

func (uc *roomUseCase) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, model.ErrRoomNotFound
	}
	return uc.store.FindRoom(ctx, id)
}

// broadcastParticipants pushes the full current member list. Failures stay
// inside the broadcast layer; the triggering command already succeeded.
func (uc *roomUseCase) broadcastParticipants(ctx context.Context, roomID string) {
	members, err := uc.store.ParticipantList(ctx, roomID)
	if err != nil {
		uc.logger.Warn("could not load members for broadcast",
			zap.Error(err),
			zap.String("roomID", roomID),
		)
		return
	}

	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	uc.broadcaster.PublishParticipants(roomID, names)
}

func buildSnapshot(room *model.Room) *Snapshot {
	members := room.MemberList()
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	return &Snapshot{
		Participants: names,
		Selection:    room.LastSelection,
	}
}
