package room

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kujilab/kuji/domain/model"
	"github.com/kujilab/kuji/infrastructure/logger"
	persistence "github.com/kujilab/kuji/infrastructure/persistence/repository"
)

type recordingBroadcaster struct {
	mu           sync.Mutex
	participants [][]string
	selections   [][]string
}

func (b *recordingBroadcaster) PublishParticipants(roomID string, names []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.participants = append(b.participants, names)
}

func (b *recordingBroadcaster) PublishSelection(roomID string, names []string, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selections = append(b.selections, names)
}

func newTestUseCase() (RoomUseCase, *recordingBroadcaster) {
	store := persistence.NewMemoryRoomStore(24*time.Hour, logger.NewNop())
	bc := &recordingBroadcaster{}
	return NewRoomUseCase(store, bc, logger.NewNop()), bc
}

func TestCreateJoinSelectScenario(t *testing.T) {
	uc, bc := newTestUseCase()
	ctx := context.Background()

	room, ownerToken, err := uc.Create(ctx, "Alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if ownerToken == "" {
		t.Fatal("Create returned empty owner token")
	}

	if _, err := uc.Join(ctx, room.ID, "Bob"); err != nil {
		t.Fatalf("Join(Bob) failed: %v", err)
	}
	if _, err := uc.Join(ctx, room.ID, "Carol"); err != nil {
		t.Fatalf("Join(Carol) failed: %v", err)
	}

	snap, err := uc.GetSnapshot(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	want := []string{"Bob", "Carol", "Alice"}
	if len(snap.Participants) != len(want) {
		t.Fatalf("snapshot has %d members, want %d", len(snap.Participants), len(want))
	}
	for i, name := range want {
		if snap.Participants[i] != name {
			t.Errorf("snapshot position %d is %q, want %q", i, snap.Participants[i], name)
		}
	}
	if snap.Selection != nil {
		t.Error("snapshot has a selection before any draw")
	}

	result, err := uc.RunSelection(ctx, room.ID, 2, ownerToken)
	if err != nil {
		t.Fatalf("RunSelection failed: %v", err)
	}
	if len(result.SelectedNames) != 2 {
		t.Fatalf("draw returned %d names, want 2", len(result.SelectedNames))
	}
	valid := map[string]bool{"Alice": true, "Bob": true, "Carol": true}
	for _, name := range result.SelectedNames {
		if !valid[name] {
			t.Errorf("unknown name %q in draw", name)
		}
	}

	snap, err = uc.GetSnapshot(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetSnapshot after draw failed: %v", err)
	}
	if snap.Selection == nil {
		t.Fatal("draw not visible in snapshot")
	}
	if snap.Selection.RequestedCount != 2 {
		t.Errorf("snapshot selection count %d, want 2", snap.Selection.RequestedCount)
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()
	if len(bc.participants) != 2 {
		t.Errorf("%d participants events broadcast, want one per join", len(bc.participants))
	}
	if len(bc.selections) != 1 {
		t.Errorf("%d selection events broadcast, want 1", len(bc.selections))
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	uc, bc := newTestUseCase()

	_, err := uc.Join(context.Background(), "nosuch", "Bob")
	if !errors.Is(err, model.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()
	if len(bc.participants) != 0 {
		t.Error("failed join still broadcast a participants event")
	}
}

func TestRunSelectionForbiddenForNonOwner(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	room, _, _ := uc.Create(ctx, "Alice")
	participant, _ := uc.Join(ctx, room.ID, "Bob")

	if _, err := uc.RunSelection(ctx, room.ID, 1, participant.Token); !errors.Is(err, model.ErrForbidden) {
		t.Fatalf("participant token ran a selection: %v", err)
	}
	if _, err := uc.RunSelection(ctx, room.ID, 1, "bogus"); !errors.Is(err, model.ErrForbidden) {
		t.Fatalf("bogus token ran a selection: %v", err)
	}
	if _, err := uc.RunSelection(ctx, room.ID, 1, ""); !errors.Is(err, model.ErrForbidden) {
		t.Fatalf("empty token ran a selection: %v", err)
	}
}

func TestRunSelectionValidation(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	room, ownerToken, _ := uc.Create(ctx, "Alice")
	uc.Join(ctx, room.ID, "Bob")

	cases := []struct {
		count  int
		reason string
	}{
		{0, model.ReasonCountNotPositive},
		{-1, model.ReasonCountNotPositive},
		{3, model.ReasonCountExceedsMembers},
	}

	for _, tc := range cases {
		_, err := uc.RunSelection(ctx, room.ID, tc.count, ownerToken)
		var verr *model.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("count %d: expected ValidationError, got %v", tc.count, err)
		}
		if verr.Reason != tc.reason {
			t.Errorf("count %d: reason %q, want %q", tc.count, verr.Reason, tc.reason)
		}
	}

	// Rejected draws must leave lastSelection untouched.
	snap, err := uc.GetSnapshot(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if snap.Selection != nil {
		t.Fatal("rejected draw mutated lastSelection")
	}
}

func TestRunSelectionFullDraw(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	room, ownerToken, _ := uc.Create(ctx, "Alice")
	uc.Join(ctx, room.ID, "Bob")
	uc.Join(ctx, room.ID, "Carol")

	result, err := uc.RunSelection(ctx, room.ID, 3, ownerToken)
	if err != nil {
		t.Fatalf("RunSelection failed: %v", err)
	}

	seen := make(map[string]bool)
	for _, name := range result.SelectedNames {
		seen[name] = true
	}
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		if !seen[name] {
			t.Errorf("full draw missing %q", name)
		}
	}
}

func TestRunSelectionUnknownRoom(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.RunSelection(context.Background(), "nosuch", 1, "token")
	if !errors.Is(err, model.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}
