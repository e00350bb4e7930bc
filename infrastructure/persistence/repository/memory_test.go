package repository

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/kujilab/kuji/domain/model"
	"github.com/kujilab/kuji/infrastructure/logger"
)

var roomIDPattern = regexp.MustCompile(`^[a-z0-9]{6}$`)

func newTestStore() *memoryRoomStore {
	return &memoryRoomStore{
		rooms:  make(map[string]*model.Room),
		ttl:    24 * time.Hour,
		logger: logger.NewNop(),
		now:    time.Now,
	}
}

func TestCreateRoomShape(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	seenIDs := make(map[string]bool)
	seenTokens := make(map[string]bool)

	for i := 0; i < 50; i++ {
		room, ownerToken, err := store.CreateRoom(ctx, "Alice")
		if err != nil {
			t.Fatalf("CreateRoom failed: %v", err)
		}
		if !roomIDPattern.MatchString(room.ID) {
			t.Fatalf("room id %q is not 6-char lowercase alphanumeric", room.ID)
		}
		if seenIDs[room.ID] {
			t.Fatalf("room id %q collided", room.ID)
		}
		if seenTokens[ownerToken] {
			t.Fatalf("owner token collided")
		}
		seenIDs[room.ID] = true
		seenTokens[ownerToken] = true

		if room.OwnerToken != ownerToken {
			t.Error("returned token differs from stored owner token")
		}
		if len(room.Participants) != 0 {
			t.Errorf("fresh room has %d participants, want 0", len(room.Participants))
		}
	}
}

func TestFindRoomUnknownID(t *testing.T) {
	store := newTestStore()

	_, err := store.FindRoom(context.Background(), "nosuch")
	if err != model.ErrRoomNotFound {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestAddParticipantUnknownRoom(t *testing.T) {
	store := newTestStore()

	_, err := store.AddParticipant(context.Background(), "nosuch", "Bob")
	if err != model.ErrRoomNotFound {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestParticipantListOrderAndOwnerEntry(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	room, _, err := store.CreateRoom(ctx, "Alice")
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	list, err := store.ParticipantList(ctx, room.ID)
	if err != nil {
		t.Fatalf("ParticipantList failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list right after create has %d members, want 1", len(list))
	}
	if list[0].Name != "Alice" {
		t.Fatalf("sole member is %q, want the owner", list[0].Name)
	}

	for _, name := range []string{"Bob", "Carol"} {
		if _, err := store.AddParticipant(ctx, room.ID, name); err != nil {
			t.Fatalf("AddParticipant(%s) failed: %v", name, err)
		}
	}

	list, err = store.ParticipantList(ctx, room.ID)
	if err != nil {
		t.Fatalf("ParticipantList failed: %v", err)
	}

	want := []string{"Bob", "Carol", "Alice"}
	if len(list) != len(want) {
		t.Fatalf("list has %d members, want %d", len(list), len(want))
	}
	for i, name := range want {
		if list[i].Name != name {
			t.Errorf("position %d is %q, want %q", i, list[i].Name, name)
		}
	}
}

func TestParallelJoinsLoseNoUpdates(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	room, _, err := store.CreateRoom(ctx, "Alice")
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	const joiners = 64
	var wg sync.WaitGroup
	errs := make(chan error, joiners)

	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.AddParticipant(ctx, room.ID, "member"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent join failed: %v", err)
	}

	stored, err := store.FindRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("FindRoom failed: %v", err)
	}
	if len(stored.Participants) != joiners {
		t.Fatalf("%d joins recorded, want %d", len(stored.Participants), joiners)
	}

	tokens := make(map[string]bool)
	for _, p := range stored.Participants {
		if tokens[p.Token] {
			t.Fatal("duplicate participant token after parallel joins")
		}
		tokens[p.Token] = true
	}
}

func TestSelectRandomPersistsLastSelection(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	room, _, _ := store.CreateRoom(ctx, "Alice")
	store.AddParticipant(ctx, room.ID, "Bob")
	store.AddParticipant(ctx, room.ID, "Carol")

	selected, err := store.SelectRandom(ctx, room.ID, 2)
	if err != nil {
		t.Fatalf("SelectRandom failed: %v", err)
	}
	if len(selected) != 2 {
		t.Fatalf("drew %d members, want 2", len(selected))
	}

	stored, _ := store.FindRoom(ctx, room.ID)
	if stored.LastSelection == nil {
		t.Fatal("draw did not persist lastSelection")
	}
	if stored.LastSelection.RequestedCount != 2 {
		t.Errorf("persisted count %d, want 2", stored.LastSelection.RequestedCount)
	}
	if len(stored.LastSelection.SelectedNames) != 2 {
		t.Errorf("persisted %d names, want 2", len(stored.LastSelection.SelectedNames))
	}
}

func TestSelectRandomUnknownRoomIsEmpty(t *testing.T) {
	store := newTestStore()

	selected, err := store.SelectRandom(context.Background(), "nosuch", 3)
	if err != nil {
		t.Fatalf("SelectRandom on missing room errored: %v", err)
	}
	if len(selected) != 0 {
		t.Fatalf("missing room drew %d members, want 0", len(selected))
	}
}

func TestExpireRoomsRemovesOnlyStale(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	current := time.Now()
	store.now = func() time.Time { return current }

	old, _, _ := store.CreateRoom(ctx, "Old")
	current = current.Add(23 * time.Hour)
	fresh, _, _ := store.CreateRoom(ctx, "Fresh")

	current = current.Add(2 * time.Hour) // old is 25h, fresh is 2h

	removed, err := store.ExpireRooms(ctx)
	if err != nil {
		t.Fatalf("ExpireRooms failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d rooms, want 1", removed)
	}

	if exists, _ := store.RoomExists(ctx, old.ID); exists {
		t.Error("stale room survived the sweep")
	}
	if exists, _ := store.RoomExists(ctx, fresh.ID); !exists {
		t.Error("fresh room was swept")
	}

	removed, err = store.ExpireRooms(ctx)
	if err != nil {
		t.Fatalf("second ExpireRooms failed: %v", err)
	}
	if removed != 0 {
		t.Fatalf("immediate re-sweep removed %d rooms, want 0", removed)
	}
}

func TestFindRoomReturnsCopy(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	room, _, _ := store.CreateRoom(ctx, "Alice")
	store.AddParticipant(ctx, room.ID, "Bob")

	got, _ := store.FindRoom(ctx, room.ID)
	got.Participants[0].Name = "Mallory"
	got.OwnerName = "Mallory"

	again, _ := store.FindRoom(ctx, room.ID)
	if again.Participants[0].Name != "Bob" || again.OwnerName != "Alice" {
		t.Fatal("mutating a returned room leaked into the store")
	}
}
