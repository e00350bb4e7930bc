package auth

import (
	"testing"
	"time"

	"github.com/kujilab/kuji/domain/model"
)

func testRoom() *model.Room {
	return &model.Room{
		ID:         "abc123",
		OwnerToken: "owner-secret",
		OwnerName:  "Alice",
		Participants: []model.Participant{
			{Token: "bob-secret", Name: "Bob", JoinedAt: time.Now()},
			{Token: "carol-secret", Name: "Carol", JoinedAt: time.Now()},
		},
		CreatedAt: time.Now(),
	}
}

func TestResolveOwner(t *testing.T) {
	caller, ok := Resolve(testRoom(), "owner-secret", "")
	if !ok {
		t.Fatal("owner token did not resolve")
	}
	if !caller.IsOwner() {
		t.Errorf("expected owner role, got %q", caller.Role)
	}
	if caller.Name != "Alice" {
		t.Errorf("expected owner name Alice, got %q", caller.Name)
	}
}

func TestResolveParticipant(t *testing.T) {
	caller, ok := Resolve(testRoom(), "", "carol-secret")
	if !ok {
		t.Fatal("participant token did not resolve")
	}
	if caller.Role != model.RoleParticipant {
		t.Errorf("expected participant role, got %q", caller.Role)
	}
	if caller.Name != "Carol" {
		t.Errorf("expected Carol, got %q", caller.Name)
	}
}

func TestResolveOwnerWinsOverParticipant(t *testing.T) {
	caller, ok := Resolve(testRoom(), "owner-secret", "bob-secret")
	if !ok {
		t.Fatal("tokens did not resolve")
	}
	if !caller.IsOwner() {
		t.Errorf("owner match must take precedence, got role %q", caller.Role)
	}
}

func TestResolveRejectsUnknownAndEmptyTokens(t *testing.T) {
	if _, ok := Resolve(testRoom(), "wrong", "also-wrong"); ok {
		t.Error("unknown tokens resolved to a caller")
	}
	if _, ok := Resolve(testRoom(), "", ""); ok {
		t.Error("empty tokens resolved to a caller")
	}
	if _, ok := Resolve(nil, "owner-secret", ""); ok {
		t.Error("nil room resolved to a caller")
	}
}

func TestResolveAnyMatchesEitherRole(t *testing.T) {
	caller, ok := ResolveAny(testRoom(), "bob-secret")
	if !ok || caller.Name != "Bob" {
		t.Fatalf("single-token resolve failed: ok=%v caller=%+v", ok, caller)
	}

	caller, ok = ResolveAny(testRoom(), "owner-secret")
	if !ok || !caller.IsOwner() {
		t.Fatalf("single-token owner resolve failed: ok=%v caller=%+v", ok, caller)
	}
}
