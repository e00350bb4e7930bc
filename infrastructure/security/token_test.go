package security

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestGenerateRoomIDFormat(t *testing.T) {
	for i := 0; i < 200; i++ {
		id, err := GenerateRoomID()
		if err != nil {
			t.Fatalf("GenerateRoomID failed: %v", err)
		}
		if len(id) != 6 {
			t.Fatalf("room id %q has length %d, want 6", id, len(id))
		}
		for _, c := range id {
			if !strings.ContainsRune(roomIDCharset, c) {
				t.Fatalf("room id %q contains invalid char %q", id, c)
			}
		}
	}
}

func TestTokenEntropyLengths(t *testing.T) {
	owner, err := GenerateOwnerToken()
	if err != nil {
		t.Fatalf("GenerateOwnerToken failed: %v", err)
	}
	raw, err := base64.RawURLEncoding.DecodeString(owner)
	if err != nil {
		t.Fatalf("owner token is not url-safe base64: %v", err)
	}
	if len(raw) != 16 {
		t.Errorf("owner token carries %d bytes of entropy, want 16", len(raw))
	}

	participant, err := GenerateParticipantToken()
	if err != nil {
		t.Fatalf("GenerateParticipantToken failed: %v", err)
	}
	raw, err = base64.RawURLEncoding.DecodeString(participant)
	if err != nil {
		t.Fatalf("participant token is not url-safe base64: %v", err)
	}
	if len(raw) != 12 {
		t.Errorf("participant token carries %d bytes of entropy, want 12", len(raw))
	}
}

func TestTokensDoNotCollide(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok, err := GenerateOwnerToken()
		if err != nil {
			t.Fatalf("GenerateOwnerToken failed: %v", err)
		}
		if seen[tok] {
			t.Fatalf("token collision after %d generations", i)
		}
		seen[tok] = true
	}
}

func TestTokensEqual(t *testing.T) {
	if !TokensEqual("secret", "secret") {
		t.Error("identical tokens did not match")
	}
	if TokensEqual("secret", "other") {
		t.Error("different tokens matched")
	}
	if TokensEqual("", "") {
		t.Error("empty tokens must never match")
	}
	if TokensEqual("", "secret") {
		t.Error("empty candidate matched a real token")
	}
}
