// Package security generates the opaque secrets the whole authorization
// model rests on: room ids, owner tokens and participant tokens.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

const (
	roomIDCharset = "abcdefghijklmnopqrstuvwxyz0123456789"
	roomIDLength  = 6

	ownerTokenBytes       = 16
	participantTokenBytes = 12
)

// GenerateRoomID returns a random 6-char lowercase alphanumeric id.
// Uniqueness against live rooms is the store's responsibility; callers
// retry until the id misses the existing key set.
func GenerateRoomID() (string, error) {
	buf := make([]byte, roomIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate room id: %w", err)
	}
	for i, b := range buf {
		buf[i] = roomIDCharset[int(b)%len(roomIDCharset)]
	}
	return string(buf), nil
}

// GenerateOwnerToken returns a bearer secret with 16 bytes of entropy.
func GenerateOwnerToken() (string, error) {
	return generateToken(ownerTokenBytes)
}

// GenerateParticipantToken returns a bearer secret with 12 bytes of entropy.
func GenerateParticipantToken() (string, error) {
	return generateToken(participantTokenBytes)
}

func generateToken(entropy int) (string, error) {
	buf := make([]byte, entropy)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// TokensEqual compares two bearer tokens in constant time. Empty candidates
// never match anything.
func TokensEqual(candidate, actual string) bool {
	if candidate == "" || actual == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(actual)) == 1
}
