// Package auth resolves bearer tokens against a room. There are no accounts
// and no sessions: a caller is whoever the secrets they present say they are.
package auth

import (
	"github.com/kujilab/kuji/domain/model"
	"github.com/kujilab/kuji/infrastructure/security"
)

// Resolve maps a room plus two candidate tokens to exactly one capability.
// An owner match wins when both candidates are valid. Empty candidates are
// rejected before any comparison. ok is false when neither token grants
// anything.
func Resolve(room *model.Room, ownerToken, participantToken string) (model.AuthorizedCaller, bool) {
	if room == nil {
		return model.AuthorizedCaller{}, false
	}

	if security.TokensEqual(ownerToken, room.OwnerToken) {
		return model.AuthorizedCaller{
			Role:  model.RoleOwner,
			Name:  room.OwnerName,
			Token: room.OwnerToken,
		}, true
	}

	if participantToken != "" {
		for _, p := range room.Participants {
			if security.TokensEqual(participantToken, p.Token) {
				return model.AuthorizedCaller{
					Role:  model.RoleParticipant,
					Name:  p.Name,
					Token: p.Token,
				}, true
			}
		}
	}

	return model.AuthorizedCaller{}, false
}

// ResolveAny tries one token against both roles, for transports that carry a
// single opaque credential (the websocket upgrade).
func ResolveAny(room *model.Room, token string) (model.AuthorizedCaller, bool) {
	if caller, ok := Resolve(room, token, ""); ok {
		return caller, true
	}
	return Resolve(room, "", token)
}
