package model

import "time"

// Room is a short-lived coordination session: one owner, any number of
// participants, at most one remembered selection. Owner and participants are
// stored separately; they are only merged into one list at read time.
type Room struct {
	ID            string           `json:"id"`
	OwnerToken    string           `json:"ownerToken"`
	OwnerName     string           `json:"ownerName"`
	Participants  []Participant    `json:"participants"`
	CreatedAt     time.Time        `json:"createdAt"`
	LastSelection *SelectionResult `json:"lastSelection,omitempty"`
}

// Participant is a joined member. Created on join, immutable afterwards,
// removed only when its room expires.
type Participant struct {
	Token    string    `json:"token"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

// SelectionResult is the outcome of the latest draw, persisted on the room.
// SelectedNames holds min(RequestedCount, member count) names.
type SelectionResult struct {
	RequestedCount int       `json:"count"`
	SelectedNames  []string  `json:"selected"`
	SelectedAt     time.Time `json:"selectedAt"`
}

// MemberList returns the canonical member order: explicit participants in
// join order, then a synthetic entry for the owner appended last. Both
// rendering and selection draw from this order.
func (r *Room) MemberList() []Participant {
	members := make([]Participant, 0, len(r.Participants)+1)
	members = append(members, r.Participants...)
	members = append(members, Participant{
		Token:    r.OwnerToken,
		Name:     r.OwnerName,
		JoinedAt: r.CreatedAt,
	})
	return members
}

// ExpiresAfter reports whether the room is past the given age.
func (r *Room) ExpiresAfter(ttl time.Duration, now time.Time) bool {
	return now.Sub(r.CreatedAt) > ttl
}
