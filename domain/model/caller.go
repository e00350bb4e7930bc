package model

// Role distinguishes what a resolved bearer token entitles its holder to do.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleParticipant Role = "participant"
)

// AuthorizedCaller is the request-scoped result of token resolution. It is
// never persisted; identity rests solely on possession of an opaque secret.
type AuthorizedCaller struct {
	Role  Role
	Name  string
	Token string
}

func (c AuthorizedCaller) IsOwner() bool {
	return c.Role == RoleOwner
}
