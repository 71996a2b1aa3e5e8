package domain

import "github.com/google/uuid"

type userKind int

const (
	guestUser userKind = iota
	authenticatedUser
)

// UserContext identifies who a pipeline run belongs to. It is either a guest,
// with no cross-session identity, or an authenticated user with a stable id.
// Build it with Guest or Authenticated; the zero value is a guest.
type UserContext struct {
	kind    userKind
	id      uuid.UUID
	premium bool
}

func Guest() UserContext {
	return UserContext{kind: guestUser}
}

func Authenticated(id uuid.UUID, premium bool) UserContext {
	return UserContext{kind: authenticatedUser, id: id, premium: premium}
}

func (u UserContext) IsGuest() bool {
	return u.kind == guestUser
}

// UserID returns the authenticated user's id; ok is false for guests.
func (u UserContext) UserID() (id uuid.UUID, ok bool) {
	if u.kind != authenticatedUser {
		return uuid.Nil, false
	}
	return u.id, true
}

func (u UserContext) IsPremium() bool {
	return u.kind == authenticatedUser && u.premium
}

func (u UserContext) String() string {
	if u.IsGuest() {
		return "guest"
	}
	return u.id.String()
}
