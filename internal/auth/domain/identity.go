package domain

import (
	userDomain "github.com/voces/voces/internal/user/domain"
)

// Identity is the per-request outcome of identity resolution: either anonymous or a
// resolved user. The zero value is anonymous.
type Identity struct {
	user *userDomain.User
}

// Anonymous returns the identity of a caller without a usable session.
func Anonymous() Identity {
	return Identity{}
}

// Resolved returns the identity of an authenticated user. A nil user is anonymous.
func Resolved(user *userDomain.User) Identity {
	return Identity{user: user}
}

// User returns the resolved user and true, or nil and false when anonymous.
func (i Identity) User() (*userDomain.User, bool) {
	return i.user, i.user != nil
}

// IsAnonymous reports whether no user was resolved.
func (i Identity) IsAnonymous() bool {
	return i.user == nil
}
