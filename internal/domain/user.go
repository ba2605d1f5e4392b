package domain

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// UserID is a value object for user identity. ULIDs are time-ordered, so ids
// sort by creation time.
type UserID struct{ ulid.ULID }

// NewUserID generates a fresh UserID.
func NewUserID() UserID { return UserID{ULID: ulid.Make()} }

// ParseUserID parses the canonical 26-character form.
func ParseUserID(s string) (UserID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("parse user id: %w", err)
	}
	return UserID{ULID: id}, nil
}

// String returns the canonical string form.
func (u UserID) String() string { return u.ULID.String() }

// Role is the authorization role of a user.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

// Static role -> display-name mapping; display names appear in JWT role claims.
var roleNames = map[Role]string{
	RoleUser:  "User",
	RoleAdmin: "Admin",
}

func (r Role) String() string { return roleNames[r] }

// ParseRole resolves a display name back to a Role.
func ParseRole(s string) (Role, error) {
	for role, name := range roleNames {
		if name == s {
			return role, nil
		}
	}
	return RoleUser, fmt.Errorf("unknown role %q", s)
}

// AuthType records how an account authenticates.
type AuthType int

const (
	AuthTypeLogin AuthType = iota
	AuthTypeGoogle
)

var authTypeNames = map[AuthType]string{
	AuthTypeLogin:  "Login",
	AuthTypeGoogle: "Google",
}

func (a AuthType) String() string { return authTypeNames[a] }

// ParseAuthType resolves a display name back to an AuthType.
func ParseAuthType(s string) (AuthType, error) {
	for at, name := range authTypeNames {
		if name == s {
			return at, nil
		}
	}
	return AuthTypeLogin, fmt.Errorf("unknown auth type %q", s)
}

// User is an identity record. PasswordHash is empty for OAuth-only accounts.
type User struct {
	ID           UserID
	Email        string
	PasswordHash string
	Role         Role
	AuthType     AuthType
	FirstName    string
	LastName     string
	DateOfBirth  string
}
