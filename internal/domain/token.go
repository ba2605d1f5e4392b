package domain

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// TokenID is a value object for refresh-token row identity.
type TokenID struct{ ulid.ULID }

// NewTokenID generates a fresh TokenID.
func NewTokenID() TokenID { return TokenID{ULID: ulid.Make()} }

// ParseTokenID parses the canonical 26-character form.
func ParseTokenID(s string) (TokenID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return TokenID{}, fmt.Errorf("parse token id: %w", err)
	}
	return TokenID{ULID: id}, nil
}

// String returns the canonical string form.
func (t TokenID) String() string { return t.ULID.String() }

// RefreshToken is the single session credential for a user. One row per user:
// concurrent logins and refreshes overwrite Token and ExpiresAt in place,
// preserving ID and CreatedAt.
type RefreshToken struct {
	ID        TokenID
	UserID    UserID
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
	IsRevoked bool
}

// NewRefreshToken builds a token row for userID expiring after ttl.
func NewRefreshToken(userID UserID, token string, ttl time.Duration) *RefreshToken {
	now := time.Now().UTC()
	return &RefreshToken{
		ID:        NewTokenID(),
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
