package ports

import (
	"context"
	"time"

	"github.com/SlavaKuntsov/software-security/internal/domain"
)

// PasswordHasher hashes and verifies passwords (Argon2id).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// AccessClaims is the validated claim set of an access token.
type AccessClaims struct {
	UserID domain.UserID
	Role   domain.Role
}

// TokenIssuer signs access tokens (HS256) and generates opaque refresh tokens.
type TokenIssuer interface {
	GenerateAccessToken(id domain.UserID, role domain.Role) (string, error)
	GenerateRefreshToken() (string, error)
	ValidateAccessToken(tokenString string) (*AccessClaims, error)
	// ValidateRefreshToken resolves a refresh token to its owner. Returns
	// ErrInvalidToken when the token is unknown, revoked, or expired.
	ValidateRefreshToken(ctx context.Context, token string) (domain.UserID, error)
	RefreshTokenTTL() time.Duration
}
