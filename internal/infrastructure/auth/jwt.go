package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/domain"
	domerrors "github.com/SlavaKuntsov/software-security/internal/domain/errors"
)

const refreshTokenBytes = 64

// TokenIssuer implements ports.TokenIssuer with HS256 access tokens and
// opaque, store-backed refresh tokens.
type TokenIssuer struct {
	secret     []byte
	tokens     ports.TokensRepository
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type accessClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// NewTokenIssuer builds an issuer. The signing secret must be non-empty; the
// caller treats a missing secret as a fatal configuration error.
func NewTokenIssuer(secret []byte, tokens ports.TokensRepository, accessTTL, refreshTTL time.Duration) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt signing secret is required")
	}
	return &TokenIssuer{
		secret:     secret,
		tokens:     tokens,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// GenerateAccessToken signs a short-lived JWT with {sub, role} claims.
func (t *TokenIssuer) GenerateAccessToken(id domain.UserID, role domain.Role) (string, error) {
	now := time.Now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
		Role: role.String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// GenerateRefreshToken returns 64 cryptographically-random bytes, base64.
// The value is opaque: it carries no claims and cannot be inspected.
func (t *TokenIssuer) GenerateRefreshToken() (string, error) {
	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// ValidateAccessToken parses and verifies the JWT signature and expiry.
func (t *TokenIssuer) ValidateAccessToken(tokenString string) (*ports.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	userID, err := domain.ParseUserID(claims.Subject)
	if err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, err
	}
	return &ports.AccessClaims{UserID: userID, Role: role}, nil
}

// ValidateRefreshToken resolves the opaque token to its owner. Unknown,
// revoked, or expired tokens all map to ErrInvalidToken; no state is mutated.
func (t *TokenIssuer) ValidateRefreshToken(ctx context.Context, token string) (domain.UserID, error) {
	stored, err := t.tokens.GetByToken(ctx, token)
	if err != nil {
		return domain.UserID{}, err
	}
	if stored == nil || stored.IsRevoked || stored.ExpiresAt.Before(time.Now().UTC()) {
		return domain.UserID{}, domerrors.ErrInvalidToken
	}
	return stored.UserID, nil
}

// RefreshTokenTTL returns the configured refresh-token lifetime.
func (t *TokenIssuer) RefreshTokenTTL() time.Duration { return t.refreshTTL }

// Ensure TokenIssuer implements ports.TokenIssuer.
var _ ports.TokenIssuer = (*TokenIssuer)(nil)
