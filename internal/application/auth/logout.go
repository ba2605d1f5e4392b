package auth

import (
	"context"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/domain"
)

// Logout marks the user's refresh token revoked. The row is kept as the
// rotation target for a later re-login; a missing row is a typed
// ErrTokenNotFound, not a crash. Revoking an already-revoked token succeeds.
type Logout struct {
	tokens ports.TokensRepository
}

func NewLogout(tokens ports.TokensRepository) *Logout {
	return &Logout{tokens: tokens}
}

func (uc *Logout) Execute(ctx context.Context, userID domain.UserID) error {
	return uc.tokens.Revoke(ctx, userID)
}
