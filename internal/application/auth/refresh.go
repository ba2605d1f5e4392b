package auth

import (
	"context"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	domerrors "github.com/SlavaKuntsov/software-security/internal/domain/errors"
)

type RefreshInput struct {
	RefreshToken string
}

// Refresh exchanges a valid refresh token for a new token pair. Rotate-on-use:
// the presented value is overwritten, so replaying it fails with InvalidToken.
// The rotation write is conditional on the presented value, so when two
// requests race on the same token only one of them succeeds.
type Refresh struct {
	issuer   ports.TokenIssuer
	users    ports.UsersRepository
	generate *GenerateTokens
}

func NewRefresh(issuer ports.TokenIssuer, users ports.UsersRepository, generate *GenerateTokens) *Refresh {
	return &Refresh{issuer: issuer, users: users, generate: generate}
}

func (uc *Refresh) Execute(ctx context.Context, input RefreshInput) (*TokenPair, error) {
	if input.RefreshToken == "" {
		return nil, domerrors.ErrInvalidToken
	}
	userID, err := uc.issuer.ValidateRefreshToken(ctx, input.RefreshToken)
	if err != nil {
		return nil, err
	}
	role, err := uc.users.GetRoleByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domerrors.ErrUserNotFound
	}
	return uc.generate.Exchange(ctx, userID, *role, input.RefreshToken)
}
