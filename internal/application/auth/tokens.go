package auth

import (
	"context"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/domain"
)

// TokenPair is the result of every successful authentication flow.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// GenerateTokens issues a fresh access token and rotates the user's refresh
// token in place: an existing row keeps its id and creation time, only the
// value and expiry change. A user with no row gets one.
type GenerateTokens struct {
	issuer ports.TokenIssuer
	tokens ports.TokensRepository
}

func NewGenerateTokens(issuer ports.TokenIssuer, tokens ports.TokensRepository) *GenerateTokens {
	return &GenerateTokens{issuer: issuer, tokens: tokens}
}

func (uc *GenerateTokens) Execute(ctx context.Context, userID domain.UserID, role domain.Role) (*TokenPair, error) {
	pair, row, err := uc.issue(userID, role)
	if err != nil {
		return nil, err
	}
	if err := uc.tokens.Rotate(ctx, row); err != nil {
		return nil, err
	}
	return pair, nil
}

// Exchange issues a pair like Execute, but commits the rotation only while
// the stored refresh token still equals presented. Of two concurrent
// refreshes of one token, exactly one commits; the other gets
// ErrInvalidToken from the store.
func (uc *GenerateTokens) Exchange(ctx context.Context, userID domain.UserID, role domain.Role, presented string) (*TokenPair, error) {
	pair, row, err := uc.issue(userID, role)
	if err != nil {
		return nil, err
	}
	if err := uc.tokens.Exchange(ctx, row, presented); err != nil {
		return nil, err
	}
	return pair, nil
}

func (uc *GenerateTokens) issue(userID domain.UserID, role domain.Role) (*TokenPair, *domain.RefreshToken, error) {
	accessToken, err := uc.issuer.GenerateAccessToken(userID, role)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := uc.issuer.GenerateRefreshToken()
	if err != nil {
		return nil, nil, err
	}
	row := domain.NewRefreshToken(userID, refreshToken, uc.issuer.RefreshTokenTTL())
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, row, nil
}
