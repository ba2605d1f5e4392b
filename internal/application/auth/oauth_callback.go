package auth

import (
	"context"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/domain"
)

// OAuthUser is the minimal profile the provider gives us after it has
// verified the identity server-side.
type OAuthUser struct {
	Email     string
	FirstName string
	LastName  string
}

// OAuthMode records which path the callback took.
type OAuthMode string

const (
	OAuthModeLogin        OAuthMode = "login"
	OAuthModeRegistration OAuthMode = "registration"
)

type OAuthCallbackResult struct {
	Tokens TokenPair
	User   *domain.User
	Mode   OAuthMode
}

// OAuthCallback logs in an existing user by email or registers a new one with
// an empty password and AuthType Google. Both paths issue the same token pair.
type OAuthCallback struct {
	users    ports.UsersRepository
	register *Register
	generate *GenerateTokens
}

func NewOAuthCallback(users ports.UsersRepository, register *Register, generate *GenerateTokens) *OAuthCallback {
	return &OAuthCallback{users: users, register: register, generate: generate}
}

func (uc *OAuthCallback) Execute(ctx context.Context, oauth OAuthUser) (*OAuthCallbackResult, error) {
	user, err := uc.users.GetByEmail(ctx, oauth.Email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		tokens, err := uc.generate.Execute(ctx, user.ID, user.Role)
		if err != nil {
			return nil, err
		}
		return &OAuthCallbackResult{Tokens: *tokens, User: user, Mode: OAuthModeLogin}, nil
	}

	result, err := uc.register.Execute(ctx, RegisterInput{
		Email:     oauth.Email,
		FirstName: oauth.FirstName,
		LastName:  oauth.LastName,
		AuthType:  domain.AuthTypeGoogle,
	})
	if err != nil {
		return nil, err
	}
	return &OAuthCallbackResult{Tokens: result.Tokens, User: result.User, Mode: OAuthModeRegistration}, nil
}
