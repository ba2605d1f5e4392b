package auth

import (
	"context"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/domain"
	domerrors "github.com/SlavaKuntsov/software-security/internal/domain/errors"
)

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Tokens TokenPair
	User   *domain.User
}

// Login authenticates an email/password pair. An unknown email and a wrong
// password are distinct failures: NotFound vs Unauthorized.
type Login struct {
	users    ports.UsersRepository
	hasher   ports.PasswordHasher
	generate *GenerateTokens
}

func NewLogin(users ports.UsersRepository, hasher ports.PasswordHasher, generate *GenerateTokens) *Login {
	return &Login{users: users, hasher: hasher, generate: generate}
}

func (uc *Login) Execute(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := uc.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUserNotFound
	}
	if !uc.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, domerrors.ErrInvalidCredentials
	}
	tokens, err := uc.generate.Execute(ctx, user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Tokens: *tokens, User: user}, nil
}
