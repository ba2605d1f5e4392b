package auth

import (
	"context"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/domain"
	domerrors "github.com/SlavaKuntsov/software-security/internal/domain/errors"
)

type RegisterInput struct {
	Email       string
	Password    string // empty for OAuth registrations
	FirstName   string
	LastName    string
	DateOfBirth string
	AuthType    domain.AuthType
}

type RegisterResult struct {
	Tokens TokenPair
	User   *domain.User
}

// Register creates a user with role User and its refresh-token row in one
// transaction, then returns the issued token pair.
type Register struct {
	users  ports.UsersRepository
	hasher ports.PasswordHasher
	issuer ports.TokenIssuer
}

func NewRegister(users ports.UsersRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer) *Register {
	return &Register{users: users, hasher: hasher, issuer: issuer}
}

func (uc *Register) Execute(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	existing, err := uc.users.GetIDByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.ErrUserExists
	}

	// Blank password means an OAuth-only account: no hash is stored.
	passwordHash := ""
	if input.Password != "" {
		passwordHash, err = uc.hasher.Hash(input.Password)
		if err != nil {
			return nil, err
		}
	}

	user := &domain.User{
		ID:           domain.NewUserID(),
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
		AuthType:     input.AuthType,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		DateOfBirth:  input.DateOfBirth,
	}

	accessToken, err := uc.issuer.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := uc.issuer.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	row := domain.NewRefreshToken(user.ID, refreshToken, uc.issuer.RefreshTokenTTL())

	if err := uc.users.CreateWithToken(ctx, user, row); err != nil {
		return nil, err
	}
	return &RegisterResult{
		Tokens: TokenPair{AccessToken: accessToken, RefreshToken: refreshToken},
		User:   user,
	}, nil
}
