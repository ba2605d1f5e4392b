package users

import (
	"context"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/domain"
	domerrors "github.com/SlavaKuntsov/software-security/internal/domain/errors"
)

// UpdateUserInput carries a partial profile update; nil fields are untouched.
type UpdateUserInput struct {
	ID          domain.UserID
	FirstName   *string
	LastName    *string
	DateOfBirth *string
}

// UpdateUser applies a partial profile update to an existing user.
type UpdateUser struct {
	users ports.UsersRepository
}

func NewUpdateUser(users ports.UsersRepository) *UpdateUser {
	return &UpdateUser{users: users}
}

func (uc *UpdateUser) Execute(ctx context.Context, input UpdateUserInput) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUserNotFound
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.DateOfBirth != nil {
		user.DateOfBirth = *input.DateOfBirth
	}
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
