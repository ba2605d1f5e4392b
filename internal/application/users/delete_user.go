package users

import (
	"context"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/domain"
	domerrors "github.com/SlavaKuntsov/software-security/internal/domain/errors"
)

// DeleteUser removes a user and its refresh-token row together. Deleting the
// last remaining Admin is refused so the system never loses its last
// administrator.
type DeleteUser struct {
	users ports.UsersRepository
}

func NewDeleteUser(users ports.UsersRepository) *DeleteUser {
	return &DeleteUser{users: users}
}

func (uc *DeleteUser) Execute(ctx context.Context, id domain.UserID) error {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domerrors.ErrUserNotFound
	}
	if user.Role == domain.RoleAdmin {
		admins, err := uc.users.ListByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return err
		}
		if len(admins) == 1 {
			return domerrors.ErrLastAdmin
		}
	}
	return uc.users.Delete(ctx, id)
}
