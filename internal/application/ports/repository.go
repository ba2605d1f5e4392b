package ports

import (
	"context"

	"github.com/SlavaKuntsov/software-security/internal/domain"
)

// UsersRepository defines persistence for users. All lookups follow the
// nullable-result convention: (nil, nil) means not found.
type UsersRepository interface {
	// CreateWithToken inserts the user and its refresh-token row in one
	// transaction.
	CreateWithToken(ctx context.Context, user *domain.User, token *domain.RefreshToken) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetIDByEmail(ctx context.Context, email string) (*domain.UserID, error)
	GetRoleByID(ctx context.Context, id domain.UserID) (*domain.Role, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.UserID, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// Delete removes the user and its refresh-token row in one transaction.
	Delete(ctx context.Context, id domain.UserID) error
}

// TokensRepository defines storage for refresh tokens (one row per user).
type TokensRepository interface {
	GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	GetByUserID(ctx context.Context, userID domain.UserID) (*domain.RefreshToken, error)
	// Rotate overwrites the user's token value and expiry in place (row id and
	// creation time preserved, revoked flag cleared), creating the row when
	// absent. Used on the login and registration paths.
	Rotate(ctx context.Context, token *domain.RefreshToken) error
	// Exchange replaces the user's token only while the stored live value
	// still equals presented, in one conditional write. Returns
	// ErrInvalidToken when another request rotated or revoked the row first,
	// so two concurrent refreshes of the same token cannot both succeed.
	Exchange(ctx context.Context, next *domain.RefreshToken, presented string) error
	// Revoke marks the user's token revoked. Returns ErrTokenNotFound when no
	// row exists.
	Revoke(ctx context.Context, userID domain.UserID) error
}

// MessagesRepository defines persistence for chat messages.
type MessagesRepository interface {
	Save(ctx context.Context, msg *domain.ChatMessage) error
	History(ctx context.Context, a, b domain.UserID) ([]*domain.ChatMessage, error)
	MarkRead(ctx context.Context, receiverID, senderID domain.UserID) error
	UnreadCount(ctx context.Context, userID domain.UserID) (int, error)
}
