package chat

import (
	"context"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/domain"
	domerrors "github.com/SlavaKuntsov/software-security/internal/domain/errors"
)

// Service implements direct messaging between authenticated users.
type Service struct {
	messages ports.MessagesRepository
	users    ports.UsersRepository
}

func NewService(messages ports.MessagesRepository, users ports.UsersRepository) *Service {
	return &Service{messages: messages, users: users}
}

// SendMessage stores an unread message from sender to receiver. The receiver
// must exist.
func (s *Service) SendMessage(ctx context.Context, senderID, receiverID domain.UserID, content string) (*domain.ChatMessage, error) {
	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, domerrors.ErrUserNotFound
	}
	msg := domain.NewChatMessage(senderID, receiverID, content)
	if err := s.messages.Save(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// History returns the conversation between two users in both directions,
// ordered by timestamp.
func (s *Service) History(ctx context.Context, userID, partnerID domain.UserID) ([]*domain.ChatMessage, error) {
	return s.messages.History(ctx, userID, partnerID)
}

// MarkRead marks all messages from senderID to receiverID as read.
func (s *Service) MarkRead(ctx context.Context, receiverID, senderID domain.UserID) error {
	return s.messages.MarkRead(ctx, receiverID, senderID)
}

// UnreadCount returns how many unread messages userID has.
func (s *Service) UnreadCount(ctx context.Context, userID domain.UserID) (int, error) {
	return s.messages.UnreadCount(ctx, userID)
}

// Partners lists everyone the current user could message: all users except
// themselves and Admin accounts.
func (s *Service) Partners(ctx context.Context, currentID domain.UserID) ([]*domain.User, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	partners := make([]*domain.User, 0, len(all))
	for _, u := range all {
		if u.ID == currentID || u.Role == domain.RoleAdmin {
			continue
		}
		partners = append(partners, u)
	}
	return partners, nil
}
