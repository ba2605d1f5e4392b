package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/domain"
	domerrors "github.com/SlavaKuntsov/software-security/internal/domain/errors"
)

type fakeMessages struct {
	saved []*domain.ChatMessage
}

func (f *fakeMessages) Save(_ context.Context, msg *domain.ChatMessage) error {
	cp := *msg
	f.saved = append(f.saved, &cp)
	return nil
}

func (f *fakeMessages) History(_ context.Context, a, b domain.UserID) ([]*domain.ChatMessage, error) {
	var out []*domain.ChatMessage
	for _, m := range f.saved {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMessages) MarkRead(_ context.Context, receiverID, senderID domain.UserID) error {
	for _, m := range f.saved {
		if m.ReceiverID == receiverID && m.SenderID == senderID {
			m.IsRead = true
		}
	}
	return nil
}

func (f *fakeMessages) UnreadCount(_ context.Context, userID domain.UserID) (int, error) {
	count := 0
	for _, m := range f.saved {
		if m.ReceiverID == userID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

// stubUsers serves only the lookups the chat service performs.
type stubUsers struct {
	ports.UsersRepository
	users map[domain.UserID]*domain.User
}

func newStubUsers(seed ...*domain.User) *stubUsers {
	s := &stubUsers{users: make(map[domain.UserID]*domain.User)}
	for _, u := range seed {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUsers) GetByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	return s.users[id], nil
}

func (s *stubUsers) List(context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

var _ ports.MessagesRepository = (*fakeMessages)(nil)

func TestSendMessageStoresUnread(t *testing.T) {
	t.Parallel()

	sender := &domain.User{ID: domain.NewUserID(), Role: domain.RoleUser}
	receiver := &domain.User{ID: domain.NewUserID(), Role: domain.RoleUser}
	messages := &fakeMessages{}
	svc := NewService(messages, newStubUsers(sender, receiver))

	msg, err := svc.SendMessage(context.Background(), sender.ID, receiver.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.False(t, msg.IsRead)

	count, err := svc.UnreadCount(context.Background(), receiver.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSendMessageUnknownReceiver(t *testing.T) {
	t.Parallel()

	sender := &domain.User{ID: domain.NewUserID(), Role: domain.RoleUser}
	svc := NewService(&fakeMessages{}, newStubUsers(sender))

	_, err := svc.SendMessage(context.Background(), sender.ID, domain.NewUserID(), "hello")
	assert.ErrorIs(t, err, domerrors.ErrUserNotFound)
}

func TestHistoryIncludesBothDirections(t *testing.T) {
	t.Parallel()

	a := &domain.User{ID: domain.NewUserID(), Role: domain.RoleUser}
	b := &domain.User{ID: domain.NewUserID(), Role: domain.RoleUser}
	c := &domain.User{ID: domain.NewUserID(), Role: domain.RoleUser}
	messages := &fakeMessages{}
	svc := NewService(messages, newStubUsers(a, b, c))

	_, err := svc.SendMessage(context.Background(), a.ID, b.ID, "one")
	require.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), b.ID, a.ID, "two")
	require.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), a.ID, c.ID, "other chat")
	require.NoError(t, err)

	history, err := svc.History(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestMarkReadClearsUnread(t *testing.T) {
	t.Parallel()

	sender := &domain.User{ID: domain.NewUserID(), Role: domain.RoleUser}
	receiver := &domain.User{ID: domain.NewUserID(), Role: domain.RoleUser}
	messages := &fakeMessages{}
	svc := NewService(messages, newStubUsers(sender, receiver))

	_, err := svc.SendMessage(context.Background(), sender.ID, receiver.ID, "hello")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(context.Background(), receiver.ID, sender.ID))

	count, err := svc.UnreadCount(context.Background(), receiver.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPartnersExcludesSelfAndAdmins(t *testing.T) {
	t.Parallel()

	me := &domain.User{ID: domain.NewUserID(), Role: domain.RoleUser}
	other := &domain.User{ID: domain.NewUserID(), Role: domain.RoleUser}
	admin := &domain.User{ID: domain.NewUserID(), Role: domain.RoleAdmin}
	svc := NewService(&fakeMessages{}, newStubUsers(me, other, admin))

	partners, err := svc.Partners(context.Background(), me.ID)
	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.Equal(t, other.ID, partners[0].ID)
}
