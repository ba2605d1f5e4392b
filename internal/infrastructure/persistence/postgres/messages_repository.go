package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/domain"
)

const (
	insertMessageSQL = `
INSERT INTO chat_messages (id, sender_id, receiver_id, content, sent_at, is_read)
VALUES ($1, $2, $3, $4, $5, $6)`

	historySQL = `
SELECT id, sender_id, receiver_id, content, sent_at, is_read
FROM chat_messages
WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
ORDER BY sent_at`

	markReadSQL = `
UPDATE chat_messages SET is_read = TRUE
WHERE receiver_id = $1 AND sender_id = $2 AND NOT is_read`

	unreadCountSQL = `
SELECT COUNT(*) FROM chat_messages WHERE receiver_id = $1 AND NOT is_read`
)

// MessagesRepository implements ports.MessagesRepository on pgx.
type MessagesRepository struct {
	pool *pgxpool.Pool
}

func NewMessagesRepository(pool *pgxpool.Pool) *MessagesRepository {
	return &MessagesRepository{pool: pool}
}

func (r *MessagesRepository) Save(ctx context.Context, msg *domain.ChatMessage) error {
	_, err := r.pool.Exec(ctx, insertMessageSQL,
		msg.ID.String(), msg.SenderID.String(), msg.ReceiverID.String(),
		msg.Content, msg.Timestamp, msg.IsRead,
	)
	return err
}

func (r *MessagesRepository) History(ctx context.Context, a, b domain.UserID) ([]*domain.ChatMessage, error) {
	rows, err := r.pool.Query(ctx, historySQL, a.String(), b.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var msgs []*domain.ChatMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *MessagesRepository) MarkRead(ctx context.Context, receiverID, senderID domain.UserID) error {
	_, err := r.pool.Exec(ctx, markReadSQL, receiverID.String(), senderID.String())
	return err
}

func (r *MessagesRepository) UnreadCount(ctx context.Context, userID domain.UserID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, unreadCountSQL, userID.String()).Scan(&count)
	return count, err
}

func scanMessage(row pgx.Row) (*domain.ChatMessage, error) {
	var (
		rawID       string
		rawSender   string
		rawReceiver string
		m           domain.ChatMessage
	)
	if err := row.Scan(&rawID, &rawSender, &rawReceiver, &m.Content, &m.Timestamp, &m.IsRead); err != nil {
		return nil, err
	}
	id, err := domain.ParseMessageID(rawID)
	if err != nil {
		return nil, err
	}
	sender, err := domain.ParseUserID(rawSender)
	if err != nil {
		return nil, err
	}
	receiver, err := domain.ParseUserID(rawReceiver)
	if err != nil {
		return nil, err
	}
	m.ID = id
	m.SenderID = sender
	m.ReceiverID = receiver
	return &m, nil
}

// Ensure MessagesRepository implements ports.MessagesRepository.
var _ ports.MessagesRepository = (*MessagesRepository)(nil)
