package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sharespace/internal/database"
	"sharespace/internal/domain/chat"
)

var ErrConversationNotFound = errors.New("conversation not found")

type ConversationRepository interface {
	Create(ctx context.Context, userA, userB uuid.UUID) (chat.Conversation, error)
	FindByPair(ctx context.Context, userA, userB uuid.UUID) (chat.Conversation, error)
	GetByID(ctx context.Context, id int64) (chat.Conversation, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]chat.Conversation, error)
}

type MessageRepository interface {
	Create(ctx context.Context, conversationID int64, senderID uuid.UUID, text string) (chat.Message, error)
	ListByConversation(ctx context.Context, conversationID int64) ([]chat.Message, error)
}

type PostgresConversationRepository struct {
	db database.DB
}

func NewPostgresConversationRepository(db database.DB) *PostgresConversationRepository {
	return &PostgresConversationRepository{db: db}
}

func (r *PostgresConversationRepository) Create(ctx context.Context, userA, userB uuid.UUID) (chat.Conversation, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO conversations (user_a, user_b) VALUES ($1, $2)
		 RETURNING id, user_a, user_b, created_at`,
		userA, userB,
	)
	return scanConversation(row)
}

func (r *PostgresConversationRepository) FindByPair(ctx context.Context, userA, userB uuid.UUID) (chat.Conversation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_a, user_b, created_at FROM conversations
		 WHERE (user_a = $1 AND user_b = $2) OR (user_a = $2 AND user_b = $1)`,
		userA, userB,
	)
	return scanConversation(row)
}

func (r *PostgresConversationRepository) GetByID(ctx context.Context, id int64) (chat.Conversation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_a, user_b, created_at FROM conversations WHERE id = $1`, id)
	return scanConversation(row)
}

func (r *PostgresConversationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]chat.Conversation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_a, user_b, created_at FROM conversations
		 WHERE user_a = $1 OR user_b = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]chat.Conversation, 0)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type PostgresMessageRepository struct {
	db database.DB
}

func NewPostgresMessageRepository(db database.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, conversationID int64, senderID uuid.UUID, text string) (chat.Message, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO messages (conversation_id, sender_id, text) VALUES ($1, $2, $3)
		 RETURNING id, conversation_id, sender_id,
			(SELECT username FROM users WHERE id = $2), text, is_read, created_at`,
		conversationID, senderID, text,
	)
	return scanMessage(row)
}

func (r *PostgresMessageRepository) ListByConversation(ctx context.Context, conversationID int64) ([]chat.Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT m.id, m.conversation_id, m.sender_id, u.username, m.text, m.is_read, m.created_at
		 FROM messages m JOIN users u ON u.id = m.sender_id
		 WHERE m.conversation_id = $1 ORDER BY m.created_at ASC`,
		conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]chat.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type chatRow interface {
	Scan(dest ...any) error
}

func scanConversation(row chatRow) (chat.Conversation, error) {
	var c chat.Conversation
	if err := row.Scan(&c.ID, &c.UserA, &c.UserB, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return chat.Conversation{}, ErrConversationNotFound
		}
		return chat.Conversation{}, err
	}
	return c, nil
}

func scanMessage(row chatRow) (chat.Message, error) {
	var m chat.Message
	if err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderUsername, &m.Text, &m.IsRead, &m.CreatedAt); err != nil {
		return chat.Message{}, err
	}
	return m, nil
}
