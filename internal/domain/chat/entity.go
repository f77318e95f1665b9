package chat

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a 1:1 chat between two users. There is at most one
// conversation per unordered user pair.
type Conversation struct {
	ID        int64
	UserA     uuid.UUID
	UserB     uuid.UUID
	CreatedAt time.Time
}

func (c Conversation) HasParticipant(id uuid.UUID) bool {
	return c.UserA == id || c.UserB == id
}

type Message struct {
	ID             int64
	ConversationID int64
	SenderID       uuid.UUID
	SenderUsername string
	Text           string
	IsRead         bool
	CreatedAt      time.Time
}
