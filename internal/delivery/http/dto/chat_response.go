package dto

import (
	"time"

	"github.com/google/uuid"

	"sharespace/internal/domain/chat"
	"sharespace/internal/usecase"
)

type ConversationResponse struct {
	ID        int64     `json:"id"`
	UserA     uuid.UUID `json:"user_a"`
	UserB     uuid.UUID `json:"user_b"`
	UsernameA string    `json:"username_a"`
	UsernameB string    `json:"username_b"`
	CreatedAt time.Time `json:"created_at"`
}

func NewConversationResponse(v usecase.ConversationView) ConversationResponse {
	return ConversationResponse{
		ID:        v.Conversation.ID,
		UserA:     v.Conversation.UserA,
		UserB:     v.Conversation.UserB,
		UsernameA: v.UsernameA,
		UsernameB: v.UsernameB,
		CreatedAt: v.Conversation.CreatedAt,
	}
}

func NewConversationsResponse(views []usecase.ConversationView) []ConversationResponse {
	out := make([]ConversationResponse, len(views))
	for i, v := range views {
		out[i] = NewConversationResponse(v)
	}
	return out
}

type MessageResponse struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	Text           string    `json:"text"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewMessagesResponse(msgs []chat.Message) []MessageResponse {
	out := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = MessageResponse{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			SenderID:       m.SenderID,
			SenderUsername: m.SenderUsername,
			Text:           m.Text,
			IsRead:         m.IsRead,
			CreatedAt:      m.CreatedAt,
		}
	}
	return out
}
