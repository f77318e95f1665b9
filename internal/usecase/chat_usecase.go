package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"sharespace/internal/domain/chat"
	"sharespace/internal/repository"
)

// ConversationView is a conversation with both participant usernames
// resolved for the presentation layer.
type ConversationView struct {
	Conversation chat.Conversation
	UsernameA    string
	UsernameB    string
}

type ChatUsecase interface {
	// CreateConversation is idempotent per unordered user pair: if a
	// conversation already exists it is returned instead of creating a
	// duplicate.
	CreateConversation(ctx context.Context, userID, otherID uuid.UUID) (ConversationView, bool, error)
	MyConversations(ctx context.Context, userID uuid.UUID) ([]ConversationView, error)
	Messages(ctx context.Context, userID uuid.UUID, conversationID int64) ([]chat.Message, error)
	// SendMessage persists a message after verifying the sender is a
	// participant. Used by the websocket relay.
	SendMessage(ctx context.Context, senderID uuid.UUID, conversationID int64, text string) (chat.Message, error)
	VerifyParticipant(ctx context.Context, userID uuid.UUID, conversationID int64) error
}

type Chat struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	users         repository.UserRepository
}

func NewChatUsecase(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
) *Chat {
	return &Chat{conversations: conversations, messages: messages, users: users}
}

func (s *Chat) CreateConversation(ctx context.Context, userID, otherID uuid.UUID) (ConversationView, bool, error) {
	if userID == uuid.Nil {
		return ConversationView{}, false, ErrUnauthorized
	}
	if otherID == uuid.Nil || otherID == userID {
		return ConversationView{}, false, ErrInvalidInput
	}

	if _, err := s.users.GetByID(ctx, otherID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ConversationView{}, false, ErrNotFound
		}
		return ConversationView{}, false, ErrInternal
	}

	existing, err := s.conversations.FindByPair(ctx, userID, otherID)
	if err == nil {
		view, verr := s.view(ctx, existing)
		if verr != nil {
			return ConversationView{}, false, ErrInternal
		}
		return view, false, nil
	}
	if !errors.Is(err, repository.ErrConversationNotFound) {
		return ConversationView{}, false, ErrInternal
	}

	created, err := s.conversations.Create(ctx, userID, otherID)
	if err != nil {
		// A concurrent create may have won the unique pair index.
		if existing, findErr := s.conversations.FindByPair(ctx, userID, otherID); findErr == nil {
			view, verr := s.view(ctx, existing)
			if verr != nil {
				return ConversationView{}, false, ErrInternal
			}
			return view, false, nil
		}
		return ConversationView{}, false, ErrInternal
	}

	view, err := s.view(ctx, created)
	if err != nil {
		return ConversationView{}, false, ErrInternal
	}
	return view, true, nil
}

func (s *Chat) MyConversations(ctx context.Context, userID uuid.UUID) ([]ConversationView, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	convs, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}

	out := make([]ConversationView, 0, len(convs))
	for _, c := range convs {
		view, err := s.view(ctx, c)
		if err != nil {
			return nil, ErrInternal
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *Chat) Messages(ctx context.Context, userID uuid.UUID, conversationID int64) ([]chat.Message, error) {
	if err := s.VerifyParticipant(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, ErrInternal
	}
	return msgs, nil
}

func (s *Chat) SendMessage(ctx context.Context, senderID uuid.UUID, conversationID int64, text string) (chat.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chat.Message{}, ErrInvalidInput
	}
	if err := s.VerifyParticipant(ctx, senderID, conversationID); err != nil {
		return chat.Message{}, err
	}

	msg, err := s.messages.Create(ctx, conversationID, senderID, text)
	if err != nil {
		return chat.Message{}, ErrInternal
	}
	return msg, nil
}

func (s *Chat) VerifyParticipant(ctx context.Context, userID uuid.UUID, conversationID int64) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}

	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}
	if !conv.HasParticipant(userID) {
		return ErrForbidden
	}
	return nil
}

func (s *Chat) view(ctx context.Context, c chat.Conversation) (ConversationView, error) {
	ua, err := s.users.GetByID(ctx, c.UserA)
	if err != nil {
		return ConversationView{}, err
	}
	ub, err := s.users.GetByID(ctx, c.UserB)
	if err != nil {
		return ConversationView{}, err
	}
	return ConversationView{Conversation: c, UsernameA: ua.Username, UsernameB: ub.Username}, nil
}
