package ws

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"

	"sharespace/internal/pkg/jwt"
	"sharespace/internal/usecase"
)

// Handler upgrades chat websocket connections. Browsers cannot set an
// Authorization header on websocket dials, so the access token arrives
// as a query parameter.
type Handler struct {
	hub    *Hub
	jwt    jwt.Service
	chat   usecase.ChatUsecase
	logger *log.Logger
}

func NewHandler(hub *Hub, jwtSvc jwt.Service, chat usecase.ChatUsecase, logger *log.Logger) *Handler {
	return &Handler{hub: hub, jwt: jwtSvc, chat: chat, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type inboundFrame struct {
	Message string `json:"message"`
}

type chatEvent struct {
	Type           string `json:"type"`
	ConversationID int64  `json:"conversation_id"`
	Message        string `json:"message"`
	SenderID       string `json:"sender_id"`
	SenderUsername string `json:"sender_username"`
	Timestamp      string `json:"timestamp"`
}

func (h *Handler) HandleChatWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}

	conversationID, err := strconv.ParseInt(c.Params("conversation_id"), 10, 64)
	if err != nil || conversationID <= 0 {
		return fiber.ErrBadRequest
	}

	claims, err := h.jwt.ValidateToken(c.Query("token"))
	if err != nil || claims.TokenType != jwt.TokenTypeAccess {
		return fiber.ErrUnauthorized
	}

	if err := h.chat.VerifyParticipant(c.Context(), claims.UserID, conversationID); err != nil {
		switch err {
		case usecase.ErrNotFound:
			return fiber.ErrNotFound
		case usecase.ErrForbidden, usecase.ErrUnauthorized:
			return fiber.ErrForbidden
		default:
			return fiber.ErrInternalServerError
		}
	}

	room := roomName(conversationID)
	userID := claims.UserID

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if h.logger != nil {
				h.logger.Printf("WS upgrade error | conversation=%d error=%v", conversationID, err)
			}
			return
		}

		client := NewClient(h.hub, conn, room, userID, func(cl *Client, data []byte) {
			h.relay(cl, conversationID, data)
		})
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}

// relay persists an inbound chat frame and fans the stored message out
// to every participant connected to the conversation room.
func (h *Handler) relay(client *Client, conversationID int64, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil || frame.Message == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg, err := h.chat.SendMessage(ctx, client.UserID(), conversationID, frame.Message)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("WS message rejected | conversation=%d error=%v", conversationID, err)
		}
		return
	}

	evt := chatEvent{
		Type:           "chat_message",
		ConversationID: conversationID,
		Message:        msg.Text,
		SenderID:       msg.SenderID.String(),
		SenderUsername: msg.SenderUsername,
		Timestamp:      msg.CreatedAt.UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.hub.Broadcast(client.Room(), b)
}

func roomName(conversationID int64) string {
	return "chat_" + strconv.FormatInt(conversationID, 10)
}
