package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"sharespace/internal/delivery/http/dto"
	"sharespace/internal/delivery/http/middleware"
	"sharespace/internal/pkg/response"
	"sharespace/internal/usecase"
)

type ChatHandler struct {
	chat usecase.ChatUsecase
}

type createConversationRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

func NewChatHandler(chat usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/conversations", h.CreateConversation)
	r.Get("/conversations", h.MyConversations)
	r.Get("/conversations/:id/messages", h.Messages)
}

func (h *ChatHandler) CreateConversation(c fiber.Ctx) error {
	userID := middleware.UserIDFromCtx(c)

	var req createConversationRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	view, created, err := h.chat.CreateConversation(c.Context(), userID, req.UserID)
	if err != nil {
		return mapUsecaseError(err)
	}

	status := fiber.StatusOK
	msg := response.MessageOK
	if created {
		status = fiber.StatusCreated
		msg = response.MessageCreated
	}
	return response.Success(c, status, msg, dto.NewConversationResponse(view))
}

func (h *ChatHandler) MyConversations(c fiber.Ctx) error {
	userID := middleware.UserIDFromCtx(c)

	views, err := h.chat.MyConversations(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewConversationsResponse(views))
}

func (h *ChatHandler) Messages(c fiber.Ctx) error {
	userID := middleware.UserIDFromCtx(c)

	conversationID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || conversationID <= 0 {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid conversation id", nil, err)
	}

	msgs, err := h.chat.Messages(c.Context(), userID, conversationID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMessagesResponse(msgs))
}
