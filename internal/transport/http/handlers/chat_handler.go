package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	chatsvc "github.com/ivankudzin/matrimony/internal/services/chat"
	"github.com/ivankudzin/matrimony/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matrimony/internal/transport/http/errors"
)

type ChatHandler struct {
	service *chatsvc.Service
}

func NewChatHandler(service *chatsvc.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	convs, err := h.service.ListConversations(r.Context(), identity.UserID)
	if err != nil {
		handleChatError(w, err)
		return
	}

	items := make([]dto.ConversationResponse, 0, len(convs))
	for _, c := range convs {
		items = append(items, dto.ConversationResponse{
			ID:          c.Conversation.ID,
			OtherUser:   c.OtherUser,
			LastMessage: c.Conversation.LastMessage,
			UnreadCount: c.Conversation.UnreadCount,
		})
	}
	httperrors.Write(w, http.StatusOK, dto.ConversationsResponse{Items: items})
}

func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}
	otherUserID, ok := int64Param(r, "userID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	page, limit := pageParams(r)
	res, err := h.service.GetMessages(r.Context(), identity.UserID, otherUserID, page, limit)
	if err != nil {
		handleChatError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.MessagesResponse{
		ChatID:     res.ConversationID,
		Messages:   res.Messages,
		Pagination: dto.NewPagination(res.Page, res.Limit, int64(res.Total)),
	})
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	var req dto.SendMessageRequest
	if !decodeValid(w, r, &req) {
		return
	}

	res, err := h.service.SendMessage(r.Context(), identity.UserID, req.ReceiverID, req.Message, req.MessageType)
	if err != nil {
		handleChatError(w, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, dto.SendMessageResponse{
		ChatID:  res.ConversationID,
		Message: res.Message,
	})
}

func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}
	chatID := strings.TrimSpace(chi.URLParam(r, "chatID"))
	if chatID == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "chat id is required")
		return
	}

	if err := h.service.MarkRead(r.Context(), chatID, identity.UserID); err != nil {
		handleChatError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func handleChatError(w http.ResponseWriter, err error) {
	if tm, ok := chatsvc.IsTooManyRequests(err); ok {
		httperrors.WriteRateLimited(w, "TOO_MANY_MESSAGES", "message limit reached, slow down", tm.RetryAfter())
		return
	}

	switch {
	case errors.Is(err, chatsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, chatsvc.ErrNotFound):
		writeNotFound(w, "CHAT_NOT_FOUND", "conversation not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
