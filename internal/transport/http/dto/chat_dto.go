package dto

import (
	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
)

type SendMessageRequest struct {
	ReceiverID  int64             `json:"receiver_id" validate:"required,gt=0"`
	Message     string            `json:"message" validate:"required,max=2000"`
	MessageType enums.MessageType `json:"message_type"`
}

type SendMessageResponse struct {
	ChatID  string        `json:"chat_id"`
	Message model.Message `json:"message"`
}

type ConversationResponse struct {
	ID          string               `json:"id"`
	OtherUser   model.ProfileSummary `json:"other_user"`
	LastMessage *model.LastMessage   `json:"last_message"`
	UnreadCount int                  `json:"unread_count"`
}

type ConversationsResponse struct {
	Items []ConversationResponse `json:"items"`
}

type MessagesResponse struct {
	ChatID     string          `json:"chat_id"`
	Messages   []model.Message `json:"messages"`
	Pagination Pagination      `json:"pagination"`
}
