package model

import (
	"time"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
)

type Conversation struct {
	ID           string       `json:"id"`
	Participants []int64      `json:"participants"`
	Messages     []Message    `json:"messages"`
	LastMessage  *LastMessage `json:"last_message"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type Message struct {
	ID         string            `json:"id"`
	SenderID   int64             `json:"sender_id"`
	ReceiverID int64             `json:"receiver_id"`
	Text       string            `json:"message"`
	Type       enums.MessageType `json:"message_type"`
	IsRead     bool              `json:"is_read"`
	ReadAt     *time.Time        `json:"read_at"`
	SentAt     time.Time         `json:"sent_at"`
}

type LastMessage struct {
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sent_at"`
	SenderID int64     `json:"sender_id"`
}

// OtherParticipant returns the counterpart of userID, or 0 when userID is not a participant.
func (c Conversation) OtherParticipant(userID int64) int64 {
	found := false
	var other int64
	for _, id := range c.Participants {
		if id == userID {
			found = true
			continue
		}
		other = id
	}
	if !found {
		return 0
	}
	return other
}

func (c Conversation) HasParticipant(userID int64) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

func (c Conversation) UnreadFor(userID int64) int {
	count := 0
	for _, msg := range c.Messages {
		if msg.ReceiverID == userID && !msg.IsRead {
			count++
		}
	}
	return count
}

// ConversationSummary is a conversation without its message log, carrying the
// unread count for the user it was loaded for.
type ConversationSummary struct {
	ID           string       `json:"id"`
	Participants []int64      `json:"participants"`
	LastMessage  *LastMessage `json:"last_message"`
	UnreadCount  int          `json:"unread_count"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
