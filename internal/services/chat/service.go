package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
	"github.com/ivankudzin/matrimony/internal/pkg/paging"
	mongorepo "github.com/ivankudzin/matrimony/internal/repo/mongo"
	pgrepo "github.com/ivankudzin/matrimony/internal/repo/postgres"
	"github.com/ivankudzin/matrimony/internal/services/realtime"
)

const (
	maxMessageLength   = 2000
	defaultMessagePage = 50
	maxMessagePage     = 200
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("conversation not found")
)

type TooManyRequestsError struct {
	RetryAfterSec int64
}

func (e TooManyRequestsError) Error() string {
	return "too many messages"
}

func (e TooManyRequestsError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooManyRequests(err error) (*TooManyRequestsError, bool) {
	var tm TooManyRequestsError
	if errors.As(err, &tm) {
		return &tm, true
	}
	return nil, false
}

type ConversationStore interface {
	FindByPair(ctx context.Context, a, b int64) (model.Conversation, error)
	AppendMessage(ctx context.Context, msg model.Message) (string, error)
	ListForUser(ctx context.Context, userID int64) ([]model.ConversationSummary, error)
	MarkRead(ctx context.Context, conversationID string, userID int64, at time.Time) error
}

type ProfileStore interface {
	GetManyByUserIDs(ctx context.Context, userIDs []int64) (map[int64]model.Profile, error)
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
}

type Summarizer interface {
	Summary(ctx context.Context, p model.Profile) model.ProfileSummary
}

type Publisher interface {
	Publish(userID int64, event string, payload any) int
}

type RateLimiter interface {
	AllowMessage(ctx context.Context, userID int64) (int64, bool, error)
}

type Dependencies struct {
	Conversations ConversationStore
	Profiles      ProfileStore
	Users         UserStore
	Summaries     Summarizer
	Logger        *zap.Logger
}

type Service struct {
	conversations ConversationStore
	profiles      ProfileStore
	users         UserStore
	summaries     Summarizer
	relay         Publisher
	limiter       RateLimiter
	logger        *zap.Logger
	now           func() time.Time
}

type ConversationItem struct {
	Conversation model.ConversationSummary
	OtherUser    model.ProfileSummary
}

type MessagePage struct {
	ConversationID string
	Messages       []model.Message
	Total          int
	Page           int
	Limit          int
}

type SentMessage struct {
	ConversationID string
	Message        model.Message
}

// ReceivedMessage is the relay payload for a newly stored message.
type ReceivedMessage struct {
	ChatID   string        `json:"chat_id"`
	Message  model.Message `json:"message"`
	SenderID int64         `json:"sender_id"`
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		conversations: deps.Conversations,
		profiles:      deps.Profiles,
		users:         deps.Users,
		summaries:     deps.Summaries,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *Service) AttachRelay(relay Publisher) {
	s.relay = relay
}

func (s *Service) AttachRateLimiter(limiter RateLimiter) {
	s.limiter = limiter
}

// ListConversations returns the user's conversations, most recent first, each
// with the other participant's profile card. Conversations whose counterpart
// has no profile any more are left out.
func (s *Service) ListConversations(ctx context.Context, userID int64) ([]ConversationItem, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.conversations == nil || s.profiles == nil || s.summaries == nil {
		return nil, fmt.Errorf("chat dependencies are not configured")
	}

	convs, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	ids := make([]int64, 0, len(convs))
	for _, c := range convs {
		if other := otherParticipant(c.Participants, userID); other > 0 {
			ids = append(ids, other)
		}
	}
	found, err := s.profiles.GetManyByUserIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load participant profiles: %w", err)
	}

	items := make([]ConversationItem, 0, len(convs))
	for _, c := range convs {
		p, ok := found[otherParticipant(c.Participants, userID)]
		if !ok {
			continue
		}
		items = append(items, ConversationItem{Conversation: c, OtherUser: s.summaries.Summary(ctx, p)})
	}
	return items, nil
}

// GetMessages pages the conversation between userID and otherUserID from the
// newest message backwards. A pair without a conversation yields an empty page.
func (s *Service) GetMessages(ctx context.Context, userID, otherUserID int64, page, limit int) (MessagePage, error) {
	if userID <= 0 || otherUserID <= 0 {
		return MessagePage{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.conversations == nil {
		return MessagePage{}, fmt.Errorf("conversation store is nil")
	}
	page, limit = paging.Normalize(page, limit, defaultMessagePage, maxMessagePage)
	out := MessagePage{Messages: []model.Message{}, Page: page, Limit: limit}

	conv, err := s.conversations.FindByPair(ctx, userID, otherUserID)
	if err != nil {
		if errors.Is(err, mongorepo.ErrConversationNotFound) {
			return out, nil
		}
		return MessagePage{}, fmt.Errorf("find conversation: %w", err)
	}

	out.ConversationID = conv.ID
	out.Total = len(conv.Messages)
	start, end := paging.Tail(out.Total, page, limit)
	out.Messages = append(out.Messages, conv.Messages[start:end]...)
	return out, nil
}

// SendMessage stores the message and then offers it to the relay. Relay
// delivery is best effort and never fails the call.
func (s *Service) SendMessage(ctx context.Context, senderID, receiverID int64, text string, typ enums.MessageType) (SentMessage, error) {
	text = strings.TrimSpace(text)
	if senderID <= 0 || receiverID <= 0 {
		return SentMessage{}, fmt.Errorf("receiver is required: %w", ErrValidation)
	}
	if senderID == receiverID {
		return SentMessage{}, fmt.Errorf("cannot message yourself: %w", ErrValidation)
	}
	if text == "" {
		return SentMessage{}, fmt.Errorf("message text is required: %w", ErrValidation)
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return SentMessage{}, fmt.Errorf("message exceeds %d characters: %w", maxMessageLength, ErrValidation)
	}
	if typ == "" {
		typ = enums.MessageTypeText
	}
	if !typ.Valid() {
		return SentMessage{}, fmt.Errorf("invalid message type %q: %w", typ, ErrValidation)
	}
	if s.conversations == nil {
		return SentMessage{}, fmt.Errorf("conversation store is nil")
	}

	if s.users != nil {
		if _, err := s.users.GetByID(ctx, receiverID); err != nil {
			if errors.Is(err, pgrepo.ErrUserNotFound) {
				return SentMessage{}, fmt.Errorf("receiver %d does not exist: %w", receiverID, ErrValidation)
			}
			return SentMessage{}, fmt.Errorf("load receiver: %w", err)
		}
	}

	if s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowMessage(ctx, senderID)
		if err != nil {
			return SentMessage{}, fmt.Errorf("check message rate: %w", err)
		}
		if !allowed {
			return SentMessage{}, TooManyRequestsError{RetryAfterSec: retryAfter}
		}
	}

	msg := model.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Type:       typ,
		SentAt:     s.now().UTC(),
	}
	convID, err := s.conversations.AppendMessage(ctx, msg)
	if err != nil {
		return SentMessage{}, fmt.Errorf("store message: %w", err)
	}

	if s.relay != nil {
		delivered := s.relay.Publish(receiverID, realtime.EventReceiveMessage, ReceivedMessage{
			ChatID:   convID,
			Message:  msg,
			SenderID: senderID,
		})
		s.logger.Debug("message relayed",
			zap.String("chat_id", convID),
			zap.Int64("receiver_id", receiverID),
			zap.Int("connections", delivered),
		)
	}

	return SentMessage{ConversationID: convID, Message: msg}, nil
}

func (s *Service) MarkRead(ctx context.Context, conversationID string, userID int64) error {
	if userID <= 0 || strings.TrimSpace(conversationID) == "" {
		return fmt.Errorf("invalid mark read request: %w", ErrValidation)
	}
	if s.conversations == nil {
		return fmt.Errorf("conversation store is nil")
	}

	if err := s.conversations.MarkRead(ctx, conversationID, userID, s.now().UTC()); err != nil {
		if errors.Is(err, mongorepo.ErrConversationNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func otherParticipant(participants []int64, userID int64) int64 {
	return model.Conversation{Participants: participants}.OtherParticipant(userID)
}
