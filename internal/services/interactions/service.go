package interactions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
	"github.com/ivankudzin/matrimony/internal/pkg/paging"
	pgrepo "github.com/ivankudzin/matrimony/internal/repo/postgres"
)

const (
	maxInterestMessage = 500
	defaultPageLimit   = 20
	maxPageLimit       = 100
)

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrProfileRequired  = errors.New("own profile required")
	ErrAlreadyExists    = errors.New("interaction already exists")
	ErrSelfTarget       = errors.New("cannot target own profile")
	ErrForbidden        = errors.New("interest is not addressed to user")
	ErrAlreadyResponded = errors.New("interest already answered")
)

type TooManyRequestsError struct {
	RetryAfterSec int64
}

func (e TooManyRequestsError) Error() string {
	return "too many interests"
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

type InteractionStore interface {
	CreateInterest(ctx context.Context, fromUserID, toUserID int64, message string, at time.Time) (model.Interaction, error)
	GetByID(ctx context.Context, id int64) (model.Interaction, error)
	RespondPending(ctx context.Context, id int64, status enums.InteractionStatus, at time.Time) (model.Interaction, error)
	Activate(ctx context.Context, fromUserID, toUserID int64, typ enums.InteractionType, at time.Time) (model.Interaction, bool, error)
	Remove(ctx context.Context, fromUserID, toUserID int64, typ enums.InteractionType, at time.Time) (model.Interaction, error)
	RecordView(ctx context.Context, viewerUserID, targetUserID int64, at time.Time) (model.Interaction, error)
	List(ctx context.Context, filter pgrepo.InteractionFilter, offset, limit int) ([]model.Interaction, int64, error)
}

type ProfileStore interface {
	GetByID(ctx context.Context, id int64) (model.Profile, error)
	GetByUserID(ctx context.Context, userID int64) (model.Profile, error)
	GetManyByUserIDs(ctx context.Context, userIDs []int64) (map[int64]model.Profile, error)
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
}

type InterestNotifier interface {
	NotifyInterest(ctx context.Context, email, senderName string) error
}

type RateLimiter interface {
	AllowInterest(ctx context.Context, userID int64) (int64, bool, error)
}

type Summarizer interface {
	Summary(ctx context.Context, p model.Profile) model.ProfileSummary
}

type Dependencies struct {
	Interactions InteractionStore
	Profiles     ProfileStore
	Users        UserStore
	Summaries    Summarizer
	Logger       *zap.Logger
}

type Service struct {
	interactions InteractionStore
	profiles     ProfileStore
	users        UserStore
	summaries    Summarizer
	notifier     InterestNotifier
	limiter      RateLimiter
	logger       *zap.Logger
	now          func() time.Time
}

type Item struct {
	Interaction model.Interaction
	Profile     model.ProfileSummary
}

type Page struct {
	Items []Item
	Total int64
	Page  int
	Limit int
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		interactions: deps.Interactions,
		profiles:     deps.Profiles,
		users:        deps.Users,
		summaries:    deps.Summaries,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *Service) AttachNotifier(notifier InterestNotifier) {
	s.notifier = notifier
}

func (s *Service) AttachRateLimiter(limiter RateLimiter) {
	s.limiter = limiter
}

func (s *Service) SendInterest(ctx context.Context, userID, profileID int64, message string) (model.Interaction, error) {
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) > maxInterestMessage {
		return model.Interaction{}, fmt.Errorf("message exceeds %d characters: %w", maxInterestMessage, ErrValidation)
	}

	sender, err := s.requireOwnProfile(ctx, userID)
	if err != nil {
		return model.Interaction{}, err
	}
	target, err := s.targetProfile(ctx, profileID)
	if err != nil {
		return model.Interaction{}, err
	}
	if target.UserID == userID {
		return model.Interaction{}, ErrSelfTarget
	}

	if s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowInterest(ctx, userID)
		if err != nil {
			return model.Interaction{}, fmt.Errorf("check interest rate: %w", err)
		}
		if !allowed {
			return model.Interaction{}, TooManyRequestsError{RetryAfterSec: retryAfter}
		}
	}

	item, err := s.interactions.CreateInterest(ctx, userID, target.UserID, message, s.now().UTC())
	if err != nil {
		if errors.Is(err, pgrepo.ErrInteractionExists) {
			return model.Interaction{}, ErrAlreadyExists
		}
		return model.Interaction{}, fmt.Errorf("create interest: %w", err)
	}

	s.notifyInterest(ctx, target.UserID, sender.FullName())
	return item, nil
}

// RespondToInterest lets the recipient accept or reject a pending interest.
// Repeating the recorded answer succeeds without a write; a different answer
// after the fact is ErrAlreadyResponded.
func (s *Service) RespondToInterest(ctx context.Context, userID, interactionID int64, status enums.InteractionStatus) (model.Interaction, error) {
	if userID <= 0 || interactionID <= 0 {
		return model.Interaction{}, fmt.Errorf("invalid identifiers: %w", ErrValidation)
	}
	if status != enums.InteractionStatusAccepted && status != enums.InteractionStatusRejected {
		return model.Interaction{}, fmt.Errorf("status must be accepted or rejected: %w", ErrValidation)
	}
	if s.interactions == nil {
		return model.Interaction{}, fmt.Errorf("interaction store is nil")
	}

	current, err := s.loadInterest(ctx, interactionID)
	if err != nil {
		return model.Interaction{}, err
	}
	if current.ToUserID != userID {
		return model.Interaction{}, ErrForbidden
	}

	if current.Status == enums.InteractionStatusPending {
		updated, err := s.interactions.RespondPending(ctx, interactionID, status, s.now().UTC())
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, pgrepo.ErrInteractionNotFound) {
			return model.Interaction{}, fmt.Errorf("respond to interest: %w", err)
		}
		// Answered concurrently; judge against the stored answer.
		if current, err = s.loadInterest(ctx, interactionID); err != nil {
			return model.Interaction{}, err
		}
	}

	switch current.Status {
	case status:
		return current, nil
	case enums.InteractionStatusAccepted, enums.InteractionStatusRejected:
		return model.Interaction{}, ErrAlreadyResponded
	default:
		return model.Interaction{}, ErrNotFound
	}
}

func (s *Service) AddShortlist(ctx context.Context, userID, profileID int64) (model.Interaction, error) {
	return s.add(ctx, userID, profileID, enums.InteractionShortlist, true)
}

func (s *Service) RemoveShortlist(ctx context.Context, userID, profileID int64) (model.Interaction, error) {
	return s.remove(ctx, userID, profileID, enums.InteractionShortlist)
}

func (s *Service) AddFavorite(ctx context.Context, userID, profileID int64) (model.Interaction, error) {
	return s.add(ctx, userID, profileID, enums.InteractionFavorite, true)
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, profileID int64) (model.Interaction, error) {
	return s.remove(ctx, userID, profileID, enums.InteractionFavorite)
}

func (s *Service) Block(ctx context.Context, userID, profileID int64) (model.Interaction, error) {
	return s.add(ctx, userID, profileID, enums.InteractionBlock, false)
}

func (s *Service) Unblock(ctx context.Context, userID, profileID int64) (model.Interaction, error) {
	return s.remove(ctx, userID, profileID, enums.InteractionBlock)
}

// RecordView counts one view of profileID by viewerUserID. Owners viewing
// their own profile are not counted.
func (s *Service) RecordView(ctx context.Context, viewerUserID, profileID int64) error {
	if viewerUserID <= 0 {
		return fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	target, err := s.targetProfile(ctx, profileID)
	if err != nil {
		return err
	}
	if target.UserID == viewerUserID {
		return nil
	}
	if _, err := s.interactions.RecordView(ctx, viewerUserID, target.UserID, s.now().UTC()); err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}

func (s *Service) ListSentInterests(ctx context.Context, userID int64, page, limit int) (Page, error) {
	return s.list(ctx, pgrepo.InteractionFilter{
		FromUserID: userID,
		Type:       enums.InteractionInterest,
		Statuses:   answeredOrPending,
	}, userID, page, limit)
}

func (s *Service) ListReceivedInterests(ctx context.Context, userID int64, page, limit int) (Page, error) {
	return s.list(ctx, pgrepo.InteractionFilter{
		ToUserID: userID,
		Type:     enums.InteractionInterest,
		Statuses: answeredOrPending,
	}, userID, page, limit)
}

func (s *Service) ListShortlists(ctx context.Context, userID int64, page, limit int) (Page, error) {
	return s.listActive(ctx, userID, enums.InteractionShortlist, page, limit)
}

func (s *Service) ListFavorites(ctx context.Context, userID int64, page, limit int) (Page, error) {
	return s.listActive(ctx, userID, enums.InteractionFavorite, page, limit)
}

func (s *Service) ListBlocked(ctx context.Context, userID int64, page, limit int) (Page, error) {
	return s.listActive(ctx, userID, enums.InteractionBlock, page, limit)
}

var answeredOrPending = []enums.InteractionStatus{
	enums.InteractionStatusPending,
	enums.InteractionStatusAccepted,
	enums.InteractionStatusRejected,
}

func (s *Service) add(ctx context.Context, userID, profileID int64, typ enums.InteractionType, needsProfile bool) (model.Interaction, error) {
	if needsProfile {
		if _, err := s.requireOwnProfile(ctx, userID); err != nil {
			return model.Interaction{}, err
		}
	} else if userID <= 0 {
		return model.Interaction{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}

	target, err := s.targetProfile(ctx, profileID)
	if err != nil {
		return model.Interaction{}, err
	}
	if target.UserID == userID {
		return model.Interaction{}, ErrSelfTarget
	}

	item, transitioned, err := s.interactions.Activate(ctx, userID, target.UserID, typ, s.now().UTC())
	if err != nil {
		return model.Interaction{}, fmt.Errorf("activate %s: %w", typ, err)
	}
	if transitioned {
		s.logger.Debug("interaction activated",
			zap.String("type", string(typ)),
			zap.Int64("from_user_id", userID),
			zap.Int64("to_user_id", target.UserID),
		)
	}
	return item, nil
}

func (s *Service) remove(ctx context.Context, userID, profileID int64, typ enums.InteractionType) (model.Interaction, error) {
	if userID <= 0 {
		return model.Interaction{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	target, err := s.targetProfile(ctx, profileID)
	if err != nil {
		return model.Interaction{}, err
	}

	item, err := s.interactions.Remove(ctx, userID, target.UserID, typ, s.now().UTC())
	if err != nil {
		if errors.Is(err, pgrepo.ErrInteractionNotFound) {
			return model.Interaction{}, ErrNotFound
		}
		return model.Interaction{}, fmt.Errorf("remove %s: %w", typ, err)
	}
	return item, nil
}

func (s *Service) listActive(ctx context.Context, userID int64, typ enums.InteractionType, page, limit int) (Page, error) {
	return s.list(ctx, pgrepo.InteractionFilter{
		FromUserID: userID,
		Type:       typ,
		Statuses:   []enums.InteractionStatus{enums.InteractionStatusActive},
	}, userID, page, limit)
}

// list pages rows matching filter and hydrates each with the profile of the
// user on the other side from userID. Rows whose profile is gone are skipped.
func (s *Service) list(ctx context.Context, filter pgrepo.InteractionFilter, userID int64, page, limit int) (Page, error) {
	if userID <= 0 {
		return Page{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.interactions == nil || s.profiles == nil || s.summaries == nil {
		return Page{}, fmt.Errorf("interaction dependencies are not configured")
	}
	page, limit = paging.Normalize(page, limit, defaultPageLimit, maxPageLimit)

	rows, total, err := s.interactions.List(ctx, filter, paging.Offset(page, limit), limit)
	if err != nil {
		return Page{}, fmt.Errorf("list interactions: %w", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, counterpart(row, userID))
	}
	found, err := s.profiles.GetManyByUserIDs(ctx, ids)
	if err != nil {
		return Page{}, fmt.Errorf("load counterpart profiles: %w", err)
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		p, ok := found[counterpart(row, userID)]
		if !ok {
			continue
		}
		items = append(items, Item{Interaction: row, Profile: s.summaries.Summary(ctx, p)})
	}

	return Page{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) requireOwnProfile(ctx context.Context, userID int64) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.profiles == nil || s.interactions == nil {
		return model.Profile{}, fmt.Errorf("interaction dependencies are not configured")
	}
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrProfileRequired
		}
		return model.Profile{}, fmt.Errorf("load own profile: %w", err)
	}
	return p, nil
}

func (s *Service) targetProfile(ctx context.Context, profileID int64) (model.Profile, error) {
	if profileID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid profile id: %w", ErrValidation)
	}
	if s.profiles == nil || s.interactions == nil {
		return model.Profile{}, fmt.Errorf("interaction dependencies are not configured")
	}
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("load target profile: %w", err)
	}
	return p, nil
}

func (s *Service) loadInterest(ctx context.Context, interactionID int64) (model.Interaction, error) {
	item, err := s.interactions.GetByID(ctx, interactionID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrInteractionNotFound) {
			return model.Interaction{}, ErrNotFound
		}
		return model.Interaction{}, fmt.Errorf("load interaction: %w", err)
	}
	if item.Type != enums.InteractionInterest {
		return model.Interaction{}, ErrNotFound
	}
	return item, nil
}

// notifyInterest hands the email to the notifier. Failures are logged only.
func (s *Service) notifyInterest(ctx context.Context, recipientUserID int64, senderName string) {
	if s.notifier == nil || s.users == nil {
		return
	}
	recipient, err := s.users.GetByID(ctx, recipientUserID)
	if err != nil {
		s.logger.Warn("load interest recipient failed", zap.Int64("user_id", recipientUserID), zap.Error(err))
		return
	}
	if recipient.Email == "" {
		return
	}
	if err := s.notifier.NotifyInterest(ctx, recipient.Email, senderName); err != nil {
		s.logger.Warn("interest notification dropped", zap.Int64("user_id", recipientUserID), zap.Error(err))
	}
}

func counterpart(item model.Interaction, userID int64) int64 {
	if item.FromUserID == userID {
		return item.ToUserID
	}
	return item.FromUserID
}
