package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	interestWindow = time.Hour
	messageWindow  = time.Minute
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

// Limiter enforces fixed per-user windows for interests and chat messages.
// A zero limit disables the corresponding check.
type Limiter struct {
	store             WindowStore
	interestsPerHour  int
	messagesPerMinute int
}

func NewLimiter(store WindowStore, interestsPerHour, messagesPerMinute int) *Limiter {
	if interestsPerHour < 0 {
		interestsPerHour = 0
	}
	if messagesPerMinute < 0 {
		messagesPerMinute = 0
	}

	return &Limiter{
		store:             store,
		interestsPerHour:  interestsPerHour,
		messagesPerMinute: messagesPerMinute,
	}
}

func (l *Limiter) AllowInterest(ctx context.Context, userID int64) (int64, bool, error) {
	return l.allow(ctx, interestKey(userID), userID, l.interestsPerHour, interestWindow)
}

func (l *Limiter) AllowMessage(ctx context.Context, userID int64) (int64, bool, error) {
	return l.allow(ctx, messageKey(userID), userID, l.messagesPerMinute, messageWindow)
}

// RetryAfterInterest reports how long the user has to wait before the next
// interest is accepted, without counting a hit.
func (l *Limiter) RetryAfterInterest(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}
	if l.interestsPerHour <= 0 {
		return 0, nil
	}

	count, ttl, err := l.store.WindowState(ctx, interestKey(userID))
	if err != nil {
		return 0, err
	}
	if count >= int64(l.interestsPerHour) {
		return ceilSeconds(ttl), nil
	}
	return 0, nil
}

func (l *Limiter) allow(ctx context.Context, key string, userID int64, limit int, window time.Duration) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}
	if limit <= 0 {
		return 0, true, nil
	}

	count, ttl, err := l.store.IncrementWindow(ctx, key, window)
	if err != nil {
		return 0, false, err
	}
	if count > int64(limit) {
		return ceilSeconds(ttl), false, nil
	}
	return 0, true, nil
}

func interestKey(userID int64) string {
	return "rate:interests:hour:" + strconv.FormatInt(userID, 10)
}

func messageKey(userID int64) string {
	return "rate:messages:min:" + strconv.FormatInt(userID, 10)
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}
