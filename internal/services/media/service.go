package media

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultURLTTL = 15 * time.Minute

var ErrValidation = errors.New("validation error")

type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Service turns stored photo references into URLs a client can fetch.
// References that are already absolute URLs are passed through unchanged;
// anything else is treated as an object key in the photo bucket.
type Service struct {
	storage Presigner
	ttl     time.Duration
	logger  *zap.Logger
}

func NewService(storage Presigner, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = defaultURLTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		storage: storage,
		ttl:     ttl,
		logger:  logger,
	}
}

// PhotoURL never fails: a key that cannot be signed resolves to an empty URL.
func (s *Service) PhotoURL(ctx context.Context, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if s == nil || s.storage == nil {
		return ""
	}

	signed, err := s.storage.PresignGet(ctx, strings.TrimPrefix(ref, "/"), s.ttl)
	if err != nil {
		s.logger.Warn("presign photo url failed", zap.String("object_key", ref), zap.Error(err))
		return ""
	}
	return signed
}
