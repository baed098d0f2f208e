package premium

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Expirer interface {
	ClearExpiredPremium(ctx context.Context, now time.Time) (int64, error)
}

// Job revokes premium from profiles whose premium window has passed.
type Job struct {
	expirer Expirer
	now     func() time.Time
	logger  *zap.Logger
}

func NewJob(expirer Expirer, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		expirer: expirer,
		now:     time.Now,
		logger:  logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.expirer == nil {
		return nil
	}

	cleared, err := j.expirer.ClearExpiredPremium(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("clear expired premium: %w", err)
	}
	if cleared > 0 {
		j.logger.Info("premium sweep completed", zap.Int64("cleared", cleared))
	}
	return nil
}
