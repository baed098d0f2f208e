package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

const displaySequenceKey = keyPrefix + "seq:profile_display_id"

// SequenceRepo hands out profile display numbers from a Redis counter.
type SequenceRepo struct {
	client *goredis.Client
	first  int64
}

// NewSequenceRepo returns a sequence whose first value is first.
func NewSequenceRepo(client *goredis.Client, first int64) *SequenceRepo {
	if first <= 0 {
		first = 1
	}
	return &SequenceRepo{client: client, first: first}
}

func (r *SequenceRepo) NextDisplayNumber(ctx context.Context) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}

	// SETNX seeds the counter one below the first value; INCR then yields it.
	pipe := r.client.TxPipeline()
	pipe.SetNX(ctx, displaySequenceKey, r.first-1, 0)
	next := pipe.Incr(ctx, displaySequenceKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment display sequence: %w", err)
	}

	return next.Val(), nil
}
