package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisWindow shares the window counters across instances. The window
// is fixed from the first request of an identity and expires by TTL.
type RedisWindow struct {
	cli redis.UniversalClient
}

func NewRedisWindow(cli redis.UniversalClient) RedisWindow {
	return RedisWindow{
		cli: cli,
	}
}

func (r RedisWindow) Increment(ctx context.Context, identity string, windowLength time.Duration) (int, error) {
	key := r.key(identity)
	value, err := r.cli.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.WithMessage(err, "incr")
	}

	if value == 1 {
		err := r.cli.ExpireNX(ctx, key, windowLength).Err()
		if err != nil {
			return 0, errors.WithMessage(err, "expire nx")
		}
	}

	return int(value), nil
}

func (r RedisWindow) key(identity string) string {
	return fmt.Sprintf("rate_limit:%s", identity)
}
