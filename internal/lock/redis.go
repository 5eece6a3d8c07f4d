package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"league-app-go/internal/domain/shared"
	"league-app-go/pkg/logger"
)

// ErrLockNotAcquired means another replica held the key for the whole wait
// budget. Callers may retry.
var ErrLockNotAcquired = fmt.Errorf("lock not acquired: %w", shared.ErrConflict)

const keyPrefix = "league:lock:"

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Redis is a lock shared by every replica using the same redis. A holder
// that dies releases the key when ttl expires.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	log    logger.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, log logger.Logger) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Redis{client: client, ttl: ttl, wait: ttl, log: log}
}

// Lock retries SET NX with capped backoff until the key is free, ctx is
// done, or the wait budget (one ttl) runs out.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := keyPrefix + key
	value := uuid.NewString()
	deadline := time.Now().Add(r.wait)
	backoff := 10 * time.Millisecond

	for {
		ok, err := r.client.SetNX(ctx, lockKey, value, r.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
			if backoff > 200*time.Millisecond {
				backoff = 200 * time.Millisecond
			}
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		result, err := releaseScript.Run(releaseCtx, r.client, []string{lockKey}, value).Int64()
		if err != nil {
			r.log.Warn("lock.release: redis error", "key", key, "err", err)
			return
		}
		if result == 0 {
			r.log.Warn("lock.release: lock expired before release", "key", key)
		}
	}, nil
}
