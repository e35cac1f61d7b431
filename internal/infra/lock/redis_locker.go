package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultKey = "health-remind:scheduler:tick"

var ErrNotHeld = errors.New("lock not held")

// unlockScript deletes the key only when it still carries our token, so an
// expired lease taken over by another process is left alone.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a single-key lease shared by every poller of one store.
type RedisLocker struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

func NewRedisLocker(client redis.UniversalClient, key string, ttl time.Duration) *RedisLocker {
	if key == "" {
		key = DefaultKey
	}

	return &RedisLocker{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// TryLock returns a release func when the lease was acquired and ok=false
// when another process holds it.
func (l *RedisLocker) TryLock(ctx context.Context) (func(context.Context) error, bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", l.key, err)
	}

	if !ok {
		slog.DebugContext(ctx, "lock held elsewhere",
			slog.String("key", l.key),
		)

		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		n, err := unlockScript.Run(ctx, l.client, []string{l.key}, token).Int()
		if err != nil {
			return fmt.Errorf("failed to release lock %s: %w", l.key, err)
		}

		if n == 0 {
			return ErrNotHeld
		}

		return nil
	}

	return release, true, nil
}
