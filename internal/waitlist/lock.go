package waitlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gymflow/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLockTimeout is returned when a schedule lock could not be taken in time.
var ErrLockTimeout = errors.New("timed out waiting for schedule lock")

// Locker serializes waitlist mutations per schedule.
type Locker interface {
	Lock(ctx context.Context, scheduleID uuid.UUID) (unlock func(), err error)
}

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLocker is a token lock shared by every instance pointing at the same Redis.
type RedisLocker struct {
	client *redis.Client
	script *redis.Script
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
	log    *zap.Logger
}

func NewRedisLocker(client *redis.Client, ttl, wait time.Duration, log *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = constants.TTL_WAITLIST_LOCK
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisLocker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
		ttl:    ttl,
		wait:   wait,
		retry:  25 * time.Millisecond,
		log:    log,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, scheduleID uuid.UUID) (func(), error) {
	key := constants.BuildWaitlistLockKey(scheduleID.String())
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire schedule lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		select {
		case <-time.After(l.retry):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return func() {
		// Released with a fresh context so a cancelled request still frees the key.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := l.script.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.log.Warn("failed to release schedule lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// LocalLocker serializes per schedule inside one process.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[uuid.UUID]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[uuid.UUID]chan struct{})}
}

func (l *LocalLocker) Lock(ctx context.Context, scheduleID uuid.UUID) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[scheduleID]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[scheduleID] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
