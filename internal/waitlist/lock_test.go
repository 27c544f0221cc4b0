package waitlist

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisLocker(t *testing.T, wait time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLocker(client, 10*time.Second, wait, zap.NewNop()), mr
}

func TestRedisLockerExcludesSecondHolder(t *testing.T) {
	locker, mr := newTestRedisLocker(t, 50*time.Millisecond)
	ctx := context.Background()
	scheduleID := uuid.New()

	unlock, err := locker.Lock(ctx, scheduleID)
	require.NoError(t, err)
	assert.True(t, mr.Exists("gymflow:waitlist:lock:"+scheduleID.String()))

	_, err = locker.Lock(ctx, scheduleID)
	assert.ErrorIs(t, err, ErrLockTimeout)

	// Other schedules are independent.
	otherUnlock, err := locker.Lock(ctx, uuid.New())
	require.NoError(t, err)
	otherUnlock()

	unlock()
	assert.False(t, mr.Exists("gymflow:waitlist:lock:"+scheduleID.String()))

	unlock, err = locker.Lock(ctx, scheduleID)
	require.NoError(t, err)
	unlock()
}

func TestRedisLockerKeepsForeignToken(t *testing.T) {
	locker, mr := newTestRedisLocker(t, 0)
	scheduleID := uuid.New()
	key := "gymflow:waitlist:lock:" + scheduleID.String()

	unlock, err := locker.Lock(context.Background(), scheduleID)
	require.NoError(t, err)

	// The lock expired and someone else took it; our release must not delete theirs.
	require.NoError(t, mr.Set(key, "someone-else"))
	unlock()

	value, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "someone-else", value)
}

func TestRedisLockerExpiresAbandonedLock(t *testing.T) {
	locker, mr := newTestRedisLocker(t, 0)
	scheduleID := uuid.New()

	_, err := locker.Lock(context.Background(), scheduleID)
	require.NoError(t, err)

	mr.FastForward(11 * time.Second)

	unlock, err := locker.Lock(context.Background(), scheduleID)
	require.NoError(t, err)
	unlock()
}

func TestRedisLockerReportsConnectionErrors(t *testing.T) {
	locker, mr := newTestRedisLocker(t, 0)
	mr.Close()

	_, err := locker.Lock(context.Background(), uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockTimeout)
}

func TestLocalLockerSerializes(t *testing.T) {
	locker := NewLocalLocker()
	scheduleID := uuid.New()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), scheduleID)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestLocalLockerHonoursContext(t *testing.T) {
	locker := NewLocalLocker()
	scheduleID := uuid.New()

	unlock, err := locker.Lock(context.Background(), scheduleID)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, scheduleID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
