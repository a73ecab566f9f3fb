package redis_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/reachflow/funnel/pkg/adapters/redis"
	"github.com/reachflow/funnel/pkg/domain"
	"github.com/reachflow/funnel/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLocker_TryLockUnlock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.TryLock(ctx, "fp1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:fp1"), "Lock key should be set in Redis")

	_, err = locker.TryLock(ctx, "fp1", 5*time.Second)
	assert.ErrorIs(t, err, ports.ErrLocked)

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:fp1"), "Lock key should be removed after unlock")

	_, err = locker.TryLock(ctx, "fp1", 5*time.Second)
	assert.NoError(t, err)
}

func TestRedisLocker_ExpiredClaimIsNotReleasedByOldHolder(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	staleUnlock, err := locker.TryLock(ctx, "fp", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = locker.TryLock(ctx, "fp", 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, staleUnlock(ctx))
	assert.True(t, mr.Exists("test:lock:fp"), "New holder's claim must survive")
}

func TestRedisLocker_OneWinner(t *testing.T) {
	_, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := locker.TryLock(ctx, "same", 5*time.Second); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestRedisJournal_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunJournalContract(t, redis.NewJournal(client))
}

func TestRedisJournal_MaxEntries(t *testing.T) {
	_, client := setup(t)
	journal := redis.NewJournal(client, redis.WithKey("j"), redis.WithMaxEntries(2))
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, journal.Record(ctx, domain.JournalEntry{ID: id, RecordedAt: base.Add(time.Duration(i) * time.Second)}))
	}

	entries, err := journal.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)
}
