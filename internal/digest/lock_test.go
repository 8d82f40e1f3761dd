package digest

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/inquiry-gateway/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLock_AcquireRelease(t *testing.T) {
	mr, adapter := helpers.SetupTestRedis(t)
	lock := NewRunLock(adapter, LockConfig{})
	ctx := context.Background()

	lease, err := lock.Acquire(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.True(t, mr.Exists("digest:lock:2025-03-10"))
	assert.Equal(t, 10*time.Minute, mr.TTL("digest:lock:2025-03-10"))

	_, err = lock.Acquire(ctx, "2025-03-10")
	assert.ErrorIs(t, err, ErrRunInProgress)

	other, err := lock.Acquire(ctx, "2025-03-11")
	require.NoError(t, err)
	require.NoError(t, lock.Release(ctx, other))

	require.NoError(t, lock.Release(ctx, lease))
	assert.False(t, mr.Exists("digest:lock:2025-03-10"))

	t.Run("release twice is a no-op", func(t *testing.T) {
		assert.NoError(t, lock.Release(ctx, lease))
		assert.NoError(t, lock.Release(ctx, nil))
	})

	t.Run("lock can be taken again", func(t *testing.T) {
		again, err := lock.Acquire(ctx, "2025-03-10")
		require.NoError(t, err)
		require.NoError(t, lock.Release(ctx, again))
	})
}

func TestRunLock_ReleaseKeepsForeignLock(t *testing.T) {
	mr, adapter := helpers.SetupTestRedis(t)
	lock := NewRunLock(adapter, LockConfig{})
	ctx := context.Background()

	lease, err := lock.Acquire(ctx, "2025-03-10")
	require.NoError(t, err)

	// lease expired and another instance took over
	require.NoError(t, mr.Set("digest:lock:2025-03-10", "someone-else"))

	require.NoError(t, lock.Release(ctx, lease))
	got, err := mr.Get("digest:lock:2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRunLock_SentMarker(t *testing.T) {
	mr, adapter := helpers.SetupTestRedis(t)
	lock := NewRunLock(adapter, LockConfig{SentTTL: time.Hour, SentKeyPrefix: "test:sent:"})
	ctx := context.Background()

	sent, err := lock.IsSent(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.False(t, sent)

	require.NoError(t, lock.MarkSent(ctx, "2025-03-10"))

	sent, err = lock.IsSent(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, time.Hour, mr.TTL("test:sent:2025-03-10"))

	mr.FastForward(2 * time.Hour)
	sent, err = lock.IsSent(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestRunLock_RedisDown(t *testing.T) {
	mr, adapter := helpers.SetupTestRedis(t)
	lock := NewRunLock(adapter, LockConfig{})
	mr.Close()

	_, err := lock.Acquire(context.Background(), "2025-03-10")
	assert.ErrorIs(t, err, ErrLockAcquireFailed)
}

func TestRunLock_CancelledContext(t *testing.T) {
	mr, adapter := helpers.SetupTestRedis(t)
	lock := NewRunLock(adapter, LockConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := lock.Acquire(ctx, "2025-03-10")
	assert.ErrorIs(t, err, ErrLockAcquireFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, mr.Exists("digest:lock:2025-03-10"))

	assert.ErrorIs(t, lock.MarkSent(ctx, "2025-03-10"), context.Canceled)
	_, err = lock.IsSent(ctx, "2025-03-10")
	assert.ErrorIs(t, err, context.Canceled)
}
