package cache

import (
	"context"
	"survey_backend/internal/model"
	"survey_backend/pkg/logger"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestDraftCacheRoundTrip(t *testing.T) {
	mr, rdb := newRedis(t)
	c := NewDraftCache(rdb)
	ctx := context.Background()

	missing, err := c.Load(ctx, 1, "device-a")
	require.NoError(t, err)
	assert.Nil(t, missing)

	draft := &model.Draft{
		Email:     "someone@example.com",
		Answers:   []model.DraftAnswer{{QuestionID: 3, Value: "Yes"}},
		Timestamp: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, c.Save(ctx, 1, "device-a", draft))

	// 不设置过期时间
	assert.Zero(t, mr.TTL("draft:1:device-a"))

	got, err := c.Load(ctx, 1, "device-a")
	require.NoError(t, err)
	assert.Equal(t, draft.Email, got.Email)
	assert.Equal(t, draft.Answers, got.Answers)
	assert.True(t, draft.Timestamp.Equal(got.Timestamp))

	other, err := c.Load(ctx, 1, "device-b")
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, c.Clear(ctx, 1, "device-a"))
	cleared, err := c.Load(ctx, 1, "device-a")
	require.NoError(t, err)
	assert.Nil(t, cleared)
}

func TestDraftCacheOverwrites(t *testing.T) {
	_, rdb := newRedis(t)
	c := NewDraftCache(rdb)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, 2, "d", &model.Draft{Email: "first@example.com"}))
	require.NoError(t, c.Save(ctx, 2, "d", &model.Draft{Email: "second@example.com"}))

	got, err := c.Load(ctx, 2, "d")
	require.NoError(t, err)
	assert.Equal(t, "second@example.com", got.Email)
}

func TestRedisLocker(t *testing.T) {
	mr, rdb := newRedis(t)
	l := NewRedisLocker(rdb, 10*time.Second)
	ctx := context.Background()

	release, ok, err := l.TryLock(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	// 其他问卷不受影响
	releaseOther, ok, err := l.TryLock(ctx, 8)
	require.NoError(t, err)
	assert.True(t, ok)
	releaseOther()

	release()
	assert.False(t, mr.Exists("lock:survey:7"))

	_, ok, err = l.TryLock(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockerReleaseKeepsForeignLock(t *testing.T) {
	mr, rdb := newRedis(t)
	l := NewRedisLocker(rdb, time.Second)
	ctx := context.Background()

	release, ok, err := l.TryLock(ctx, 9)
	require.NoError(t, err)
	require.True(t, ok)

	// 锁过期后被别人拿走，旧的 release 不能删掉新锁
	mr.FastForward(2 * time.Second)
	_, ok, err = l.TryLock(ctx, 9)
	require.NoError(t, err)
	require.True(t, ok)

	release()
	assert.True(t, mr.Exists("lock:survey:9"))
}

func TestRedisLockerLogsFailedRelease(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	mr, rdb := newRedis(t)
	l := NewRedisLocker(rdb, 30*time.Second)

	release, ok, err := l.TryLock(context.Background(), 11)
	require.NoError(t, err)
	require.True(t, ok)

	mr.SetError("ERR server unavailable")
	release()
	mr.SetError("")

	assert.True(t, mr.Exists("lock:survey:11"))
	entries := logs.FilterMessage("Failed to release survey lock").All()
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(11), entries[0].ContextMap()["surveyId"])
}

func TestMemoryLocker(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	release, ok, err := l.TryLock(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = l.TryLock(ctx, 1)
	assert.False(t, ok)

	release()
	release()

	_, ok, _ = l.TryLock(ctx, 1)
	assert.True(t, ok)
}
