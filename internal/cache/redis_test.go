package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_RoundTrip(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore[summary](client, "moodbrew", "summaries")
	ctx := context.Background()

	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	entry := Entry[summary]{Key: "cafe-1|r1", Value: summary{Text: "bright", Score: 0.9}, CreatedAt: created, TTL: 15 * time.Minute}
	require.NoError(t, store.Save(ctx, entry))

	assert.True(t, mr.Exists("moodbrew:summaries:cafe-1|r1"))
	assert.Equal(t, 15*time.Minute, mr.TTL("moodbrew:summaries:cafe-1|r1"))

	got, found, err := store.Load(ctx, "cafe-1|r1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entry.Value, got.Value)
	assert.True(t, entry.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, entry.TTL, got.TTL)

	_, found, err = store.Load(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_DeletePrefix(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore[summary](client, "moodbrew", "summaries")
	ctx := context.Background()

	for _, key := range []string{"cafe-1|a", "cafe-1|a,b", "cafe-10|a", "cafe-2|a"} {
		require.NoError(t, store.Save(ctx, Entry[summary]{Key: key, CreatedAt: time.Now(), TTL: time.Hour}))
	}
	// Another kind under the same namespace must survive.
	require.NoError(t, mr.Set("moodbrew:rankings:cafe-1|a", "{}"))

	n, err := store.DeletePrefix(ctx, ReviewPrefix("cafe-1"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.False(t, mr.Exists("moodbrew:summaries:cafe-1|a"))
	assert.True(t, mr.Exists("moodbrew:summaries:cafe-10|a"))
	assert.True(t, mr.Exists("moodbrew:summaries:cafe-2|a"))
	assert.True(t, mr.Exists("moodbrew:rankings:cafe-1|a"))
}

func TestRedisStore_CorruptEntryIsError(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore[summary](client, "moodbrew", "summaries")

	require.NoError(t, mr.Set("moodbrew:summaries:bad", "not-json"))

	_, found, err := store.Load(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestRedisStore_BackendFailures(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore[summary](client, "moodbrew", "summaries")
	ctx := context.Background()
	boom := errors.New("READONLY You can't write against a read only replica")

	mock.ExpectGet("moodbrew:summaries:k").SetErr(boom)
	_, _, err := store.Load(ctx, "k")
	assert.ErrorIs(t, err, boom)

	mock.ExpectScan(0, `moodbrew:summaries:cafe-1|*`, scanBatch).SetErr(boom)
	_, err = store.DeletePrefix(ctx, "cafe-1|")
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `a\*b\?c\[d\]`, escapeGlob("a*b?c[d]"))
	assert.Equal(t, "cafe-1|", escapeGlob("cafe-1|"))
}
