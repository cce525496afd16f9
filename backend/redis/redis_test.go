package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/cachex/backend"
)

func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	r, err := Dial(context.Background(), mr.Addr(), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(context.Background()) })
	return r, mr
}

func TestNewRejectsNilClient(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestDialFailsWithoutServer(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = Dial(context.Background(), addr, 200*time.Millisecond)
	assert.Error(t, err)
}

func TestObjectsAndExpiry(t *testing.T) {
	ctx := context.Background()
	r, mr := setupTestRedis(t)

	_, err := r.Get(ctx, "missing")
	assert.ErrorIs(t, err, backend.ErrNotFound)

	require.NoError(t, r.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	ttl, ok, err := r.TTL(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, float64(time.Minute), float64(ttl), float64(time.Second))

	mr.FastForward(2 * time.Minute)
	exists, err := r.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, r.Set(ctx, "p", []byte("v"), 0))
	_, ok, err = r.TTL(ctx, "p")
	require.NoError(t, err)
	assert.False(t, ok, "persistent key has no ttl")

	ok, err = r.Expire(ctx, "p", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.Expire(ctx, "p", -time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, mr.Exists("p"), "elapsed ttl removes the key")
	exists, err = r.Exists(ctx, "p")
	require.NoError(t, err)
	assert.False(t, exists)

	ok, err = r.Expire(ctx, "p", -time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "missing key reports false")

	ok, err = r.Expire(ctx, "nope", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetAtPastDeletes(t *testing.T) {
	ctx := context.Background()
	r, _ := setupTestRedis(t)

	require.NoError(t, r.SetString(ctx, "k", "v", 0))
	require.NoError(t, r.SetStringAt(ctx, "k", "w", time.Now().Add(-time.Minute)))
	_, ok, err := r.GetString(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.SetStringAt(ctx, "k", "w", time.Now().Add(time.Hour)))
	s, ok, err := r.GetString(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "w", s)
}

func TestStringsAndSearch(t *testing.T) {
	ctx := context.Background()
	r, _ := setupTestRedis(t)

	require.NoError(t, r.SetStrings(ctx, map[string]string{"user:1": "a", "user:2": "b", "order:1": "c"}, time.Minute))
	got, err := r.GetStrings(ctx, []string{"user:1", "missing", "order:1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user:1": "a", "order:1": "c"}, got)

	ks, err := r.SearchKeys(ctx, "user:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"user:1", "user:2"}, ks)

	scanned, err := r.ScanKeys(ctx, "*:1")
	require.NoError(t, err)
	assert.Equal(t, []string{"order:1", "user:1"}, scanned)

	n, err := r.RemoveAll(ctx, []string{"user:1", "user:2", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	f, err := r.IncrBy(ctx, "counter", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)
	f, err = r.IncrBy(ctx, "counter", -2)
	require.NoError(t, err)
	assert.Equal(t, -0.5, f)

	require.NoError(t, r.SetString(ctx, "word", "abc", 0))
	_, err = r.IncrBy(ctx, "word", 1)
	assert.True(t, errors.Is(err, backend.ErrNotNumber), "got %v", err)

	require.NoError(t, r.Clear(ctx))
	all, err := r.SearchKeys(ctx, "*")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestWrongTypeMapped(t *testing.T) {
	ctx := context.Background()
	r, _ := setupTestRedis(t)

	_, err := r.Push(ctx, "l", false, "a")
	require.NoError(t, err)
	_, err = r.HSet(ctx, "l", "f", "v")
	assert.ErrorIs(t, err, backend.ErrWrongType)
}

func TestHashesListsSets(t *testing.T) {
	ctx := context.Background()
	r, _ := setupTestRedis(t)

	isNew, err := r.HSet(ctx, "h", "a", "1")
	require.NoError(t, err)
	assert.True(t, isNew)
	require.NoError(t, r.HSetMap(ctx, "h", map[string]string{"b": "2", "c": "3"}))
	fields, err := r.HGetFields(ctx, "h", []string{"a", "zz", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "c": "3"}, fields)
	hk, _ := r.HKeys(ctx, "h")
	assert.Equal(t, []string{"a", "b", "c"}, hk)
	f, err := r.HIncrBy(ctx, "h", "a", 2.5)
	require.NoError(t, err)
	assert.Equal(t, 3.5, f)
	n, _ := r.HDel(ctx, "h", "a", "b", "c")
	assert.Equal(t, int64(3), n)
	exists, _ := r.Exists(ctx, "h")
	assert.False(t, exists)

	_, _ = r.Push(ctx, "l", false, "a", "b", "c")
	_, _ = r.Push(ctx, "l", true, "y", "z")
	all, _ := r.Range(ctx, "l", 0, -1)
	assert.Equal(t, []string{"z", "y", "a", "b", "c"}, all)
	v, ok, _ := r.Pop(ctx, "l", false)
	assert.True(t, ok)
	assert.Equal(t, "c", v)
	require.NoError(t, r.Trim(ctx, "l", 1, 2))
	all, _ = r.Range(ctx, "l", 0, -1)
	assert.Equal(t, []string{"y", "a"}, all)
	_, ok, _ = r.Pop(ctx, "missing", true)
	assert.False(t, ok)

	added, _ := r.SAdd(ctx, "s", "a", "b", "a")
	assert.Equal(t, int64(2), added)
	moved, _ := r.SMove(ctx, "s", "d", "b")
	assert.True(t, moved)
	src, _ := r.SMembers(ctx, "s")
	assert.Equal(t, []string{"a"}, src)
	in, _ := r.SIsMember(ctx, "d", "b")
	assert.True(t, in)
	rep, _ := r.SRandMember(ctx, "d", -3)
	assert.Equal(t, []string{"b", "b", "b"}, rep)
	one, _ := r.SRandMember(ctx, "s", 10)
	assert.Equal(t, []string{"a"}, one)
}

func TestSortedSets(t *testing.T) {
	ctx := context.Background()
	r, _ := setupTestRedis(t)

	_, _ = r.ZAdd(ctx, "lb", "alice", 10)
	_, _ = r.ZAdd(ctx, "lb", "bob", 5)
	isNew, _ := r.ZAdd(ctx, "lb", "carol", 10)
	assert.True(t, isNew)

	got, err := r.ZRange(ctx, "lb", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []backend.Member{{Name: "bob", Score: 5}, {Name: "alice", Score: 10}, {Name: "carol", Score: 10}}, got)

	sc, err := r.ZIncrBy(ctx, "lb", "bob", 20)
	require.NoError(t, err)
	assert.Equal(t, 25.0, sc)
	s, ok, _ := r.ZScore(ctx, "lb", "bob")
	assert.True(t, ok)
	assert.Equal(t, 25.0, s)

	byScore, _ := r.ZRangeByScore(ctx, "lb", 10, 10)
	assert.Len(t, byScore, 2)

	n, _ := r.ZRemRangeByScore(ctx, "lb", 20, 30)
	assert.Equal(t, int64(1), n)
	n, _ = r.ZRemRangeByRank(ctx, "lb", 0, 0)
	assert.Equal(t, int64(1), n)
	left, _ := r.ZRange(ctx, "lb", 0, -1)
	assert.Equal(t, []backend.Member{{Name: "carol", Score: 10}}, left)
}

func TestLocks(t *testing.T) {
	ctx := context.Background()
	r, mr := setupTestRedis(t)

	tok, ok, err := r.TryLock(ctx, "job", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, tok)
	assert.True(t, mr.Exists("lock:job"))

	_, ok, err = r.TryLock(ctx, "job", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "held lease must not be re-acquired")

	ok, err = r.Unlock(ctx, "job", "someone-else")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.Unlock(ctx, "job", tok)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, mr.Exists("lock:job"))

	_, _, err = r.TryLock(ctx, "", time.Second)
	assert.ErrorIs(t, err, backend.ErrInvalidLease)
}

func TestSharedClientNotClosed(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	r, err := New(Config{Client: client})
	require.NoError(t, err)
	require.NoError(t, r.Close(context.Background()))
	assert.NoError(t, client.Ping(context.Background()).Err())
}
