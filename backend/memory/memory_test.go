package memory

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/unkn0wn-root/cachex/backend"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestMemory(t *testing.T) (*Memory, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := New()
	m.now = clk.Now
	return m, clk
}

func TestSetGetBeforeTTL(t *testing.T) {
	ctx := context.Background()
	m, clk := newTestMemory(t)

	if err := m.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	clk.Advance(59 * time.Second)
	got, err := m.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get=%q,%v want v,nil", got, err)
	}

	clk.Advance(time.Second)
	if _, err := m.Get(ctx, "k"); !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after ttl, got %v", err)
	}
	if _, ok := m.items["k"]; ok {
		t.Fatalf("expired entry should be dropped on access")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(t)

	raw := []byte("abc")
	_ = m.Set(ctx, "k", raw, 0)
	raw[0] = 'X'
	got, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller buffer: %q", got)
	}
	got[1] = 'Y'
	again, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("returned value aliased store: %q", again)
	}
}

func TestExpireAtPastRemovesEntry(t *testing.T) {
	ctx := context.Background()
	m, clk := newTestMemory(t)

	_ = m.SetString(ctx, "k", "v", 0)
	ok, err := m.ExpireAt(ctx, "k", clk.Now().Add(-time.Second))
	if err != nil || !ok {
		t.Fatalf("ExpireAt=%v,%v", ok, err)
	}
	if exists, _ := m.Exists(ctx, "k"); exists {
		t.Fatalf("key should be gone")
	}
	if len(m.items) != 0 {
		t.Fatalf("entry not removed from keyspace: %v", m.items)
	}

	if ok, _ := m.ExpireAt(ctx, "missing", clk.Now()); ok {
		t.Fatalf("ExpireAt on missing key should report false")
	}
}

func TestExpireAndTTL(t *testing.T) {
	ctx := context.Background()
	m, clk := newTestMemory(t)

	_ = m.SetString(ctx, "k", "v", 0)
	if _, ok, _ := m.TTL(ctx, "k"); ok {
		t.Fatalf("no ttl expected on persistent key")
	}
	if ok, _ := m.Expire(ctx, "k", 10*time.Second); !ok {
		t.Fatalf("Expire should report true")
	}
	clk.Advance(4 * time.Second)
	ttl, ok, _ := m.TTL(ctx, "k")
	if !ok || ttl != 6*time.Second {
		t.Fatalf("TTL=%v,%v want 6s,true", ttl, ok)
	}
	if _, ok, _ := m.TTL(ctx, "missing"); ok {
		t.Fatalf("missing key has no ttl")
	}
}

func TestExpireWithElapsedTTLRemovesEntry(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(t)

	for _, ttl := range []time.Duration{0, -time.Second} {
		_ = m.SetString(ctx, "k", "v", time.Hour)
		ok, err := m.Expire(ctx, "k", ttl)
		if err != nil || !ok {
			t.Fatalf("Expire(%v)=%v,%v want true", ttl, ok, err)
		}
		if exists, _ := m.Exists(ctx, "k"); exists {
			t.Fatalf("Expire(%v) must remove the key", ttl)
		}
		if _, ok, _ := m.TTL(ctx, "k"); ok {
			t.Fatalf("removed key has no ttl")
		}
	}
	if ok, _ := m.Expire(ctx, "missing", -time.Second); ok {
		t.Fatalf("Expire on missing key should report false")
	}
}

func TestSetAtPastDeletes(t *testing.T) {
	ctx := context.Background()
	m, clk := newTestMemory(t)

	_ = m.SetString(ctx, "k", "old", 0)
	_ = m.SetStringAt(ctx, "k", "new", clk.Now().Add(-time.Minute))
	if _, ok, _ := m.GetString(ctx, "k"); ok {
		t.Fatalf("SetAt in the past should leave no value")
	}
}

func TestRemoveAndSearch(t *testing.T) {
	ctx := context.Background()
	m, clk := newTestMemory(t)

	_ = m.SetStrings(ctx, map[string]string{"user:1": "a", "user:2": "b", "order:1": "c"}, 0)
	_ = m.SetString(ctx, "user:3", "d", time.Second)
	clk.Advance(2 * time.Second)

	got, err := m.SearchKeys(ctx, "user:*")
	if err != nil {
		t.Fatalf("SearchKeys: %v", err)
	}
	if want := []string{"user:1", "user:2"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("SearchKeys=%v want %v", got, want)
	}
	scanned, _ := m.ScanKeys(ctx, "*:1")
	if want := []string{"order:1", "user:1"}; !reflect.DeepEqual(scanned, want) {
		t.Fatalf("ScanKeys=%v want %v", scanned, want)
	}

	if ok, _ := m.Remove(ctx, "user:1"); !ok {
		t.Fatalf("Remove existing should be true")
	}
	if ok, _ := m.Remove(ctx, "user:1"); ok {
		t.Fatalf("Remove missing should be false")
	}
	n, _ := m.RemoveAll(ctx, []string{"user:2", "order:1", "nope"})
	if n != 2 {
		t.Fatalf("RemoveAll=%d want 2", n)
	}

	_ = m.SetString(ctx, "x", "1", 0)
	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if all, _ := m.SearchKeys(ctx, "*"); len(all) != 0 {
		t.Fatalf("Clear left keys: %v", all)
	}
}

func TestStringsAndIncrements(t *testing.T) {
	ctx := context.Background()
	m, clk := newTestMemory(t)

	if _, ok, _ := m.GetString(ctx, "n"); ok {
		t.Fatalf("missing string should report ok=false")
	}
	v, err := m.IncrBy(ctx, "n", 2.5)
	if err != nil || v != 2.5 {
		t.Fatalf("IncrBy on missing=%v,%v", v, err)
	}
	v, _ = m.IncrBy(ctx, "n", -1)
	if v != 1.5 {
		t.Fatalf("IncrBy=%v want 1.5", v)
	}
	s, _, _ := m.GetString(ctx, "n")
	if s != "1.5" {
		t.Fatalf("stored=%q want 1.5", s)
	}

	_ = m.SetString(ctx, "c", "10", time.Minute)
	_, _ = m.IncrBy(ctx, "c", 1)
	clk.Advance(30 * time.Second)
	if ttl, ok, _ := m.TTL(ctx, "c"); !ok || ttl != 30*time.Second {
		t.Fatalf("IncrBy must keep ttl, got %v,%v", ttl, ok)
	}

	_ = m.SetString(ctx, "word", "abc", 0)
	if _, err := m.IncrBy(ctx, "word", 1); !errors.Is(err, backend.ErrNotNumber) {
		t.Fatalf("expected ErrNotNumber, got %v", err)
	}

	got, _ := m.GetStrings(ctx, []string{"n", "missing", "c"})
	if want := map[string]string{"n": "1.5", "c": "11"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("GetStrings=%v want %v", got, want)
	}
}

func TestWrongType(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(t)

	_, _ = m.Push(ctx, "l", false, "a")
	if _, err := m.HSet(ctx, "l", "f", "v"); !errors.Is(err, backend.ErrWrongType) {
		t.Fatalf("HSet on list: %v", err)
	}
	if _, err := m.Get(ctx, "l"); !errors.Is(err, backend.ErrWrongType) {
		t.Fatalf("Get on list: %v", err)
	}
	if got, _ := m.GetStrings(ctx, []string{"l"}); len(got) != 0 {
		t.Fatalf("GetStrings should skip non-strings: %v", got)
	}
	// plain Set overwrites any kind
	if err := m.SetString(ctx, "l", "s", 0); err != nil {
		t.Fatalf("SetString over list: %v", err)
	}
}

func TestHashes(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(t)

	if isNew, _ := m.HSet(ctx, "h", "a", "1"); !isNew {
		t.Fatalf("first HSet should create field")
	}
	if isNew, _ := m.HSet(ctx, "h", "a", "2"); isNew {
		t.Fatalf("second HSet should update")
	}
	_ = m.HSetMap(ctx, "h", map[string]string{"b": "x", "c": "y"})

	if v, ok, _ := m.HGet(ctx, "h", "a"); !ok || v != "2" {
		t.Fatalf("HGet=%q,%v", v, ok)
	}
	got, _ := m.HGetFields(ctx, "h", []string{"a", "zz", "c"})
	if want := map[string]string{"a": "2", "c": "y"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("HGetFields=%v", got)
	}
	ks, _ := m.HKeys(ctx, "h")
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(ks, want) {
		t.Fatalf("HKeys=%v", ks)
	}
	f, _ := m.HIncrBy(ctx, "h", "cnt", 3)
	f, _ = m.HIncrBy(ctx, "h", "cnt", -0.5)
	if f != 2.5 {
		t.Fatalf("HIncrBy=%v want 2.5", f)
	}

	n, _ := m.HDel(ctx, "h", "a", "b", "c", "cnt", "missing")
	if n != 4 {
		t.Fatalf("HDel=%d want 4", n)
	}
	if exists, _ := m.Exists(ctx, "h"); exists {
		t.Fatalf("empty hash must be deleted")
	}
	all, _ := m.HGetAll(ctx, "h")
	if all == nil || len(all) != 0 {
		t.Fatalf("HGetAll on missing should be empty map, got %v", all)
	}
}

func TestLists(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(t)

	n, _ := m.Push(ctx, "l", false, "a", "b", "c")
	if n != 3 {
		t.Fatalf("Push=%d", n)
	}
	_, _ = m.Push(ctx, "l", true, "y", "z") // z y a b c

	all, _ := m.Range(ctx, "l", 0, -1)
	if want := []string{"z", "y", "a", "b", "c"}; !reflect.DeepEqual(all, want) {
		t.Fatalf("Range=%v want %v", all, want)
	}
	mid, _ := m.Range(ctx, "l", 1, -2)
	if want := []string{"y", "a", "b"}; !reflect.DeepEqual(mid, want) {
		t.Fatalf("Range(1,-2)=%v", mid)
	}
	if out, _ := m.Range(ctx, "l", 10, 20); len(out) != 0 {
		t.Fatalf("out of range should be empty: %v", out)
	}
	if out, _ := m.Range(ctx, "l", -100, 1); !reflect.DeepEqual(out, []string{"z", "y"}) {
		t.Fatalf("negative clamp: %v", out)
	}

	if v, ok, _ := m.Pop(ctx, "l", true); !ok || v != "z" {
		t.Fatalf("Pop left=%q,%v", v, ok)
	}
	if v, ok, _ := m.Pop(ctx, "l", false); !ok || v != "c" {
		t.Fatalf("Pop right=%q,%v", v, ok)
	}

	_ = m.Trim(ctx, "l", 1, -1) // keep a b
	all, _ = m.Range(ctx, "l", 0, -1)
	if want := []string{"a", "b"}; !reflect.DeepEqual(all, want) {
		t.Fatalf("after Trim=%v", all)
	}
	_ = m.Trim(ctx, "l", 5, 10)
	if exists, _ := m.Exists(ctx, "l"); exists {
		t.Fatalf("trim to empty must delete the list")
	}
	if _, ok, _ := m.Pop(ctx, "l", true); ok {
		t.Fatalf("pop on missing list")
	}
}

func TestSets(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(t)

	n, _ := m.SAdd(ctx, "s", "a", "b", "a", "c")
	if n != 3 {
		t.Fatalf("SAdd=%d want 3", n)
	}
	if in, _ := m.SIsMember(ctx, "s", "b"); !in {
		t.Fatalf("b should be member")
	}
	if ok, _ := m.SMove(ctx, "s", "d", "b"); !ok {
		t.Fatalf("SMove should succeed")
	}
	if ok, _ := m.SMove(ctx, "s", "d", "zz"); ok {
		t.Fatalf("SMove of non-member should fail")
	}
	src, _ := m.SMembers(ctx, "s")
	dst, _ := m.SMembers(ctx, "d")
	if !reflect.DeepEqual(src, []string{"a", "c"}) || !reflect.DeepEqual(dst, []string{"b"}) {
		t.Fatalf("after move src=%v dst=%v", src, dst)
	}

	sample, _ := m.SRandMember(ctx, "s", 5)
	if len(sample) != 2 {
		t.Fatalf("positive count is capped at cardinality: %v", sample)
	}
	sample, _ = m.SRandMember(ctx, "s", 1)
	if len(sample) != 1 {
		t.Fatalf("SRandMember(1)=%v", sample)
	}
	rep, _ := m.SRandMember(ctx, "d", -4)
	if !reflect.DeepEqual(rep, []string{"b", "b", "b", "b"}) {
		t.Fatalf("negative count repeats: %v", rep)
	}

	n, _ = m.SRem(ctx, "s", "a", "c")
	if n != 2 {
		t.Fatalf("SRem=%d", n)
	}
	if exists, _ := m.Exists(ctx, "s"); exists {
		t.Fatalf("empty set must be deleted")
	}
}

func TestLocks(t *testing.T) {
	ctx := context.Background()
	m, clk := newTestMemory(t)

	tok, ok, err := m.TryLock(ctx, "job", time.Second)
	if err != nil || !ok || tok == "" {
		t.Fatalf("TryLock=%q,%v,%v", tok, ok, err)
	}
	if _, ok, _ := m.TryLock(ctx, "job", time.Second); ok {
		t.Fatalf("held lease must not be re-acquired")
	}
	if ok, _ := m.Unlock(ctx, "job", "other"); ok {
		t.Fatalf("foreign token must not release")
	}
	if ok, _ := m.Unlock(ctx, "job", tok); !ok {
		t.Fatalf("owner should release")
	}

	tok, _, _ = m.TryLock(ctx, "job", time.Second)
	clk.Advance(time.Second)
	tok2, ok, _ := m.TryLock(ctx, "job", time.Second)
	if !ok || tok2 == tok {
		t.Fatalf("expired lease should be re-acquirable with a new token")
	}
	if ok, _ := m.Unlock(ctx, "job", tok); ok {
		t.Fatalf("stale owner must not release the new lease")
	}

	if _, _, err := m.TryLock(ctx, "", time.Second); !errors.Is(err, backend.ErrInvalidLease) {
		t.Fatalf("empty key: %v", err)
	}
	if _, _, err := m.TryLock(ctx, "k", 0); !errors.Is(err, backend.ErrInvalidLease) {
		t.Fatalf("zero ttl: %v", err)
	}
}

func TestRegionHelpers(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(t)

	_ = m.SetString(ctx, "a", "1", 0)
	_ = m.SetString(ctx, "b", "2", 0)
	_ = m.SetString(ctx, "c", "3", 0)
	for _, k := range []string{"a", "b"} {
		if err := backend.TrackRegion(ctx, m, "R", k); err != nil {
			t.Fatalf("TrackRegion: %v", err)
		}
	}
	if _, ok, _ := m.TTL(ctx, "RG_R"); ok {
		t.Fatalf("region entry must not expire")
	}

	n, err := backend.DropRegion(ctx, m, "R")
	if err != nil || n != 2 {
		t.Fatalf("DropRegion=%d,%v", n, err)
	}
	left, _ := m.SearchKeys(ctx, "*")
	if !reflect.DeepEqual(left, []string{"c"}) {
		t.Fatalf("remaining keys=%v want [c]", left)
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_, _ = m.IncrBy(ctx, "n", 1)
				_, _ = m.ZIncrBy(ctx, "z", "m", 1)
				_, _ = m.SearchKeys(ctx, "*")
			}
		}()
	}
	wg.Wait()

	s, _, _ := m.GetString(ctx, "n")
	if s != "1600" {
		t.Fatalf("lost updates: %s", s)
	}
	if sc, _, _ := m.ZScore(ctx, "z", "m"); sc != 1600 {
		t.Fatalf("lost zset updates: %v", sc)
	}
}
