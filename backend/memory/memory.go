// Package memory is an in-process backend that reproduces the remote cache
// semantics with plain Go containers.
//
// One mutex guards the whole keyspace and the lease table. Expiration is lazy:
// every accessor drops an entry whose deadline has passed before looking at it.
// There is no background sweep, so expired entries that are never touched again
// stay allocated until Clear or Close.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unkn0wn-root/cachex/backend"
	"github.com/unkn0wn-root/cachex/internal/keys"
)

// value kinds held by an entry
type (
	scalar []byte
	hash   map[string]string
	set    map[string]struct{}
	list   struct{ items []string }
)

type entry struct {
	value     any
	expiresAt time.Time // zero => never
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

type lease struct {
	token     string
	expiresAt time.Time
}

type Memory struct {
	mu     sync.Mutex
	items  map[string]*entry
	leases map[string]lease
	now    func() time.Time
}

var _ backend.Backend = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		items:  make(map[string]*entry),
		leases: make(map[string]lease),
		now:    time.Now,
	}
}

func (m *Memory) Kind() backend.Kind { return backend.KindInMemory }

// Close drops all data. The backend stays usable afterwards.
func (m *Memory) Close(context.Context) error {
	m.mu.Lock()
	m.items = make(map[string]*entry)
	m.leases = make(map[string]lease)
	m.mu.Unlock()
	return nil
}

// load returns the live entry for key, dropping it when expired. Caller holds mu.
func (m *Memory) load(key string) *entry {
	e, ok := m.items[key]
	if !ok {
		return nil
	}
	if e.expired(m.now()) {
		delete(m.items, key)
		return nil
	}
	return e
}

func loadAs[T any](m *Memory, key string) (T, bool, error) {
	var zero T
	e := m.load(key)
	if e == nil {
		return zero, false, nil
	}
	v, ok := e.value.(T)
	if !ok {
		return zero, false, backend.ErrWrongType
	}
	return v, true, nil
}

// loadOrCreate auto-creates a container without expiry on first write.
func loadOrCreate[T any](m *Memory, key string, mk func() T) (T, error) {
	v, ok, err := loadAs[T](m, key)
	if err != nil || ok {
		return v, err
	}
	v = mk()
	m.items[key] = &entry{value: v}
	return v, nil
}

func (m *Memory) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

func (m *Memory) putScalar(key string, raw []byte, at time.Time) {
	m.items[key] = &entry{value: scalar(append([]byte(nil), raw...)), expiresAt: at}
}

// Common

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(key) != nil, nil
}

func (m *Memory) Expire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.load(key)
	if e == nil {
		return false, nil
	}
	if ttl <= 0 {
		delete(m.items, key)
		return true, nil
	}
	e.expiresAt = m.deadline(ttl)
	return true, nil
}

func (m *Memory) ExpireAt(_ context.Context, key string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.load(key)
	if e == nil {
		return false, nil
	}
	e.expiresAt = at
	if e.expired(m.now()) {
		delete(m.items, key)
	}
	return true, nil
}

func (m *Memory) TTL(_ context.Context, key string) (time.Duration, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.load(key)
	if e == nil || e.expiresAt.IsZero() {
		return 0, false, nil
	}
	return e.expiresAt.Sub(m.now()), true, nil
}

func (m *Memory) Remove(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.load(key) == nil {
		return false, nil
	}
	delete(m.items, key)
	return true, nil
}

func (m *Memory) RemoveAll(_ context.Context, ks []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range ks {
		if m.load(k) != nil {
			delete(m.items, k)
			n++
		}
	}
	return n, nil
}

func (m *Memory) SearchKeys(_ context.Context, pattern string) ([]string, error) {
	re, err := keys.Glob(pattern)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	out := make([]string, 0)
	for k, e := range m.items {
		if e.expired(now) {
			delete(m.items, k)
			continue
		}
		if re.MatchString(k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ScanKeys is a single pass over the keyspace, so keys are naturally distinct.
func (m *Memory) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	return m.SearchKeys(ctx, pattern)
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	m.items = make(map[string]*entry)
	m.mu.Unlock()
	return nil
}

// Objects

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok, err := loadAs[scalar](m, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, backend.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(_ context.Context, key string, raw []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.putScalar(key, raw, m.deadline(ttl))
	m.mu.Unlock()
	return nil
}

func (m *Memory) SetAt(_ context.Context, key string, raw []byte, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !at.IsZero() && !m.now().Before(at) {
		delete(m.items, key)
		return nil
	}
	m.putScalar(key, raw, at)
	return nil
}

// Strings

func (m *Memory) GetString(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok, err := loadAs[scalar](m, key)
	if err != nil || !ok {
		return "", false, err
	}
	return string(v), true, nil
}

func (m *Memory) GetStrings(_ context.Context, ks []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(ks))
	for _, k := range ks {
		// non-string kinds read as absent, like MGET
		if v, ok, err := loadAs[scalar](m, k); err == nil && ok {
			out[k] = string(v)
		}
	}
	return out, nil
}

func (m *Memory) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return m.Set(ctx, key, []byte(value), ttl)
}

func (m *Memory) SetStringAt(ctx context.Context, key, value string, at time.Time) error {
	return m.SetAt(ctx, key, []byte(value), at)
}

func (m *Memory) SetStrings(_ context.Context, items map[string]string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	at := m.deadline(ttl)
	for k, v := range items {
		m.putScalar(k, []byte(v), at)
	}
	return nil
}

// IncrBy keeps the current expiration of the key.
func (m *Memory) IncrBy(_ context.Context, key string, delta float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.load(key)
	if e == nil {
		m.putScalar(key, []byte(formatFloat(delta)), time.Time{})
		return delta, nil
	}
	s, ok := e.value.(scalar)
	if !ok {
		return 0, backend.ErrWrongType
	}
	cur, err := parseFloat(string(s))
	if err != nil {
		return 0, err
	}
	cur += delta
	e.value = scalar(formatFloat(cur))
	return cur, nil
}

// Locker

func (m *Memory) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	if key == "" || ttl <= 0 {
		return "", false, backend.ErrInvalidLease
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if l, held := m.leases[key]; held && now.Before(l.expiresAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	m.leases[key] = lease{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

func (m *Memory) Unlock(_ context.Context, key, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, held := m.leases[key]
	if !held || l.token != token {
		return false, nil
	}
	delete(m.leases, key)
	return m.now().Before(l.expiresAt), nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, backend.ErrNotNumber
	}
	return f, nil
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// span clamps an inclusive [start, stop] range over n elements the way redis does.
func span(n int, start, stop int64) (lo, hi int, ok bool) {
	size := int64(n)
	if start < 0 {
		start += size
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += size
	}
	if stop >= size {
		stop = size - 1
	}
	if start > stop || start >= size {
		return 0, 0, false
	}
	return int(start), int(stop), true
}
