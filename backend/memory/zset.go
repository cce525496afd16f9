package memory

import (
	"context"
	"math"

	"github.com/unkn0wn-root/cachex/backend"
)

// zset keeps members ordered by (score, name) in a plain slice.
// Inserts are a linear scan, so each write is O(n). Sorted sets held here are
// expected to be small; large leaderboards belong on the remote backend.
type zset struct {
	members []backend.Member
	scores  map[string]float64
}

func newZSet() *zset { return &zset{scores: make(map[string]float64)} }

func less(a, b backend.Member) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Name < b.Name
}

func (z *zset) index(name string) int {
	for i, m := range z.members {
		if m.Name == name {
			return i
		}
	}
	return -1
}

func (z *zset) remove(name string) bool {
	if _, ok := z.scores[name]; !ok {
		return false
	}
	if i := z.index(name); i >= 0 {
		z.members = append(z.members[:i], z.members[i+1:]...)
	}
	delete(z.scores, name)
	return true
}

// put inserts or rescores name. Reports whether name is new.
func (z *zset) put(name string, score float64) bool {
	existed := z.remove(name)
	m := backend.Member{Name: name, Score: score}
	at := len(z.members)
	for i, cur := range z.members {
		if less(m, cur) {
			at = i
			break
		}
	}
	z.members = append(z.members, backend.Member{})
	copy(z.members[at+1:], z.members[at:])
	z.members[at] = m
	z.scores[name] = score
	return !existed
}

func (z *zset) between(min, max float64) (lo, hi int) {
	lo = len(z.members)
	for i, m := range z.members {
		if m.Score >= min {
			lo = i
			break
		}
	}
	hi = lo
	for hi < len(z.members) && z.members[hi].Score <= max {
		hi++
	}
	return lo, hi
}

func (m *Memory) ZAdd(_ context.Context, key, member string, score float64) (bool, error) {
	if math.IsNaN(score) {
		return false, backend.ErrNotNumber
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	z, err := loadOrCreate(m, key, newZSet)
	if err != nil {
		return false, err
	}
	return z.put(member, score), nil
}

func (m *Memory) ZAddMany(_ context.Context, key string, members map[string]float64) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	for _, score := range members {
		if math.IsNaN(score) {
			return 0, backend.ErrNotNumber
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	z, err := loadOrCreate(m, key, newZSet)
	if err != nil {
		return 0, err
	}
	var n int64
	for name, score := range members {
		if z.put(name, score) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) ZScore(_ context.Context, key, member string) (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok, err := loadAs[*zset](m, key)
	if err != nil || !ok {
		return 0, false, err
	}
	s, ok := z.scores[member]
	return s, ok, nil
}

func (m *Memory) ZIncrBy(_ context.Context, key, member string, delta float64) (float64, error) {
	if math.IsNaN(delta) {
		return 0, backend.ErrNotNumber
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	z, err := loadOrCreate(m, key, newZSet)
	if err != nil {
		return 0, err
	}
	// +Inf plus -Inf has no place in the ordering
	score := z.scores[member] + delta
	if math.IsNaN(score) {
		return 0, backend.ErrNotNumber
	}
	z.put(member, score)
	return score, nil
}

func (m *Memory) ZRange(_ context.Context, key string, start, stop int64) ([]backend.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok, err := loadAs[*zset](m, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []backend.Member{}, nil
	}
	lo, hi, ok := span(len(z.members), start, stop)
	if !ok {
		return []backend.Member{}, nil
	}
	return append([]backend.Member(nil), z.members[lo:hi+1]...), nil
}

func (m *Memory) ZRangeByScore(_ context.Context, key string, min, max float64) ([]backend.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok, err := loadAs[*zset](m, key)
	if err != nil {
		return nil, err
	}
	if !ok || min > max {
		return []backend.Member{}, nil
	}
	lo, hi := z.between(min, max)
	return append([]backend.Member{}, z.members[lo:hi]...), nil
}

func (m *Memory) ZRemRangeByRank(_ context.Context, key string, start, stop int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok, err := loadAs[*zset](m, key)
	if err != nil || !ok {
		return 0, err
	}
	lo, hi, ok := span(len(z.members), start, stop)
	if !ok {
		return 0, nil
	}
	m.dropRange(key, z, lo, hi+1)
	return int64(hi - lo + 1), nil
}

func (m *Memory) ZRemRangeByScore(_ context.Context, key string, min, max float64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok, err := loadAs[*zset](m, key)
	if err != nil || !ok || min > max {
		return 0, err
	}
	lo, hi := z.between(min, max)
	m.dropRange(key, z, lo, hi)
	return int64(hi - lo), nil
}

// dropRange removes members[lo:hi] and deletes the key once the set is empty.
func (m *Memory) dropRange(key string, z *zset, lo, hi int) {
	for _, mb := range z.members[lo:hi] {
		delete(z.scores, mb.Name)
	}
	z.members = append(z.members[:lo], z.members[hi:]...)
	if len(z.members) == 0 {
		delete(m.items, key)
	}
}
