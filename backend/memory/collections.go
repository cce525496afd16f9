package memory

import (
	"context"
	"math/rand"
	"sort"
)

func newHash() hash { return make(hash) }
func newSet() set { return make(set) }
func newList() *list { return &list{} }

// Hashes

func (m *Memory) HSet(_ context.Context, key, field, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, err := loadOrCreate(m, key, newHash)
	if err != nil {
		return false, err
	}
	_, existed := h[field]
	h[field] = value
	return !existed, nil
}

func (m *Memory) HSetMap(_ context.Context, key string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	h, err := loadOrCreate(m, key, newHash)
	if err != nil {
		return err
	}
	for f, v := range values {
		h[f] = v
	}
	return nil
}

func (m *Memory) HGet(_ context.Context, key, field string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok, err := loadAs[hash](m, key)
	if err != nil || !ok {
		return "", false, err
	}
	v, ok := h[field]
	return v, ok, nil
}

func (m *Memory) HGetFields(_ context.Context, key string, fields []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(fields))
	h, ok, err := loadAs[hash](m, key)
	if err != nil || !ok {
		return out, err
	}
	for _, f := range fields {
		if v, ok := h[f]; ok {
			out[f] = v
		}
	}
	return out, nil
}

func (m *Memory) HGetAll(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, _, err := loadAs[hash](m, key)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(h))
	for f, v := range h {
		out[f] = v
	}
	return out, nil
}

func (m *Memory) HDel(_ context.Context, key string, fields ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok, err := loadAs[hash](m, key)
	if err != nil || !ok {
		return 0, err
	}
	var n int64
	for _, f := range fields {
		if _, ok := h[f]; ok {
			delete(h, f)
			n++
		}
	}
	if len(h) == 0 {
		delete(m.items, key)
	}
	return n, nil
}

func (m *Memory) HIncrBy(_ context.Context, key, field string, delta float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, err := loadOrCreate(m, key, newHash)
	if err != nil {
		return 0, err
	}
	cur, err := parseFloat(h[field])
	if err != nil {
		return 0, err
	}
	cur += delta
	h[field] = formatFloat(cur)
	return cur, nil
}

func (m *Memory) HKeys(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, _, err := loadAs[hash](m, key)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(h))
	for f := range h {
		out = append(out, f)
	}
	sort.Strings(out)
	return out, nil
}

// Lists

func (m *Memory) Push(_ context.Context, key string, left bool, values ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(values) == 0 {
		l, _, err := loadAs[*list](m, key)
		if err != nil || l == nil {
			return 0, err
		}
		return int64(len(l.items)), nil
	}
	l, err := loadOrCreate(m, key, newList)
	if err != nil {
		return 0, err
	}
	if left {
		head := make([]string, 0, len(values)+len(l.items))
		for i := len(values) - 1; i >= 0; i-- {
			head = append(head, values[i])
		}
		l.items = append(head, l.items...)
	} else {
		l.items = append(l.items, values...)
	}
	return int64(len(l.items)), nil
}

func (m *Memory) Pop(_ context.Context, key string, left bool) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok, err := loadAs[*list](m, key)
	if err != nil || !ok || len(l.items) == 0 {
		return "", false, err
	}
	var v string
	if left {
		v, l.items = l.items[0], l.items[1:]
	} else {
		last := len(l.items) - 1
		v, l.items = l.items[last], l.items[:last]
	}
	if len(l.items) == 0 {
		delete(m.items, key)
	}
	return v, true, nil
}

func (m *Memory) Range(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok, err := loadAs[*list](m, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}
	lo, hi, ok := span(len(l.items), start, stop)
	if !ok {
		return []string{}, nil
	}
	return append([]string(nil), l.items[lo:hi+1]...), nil
}

func (m *Memory) Trim(_ context.Context, key string, start, stop int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok, err := loadAs[*list](m, key)
	if err != nil || !ok {
		return err
	}
	lo, hi, ok := span(len(l.items), start, stop)
	if !ok {
		delete(m.items, key)
		return nil
	}
	l.items = append([]string(nil), l.items[lo:hi+1]...)
	return nil
}

// Sets

func (m *Memory) SAdd(_ context.Context, key string, members ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(members) == 0 {
		return 0, nil
	}
	s, err := loadOrCreate(m, key, newSet)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, v := range members {
		if _, ok := s[v]; !ok {
			s[v] = struct{}{}
			n++
		}
	}
	return n, nil
}

func (m *Memory) SRem(_ context.Context, key string, members ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok, err := loadAs[set](m, key)
	if err != nil || !ok {
		return 0, err
	}
	var n int64
	for _, v := range members {
		if _, ok := s[v]; ok {
			delete(s, v)
			n++
		}
	}
	if len(s) == 0 {
		delete(m.items, key)
	}
	return n, nil
}

func (m *Memory) SMembers(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, _, err := loadAs[set](m, key)
	if err != nil {
		return nil, err
	}
	return s.sorted(), nil
}

func (m *Memory) SIsMember(_ context.Context, key, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok, err := loadAs[set](m, key)
	if err != nil || !ok {
		return false, err
	}
	_, in := s[member]
	return in, nil
}

func (m *Memory) SMove(_ context.Context, src, dst, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	from, ok, err := loadAs[set](m, src)
	if err != nil || !ok {
		return false, err
	}
	if _, ok := from[member]; !ok {
		return false, nil
	}
	if _, _, err := loadAs[set](m, dst); err != nil {
		return false, err
	}
	if src == dst {
		return true, nil
	}
	delete(from, member)
	if len(from) == 0 {
		delete(m.items, src)
	}
	to, err := loadOrCreate(m, dst, newSet)
	if err != nil {
		return false, err
	}
	to[member] = struct{}{}
	return true, nil
}

func (m *Memory) SRandMember(_ context.Context, key string, count int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok, err := loadAs[set](m, key)
	if err != nil {
		return nil, err
	}
	if !ok || count == 0 {
		return []string{}, nil
	}
	all := s.sorted()
	if count < 0 {
		out := make([]string, -count)
		for i := range out {
			out[i] = all[rand.Intn(len(all))]
		}
		return out, nil
	}
	if count >= len(all) {
		rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
		return all, nil
	}
	out := make([]string, count)
	for i, p := range rand.Perm(len(all))[:count] {
		out[i] = all[p]
	}
	return out, nil
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
