package cachex

import (
	"context"

	"github.com/unkn0wn-root/cachex/backend"
)

// Member is one sorted-set entry.
type Member = backend.Member

// SetSortSet adds member or updates its score. Reports whether it was new.
func (f *Facade) SetSortSet(ctx context.Context, key, member string, score float64) bool {
	return do(ctx, f, "SetSortSet", func(b backend.Backend) (bool, error) {
		added, err := b.ZAdd(ctx, key, member, score)
		if err != nil {
			return false, err
		}
		return added, f.refresh(ctx, b, key)
	})
}

// SetSortSetMembers adds or rescores every member and returns how many were new.
func (f *Facade) SetSortSetMembers(ctx context.Context, key string, members map[string]float64) int64 {
	if len(members) == 0 {
		return 0
	}
	return do(ctx, f, "SetSortSetMembers", func(b backend.Backend) (int64, error) {
		n, err := b.ZAddMany(ctx, key, members)
		if err != nil {
			return 0, err
		}
		return n, f.refresh(ctx, b, key)
	})
}

func (f *Facade) GetSortSetScore(ctx context.Context, key, member string) (float64, bool) {
	r := do(ctx, f, "GetSortSetScore", func(b backend.Backend) (found[float64], error) {
		s, ok, err := b.ZScore(ctx, key, member)
		return found[float64]{s, ok}, err
	})
	return r.v, r.ok
}

func (f *Facade) SortedSetIncrement(ctx context.Context, key, member string, delta float64) float64 {
	return do(ctx, f, "SortedSetIncrement", func(b backend.Backend) (float64, error) {
		s, err := b.ZIncrBy(ctx, key, member, delta)
		if err != nil {
			return 0, err
		}
		return s, f.refresh(ctx, b, key)
	})
}

func (f *Facade) SortedSetDecrement(ctx context.Context, key, member string, delta float64) float64 {
	return f.SortedSetIncrement(ctx, key, member, -delta)
}

// GetSortedSetRange returns member names by rank, lowest score first.
func (f *Facade) GetSortedSetRange(ctx context.Context, key string, start, stop int64) []string {
	return names(f.GetSortedSetRangeWithScore(ctx, key, start, stop))
}

func (f *Facade) GetSortedSetRangeWithScore(ctx context.Context, key string, start, stop int64) []Member {
	return do(ctx, f, "GetSortedSetRange", func(b backend.Backend) ([]Member, error) {
		return b.ZRange(ctx, key, start, stop)
	})
}

// GetSortedSetRangeByScore returns member names with min <= score <= max.
func (f *Facade) GetSortedSetRangeByScore(ctx context.Context, key string, min, max float64) []string {
	return names(f.GetSortedSetRangeByScoreWithScore(ctx, key, min, max))
}

func (f *Facade) GetSortedSetRangeByScoreWithScore(ctx context.Context, key string, min, max float64) []Member {
	return do(ctx, f, "GetSortedSetRangeByScore", func(b backend.Backend) ([]Member, error) {
		return b.ZRangeByScore(ctx, key, min, max)
	})
}

func (f *Facade) RemoveSortedSetByRange(ctx context.Context, key string, start, stop int64) int64 {
	return do(ctx, f, "RemoveSortedSetByRange", func(b backend.Backend) (int64, error) {
		n, err := b.ZRemRangeByRank(ctx, key, start, stop)
		if err != nil {
			return 0, err
		}
		return n, f.refresh(ctx, b, key)
	})
}

func (f *Facade) RemoveSortedSetByScore(ctx context.Context, key string, min, max float64) int64 {
	return do(ctx, f, "RemoveSortedSetByScore", func(b backend.Backend) (int64, error) {
		n, err := b.ZRemRangeByScore(ctx, key, min, max)
		if err != nil {
			return 0, err
		}
		return n, f.refresh(ctx, b, key)
	})
}

func names(ms []Member) []string {
	if ms == nil {
		return nil
	}
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}
