package cachex

import (
	"context"

	"github.com/unkn0wn-root/cachex/backend"
)

func (f *Facade) AddSetItem(ctx context.Context, key, member string) bool {
	return f.AddSet(ctx, key, member) == 1
}

// AddSet adds members and returns how many were not already present.
func (f *Facade) AddSet(ctx context.Context, key string, members ...string) int64 {
	if len(members) == 0 {
		return 0
	}
	return do(ctx, f, "AddSet", func(b backend.Backend) (int64, error) {
		n, err := b.SAdd(ctx, key, members...)
		if err != nil {
			return 0, err
		}
		return n, f.refresh(ctx, b, key)
	})
}

func (f *Facade) RemoveSet(ctx context.Context, key string, members ...string) int64 {
	if len(members) == 0 {
		return 0
	}
	return do(ctx, f, "RemoveSet", func(b backend.Backend) (int64, error) {
		n, err := b.SRem(ctx, key, members...)
		if err != nil {
			return 0, err
		}
		return n, f.refresh(ctx, b, key)
	})
}

func (f *Facade) GetAllSet(ctx context.Context, key string) []string {
	return do(ctx, f, "GetAllSet", func(b backend.Backend) ([]string, error) {
		return b.SMembers(ctx, key)
	})
}

func (f *Facade) SetContains(ctx context.Context, key, member string) bool {
	return do(ctx, f, "SetContains", func(b backend.Backend) (bool, error) {
		return b.SIsMember(ctx, key, member)
	})
}

// SetMove moves member from src to dst. False when src does not hold it.
func (f *Facade) SetMove(ctx context.Context, src, dst, member string) bool {
	return do(ctx, f, "SetMove", func(b backend.Backend) (bool, error) {
		moved, err := b.SMove(ctx, src, dst, member)
		if err != nil || !moved {
			return false, err
		}
		if err := f.refresh(ctx, b, src); err != nil {
			return true, err
		}
		return true, f.refresh(ctx, b, dst)
	})
}

// GetItemFromSetByCount samples members. A positive count returns up to count
// distinct members; a negative count returns exactly -count, repeats allowed.
func (f *Facade) GetItemFromSetByCount(ctx context.Context, key string, count int) []string {
	return do(ctx, f, "GetItemFromSetByCount", func(b backend.Backend) ([]string, error) {
		return b.SRandMember(ctx, key, count)
	})
}
