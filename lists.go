package cachex

import (
	"context"

	"github.com/unkn0wn-root/cachex/backend"
)

// PushList appends value at the tail (or head when left is set) and returns
// the new length.
func (f *Facade) PushList(ctx context.Context, key, value string, left bool) int64 {
	return f.PushListValues(ctx, key, left, value)
}

// PushListValues inserts values one after another. Pushed to the head they end
// up in reverse order, as with LPUSH.
func (f *Facade) PushListValues(ctx context.Context, key string, left bool, values ...string) int64 {
	if len(values) == 0 {
		return 0
	}
	return do(ctx, f, "PushList", func(b backend.Backend) (int64, error) {
		n, err := b.Push(ctx, key, left, values...)
		if err != nil {
			return 0, err
		}
		return n, f.refresh(ctx, b, key)
	})
}

// GetListRange returns elements start..stop inclusive; -1 is the last element.
func (f *Facade) GetListRange(ctx context.Context, key string, start, stop int64) []string {
	return do(ctx, f, "GetListRange", func(b backend.Backend) ([]string, error) {
		return b.Range(ctx, key, start, stop)
	})
}

func (f *Facade) PopList(ctx context.Context, key string, left bool) (string, bool) {
	r := do(ctx, f, "PopList", func(b backend.Backend) (found[string], error) {
		v, ok, err := b.Pop(ctx, key, left)
		if err != nil || !ok {
			return found[string]{}, err
		}
		return found[string]{v, true}, f.refresh(ctx, b, key)
	})
	return r.v, r.ok
}

// TrimList keeps only the elements in start..stop.
func (f *Facade) TrimList(ctx context.Context, key string, start, stop int64) bool {
	_, err := invoke(ctx, f, "TrimList", func(b backend.Backend) (struct{}, error) {
		if err := b.Trim(ctx, key, start, stop); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, f.refresh(ctx, b, key)
	})
	return err == nil
}
