package cachex

import (
	"context"

	"github.com/unkn0wn-root/cachex/backend"
)

// refresh resets key's lifetime to the default expiration. It is a no-op for
// keys that no longer exist.
func (f *Facade) refresh(ctx context.Context, b backend.Common, key string) error {
	_, err := b.Expire(ctx, key, f.defaultTTL)
	return err
}

// SetHash writes one field and reports whether it was new.
func (f *Facade) SetHash(ctx context.Context, key, field, value string) bool {
	return do(ctx, f, "SetHash", func(b backend.Backend) (bool, error) {
		created, err := b.HSet(ctx, key, field, value)
		if err != nil {
			return false, err
		}
		return created, f.refresh(ctx, b, key)
	})
}

func (f *Facade) SetHashFields(ctx context.Context, key string, values map[string]string) bool {
	if len(values) == 0 {
		return true
	}
	_, err := invoke(ctx, f, "SetHashFields", func(b backend.Backend) (struct{}, error) {
		if err := b.HSetMap(ctx, key, values); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, f.refresh(ctx, b, key)
	})
	return err == nil
}

func (f *Facade) GetHash(ctx context.Context, key, field string) (string, bool) {
	r := do(ctx, f, "GetHash", func(b backend.Backend) (found[string], error) {
		v, ok, err := b.HGet(ctx, key, field)
		return found[string]{v, ok}, err
	})
	return r.v, r.ok
}

// GetHashFields returns the requested fields that exist.
func (f *Facade) GetHashFields(ctx context.Context, key string, fields []string) map[string]string {
	if len(fields) == 0 {
		return map[string]string{}
	}
	return do(ctx, f, "GetHashFields", func(b backend.Backend) (map[string]string, error) {
		return b.HGetFields(ctx, key, fields)
	})
}

func (f *Facade) GetAllHash(ctx context.Context, key string) map[string]string {
	return do(ctx, f, "GetAllHash", func(b backend.Backend) (map[string]string, error) {
		return b.HGetAll(ctx, key)
	})
}

func (f *Facade) RemoveHash(ctx context.Context, key, field string) bool {
	return f.RemoveHashFields(ctx, key, field) == 1
}

// RemoveHashFields deletes fields and returns how many existed.
func (f *Facade) RemoveHashFields(ctx context.Context, key string, fields ...string) int64 {
	if len(fields) == 0 {
		return 0
	}
	return do(ctx, f, "RemoveHashFields", func(b backend.Backend) (int64, error) {
		n, err := b.HDel(ctx, key, fields...)
		if err != nil {
			return 0, err
		}
		return n, f.refresh(ctx, b, key)
	})
}

func (f *Facade) HashIncrement(ctx context.Context, key, field string, delta float64) float64 {
	return do(ctx, f, "HashIncrement", func(b backend.Backend) (float64, error) {
		v, err := b.HIncrBy(ctx, key, field, delta)
		if err != nil {
			return 0, err
		}
		return v, f.refresh(ctx, b, key)
	})
}

func (f *Facade) HashDecrement(ctx context.Context, key, field string, delta float64) float64 {
	return f.HashIncrement(ctx, key, field, -delta)
}

func (f *Facade) HashKeys(ctx context.Context, key string) []string {
	return do(ctx, f, "HashKeys", func(b backend.Backend) ([]string, error) {
		return b.HKeys(ctx, key)
	})
}
