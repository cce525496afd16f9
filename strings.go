package cachex

import (
	"context"
	"time"

	"github.com/unkn0wn-root/cachex/backend"
)

type found[T any] struct {
	v  T
	ok bool
}

func (f *Facade) GetString(ctx context.Context, key string) (string, bool) {
	r := do(ctx, f, "GetString", func(b backend.Backend) (found[string], error) {
		s, ok, err := b.GetString(ctx, key)
		return found[string]{s, ok}, err
	})
	return r.v, r.ok
}

// GetStrings returns the values of the keys that exist, keyed by input key.
func (f *Facade) GetStrings(ctx context.Context, keys []string) map[string]string {
	if len(keys) == 0 {
		return map[string]string{}
	}
	return do(ctx, f, "GetStrings", func(b backend.Backend) (map[string]string, error) {
		return b.GetStrings(ctx, keys)
	})
}

// SetString stores value for the default expiration.
func (f *Facade) SetString(ctx context.Context, key, value string) bool {
	return f.SetStringFor(ctx, key, value, f.defaultTTL)
}

// SetStringFor stores value for ttl. A non-positive ttl stores it without expiry.
func (f *Facade) SetStringFor(ctx context.Context, key, value string, ttl time.Duration) bool {
	_, err := invoke(ctx, f, "SetString", func(b backend.Backend) (struct{}, error) {
		return struct{}{}, b.SetString(ctx, key, value, ttl)
	})
	return err == nil
}

func (f *Facade) SetStringAt(ctx context.Context, key, value string, at time.Time) bool {
	_, err := invoke(ctx, f, "SetStringAt", func(b backend.Backend) (struct{}, error) {
		return struct{}{}, b.SetStringAt(ctx, key, value, at)
	})
	return err == nil
}

// SetStrings stores every pair for the default expiration.
func (f *Facade) SetStrings(ctx context.Context, items map[string]string) bool {
	if len(items) == 0 {
		return true
	}
	_, err := invoke(ctx, f, "SetStrings", func(b backend.Backend) (struct{}, error) {
		return struct{}{}, b.SetStrings(ctx, items, f.defaultTTL)
	})
	return err == nil
}

// StringIncrement adds delta to the decimal stored under key (missing counts
// as 0) and returns the new value.
func (f *Facade) StringIncrement(ctx context.Context, key string, delta float64) float64 {
	return do(ctx, f, "StringIncrement", func(b backend.Backend) (float64, error) {
		return b.IncrBy(ctx, key, delta)
	})
}

func (f *Facade) StringDecrement(ctx context.Context, key string, delta float64) float64 {
	return do(ctx, f, "StringDecrement", func(b backend.Backend) (float64, error) {
		return b.IncrBy(ctx, key, -delta)
	})
}
