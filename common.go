package cachex

import (
	"context"
	"errors"
	"time"

	"github.com/unkn0wn-root/cachex/backend"
)

func (f *Facade) KeyExists(ctx context.Context, key string) bool {
	return do(ctx, f, "KeyExists", func(b backend.Backend) (bool, error) {
		return b.Exists(ctx, key)
	})
}

// SetExpire sets a relative timeout on key. A non-positive ttl expires the
// key immediately. Returns false when the key does not exist.
func (f *Facade) SetExpire(ctx context.Context, key string, ttl time.Duration) bool {
	return do(ctx, f, "SetExpire", func(b backend.Backend) (bool, error) {
		return b.Expire(ctx, key, ttl)
	})
}

// SetExpireAt sets an absolute deadline. A deadline in the past removes the key.
func (f *Facade) SetExpireAt(ctx context.Context, key string, at time.Time) bool {
	return do(ctx, f, "SetExpireAt", func(b backend.Backend) (bool, error) {
		return b.ExpireAt(ctx, key, at)
	})
}

// KeyTimeToLive returns the remaining lifetime of key. ok is false when the key
// is missing or never expires.
func (f *Facade) KeyTimeToLive(ctx context.Context, key string) (time.Duration, bool) {
	r := do(ctx, f, "KeyTimeToLive", func(b backend.Backend) (found[time.Duration], error) {
		d, ok, err := b.TTL(ctx, key)
		return found[time.Duration]{d, ok}, err
	})
	return r.v, r.ok
}

func (f *Facade) Remove(ctx context.Context, key string) bool {
	return do(ctx, f, "Remove", func(b backend.Backend) (bool, error) {
		return b.Remove(ctx, key)
	})
}

// RemoveCache drops a single cached object. It does not touch region
// bookkeeping; the stale member is skipped when its region is dropped.
func (f *Facade) RemoveCache(ctx context.Context, key string) bool {
	return do(ctx, f, "RemoveCache", func(b backend.Backend) (bool, error) {
		return b.Remove(ctx, key)
	})
}

func (f *Facade) RemoveAll(ctx context.Context, keys []string) int64 {
	if len(keys) == 0 {
		return 0
	}
	return do(ctx, f, "RemoveAll", func(b backend.Backend) (int64, error) {
		return b.RemoveAll(ctx, keys)
	})
}

// SearchKeys lists live keys matching a glob pattern (`*`, `?`).
func (f *Facade) SearchKeys(ctx context.Context, pattern string) []string {
	return do(ctx, f, "SearchKeys", func(b backend.Backend) ([]string, error) {
		return b.SearchKeys(ctx, pattern)
	})
}

// ScanKeys is SearchKeys without blocking a remote server; each key appears once.
func (f *Facade) ScanKeys(ctx context.Context, pattern string) []string {
	return do(ctx, f, "ScanKeys", func(b backend.Backend) ([]string, error) {
		return b.ScanKeys(ctx, pattern)
	})
}

// RemoveWithPattern deletes every key matching pattern and returns how many
// were removed.
func (f *Facade) RemoveWithPattern(ctx context.Context, pattern string) int64 {
	return do(ctx, f, "RemoveWithPattern", func(b backend.Backend) (int64, error) {
		ks, err := b.ScanKeys(ctx, pattern)
		if err != nil || len(ks) == 0 {
			return 0, err
		}
		return b.RemoveAll(ctx, ks)
	})
}

// Clear empties the whole keyspace of the active backend.
func (f *Facade) Clear(ctx context.Context) bool {
	_, err := invoke(ctx, f, "Clear", func(b backend.Backend) (struct{}, error) {
		return struct{}{}, b.Clear(ctx)
	})
	return err == nil
}

// CacheItemExist reports whether key holds a live object value.
func (f *Facade) CacheItemExist(ctx context.Context, key string) bool {
	_, err := invoke(ctx, f, "CacheItemExist", func(b backend.Backend) ([]byte, error) {
		return b.Get(ctx, key)
	})
	return err == nil
}

// RemoveCacheByRegion removes every key written with region and the region
// entry itself. Returns the number of member keys removed.
func (f *Facade) RemoveCacheByRegion(ctx context.Context, region string) int64 {
	if region == "" {
		return 0
	}
	n, err := invoke(ctx, f, "RemoveCacheByRegion", func(b backend.Backend) (int64, error) {
		return backend.DropRegion(ctx, b, region)
	})
	if err != nil && !errors.Is(err, backend.ErrNotFound) {
		f.log.Debug("region not fully removed", Fields{"region": region, "err": err})
	}
	return n
}
