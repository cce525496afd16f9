package cachex

import (
	"context"
	"errors"
	"time"

	"github.com/unkn0wn-root/cachex/backend"
	"github.com/unkn0wn-root/cachex/internal/wire"
)

type writeOptions struct {
	ttl    time.Duration
	at     time.Time
	region string
}

// WriteOption tunes a single object write.
type WriteOption func(*writeOptions)

// WithTTL sets a relative lifetime. Non-positive values fall back to the
// facade's default expiration.
func WithTTL(d time.Duration) WriteOption { return func(o *writeOptions) { o.ttl = d } }

// WithExpiresAt sets an absolute deadline; it wins over WithTTL.
func WithExpiresAt(t time.Time) WriteOption { return func(o *writeOptions) { o.at = t } }

// WithRegion records the key under region for RemoveCacheByRegion.
func WithRegion(region string) WriteOption { return func(o *writeOptions) { o.region = region } }

// Get loads and decodes the object stored under key. It returns ErrNotFound
// when nothing readable is stored; an entry that cannot be decoded is deleted
// and also reported as ErrNotFound.
func Get[T any](ctx context.Context, f *Facade, key string) (T, error) {
	var zero T
	raw, err := invoke(ctx, f, "Get", func(b backend.Backend) ([]byte, error) {
		return b.Get(ctx, key)
	})
	if err != nil {
		return zero, err
	}
	return decode[T](ctx, f, key, raw)
}

// FetchItem is Get without the error: ok is false on a miss or failure.
func FetchItem[T any](ctx context.Context, f *Facade, key string) (T, bool) {
	v, err := Get[T](ctx, f, key)
	return v, err == nil
}

// Set encodes v and stores it under key. Without options the entry expires
// after the facade's default expiration.
func Set[T any](ctx context.Context, f *Facade, key string, v T, opts ...WriteOption) bool {
	var o writeOptions
	for _, opt := range opts {
		opt(&o)
	}
	raw, err := f.encode(v)
	if err != nil {
		f.log.Warn("cache value encode failed", Fields{"key": key, "err": err})
		return false
	}
	ttl := o.ttl
	if ttl <= 0 {
		ttl = f.defaultTTL
	}

	_, err = invoke(ctx, f, "Set", func(b backend.Backend) (struct{}, error) {
		var err error
		if !o.at.IsZero() {
			err = b.SetAt(ctx, key, raw, o.at)
		} else {
			err = b.Set(ctx, key, raw, ttl)
		}
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, backend.TrackRegion(ctx, b, o.region, key)
	})
	return err == nil
}

// CacheItem stores v under key for ttl and tags it with region. An empty region
// skips the region bookkeeping; a non-positive ttl uses the default expiration.
func CacheItem[T any](ctx context.Context, f *Facade, key string, v T, ttl time.Duration, region string) bool {
	return Set(ctx, f, key, v, WithTTL(ttl), WithRegion(region))
}

// GetWithAdd returns the cached value for key or, on a miss, the result of gen.
// Concurrent misses on the same key share one gen call. The generated value is
// stored with opts and returned even when the store fails. A gen error is
// returned as is and nothing is stored.
func GetWithAdd[T any](ctx context.Context, f *Facade, key string, gen func(context.Context) (T, error), opts ...WriteOption) (T, error) {
	if v, err := Get[T](ctx, f, key); err == nil {
		return v, nil
	}

	res, err, _ := f.populate.Do(key, func() (any, error) {
		v, err := gen(ctx)
		if err != nil {
			return v, err
		}
		if !Set(ctx, f, key, v, opts...) {
			f.log.Warn("generated value not cached", Fields{"key": key})
		}
		return v, nil
	})
	v, _ := res.(T)
	return v, err
}

func (f *Facade) encode(v any) ([]byte, error) {
	payload, err := f.ser.Marshal(v)
	if err != nil {
		return nil, err
	}
	return wire.Encode(f.ser.ID(), payload), nil
}

func decode[T any](ctx context.Context, f *Facade, key string, raw []byte) (T, error) {
	var zero T
	id, payload, err := wire.Decode(raw)
	if err != nil {
		return zero, f.selfHeal(ctx, key, "corrupt")
	}
	if id != f.ser.ID() {
		return zero, f.selfHeal(ctx, key, "codec_mismatch")
	}
	var v T
	if err := f.ser.Unmarshal(payload, &v); err != nil {
		return zero, f.selfHeal(ctx, key, "value_decode")
	}
	return v, nil
}

// selfHeal deletes an unreadable entry so the next write starts clean.
func (f *Facade) selfHeal(ctx context.Context, key, reason string) error {
	if !f.Remove(ctx, key) {
		f.log.Debug("self-heal delete skipped", Fields{"key": key})
	}
	f.log.Warn("unreadable cache entry removed", Fields{"key": key, "reason": reason})
	f.hooks.SelfHeal(key, reason)
	return ErrNotFound
}

// IsNotFound reports whether err means the key holds no value.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
