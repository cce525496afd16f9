// Package redis is the remote backend, a thin mapping of the backend contract
// onto go-redis commands.
package redis

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	rsgoredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/cachex/backend"
)

const scanBatch = 100

var ErrNilClient = errors.New("redis backend: nil client")

type Redis struct {
	rdb         goredis.UniversalClient
	rs          *redsync.Redsync
	closeClient bool
}

var _ backend.Backend = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this backend exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{
		rdb:         cfg.Client,
		rs:          redsync.New(rsgoredis.NewPool(cfg.Client)),
		closeClient: cfg.CloseClient,
	}, nil
}

func (r *Redis) Kind() backend.Kind { return backend.KindRemote }

// Close releases the underlying client only when this backend owns it.
// Safe to call multiple times.
func (r *Redis) Close(context.Context) error {
	if r.closeClient {
		if err := r.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

// mapErr translates server replies into backend sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "WRONGTYPE"):
		return errors.Join(backend.ErrWrongType, err)
	case strings.Contains(msg, "not a valid float"), strings.Contains(msg, "not an integer"),
		strings.Contains(msg, "not a number"):
		return errors.Join(backend.ErrNotNumber, err)
	}
	return err
}

func ttlArg(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0 // no expiry; negative values would mean KEEPTTL to go-redis
	}
	return ttl
}

func args(vs []string) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// Common

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Exists(ctx, key).Result()
	return n > 0, err
}

func (r *Redis) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl > 0 {
		return r.rdb.PExpire(ctx, key, ttl).Result()
	}
	// an elapsed timeout expires the key at once, as EXPIRE with ttl <= 0 does
	n, err := r.rdb.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *Redis) ExpireAt(ctx context.Context, key string, at time.Time) (bool, error) {
	return r.rdb.PExpireAt(ctx, key, at).Result()
}

func (r *Redis) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	d, err := r.rdb.PTTL(ctx, key).Result()
	if err != nil {
		return 0, false, err
	}
	// -2 missing, -1 persistent
	if d < 0 {
		return 0, false, nil
	}
	return d, true, nil
}

func (r *Redis) Remove(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Del(ctx, key).Result()
	return n > 0, err
}

func (r *Redis) RemoveAll(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return r.rdb.Del(ctx, keys...).Result()
}

func (r *Redis) SearchKeys(ctx context.Context, pattern string) ([]string, error) {
	ks, err := r.rdb.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ks)
	return ks, nil
}

// ScanKeys walks the keyspace with SCAN and drops the duplicates the server may
// report across batches.
func (r *Redis) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var cursor uint64
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for {
		ks, next, err := r.rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range ks {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *Redis) Clear(ctx context.Context) error {
	return r.rdb.FlushDB(ctx).Err()
}

// Objects

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, backend.ErrNotFound
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

func (r *Redis) Set(ctx context.Context, key string, raw []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, raw, ttlArg(ttl)).Err()
}

func (r *Redis) SetAt(ctx context.Context, key string, raw []byte, at time.Time) error {
	if at.IsZero() {
		return r.Set(ctx, key, raw, 0)
	}
	ttl := time.Until(at)
	if ttl <= 0 {
		return r.rdb.Del(ctx, key).Err()
	}
	return r.rdb.Set(ctx, key, raw, ttl).Err()
}

// Strings

func (r *Redis) GetString(ctx context.Context, key string) (string, bool, error) {
	s, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, mapErr(err)
	}
	return s, true, nil
}

func (r *Redis) GetStrings(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[keys[i]] = s
		}
	}
	return out, nil
}

func (r *Redis) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttlArg(ttl)).Err()
}

func (r *Redis) SetStringAt(ctx context.Context, key, value string, at time.Time) error {
	return r.SetAt(ctx, key, []byte(value), at)
}

func (r *Redis) SetStrings(ctx context.Context, items map[string]string, ttl time.Duration) error {
	if len(items) == 0 {
		return nil
	}
	_, err := r.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for k, v := range items {
			p.Set(ctx, k, v, ttlArg(ttl))
		}
		return nil
	})
	return err
}

func (r *Redis) IncrBy(ctx context.Context, key string, delta float64) (float64, error) {
	f, err := r.rdb.IncrByFloat(ctx, key, delta).Result()
	return f, mapErr(err)
}
