package redis

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"

	"github.com/unkn0wn-root/cachex/backend"
	"github.com/unkn0wn-root/cachex/internal/keys"
)

func genToken() (string, error) { return uuid.NewString(), nil }

// TryLock makes a single acquisition attempt. Leases are not renewed; they
// expire after ttl.
func (r *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if key == "" || ttl <= 0 {
		return "", false, backend.ErrInvalidLease
	}
	mu := r.rs.NewMutex(keys.Lock(key),
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
		redsync.WithGenValueFunc(genToken),
	)
	if err := mu.TryLockContext(ctx); err != nil {
		// contention and transport failures look alike from redsync; a healthy
		// server means someone else holds the lease
		if perr := r.rdb.Ping(ctx).Err(); perr != nil {
			return "", false, perr
		}
		return "", false, nil
	}
	return mu.Value(), true, nil
}

func (r *Redis) Unlock(ctx context.Context, key, token string) (bool, error) {
	mu := r.rs.NewMutex(keys.Lock(key), redsync.WithValue(token))
	ok, err := mu.UnlockContext(ctx)
	if err != nil || !ok {
		if perr := r.rdb.Ping(ctx).Err(); perr != nil {
			return false, perr
		}
		return false, nil
	}
	return true, nil
}
