package cachex

import (
	"context"
	"time"

	"github.com/unkn0wn-root/cachex/backend"
)

// Lock runs action while holding a lease on key for at most ttl.
// It returns false without running action when the lease is held elsewhere or
// cannot be acquired. The lease is released after action returns or panics.
func (f *Facade) Lock(ctx context.Context, key string, ttl time.Duration, action func()) bool {
	if key == "" || ttl <= 0 || action == nil {
		return false
	}
	lease, err := invoke(ctx, f, "Lock", func(b backend.Backend) (found[string], error) {
		tok, ok, err := b.TryLock(ctx, key, ttl)
		return found[string]{tok, ok}, err
	})
	if err != nil || !lease.ok {
		return false
	}
	defer func() {
		uctx := context.WithoutCancel(ctx)
		released := do(uctx, f, "Unlock", func(b backend.Backend) (bool, error) {
			return b.Unlock(uctx, key, lease.v)
		})
		if !released {
			f.log.Debug("lock lease already gone", Fields{"key": key})
		}
	}()
	action()
	return true
}
