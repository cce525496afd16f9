package backend

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/cachex/internal/keys"
)

// TrackRegion records key as a member of region. The region entry itself never
// expires; it is emptied by DropRegion.
func TrackRegion(ctx context.Context, b Sets, region, key string) error {
	if region == "" {
		return nil
	}
	_, err := b.SAdd(ctx, keys.Region(region), key)
	return err
}

// DropRegion removes every key recorded under region and then the region entry.
// Returns the number of member keys that were removed.
func DropRegion(ctx context.Context, b interface {
	Common
	Sets
}, region string) (int64, error) {
	rk := keys.Region(region)
	members, err := b.SMembers(ctx, rk)
	if err != nil {
		return 0, fmt.Errorf("region %q members: %w", region, err)
	}
	var n int64
	if len(members) > 0 {
		if n, err = b.RemoveAll(ctx, members); err != nil {
			return 0, fmt.Errorf("region %q remove: %w", region, err)
		}
	}
	if _, err := b.Remove(ctx, rk); err != nil {
		return n, fmt.Errorf("region %q remove entry: %w", region, err)
	}
	return n, nil
}
