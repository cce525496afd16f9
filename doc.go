// Package cachex is a cache access layer with one facade over interchangeable
// storage backends: a redis server (backend/redis) or an in-process emulation
// of the same data model (backend/memory).
//
// Every facade call runs through a retry loop. When RetryCount attempts of an
// operation fail, the failure is counted; after ErrorThreshold such failures the
// facade enters fallback mode and, unless KeepBackendOnFallback is set, moves to
// the in-memory backend. Once ReconnectInterval has passed the next call redials
// the remote backend and returns to normal mode on success.
//
// Failed calls never surface transport errors: callers receive zero values
// ("" / false / 0 / nil), the same as a miss. Use Mode and Hooks to observe
// degraded operation.
//
// Objects are encoded with a codec.Serializer and framed:
//
//	magic "CXOB" | ver | codec id | len (u32 be) | payload
//
// An entry that fails to decode is deleted on read and reported as ErrNotFound.
//
// Regions tag object keys for bulk invalidation:
//
//	cachex.CacheItem(ctx, c, "user:1", u, 0, "users")
//	c.RemoveCacheByRegion(ctx, "users") // drops user:* written with the region
//
// Get-or-populate:
//
//	u, err := cachex.GetWithAdd(ctx, c, "user:1", func(ctx context.Context) (User, error) {
//	    return repo.Load(ctx, 1)
//	})
package cachex
