// Package backend defines the capability contract shared by every cachex storage
// medium.
//
// The contract is split into operation groups (Common, Objects, Strings, Hashes,
// Lists, SortedSets, Sets, Locker). Each group can be implemented on its own; a full
// Backend embeds all of them and reports its Kind.
//
// Range arguments follow redis conventions everywhere: indices are zero-based,
// negative indices count from the end (-1 is the last element) and both endpoints
// are inclusive. Out-of-range indices clamp to an empty result instead of failing.
//
// Non-positive TTLs on writes mean "no expiry"; Expire is the exception and
// removes the key.
package backend

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Objects.Get when the key holds no live value.
	ErrNotFound = errors.New("backend: key not found")
	// ErrWrongType is returned when a key holds a value of another kind
	// (e.g. a hash operation against a list).
	ErrWrongType = errors.New("backend: operation against a key holding the wrong kind of value")
	// ErrNotNumber is returned by increments when the stored value is not a decimal.
	ErrNotNumber = errors.New("backend: value is not a valid number")
	// ErrInvalidLease is returned by TryLock for an empty key or a non-positive ttl.
	ErrInvalidLease = errors.New("backend: lock requires a key and a positive ttl")
)

// Kind tags which storage medium a Backend uses.
type Kind int

const (
	KindRemote Kind = iota
	KindInMemory
)

func (k Kind) String() string {
	switch k {
	case KindRemote:
		return "remote"
	case KindInMemory:
		return "in-memory"
	default:
		return "unknown"
	}
}

// Member is one sorted-set entry.
type Member struct {
	Name  string
	Score float64
}

// Common covers key-level inspection and removal.
type Common interface {
	Exists(ctx context.Context, key string) (bool, error)
	// Expire sets a relative timeout; a non-positive ttl has already elapsed
	// and removes the key.
	// Returns false when the key does not exist.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// ExpireAt sets an absolute deadline. Returns false when the key does not exist.
	ExpireAt(ctx context.Context, key string, at time.Time) (bool, error)
	// TTL returns the remaining time to live; ok=false when the key is missing
	// or carries no timeout.
	TTL(ctx context.Context, key string) (ttl time.Duration, ok bool, err error)
	Remove(ctx context.Context, key string) (bool, error)
	RemoveAll(ctx context.Context, keys []string) (int64, error)
	// SearchKeys returns live keys matching a glob pattern (`*`, `?`).
	SearchKeys(ctx context.Context, pattern string) ([]string, error)
	// ScanKeys is the incremental variant of SearchKeys (cursor based on remote
	// servers). Each key is reported once.
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
	Clear(ctx context.Context) error
}

// Objects stores opaque encoded values.
type Objects interface {
	// Get returns ErrNotFound on miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, raw []byte, ttl time.Duration) error
	SetAt(ctx context.Context, key string, raw []byte, at time.Time) error
}

// Strings treats values as text; increments parse them as decimals.
type Strings interface {
	GetString(ctx context.Context, key string) (string, bool, error)
	// GetStrings returns only the keys that hold a value.
	GetStrings(ctx context.Context, keys []string) (map[string]string, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	SetStringAt(ctx context.Context, key, value string, at time.Time) error
	SetStrings(ctx context.Context, items map[string]string, ttl time.Duration) error
	// IncrBy adds delta (may be negative); a missing key counts as 0.
	IncrBy(ctx context.Context, key string, delta float64) (float64, error)
}

// Hashes stores field -> string maps.
type Hashes interface {
	// HSet reports true when field is new.
	HSet(ctx context.Context, key, field, value string) (bool, error)
	HSetMap(ctx context.Context, key string, values map[string]string) error
	HGet(ctx context.Context, key, field string) (string, bool, error)
	// HGetFields returns only the fields that exist.
	HGetFields(ctx context.Context, key string, fields []string) (map[string]string, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) (int64, error)
	HIncrBy(ctx context.Context, key, field string, delta float64) (float64, error)
	HKeys(ctx context.Context, key string) ([]string, error)
}

// Lists stores ordered string sequences.
type Lists interface {
	// Push inserts values one after another at the head (left) or tail and
	// returns the new length.
	Push(ctx context.Context, key string, left bool, values ...string) (int64, error)
	Pop(ctx context.Context, key string, left bool) (string, bool, error)
	Range(ctx context.Context, key string, start, stop int64) ([]string, error)
	// Trim keeps only the elements in [start, stop].
	Trim(ctx context.Context, key string, start, stop int64) error
}

// SortedSets stores members ordered by (score, name).
type SortedSets interface {
	// ZAdd adds or rescores member; true when member is new.
	ZAdd(ctx context.Context, key, member string, score float64) (bool, error)
	// ZAddMany returns the number of new members.
	ZAddMany(ctx context.Context, key string, members map[string]float64) (int64, error)
	ZScore(ctx context.Context, key, member string) (float64, bool, error)
	ZIncrBy(ctx context.Context, key, member string, delta float64) (float64, error)
	ZRange(ctx context.Context, key string, start, stop int64) ([]Member, error)
	// ZRangeByScore returns members with min <= score <= max.
	ZRangeByScore(ctx context.Context, key string, min, max float64) ([]Member, error)
	ZRemRangeByRank(ctx context.Context, key string, start, stop int64) (int64, error)
	ZRemRangeByScore(ctx context.Context, key string, min, max float64) (int64, error)
}

// Sets stores unordered unique strings.
type Sets interface {
	SAdd(ctx context.Context, key string, members ...string) (int64, error)
	SRem(ctx context.Context, key string, members ...string) (int64, error)
	SMembers(ctx context.Context, key string) ([]string, error)
	SIsMember(ctx context.Context, key, member string) (bool, error)
	SMove(ctx context.Context, src, dst, member string) (bool, error)
	// SRandMember samples count distinct members; a negative count allows repeats
	// and always returns |count| members from a non-empty set.
	SRandMember(ctx context.Context, key string, count int) ([]string, error)
}

// Locker provides mutually exclusive leases that expire by wall-clock TTL.
type Locker interface {
	// TryLock returns the owner token when the lease was acquired.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Unlock releases the lease only if token still owns it.
	Unlock(ctx context.Context, key, token string) (bool, error)
}

// Backend is the full capability contract.
// Implementations must be safe for concurrent use.
type Backend interface {
	Common
	Objects
	Strings
	Hashes
	Lists
	SortedSets
	Sets
	Locker

	Kind() Kind
	Close(ctx context.Context) error
}
