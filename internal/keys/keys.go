// Package keys owns the reserved key shapes and the glob matcher shared by the backends.
package keys

import (
	"regexp"
	"strings"
)

const (
	regionPrefix = "RG_"
	lockPrefix   = "lock:"
)

// Region returns the key of the member set that tracks a region.
func Region(region string) string { return regionPrefix + region }

// IsRegion reports whether key is a region bookkeeping key.
func IsRegion(key string) bool { return strings.HasPrefix(key, regionPrefix) }

// Lock returns the key a remote lease is stored under.
func Lock(key string) string { return lockPrefix + key }

// Glob compiles a redis-style pattern into an anchored regexp.
// Only `*` (any run) and `?` (one char) are special; everything else is literal.
func Glob(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.Grow(len(pattern) + 8)
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString("(?s:.*)")
		case '?':
			b.WriteString("(?s:.)")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	return regexp.Compile(b.String())
}
