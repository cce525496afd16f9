package cachex

import "time"

const (
	DefaultRetryCount        = 5
	DefaultReconnectInterval = 60 * time.Minute
	DefaultExpiration        = 120 * time.Second
	DefaultErrorThreshold    = 5
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
