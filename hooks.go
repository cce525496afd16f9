package cachex

import "github.com/unkn0wn-root/cachex/backend"

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The facade calls them on request paths.
type Hooks interface {
	// The facade switched running mode.
	// reason ∈ {"retries_exhausted", "reconnected"}
	ModeChanged(from, to Mode, reason string)

	// Every attempt of an operation failed.
	RetriesExhausted(op string, attempts int, err error)

	// A fresh remote backend replaced the fallback.
	Reconnected(kind backend.Kind)

	// A reconnect attempt failed; the facade stays in fallback.
	ReconnectFailed(err error)

	// An unreadable object entry was deleted on read.
	// reason ∈ {"corrupt", "codec_mismatch", "value_decode"}
	SelfHeal(key, reason string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) ModeChanged(Mode, Mode, string)      {}
func (NopHooks) RetriesExhausted(string, int, error) {}
func (NopHooks) Reconnected(backend.Kind)            {}
func (NopHooks) ReconnectFailed(error)               {}
func (NopHooks) SelfHeal(string, string)             {}
