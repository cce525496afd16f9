package cachex

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/cachex/backend"
	"github.com/unkn0wn-root/cachex/codec"
)

// Mode is the facade's running mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFallback
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// runState is everything the failover logic mutates. Guarded by Facade.mu.
type runState struct {
	mode        Mode
	errCount    int
	lastChange  time.Time
	lastAttempt time.Time // last reconnect attempt
	active      backend.Backend
	kind        backend.Kind
}

// Facade is the single entry point for cache access. Every call runs through
// invoke, which retries, counts exhausted operations and moves between Normal
// and Fallback mode.
//
// Failed calls degrade to zero values: callers see "" / false / nil rather than
// errors, the same way a miss looks.
type Facade struct {
	retries        int
	reconnectEvery time.Duration
	defaultTTL     time.Duration
	threshold      int
	keepOnFallback bool

	log   Logger
	hooks Hooks
	ser   codec.Serializer

	dial     DialFunc
	fallback func() backend.Backend
	now      func() time.Time

	populate singleflight.Group

	mu sync.Mutex
	st runState
}

func (f *Facade) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st.mode
}

func (f *Facade) ErrorCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st.errCount
}

func (f *Facade) BackendKind() backend.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st.kind
}

// Close releases the active backend.
func (f *Facade) Close(ctx context.Context) error {
	f.mu.Lock()
	b := f.st.active
	f.mu.Unlock()
	if b == nil {
		return nil
	}
	return b.Close(ctx)
}

func (f *Facade) current() backend.Backend {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st.active
}

// invoke runs op against the active backend up to f.retries times.
//
// ErrNotFound is a result, not a failure: it returns at once. Caller errors
// (wrong kind, not a number) are not retried or counted. A cancelled ctx stops
// the loop without counting. When every attempt fails the exhausted counter
// grows and may switch the facade to fallback mode.
func invoke[T any](ctx context.Context, f *Facade, op string, fn func(b backend.Backend) (T, error)) (T, error) {
	var zero T
	f.maybeReconnect(ctx)

	var lastErr error
	attempt := 0
	for attempt < f.retries {
		attempt++
		v, err := fn(f.current())
		switch {
		case err == nil:
			f.succeeded()
			return v, nil
		case errors.Is(err, backend.ErrNotFound):
			f.succeeded()
			return zero, err
		case callerError(err):
			f.log.Warn("cache operation rejected", Fields{"op": op, "err": err})
			return zero, err
		case ctx.Err() != nil:
			return zero, ctx.Err()
		}
		lastErr = err
		f.log.Debug("cache operation attempt failed", Fields{"op": op, "attempt": attempt, "err": err})
	}

	ierr := &InvokeError{Op: op, Attempts: attempt, Err: lastErr}
	f.exhausted(ctx, ierr)
	return zero, ierr
}

// do is invoke for callers that only need the value.
func do[T any](ctx context.Context, f *Facade, op string, fn func(b backend.Backend) (T, error)) T {
	v, _ := invoke(ctx, f, op, fn)
	return v
}

func (f *Facade) succeeded() {
	f.mu.Lock()
	f.st.errCount = 0
	f.mu.Unlock()
}

func (f *Facade) exhausted(ctx context.Context, ierr *InvokeError) {
	f.log.Error("cache operation failed after retries", Fields{
		"op":       ierr.Op,
		"attempts": ierr.Attempts,
		"err":      ierr.Err,
	})
	f.hooks.RetriesExhausted(ierr.Op, ierr.Attempts, ierr.Err)

	f.mu.Lock()
	f.st.errCount++
	if f.st.mode != ModeNormal || f.st.errCount < f.threshold {
		f.mu.Unlock()
		return
	}
	f.st.mode = ModeFallback
	f.st.errCount = 0
	f.st.lastChange = f.now()
	var prev backend.Backend
	if !f.keepOnFallback {
		prev = f.st.active
		f.st.active = f.fallback()
		f.st.kind = f.st.active.Kind()
	}
	kind := f.st.kind
	f.mu.Unlock()

	if prev != nil {
		if err := prev.Close(context.WithoutCancel(ctx)); err != nil {
			f.log.Debug("closing failed backend", Fields{"err": err})
		}
	}
	f.log.Warn("cache switched to fallback mode", Fields{"backend": kind.String()})
	f.hooks.ModeChanged(ModeNormal, ModeFallback, "retries_exhausted")
}

// maybeReconnect redials the remote backend once the fallback cooldown has
// passed since the last mode change or the last reconnect attempt. Only one
// caller performs the dial; the others keep using the current backend.
// The dial outlives the caller's cancellation and is bounded by the
// dialer's own timeout.
func (f *Facade) maybeReconnect(ctx context.Context) {
	f.mu.Lock()
	if f.st.mode != ModeFallback || f.dial == nil {
		f.mu.Unlock()
		return
	}
	now := f.now()
	since := f.st.lastChange
	if f.st.lastAttempt.After(since) {
		since = f.st.lastAttempt
	}
	if now.Sub(since) < f.reconnectEvery {
		f.mu.Unlock()
		return
	}
	f.st.lastAttempt = now
	f.mu.Unlock()

	dctx := context.WithoutCancel(ctx)
	b, kind, err := f.dial(dctx)
	if err != nil {
		f.log.Warn("cache reconnect failed, staying in fallback mode", Fields{"err": err})
		f.hooks.ReconnectFailed(err)
		return
	}

	f.mu.Lock()
	if f.st.mode != ModeFallback {
		f.mu.Unlock()
		_ = b.Close(dctx)
		return
	}
	prev := f.st.active
	f.st.active, f.st.kind = b, kind
	f.st.mode = ModeNormal
	f.st.errCount = 0
	f.st.lastChange = f.now()
	f.mu.Unlock()

	if prev != nil {
		_ = prev.Close(dctx)
	}
	f.log.Info("cache reconnected", Fields{"backend": kind.String()})
	f.hooks.Reconnected(kind)
	f.hooks.ModeChanged(ModeFallback, ModeNormal, "reconnected")
}
