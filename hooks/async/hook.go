// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    SelfHealEvery: 10, // sample logs: ~every 10th self-heal
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	c, _ := cachex.New(ctx, cachex.Options{
//	    ConnectionString: "localhost:6379,defaultDatabase=1",
//	    Hooks:            hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/cachex"
	"github.com/unkn0wn-root/cachex/backend"
)

// Hooks forwards events to inner on worker goroutines. Events that do not fit
// in the queue are dropped and counted.
type Hooks struct {
	inner   cachex.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ cachex.Hooks = (*Hooks)(nil)

func New(inner cachex.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events sent after Close
// are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped returns how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) ModeChanged(from, to cachex.Mode, reason string) {
	h.try(func() { h.inner.ModeChanged(from, to, reason) })
}
func (h *Hooks) RetriesExhausted(op string, n int, err error) {
	h.try(func() { h.inner.RetriesExhausted(op, n, err) })
}
func (h *Hooks) Reconnected(k backend.Kind)  { h.try(func() { h.inner.Reconnected(k) }) }
func (h *Hooks) ReconnectFailed(err error)   { h.try(func() { h.inner.ReconnectFailed(err) }) }
func (h *Hooks) SelfHeal(key, reason string) { h.try(func() { h.inner.SelfHeal(key, reason) }) }
