package sloghooks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/cachex"
	"github.com/unkn0wn-root/cachex/backend"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery         uint64
	RetriesExhaustedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr  atomic.Uint64
	exhaustedCtr atomic.Uint64
}

var _ cachex.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) ModeChanged(from, to cachex.Mode, reason string) {
	if h.l == nil {
		return
	}
	lvl := slog.LevelInfo
	if to == cachex.ModeFallback {
		lvl = slog.LevelWarn
	}
	h.l.Log(context.Background(), lvl, "cachex.mode_changed",
		"from", from.String(),
		"to", to.String(),
		"reason", reason)
}

func (h *Hooks) RetriesExhausted(op string, attempts int, err error) {
	if h.l == nil || !sample(h.opts.RetriesExhaustedEvery, &h.exhaustedCtr) {
		return
	}
	h.l.Warn("cachex.retries_exhausted",
		"op", op,
		"attempts", attempts,
		"err", err)
}

func (h *Hooks) Reconnected(kind backend.Kind) {
	if h.l == nil {
		return
	}
	h.l.Info("cachex.reconnected", "backend", kind.String())
}

func (h *Hooks) ReconnectFailed(err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("cachex.reconnect_failed", "err", err)
}

func (h *Hooks) SelfHeal(key, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("cachex.self_heal",
		"key", h.redact(key),
		"reason", reason)
}
