// Package prom exports facade events as Prometheus metrics.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/cachex"
	"github.com/unkn0wn-root/cachex/backend"
)

// Hooks implements cachex.Hooks by updating collectors. Every method is a
// counter or gauge update and never blocks.
type Hooks struct {
	Transitions    *prometheus.CounterVec
	FallbackActive prometheus.Gauge
	Exhausted      *prometheus.CounterVec
	Reconnects     *prometheus.CounterVec
	SelfHeals      *prometheus.CounterVec
}

var _ cachex.Hooks = (*Hooks)(nil)

// New creates and registers the collectors with reg. constLabels (e.g. the
// cache name) are attached to every series.
func New(reg prometheus.Registerer, constLabels prometheus.Labels) *Hooks {
	h := &Hooks{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "cachex",
			Name:        "mode_transitions_total",
			Help:        "Facade running mode changes by target mode.",
			ConstLabels: constLabels,
		}, []string{"to"}),

		FallbackActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "cachex",
			Name:        "fallback_active",
			Help:        "1 while the facade runs in fallback mode.",
			ConstLabels: constLabels,
		}),

		Exhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "cachex",
			Name:        "retries_exhausted_total",
			Help:        "Operations that failed on every attempt.",
			ConstLabels: constLabels,
		}, []string{"op"}),

		Reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "cachex",
			Name:        "reconnects_total",
			Help:        "Reconnect attempts by result.",
			ConstLabels: constLabels,
		}, []string{"result"}),

		SelfHeals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "cachex",
			Name:        "self_heal_total",
			Help:        "Unreadable entries deleted on read, by reason.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
	}

	reg.MustRegister(
		h.Transitions,
		h.FallbackActive,
		h.Exhausted,
		h.Reconnects,
		h.SelfHeals,
	)
	return h
}

func (h *Hooks) ModeChanged(_, to cachex.Mode, _ string) {
	h.Transitions.WithLabelValues(to.String()).Inc()
	if to == cachex.ModeFallback {
		h.FallbackActive.Set(1)
	} else {
		h.FallbackActive.Set(0)
	}
}

func (h *Hooks) RetriesExhausted(op string, _ int, _ error) {
	h.Exhausted.WithLabelValues(op).Inc()
}

func (h *Hooks) Reconnected(backend.Kind) { h.Reconnects.WithLabelValues("success").Inc() }
func (h *Hooks) ReconnectFailed(error)    { h.Reconnects.WithLabelValues("failure").Inc() }

// SelfHeal drops the key; it would make the series unbounded.
func (h *Hooks) SelfHeal(_, reason string) { h.SelfHeals.WithLabelValues(reason).Inc() }
