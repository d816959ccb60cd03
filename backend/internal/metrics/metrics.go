// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "padremap"

var (
	EventsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dispatched_total",
		Help:      "Synthetic input events delivered to the output target, by DOM event type.",
	}, []string{"type"})

	DispatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_failures_total",
		Help:      "Synthetic input events that could not be delivered, by DOM event type.",
	}, []string{"type"})

	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tick_duration_seconds",
		Help:      "Time spent in one poll loop tick.",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
	})

	ConnectedPads = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connected_gamepads",
		Help:      "Gamepads seen on the last poll tick.",
	})

	Rebinds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rebinds_total",
		Help:      "Rebinding sessions by outcome.",
	}, []string{"outcome"})

	ConfigWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "config_writes_total",
		Help:      "Configuration cookie writes by result.",
	}, []string{"result"})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_clients",
		Help:      "Connected bridge pages.",
	})
)
