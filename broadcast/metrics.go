// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package broadcast

import "github.com/prometheus/client_golang/prometheus"

type hubMetrics struct {
	subscribers    prometheus.Gauge
	eventsTotal    *prometheus.CounterVec
	deliveryErrors *prometheus.CounterVec
}

func (h *Hub) initMetrics(promRegistry prometheus.Registerer) {
	h.metrics = &hubMetrics{
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ideaboard_broadcast_subscribers",
			Help: "Number of connected realtime subscribers",
		}),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ideaboard_broadcast_events_total",
			Help: "Events published, by type",
		}, []string{"type"}),
		deliveryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ideaboard_broadcast_delivery_errors_total",
			Help: "Failed deliveries that dropped a subscriber, by event type",
		}, []string{"type"}),
	}
	promRegistry.MustRegister(
		h.metrics.subscribers,
		h.metrics.eventsTotal,
		h.metrics.deliveryErrors,
	)
}
