package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "housie"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	RealtimeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_connections",
		Help:      "Open realtime websocket connections on this instance.",
	})

	RealtimeEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_events_total",
		Help:      "Change events published, by table and type.",
	}, []string{"table", "type"})

	RealtimeDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_events_dropped_total",
		Help:      "Change events dropped because a subscriber buffer was full.",
	})

	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_dispatch_failures_total",
		Help:      "Best-effort notification dispatches that failed, by kind.",
	}, []string{"kind"})

	GeocoderFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geocoder_fallbacks_total",
		Help:      "Searches that fell back to text matching after a geocoding failure.",
	}, []string{"provider"})

	PresenceSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "presence_swept_total",
		Help:      "Stale presence rows flipped offline by the sweeper.",
	})
)
