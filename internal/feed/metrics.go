package feed

import "github.com/prometheus/client_golang/prometheus"

var (
	// eventsPublished counts events entering the broker, by table and type.
	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_events_published_total",
			Help: "Total number of change-feed events published.",
		},
		[]string{"table", "type"},
	)

	// eventsDelivered counts events handed to subscriber handlers.
	eventsDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_events_delivered_total",
			Help: "Total number of change-feed events delivered to subscribers.",
		},
	)

	// eventsDropped counts events discarded because a subscriber's queue was full.
	eventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_events_dropped_total",
			Help: "Total number of change-feed events dropped on full subscriber queues.",
		},
	)

	// subscriptionsActive gauges open subscriptions.
	subscriptionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_subscriptions_active",
			Help: "Current number of open change-feed subscriptions.",
		},
	)

	// relayErrors counts relay publish/decode failures by stage.
	relayErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_relay_errors_total",
			Help: "Total number of change-feed relay failures.",
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(eventsPublished, eventsDelivered, eventsDropped, subscriptionsActive, relayErrors)
}
