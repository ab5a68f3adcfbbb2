package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	natsEventsReceivedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notification_pipeline",
			Name:      "nats_events_received_total",
			Help:      "Total document-mutation events received.",
		},
		[]string{"subject"},
	)

	messagesBlockedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "notification_pipeline",
			Name:      "messages_blocked_total",
			Help:      "Total chat messages redacted by the content classifier.",
		},
	)

	notificationsDispatchedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notification_pipeline",
			Name:      "notifications_dispatched_total",
			Help:      "Total notification fan-outs, by event kind and outcome.",
		},
		[]string{"kind", "outcome"}, // outcome: "sent", "partial", "total_failure"
	)

	tokensPrunedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "notification_pipeline",
			Name:      "tokens_pruned_total",
			Help:      "Total delivery tokens removed after the provider reported them unregistered.",
		},
	)

	invocationsDroppedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notification_pipeline",
			Name:      "invocations_dropped_total",
			Help:      "Invocations that terminated early as successful no-ops.",
		},
		[]string{"reason"}, // e.g. "missing_room", "missing_recipient", "no_tokens", "prefs_disabled"
	)
)
