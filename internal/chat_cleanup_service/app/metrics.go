package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roomDeletedEventsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chat_cleanup",
			Name:      "room_deleted_events_total",
			Help:      "Total room-deleted events received.",
		},
	)

	messagesPurgedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chat_cleanup",
			Name:      "messages_purged_total",
			Help:      "Total chat messages deleted during room cleanup.",
		},
	)
)
