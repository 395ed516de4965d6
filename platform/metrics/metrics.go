// Package metrics exposes Prometheus counters for the intake pipeline.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsTotal counts processed submissions by final outcome.
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Total number of lead submissions processed, by outcome.",
		},
		[]string{"outcome", "source"},
	)

	// ValidationFailuresTotal counts rejected submissions by failing check.
	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_validation_failures_total",
			Help: "Total number of submissions rejected during validation.",
		},
		[]string{"reason"},
	)

	// NotificationsSentTotal counts agent notifications by delivery channel.
	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_notifications_sent_total",
			Help: "Total number of agent notifications delivered, by channel.",
		},
		[]string{"channel"},
	)

	// QueueDrainsTotal counts waiting queue drain attempts by result.
	QueueDrainsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_queue_drains_total",
			Help: "Total number of waiting queue drain attempts, by result.",
		},
		[]string{"result"},
	)

	// StreamEventsTotal counts lead events forwarded to the Kafka stream.
	StreamEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_stream_events_total",
			Help: "Total number of lead events forwarded to the event stream, by status.",
		},
		[]string{"event", "status"},
	)
)
