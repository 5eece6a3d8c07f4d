// Package metrics holds the Prometheus collectors of the league service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RelationshipTransitions counts relationship state machine transitions.
	RelationshipTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "league",
			Subsystem: "relationship",
			Name:      "transitions_total",
			Help:      "Relationship transitions by kind and action",
		},
		[]string{"kind", "action"},
	)

	// EditRequestDecisions counts decide calls by outcome (pending, accepted, rejected, failed).
	EditRequestDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "league",
			Subsystem: "edit_request",
			Name:      "decisions_total",
			Help:      "Edit request decisions by change type, decision and outcome",
		},
		[]string{"change_type", "decision", "outcome"},
	)

	// EditRequestApplyFailures counts apply steps that rolled a decision back.
	EditRequestApplyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "league",
			Subsystem: "edit_request",
			Name:      "apply_failures_total",
			Help:      "Apply step failures by change type",
		},
		[]string{"change_type"},
	)

	// HTTPRequestsTotal tracks served HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "league",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks HTTP request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "league",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// EventPublishFailures counts domain events that could not be delivered.
	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "league",
			Subsystem: "events",
			Name:      "publish_failures_total",
			Help:      "Domain events dropped after a publish failure",
		},
		[]string{"type"},
	)
)

func RecordRelationshipTransition(kind, action string) {
	RelationshipTransitions.WithLabelValues(kind, action).Inc()
}

func RecordDecision(changeType, decision, outcome string) {
	EditRequestDecisions.WithLabelValues(changeType, decision, outcome).Inc()
}

func RecordApplyFailure(changeType string) {
	EditRequestApplyFailures.WithLabelValues(changeType).Inc()
}
