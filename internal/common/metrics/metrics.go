// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConversationTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_turns_total",
			Help: "Total number of conversation turns processed, by stage",
		},
		[]string{"stage"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "conversation_turn_duration_seconds",
			Help: "Duration of turn processing in seconds",
		},
		[]string{"stage"},
	)

	DecisionsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriting_decisions_total",
			Help: "Total number of underwriting decisions, by status and rationale",
		},
		[]string{"status", "rationale"},
	)

	ExtractionMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_misses_total",
			Help: "Total number of turns where no usable fact was extracted, by kind",
		},
		[]string{"kind"},
	)

	CollaboratorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collaborator_failures_total",
			Help: "Total number of collaborator call failures, by collaborator",
		},
		[]string{"collaborator"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Number of sessions currently held in the store",
		},
	)
)
