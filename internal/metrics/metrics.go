// Package metrics exposes Prometheus instrumentation for dispatched operations.
package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/aretw0/twentyfive/pkg/servicer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeFull     = "full"
	OutcomeError    = "error"
)

// Metrics groups the collectors of the list service.
type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Items      *prometheus.GaugeVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twentyfive_operations_total",
				Help: "Total number of dispatched list operations",
			},
			[]string{"verb", "mode", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "twentyfive_operation_duration_seconds",
				Help:    "Duration of list operations including persistence",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"verb"},
		),
		Items: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "twentyfive_list_items",
				Help: "Number of items per list after the last commit",
			},
			[]string{"instance", "kind"},
		),
	}
	reg.MustRegister(m.Operations, m.Duration, m.Items)
	return m
}

// Hooks returns lifecycle hooks that record every operation.
func (m *Metrics) Hooks() domain.Hooks {
	record := func(ctx context.Context, e *domain.OperationEvent) {
		m.Operations.WithLabelValues(string(e.Verb), string(e.Mode), Outcome(e.Err)).Inc()
		m.Duration.WithLabelValues(string(e.Verb)).Observe(e.Duration.Seconds())
	}
	return domain.Hooks{
		OnRead:   record,
		OnReject: record,
		OnCommit: func(ctx context.Context, e *domain.OperationEvent) {
			record(ctx, e)
			if e.Diff != nil {
				m.Items.WithLabelValues(e.InstanceID, string(e.Kind)).Set(float64(len(e.Diff.Items)))
			}
		},
	}
}

// Outcome classifies an operation error into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInstanceNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInvalidIndex), errors.Is(err, domain.ErrEmptyItem), errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, servicer.ErrInvalidItem), errors.Is(err, servicer.ErrItemTooLarge),
		errors.Is(err, servicer.ErrInvalidUTF8), errors.Is(err, servicer.ErrBadRequest):
		return OutcomeInvalid
	case errors.Is(err, domain.ErrListFull):
		return OutcomeFull
	default:
		return OutcomeError
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
