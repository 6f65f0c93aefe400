package metrics

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/aretw0/twentyfive/pkg/servicer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHooks_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnCommit(ctx, &domain.OperationEvent{
		InstanceID: "inst",
		Kind:       domain.KindGoals,
		Verb:       domain.VerbAdd,
		Mode:       domain.ModeWriter,
		Diff:       &domain.ListDiff{Items: []string{"a", "b"}},
	})
	hooks.OnReject(ctx, &domain.OperationEvent{
		Verb: domain.VerbDelete,
		Mode: domain.ModeWriter,
		Err:  fmt.Errorf("wrapped: %w", domain.ErrNotFound),
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("add", "writer", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("delete", "writer", OutcomeNotFound)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Items.WithLabelValues("inst", "goals")))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeInvalid, Outcome(domain.ErrInvalidIndex))
	assert.Equal(t, OutcomeInvalid, Outcome(fmt.Errorf("wrapped: %w", servicer.ErrInvalidItem)))
	assert.Equal(t, OutcomeFull, Outcome(domain.ErrListFull))
	assert.Equal(t, OutcomeError, Outcome(fmt.Errorf("disk on fire")))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Operations.WithLabelValues("list", "reader", OutcomeOK).Inc()

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "twentyfive_operations_total")
}
