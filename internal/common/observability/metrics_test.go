package observability

import (
	"bytes"
	"context"
	"testing"
	"time"

	"activity-signup/internal/common/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNew_RecordsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(Options{ServiceName: "activity-signup-test", Registerer: reg}, logger.NewTestLogger(t))
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })

	ctx := context.Background()
	obs.RecordOperation(ctx, "signup", "success")
	obs.RecordOperation(ctx, "signup", "rejected")
	obs.RecordOperationDuration(ctx, "signup", 3*time.Millisecond, "success")

	count, err := testutil.GatherAndCount(reg, "roster_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNew_StdoutTracing(t *testing.T) {
	var buf bytes.Buffer
	obs := New(Options{
		ServiceName:     "activity-signup-test",
		TracingExporter: "stdout",
		Registerer:      prometheus.NewRegistry(),
		TraceWriter:     &buf,
	}, logger.NewTestLogger(t))

	_, span := obs.StartSpan(context.Background(), "registry.signup", attribute.String("activity", "Chess Club"))
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, obs.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "registry.signup")
	assert.Contains(t, buf.String(), "Chess Club")
}

func TestNilObservability_IsSafe(t *testing.T) {
	var obs *Observability
	ctx := context.Background()

	assert.NotPanics(t, func() {
		_, span := obs.StartSpan(ctx, "noop")
		span.End()
		obs.RecordOperation(ctx, "list", "success")
		obs.RecordOperationDuration(ctx, "list", time.Millisecond, "success")
	})
	assert.NoError(t, obs.Shutdown(ctx))
}
