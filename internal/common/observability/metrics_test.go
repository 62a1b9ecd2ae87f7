// internal/common/observability/metrics_test.go
package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestObservability_RecordsSearchMetricsAndSpans(t *testing.T) {
	reader := metric.NewManualReader()
	recorder := tracetest.NewSpanRecorder()

	obs, err := New("search-test", WithMetricReader(reader), WithSpanProcessor(recorder))
	require.NoError(t, err)
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })

	ctx := context.Background()
	obs.RecordSearch(ctx, 120*time.Millisecond, "ok")
	obs.RecordSearch(ctx, 80*time.Millisecond, "ok")

	_, span := obs.Tracer().Start(ctx, "job")
	span.End()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
			if m.Name == "searches.processed" {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				require.Len(t, sum.DataPoints, 1)
				assert.Equal(t, int64(2), sum.DataPoints[0].Value)
			}
		}
	}
	assert.True(t, names["searches.processed"])
	assert.True(t, names["searches.duration"])

	require.Len(t, recorder.Ended(), 1)
	assert.Equal(t, "job", recorder.Ended()[0].Name())
}
