package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOrchestrationExportsToRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	obs := NewWithRegisterer("moodbrew-test", reg)
	defer obs.Shutdown()

	ctx, span := obs.StartSpan(context.Background(), "orchestrate")
	assert.True(t, span.SpanContext().IsValid())
	obs.RecordOrchestration(ctx, "recommendations", "fallback", 12*time.Millisecond)
	obs.RecordJobProcessed(ctx, "completed")
	span.End()

	families, err := reg.Gather()
	require.NoError(t, err)

	var joined strings.Builder
	for _, f := range families {
		joined.WriteString(f.GetName())
		joined.WriteString(" ")
	}
	assert.Contains(t, joined.String(), "orchestrations_completed")
	assert.Contains(t, joined.String(), "jobs_processed")
}

func TestScrapedMetricNames(t *testing.T) {
	reg := promclient.NewRegistry()
	obs := NewWithRegisterer("moodbrew-test", reg)
	defer obs.Shutdown()

	ctx := context.Background()
	obs.RecordOrchestration(ctx, "summaries", "advisory", 5*time.Millisecond)
	obs.RecordJobProcessed(ctx, "completed")
	obs.RecordJobDuration(ctx, 7*time.Millisecond, "completed")

	server := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)

	for _, name := range []string{
		"jobs_processed_total{",
		"jobs_duration_milliseconds_bucket{",
		"orchestrations_completed_total{",
		"orchestrations_duration_milliseconds_count{",
	} {
		assert.Contains(t, text, name)
	}
	assert.NotContains(t, text, "jobs.processed")
	assert.NotContains(t, text, "orchestrations.completed")
	assert.Contains(t, text, `kind="summaries"`)
	assert.Contains(t, text, `status="completed"`)
}

func TestZeroValueObservabilityIsSafe(t *testing.T) {
	var obs Observability
	ctx, span := obs.StartSpan(context.Background(), "noop")
	obs.RecordOrchestration(ctx, "rankings", "advisory", time.Second)
	obs.RecordJobDuration(ctx, time.Second, "failed")
	span.End()
	obs.Shutdown()
}
