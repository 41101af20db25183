package camunda

import (
	"testing"

	"moodbrew/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopJobClient struct{}

func (nopJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 { return nil }
func (nopJobClient) NewFailJobCommand() commands.FailJobCommandStep1         { return nil }
func (nopJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1   { return nil }

func TestOutcomeClient(t *testing.T) {
	tests := []struct {
		name    string
		handler worker.JobHandler
		want    string
	}{
		{
			name:    "completed",
			handler: func(c worker.JobClient, _ entities.Job) { c.NewCompleteJobCommand() },
			want:    jobCompleted,
		},
		{
			name:    "failed",
			handler: func(c worker.JobClient, _ entities.Job) { c.NewFailJobCommand() },
			want:    jobFailed,
		},
		{
			name:    "bpmn error",
			handler: func(c worker.JobClient, _ entities.Job) { c.NewThrowErrorCommand() },
			want:    jobThrown,
		},
		{
			name:    "no terminal command",
			handler: func(worker.JobClient, entities.Job) {},
			want:    jobAbandoned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracked := &outcomeClient{JobClient: nopJobClient{}, outcome: jobAbandoned}
			tt.handler(tracked, entities.Job{})
			assert.Equal(t, tt.want, tracked.outcome)
		})
	}
}

func TestInstrumented_RecordsOutcome(t *testing.T) {
	reg := promclient.NewRegistry()
	obs := observability.NewWithRegisterer("camunda-test", reg)
	defer obs.Shutdown()

	handled := false
	handler := instrumented(obs, func(c worker.JobClient, _ entities.Job) {
		handled = true
		c.NewFailJobCommand()
	})
	handler(nopJobClient{}, entities.Job{})

	require.True(t, handled)

	families, err := reg.Gather()
	require.NoError(t, err)

	var statuses []string
	for _, f := range families {
		if f.GetName() != "jobs_processed_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" {
					statuses = append(statuses, l.GetValue())
				}
			}
		}
	}
	assert.Equal(t, []string{jobFailed}, statuses)
}
