// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"sync"
	"time"

	"moodbrew/internal/common/config"
	"moodbrew/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// Registry opens job workers and closes them together on shutdown.
type Registry struct {
	client zbc.Client
	logger *zap.Logger
	obs    *observability.Observability

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewRegistry(client zbc.Client, logger *zap.Logger) *Registry {
	return &Registry{
		client:  client,
		logger:  logger,
		workers: make(map[string]worker.JobWorker),
	}
}

// Instrument records job outcomes and durations on obs for workers started
// afterwards.
func (r *Registry) Instrument(obs *observability.Observability) *Registry {
	r.obs = obs
	return r
}

// Start opens a job worker for taskType if it is enabled. It reports whether
// a worker was opened.
func (r *Registry) Start(taskType string, wcfg config.WorkerConfig, handler func(worker.JobClient, entities.Job)) bool {
	if !wcfg.Enabled {
		r.logger.Info("worker disabled", zap.String("taskType", taskType))
		return false
	}

	if r.obs != nil {
		handler = instrumented(r.obs, handler)
	}

	jobWorker := r.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	r.mu.Lock()
	r.workers[taskType] = jobWorker
	r.mu.Unlock()

	r.logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return true
}

// Len returns the number of open workers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workers)
}

// Close stops polling on every worker and waits for in-flight jobs.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for taskType, w := range r.workers {
		r.logger.Info("stopping worker", zap.String("taskType", taskType))
		w.Close()
		w.AwaitClose()
	}
	r.workers = make(map[string]worker.JobWorker)
}

// Job outcomes as seen by the instrumented client.
const (
	jobCompleted = "completed"
	jobFailed    = "failed"
	jobThrown    = "bpmn_error"
	jobAbandoned = "abandoned"
)

// outcomeClient notes which terminal command a handler builds.
type outcomeClient struct {
	worker.JobClient
	outcome string
}

func (c *outcomeClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	c.outcome = jobCompleted
	return c.JobClient.NewCompleteJobCommand()
}

func (c *outcomeClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	c.outcome = jobFailed
	return c.JobClient.NewFailJobCommand()
}

func (c *outcomeClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	c.outcome = jobThrown
	return c.JobClient.NewThrowErrorCommand()
}

func instrumented(obs *observability.Observability, handler worker.JobHandler) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		tracked := &outcomeClient{JobClient: client, outcome: jobAbandoned}
		handler(tracked, job)

		ctx := context.Background()
		obs.RecordJobProcessed(ctx, tracked.outcome)
		obs.RecordJobDuration(ctx, time.Since(start), tracked.outcome)
	}
}
