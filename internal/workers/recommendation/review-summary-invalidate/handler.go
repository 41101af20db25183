// internal/workers/recommendation/review-summary-invalidate/handler.go
package reviewsummaryinvalidate

import (
	"context"
	"strings"
	"time"

	"moodbrew/internal/common/errors"
	"moodbrew/internal/common/logger"
	"moodbrew/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	json "github.com/goccy/go-json"
)

const (
	TaskType = "review-summary-invalidate"
)

// Invalidator drops cached summaries after a subject's reviews change.
type Invalidator interface {
	InvalidateReviews(ctx context.Context, subjectID string) (int, error)
}

type Handler struct {
	config *Config
	engine Invalidator
	errors *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, engine Invalidator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		engine: engine,
		errors: errors.NewErrorHandler(log),
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, errors.NewParseError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	subjectID := strings.TrimSpace(input.SubjectID)
	if subjectID == "" {
		return nil, errors.NewInvalidInputError("subjectId is required")
	}

	n, err := h.engine.InvalidateReviews(ctx, subjectID)
	if err != nil {
		return nil, errors.NewCacheUnavailableError("invalidate", err)
	}

	h.logger.Info("review summaries invalidated", map[string]interface{}{
		"subjectId": subjectID,
		"deleted":   n,
	})
	return &Output{SubjectID: subjectID, Invalidated: n}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errors.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
