// internal/workers/recommendation/review-summary/handler.go
package reviewsummary

import (
	"context"
	"strings"
	"time"

	"moodbrew/internal/common/errors"
	"moodbrew/internal/common/logger"
	"moodbrew/internal/common/metrics"
	"moodbrew/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	json "github.com/goccy/go-json"
)

const (
	TaskType = "review-summary"
)

type Summarizer interface {
	SummarizeReviews(ctx context.Context, req models.ReviewSummaryRequest) models.ReviewSummaryResult
}

type ReviewReader interface {
	ReviewsForSubject(ctx context.Context, subjectID string) ([]models.Review, error)
}

type Handler struct {
	config  *Config
	engine  Summarizer
	catalog ReviewReader
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, engine Summarizer, catalog ReviewReader, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		engine:  engine,
		catalog: catalog,
		errors:  errors.NewErrorHandler(log),
		logger:  log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

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

	var reviews []models.Review
	switch {
	case input.Reviews != nil:
		reviews = *input.Reviews
	case h.catalog != nil:
		var err error
		reviews, err = h.catalog.ReviewsForSubject(ctx, subjectID)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.NewInvalidInputError("reviews are required when no catalog is configured")
	}

	result := h.engine.SummarizeReviews(ctx, models.ReviewSummaryRequest{
		SubjectID: subjectID,
		Reviews:   reviews,
	})

	h.logger.Info("reviews summarised", map[string]interface{}{
		"subjectId": subjectID,
		"reviews":   len(reviews),
		"sentiment": result.OverallSentiment,
		"source":    result.Source,
	})

	return &Output{ReviewSummary: result, ReviewCount: len(reviews)}, nil
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
	_, err = cmd.Send(context.Background())
	if err != nil {
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
