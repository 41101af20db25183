// internal/workers/recommendation/cafe-ranking/handler.go
package caferanking

import (
	"context"
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
	TaskType = "cafe-ranking"
)

type Ranker interface {
	RankCafes(ctx context.Context, req models.CafeRankingRequest) models.CafeRankingResult
}

type CafeReader interface {
	CafesByIDs(ctx context.Context, ids []string) ([]models.Cafe, error)
}

type Handler struct {
	config  *Config
	engine  Ranker
	catalog CafeReader
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, engine Ranker, catalog CafeReader, log logger.Logger) *Handler {
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
	cafes := input.Cafes
	if len(cafes) == 0 && len(input.CafeIDs) > 0 {
		if h.catalog == nil {
			return nil, errors.NewInvalidInputError("cafes are required when no catalog is configured")
		}
		var err error
		cafes, err = h.catalog.CafesByIDs(ctx, input.CafeIDs)
		if err != nil {
			return nil, err
		}
	}

	result := h.engine.RankCafes(ctx, models.CafeRankingRequest{
		FilterTag:  input.FilterTag,
		Candidates: cafes,
	})

	output := &Output{CafeRanking: result}
	if len(result.Cafes) > 0 {
		output.TopCafeID = result.Cafes[0].CafeID
	}

	h.logger.Info("cafes ranked", map[string]interface{}{
		"filterTag": input.FilterTag,
		"cafes":     len(result.Cafes),
		"top":       output.TopCafeID,
		"source":    result.Source,
	})
	return output, nil
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
