// internal/workers/recommendation/mood-recommendation/handler.go
package moodrecommendation

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
	TaskType = "mood-recommendation"
)

type Recommender interface {
	RecommendForMood(ctx context.Context, req models.RecommendationRequest, weather *models.WeatherReading) models.MoodRecommendationResult
}

type ProductReader interface {
	ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

type Handler struct {
	config  *Config
	engine  Recommender
	catalog ProductReader
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

// NewHandler builds the handler. catalog may be nil, in which case jobs must
// carry full product records.
func NewHandler(config *Config, engine Recommender, catalog ProductReader, log logger.Logger) *Handler {
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
	if strings.TrimSpace(input.Mood) == "" && len(input.Tags) == 0 {
		return nil, errors.NewInvalidInputError("mood or tags is required")
	}

	products := input.Products
	if len(products) == 0 && len(input.ProductIDs) > 0 {
		if h.catalog == nil {
			return nil, errors.NewInvalidInputError("products are required when no catalog is configured")
		}
		var err error
		products, err = h.catalog.ProductsByIDs(ctx, input.ProductIDs)
		if err != nil {
			return nil, err
		}
	}

	result := h.engine.RecommendForMood(ctx, models.RecommendationRequest{
		Mood:       input.Mood,
		Tags:       input.Tags,
		Candidates: products,
	}, input.Weather)

	h.logger.Info("recommendations built", map[string]interface{}{
		"mood":       input.Mood,
		"candidates": len(products),
		"returned":   len(result.Products),
		"source":     result.Source,
	})

	return &Output{MoodRecommendations: result}, nil
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
