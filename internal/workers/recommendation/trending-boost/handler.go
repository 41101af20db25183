// internal/workers/recommendation/trending-boost/handler.go
package trendingboost

import (
	"context"
	"strings"
	"time"

	"moodbrew/internal/common/errors"
	"moodbrew/internal/common/logger"
	"moodbrew/internal/common/metrics"
	"moodbrew/internal/models"
	"moodbrew/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	json "github.com/goccy/go-json"
)

const (
	TaskType = "trending-boost"
)

type Scorer interface {
	Trending(products []models.Product, mood string, weather *models.WeatherReading) []scoring.ScoredProduct
}

type ProductReader interface {
	ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

type Handler struct {
	config  *Config
	engine  Scorer
	catalog ProductReader
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, engine Scorer, catalog ProductReader, log logger.Logger) *Handler {
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
	if strings.TrimSpace(input.Mood) == "" {
		return nil, errors.NewInvalidInputError("mood is required")
	}

	products := input.Products
	if len(products) == 0 && len(input.ProductIDs) > 0 && h.catalog != nil {
		var err error
		products, err = h.catalog.ProductsByIDs(ctx, input.ProductIDs)
		if err != nil {
			return nil, err
		}
	}

	trending := h.engine.Trending(products, input.Mood, input.Weather)

	h.logger.Debug("trending computed", map[string]interface{}{
		"mood":     input.Mood,
		"products": len(products),
		"returned": len(trending),
	})
	return &Output{Trending: trending}, nil
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
