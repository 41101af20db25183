// internal/workers/recommendation/flavor-match/handler.go
package flavormatch

import (
	"context"
	"time"

	"moodbrew/internal/common/errors"
	"moodbrew/internal/common/logger"
	"moodbrew/internal/common/metrics"
	"moodbrew/internal/engine"
	"moodbrew/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	json "github.com/goccy/go-json"
)

const (
	TaskType = "flavor-match"
)

type Matcher interface {
	MatchFlavors(products []models.Product, tags []string) engine.FlavorMatch
}

type ProductReader interface {
	ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

type Handler struct {
	config  *Config
	engine  Matcher
	catalog ProductReader
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, engine Matcher, catalog ProductReader, log logger.Logger) *Handler {
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
	if len(input.Tags) == 0 {
		return nil, errors.NewInvalidInputError("at least one tag is required")
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

	match := h.engine.MatchFlavors(products, input.Tags)
	if len(match.Selected) == 0 {
		return nil, errors.NewInvalidInputError("none of the tags are in the flavor vocabulary")
	}

	h.logger.Info("flavors matched", map[string]interface{}{
		"selected": match.Selected,
		"matches":  len(match.Matches),
		"perfect":  len(match.PerfectMatches),
	})
	return &Output{FlavorMatch: match}, nil
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
