// internal/transport/httpapi/router.go
package httpapi

import (
	"context"
	"net/http"

	"moodbrew/internal/common/logger"
	"moodbrew/internal/engine"
	"moodbrew/internal/models"
	"moodbrew/internal/scoring"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

// Service is the engine surface exposed over HTTP.
type Service interface {
	RecommendForMood(ctx context.Context, req models.RecommendationRequest, weather *models.WeatherReading) models.MoodRecommendationResult
	RankCafes(ctx context.Context, req models.CafeRankingRequest) models.CafeRankingResult
	SummarizeReviews(ctx context.Context, req models.ReviewSummaryRequest) models.ReviewSummaryResult
	InvalidateReviews(ctx context.Context, subjectID string) (int, error)
	Trending(products []models.Product, mood string, weather *models.WeatherReading) []scoring.ScoredProduct
	MatchFlavors(products []models.Product, tags []string) engine.FlavorMatch
	MaxSelected() int
}

// Catalog resolves id-only requests. It is optional.
type Catalog interface {
	ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	CafesByIDs(ctx context.Context, ids []string) ([]models.Cafe, error)
	ReviewsForSubject(ctx context.Context, subjectID string) ([]models.Review, error)
}

type Handler struct {
	service  Service
	catalog  Catalog
	checkers []engine.Checker
	logger   logger.Logger
}

type Option func(*Handler)

func WithCatalog(c Catalog) Option {
	return func(h *Handler) { h.catalog = c }
}

// WithCheckers sets the dependencies probed by /ready.
func WithCheckers(checkers ...engine.Checker) Option {
	return func(h *Handler) { h.checkers = append(h.checkers, checkers...) }
}

func NewHandler(service Service, log logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		service: service,
		logger:  log.WithFields(map[string]interface{}{"component": "httpapi"}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(h.recoverMiddleware)
	r.Use(h.observeMiddleware)

	r.Get("/health", h.health)
	r.Get("/ready", h.ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/recommendations", h.recommend)
		r.Post("/rankings", h.rank)
		r.Post("/reviews/{subjectID}/summary", h.summarize)
		r.Delete("/reviews/{subjectID}/summary", h.invalidateSummaries)
		r.Post("/trending", h.trending)
		r.Get("/moods", h.moods)
		r.Get("/flavors", h.flavors)
		r.Post("/flavors/match", h.matchFlavors)
	})
	return r
}
