// internal/engine/engine.go
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"moodbrew/internal/advisory"
	"moodbrew/internal/analytics"
	"moodbrew/internal/cache"
	"moodbrew/internal/common/config"
	"moodbrew/internal/common/database"
	"moodbrew/internal/common/errors"
	"moodbrew/internal/common/logger"
	"moodbrew/internal/common/observability"
	"moodbrew/internal/flavor"
	"moodbrew/internal/models"
	"moodbrew/internal/orchestrator"
	"moodbrew/internal/scoring"

	"github.com/redis/go-redis/v9"
)

// Checker is a dependency that can report readiness.
type Checker interface {
	Name() string
	Ping(ctx context.Context) error
}

type closer interface {
	Close() error
}

// Engine owns the caches and orchestrators and is safe for concurrent use.
type Engine struct {
	logger          logger.Logger
	advisor         advisory.Advisor
	recommendations *orchestrator.Recommendations
	rankings        *orchestrator.Rankings
	summaries       *orchestrator.Summaries
	scorer          *scoring.Engine
	analytics       *analytics.BestEffort
	maxSelected     int
	checkers        []Checker
	closers         []closer
}

type options struct {
	advisor       advisory.Advisor
	clock         cache.Clock
	redis         redis.UniversalClient
	sink          analytics.Sink
	observability *observability.Observability
}

type Option func(*options)

// WithAdvisor replaces the HTTP advisory client.
func WithAdvisor(a advisory.Advisor) Option {
	return func(o *options) { o.advisor = a }
}

func WithClock(c cache.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithRedis supplies the client used by the redis cache backend.
func WithRedis(client redis.UniversalClient) Option {
	return func(o *options) { o.redis = client }
}

// WithSink replaces the analytics sink selected by configuration.
func WithSink(s analytics.Sink) Option {
	return func(o *options) { o.sink = s }
}

func WithObservability(obs *observability.Observability) Option {
	return func(o *options) { o.observability = obs }
}

// New builds an Engine from configuration.
func New(cfg *config.Config, log logger.Logger, opts ...Option) (*Engine, error) {
	o := options{clock: cache.SystemClock}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		logger:      log.WithFields(map[string]interface{}{"component": "engine"}),
		maxSelected: cfg.Flavor.MaxSelected,
		scorer: scoring.New(scoring.Config{
			WarmThreshold:       cfg.Scoring.WarmThreshold,
			PopularityThreshold: cfg.Scoring.PopularityThreshold,
			PopularityBoost:     cfg.Scoring.PopularityBoost,
			MaxResults:          cfg.Scoring.MaxResults,
		}),
	}
	if e.maxSelected <= 0 {
		e.maxSelected = flavor.DefaultMaxSelected
	}

	recStore, rankStore, sumStore, err := e.buildStores(cfg, o)
	if err != nil {
		return nil, err
	}

	sink := o.sink
	if sink == nil {
		if sink, err = e.buildSink(cfg); err != nil {
			e.Close(context.Background())
			return nil, err
		}
	}
	e.analytics = analytics.NewBestEffort(sink, config.GetDuration(cfg.Analytics.Timeout), log)

	e.advisor = o.advisor
	if e.advisor == nil {
		acfg := advisory.ConfigFrom(cfg.Advisory)
		if !acfg.Configured() {
			e.logger.Warn("advisory service not configured, serving fallback results only", nil)
		}
		e.advisor = advisory.NewClient(acfg, log)
	}

	deps := orchestrator.Deps{
		Analytics:       e.analytics,
		Observability:   o.observability,
		Logger:          log,
		Clock:           o.clock,
		AdvisoryTimeout: config.GetDuration(cfg.Advisory.Timeout),
		FallbackTTL:     config.GetDuration(cfg.Cache.FallbackTTL),
	}

	e.recommendations = orchestrator.NewRecommendations(e.advisor,
		cache.New[models.MoodRecommendationResult](string(models.KindRecommendations), recStore,
			config.GetDuration(cfg.Cache.RecommendationsTTL), log, cache.WithClock(o.clock)), deps)
	e.rankings = orchestrator.NewRankings(e.advisor,
		cache.New[models.CafeRankingResult](string(models.KindRankings), rankStore,
			config.GetDuration(cfg.Cache.RankingsTTL), log, cache.WithClock(o.clock)), deps)
	e.summaries = orchestrator.NewSummaries(e.advisor,
		cache.New[models.ReviewSummaryResult](string(models.KindSummaries), sumStore,
			config.GetDuration(cfg.Cache.SummariesTTL), log, cache.WithClock(o.clock)), deps)

	e.logger.Info("engine ready", map[string]interface{}{
		"cacheBackend":  cfg.Cache.Backend,
		"analyticsSink": sink.Name(),
	})
	return e, nil
}

func (e *Engine) buildStores(cfg *config.Config, o options) (cache.Store[models.MoodRecommendationResult], cache.Store[models.CafeRankingResult], cache.Store[models.ReviewSummaryResult], error) {
	switch strings.ToLower(cfg.Cache.Backend) {
	case "", config.CacheBackendMemory:
		return cache.NewMemoryStore[models.MoodRecommendationResult](),
			cache.NewMemoryStore[models.CafeRankingResult](),
			cache.NewMemoryStore[models.ReviewSummaryResult](),
			nil
	case config.CacheBackendRedis:
		client := o.redis
		if client == nil {
			rc := database.NewRedis(cfg.Database.Redis)
			e.checkers = append(e.checkers, rc)
			e.closers = append(e.closers, rc)
			client = rc.Client
		}
		ns := cfg.Cache.Namespace
		return cache.NewRedisStore[models.MoodRecommendationResult](client, ns, string(models.KindRecommendations)),
			cache.NewRedisStore[models.CafeRankingResult](client, ns, string(models.KindRankings)),
			cache.NewRedisStore[models.ReviewSummaryResult](client, ns, string(models.KindSummaries)),
			nil
	default:
		return nil, nil, nil, errors.NewUnsupportedBackendError("cache", cfg.Cache.Backend)
	}
}

func (e *Engine) buildSink(cfg *config.Config) (analytics.Sink, error) {
	switch strings.ToLower(cfg.Analytics.Sink) {
	case "", config.AnalyticsSinkNone:
		return analytics.Nop{}, nil
	case config.AnalyticsSinkPostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, errors.NewDatabaseConnectionFailedError(err)
		}
		e.checkers = append(e.checkers, pg)
		e.closers = append(e.closers, pg)
		return analytics.NewPostgresSink(pg.DB, cfg.Analytics.Table), nil
	case config.AnalyticsSinkElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, errors.NewDatabaseConnectionFailedError(err)
		}
		e.checkers = append(e.checkers, es)
		sink := analytics.NewElasticsearchSink(es.Client, cfg.Analytics.Index)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := es.EnsureIndex(ctx, sink.Index(), analytics.IndexMapping); err != nil {
			e.logger.Warn("analytics index not ensured, writes may fail", map[string]interface{}{
				"index": sink.Index(),
				"error": err,
			})
		}
		return sink, nil
	default:
		return nil, errors.NewUnsupportedBackendError("analytics", cfg.Analytics.Sink)
	}
}

// Checkers lists the external dependencies the engine opened itself.
func (e *Engine) Checkers() []Checker {
	return append([]Checker(nil), e.checkers...)
}

// AdvisoryState reports the advisory breaker state when the HTTP client is in use.
func (e *Engine) AdvisoryState() string {
	if c, ok := e.advisor.(*advisory.Client); ok {
		return c.BreakerState()
	}
	return "external"
}

// Close drains in-flight analytics writes, bounded by ctx, and releases
// connections.
func (e *Engine) Close(ctx context.Context) error {
	var firstErr error
	if e.analytics != nil {
		if err := e.analytics.Close(ctx); err != nil {
			e.logger.Warn("analytics drain interrupted", map[string]interface{}{"error": err})
			firstErr = err
		}
	}
	for _, c := range e.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close: %w", err)
		}
	}
	return firstErr
}
