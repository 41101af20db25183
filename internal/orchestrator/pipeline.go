// internal/orchestrator/pipeline.go
package orchestrator

import (
	"context"
	"time"

	"moodbrew/internal/analytics"
	"moodbrew/internal/cache"
	"moodbrew/internal/common/logger"
	"moodbrew/internal/common/metrics"
	"moodbrew/internal/common/observability"
	"moodbrew/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const defaultAdvisoryTimeout = 15 * time.Second

// Emitter receives one analytics record per orchestration call and must not
// block.
type Emitter interface {
	Emit(rec analytics.Record)
}

type nopEmitter struct{}

func (nopEmitter) Emit(analytics.Record) {}

// Deps are shared by the three orchestrators.
type Deps struct {
	Analytics       Emitter
	Observability   *observability.Observability
	Logger          logger.Logger
	Clock           cache.Clock
	AdvisoryTimeout time.Duration
	// FallbackTTL applies to fallback results; zero means the kind TTL.
	FallbackTTL time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Analytics == nil {
		d.Analytics = nopEmitter{}
	}
	if d.Logger == nil {
		d.Logger = logger.NewNoOpLogger()
	}
	if d.Clock == nil {
		d.Clock = cache.SystemClock
	}
	if d.AdvisoryTimeout <= 0 {
		d.AdvisoryTimeout = defaultAdvisoryTimeout
	}
	return d
}

// pipeline is the cache, advisory, fallback sequence shared by every kind.
type pipeline[T any] struct {
	kind  models.Kind
	cache *cache.Cache[T]
	deps  Deps
	log   logger.Logger
}

func newPipeline[T any](kind models.Kind, c *cache.Cache[T], deps Deps) pipeline[T] {
	deps = deps.withDefaults()
	return pipeline[T]{
		kind:  kind,
		cache: c,
		deps:  deps,
		log:   deps.Logger.WithFields(map[string]interface{}{"component": "orchestrator", "kind": string(kind)}),
	}
}

func (p pipeline[T]) fallbackTTL() time.Duration {
	if p.deps.FallbackTTL > 0 {
		return p.deps.FallbackTTL
	}
	return p.cache.TTL()
}

// run never fails: a live cache entry wins, then the advisory answer, then
// the deterministic fallback. Both computed results are cached.
func (p pipeline[T]) run(ctx context.Context, key string, inputSize int, ask func(context.Context) (T, error), fallback func() T) T {
	start := p.deps.Clock.Now()
	ctx, span := p.startSpan(ctx, inputSize)
	defer span.End()

	if cached, ok := p.cache.Get(ctx, key); ok {
		p.finish(ctx, inputSize, analytics.OutcomeCacheHit, start)
		return cached
	}

	// The advisory call and cache write outlive the caller so an abandoned
	// request still warms the cache.
	detached := context.WithoutCancel(ctx)
	actx, cancel := context.WithTimeout(detached, p.deps.AdvisoryTimeout)
	result, err := ask(actx)
	cancel()

	if err == nil {
		p.cache.Put(detached, key, result)
		p.finish(ctx, inputSize, analytics.OutcomeAdvisory, start)
		return result
	}

	p.log.Info("advisory unavailable, using fallback", map[string]interface{}{
		"key":   key,
		"error": err,
	})
	result = fallback()
	p.cache.PutWithTTL(detached, key, result, p.fallbackTTL())
	p.finish(ctx, inputSize, analytics.OutcomeFallback, start)
	return result
}

// sentinel records a short-circuited call that touched neither the advisory
// service nor the cache.
func (p pipeline[T]) sentinel(ctx context.Context, value T) T {
	p.finish(ctx, 0, analytics.OutcomeSentinel, p.deps.Clock.Now())
	return value
}

func (p pipeline[T]) finish(ctx context.Context, inputSize int, outcome analytics.Outcome, start time.Time) {
	now := p.deps.Clock.Now()
	metrics.EngineResults.WithLabelValues(string(p.kind), string(outcome)).Inc()
	if p.deps.Observability != nil {
		p.deps.Observability.RecordOrchestration(ctx, string(p.kind), string(outcome), now.Sub(start))
	}
	p.deps.Analytics.Emit(analytics.NewRecord(p.kind, inputSize, outcome, now))
}

func (p pipeline[T]) startSpan(ctx context.Context, inputSize int) (context.Context, trace.Span) {
	if p.deps.Observability == nil {
		return ctx, noop.Span{}
	}
	return p.deps.Observability.StartSpan(ctx, "orchestrator."+string(p.kind),
		attribute.String("kind", string(p.kind)),
		attribute.Int("input_size", inputSize),
	)
}
