package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"moodbrew/internal/advisory"
	"moodbrew/internal/analytics"
	"moodbrew/internal/common/config"
	"moodbrew/internal/common/logger"
	"moodbrew/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAdvisor counts calls and fails unless a result is set.
type stubAdvisor struct {
	calls   int32
	summary *models.ReviewSummaryResult
}

func (s *stubAdvisor) RequestMoodRecommendations(context.Context, string, []models.Product) (models.MoodRecommendationResult, error) {
	atomic.AddInt32(&s.calls, 1)
	return models.MoodRecommendationResult{}, advisory.ErrUnavailable
}

func (s *stubAdvisor) RequestCafeRanking(context.Context, []models.Cafe, string) (models.CafeRankingResult, error) {
	atomic.AddInt32(&s.calls, 1)
	return models.CafeRankingResult{}, advisory.ErrUnavailable
}

func (s *stubAdvisor) RequestReviewSummary(context.Context, []models.Review) (models.ReviewSummaryResult, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.summary != nil {
		return *s.summary, nil
	}
	return models.ReviewSummaryResult{}, advisory.ErrUnavailable
}

type countingSink struct{ n int32 }

func (c *countingSink) Name() string { return "counting" }

func (c *countingSink) Record(context.Context, analytics.Record) error {
	atomic.AddInt32(&c.n, 1)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Advisory: config.AdvisoryConfig{Timeout: 1000},
		Cache: config.CacheConfig{
			Backend:            config.CacheBackendMemory,
			Namespace:          "moodbrew-test",
			RecommendationsTTL: 300000,
			RankingsTTL:        600000,
			SummariesTTL:       900000,
		},
		Analytics: config.AnalyticsConfig{Sink: config.AnalyticsSinkNone, Timeout: 1000},
		Scoring:   config.ScoringConfig{WarmThreshold: 25, PopularityThreshold: 200, PopularityBoost: 1.25, MaxResults: 10},
		Flavor:    config.FlavorConfig{MaxSelected: 3},
	}
}

func newEngine(t *testing.T, cfg *config.Config, opts ...Option) *Engine {
	t.Helper()
	e, err := New(cfg, logger.NewTestLogger(t), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close(context.Background()) })
	return e
}

func TestNew_UnsupportedBackends(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Backend = "memcached"
	_, err := New(cfg, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNSUPPORTED_BACKEND")

	cfg = testConfig()
	cfg.Analytics.Sink = "kafka"
	_, err = New(cfg, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNSUPPORTED_BACKEND")
}

func TestNew_UnconfiguredAdvisoryServesFallbacks(t *testing.T) {
	e := newEngine(t, testConfig())

	result := e.RankCafes(context.Background(), models.CafeRankingRequest{Candidates: []models.Cafe{
		{ID: "c1", Name: "One", Rating: 4, ReviewCount: 10},
		{ID: "c2", Name: "Two", Rating: 5, ReviewCount: 10},
	}})

	require.Len(t, result.Cafes, 2)
	assert.Equal(t, "c2", result.Cafes[0].CafeID)
	assert.Equal(t, models.SourceFallback, result.Source)
	assert.Equal(t, "closed", e.AdvisoryState())
}

func TestEngine_SummariesWithRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := testConfig()
	cfg.Cache.Backend = config.CacheBackendRedis
	stub := &stubAdvisor{summary: &models.ReviewSummaryResult{
		OverallSentiment: models.SentimentPositive,
		SentimentScore:   0.92,
		KeyPoints:        []string{"Great crema"},
		Pros:             []string{"Great crema"},
		Cons:             []string{},
		Summary:          "Loved by regulars.",
		Recommendation:   "Go early.",
		Source:           models.SourceAdvisory,
	}}
	e := newEngine(t, cfg, WithAdvisor(stub), WithRedis(client))

	req := models.ReviewSummaryRequest{SubjectID: "cafe-1", Reviews: []models.Review{{ID: "r1", Rating: 5}}}
	first := e.SummarizeReviews(context.Background(), req)
	second := e.SummarizeReviews(context.Background(), req)

	assert.Equal(t, *stub.summary, first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&stub.calls))
	assert.Len(t, mr.Keys(), 1)

	n, err := e.InvalidateReviews(context.Background(), "cafe-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	e.SummarizeReviews(context.Background(), req)
	assert.Equal(t, int32(2), atomic.LoadInt32(&stub.calls))
}

func TestEngine_AnalyticsDrainedOnClose(t *testing.T) {
	sink := &countingSink{}
	e, err := New(testConfig(), logger.NewTestLogger(t), WithAdvisor(&stubAdvisor{}), WithSink(sink))
	require.NoError(t, err)

	e.SummarizeReviews(context.Background(), models.ReviewSummaryRequest{SubjectID: "x"})
	e.RankCafes(context.Background(), models.CafeRankingRequest{Candidates: []models.Cafe{{ID: "c1"}}})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, e.Close(ctx))
	assert.Equal(t, int32(2), atomic.LoadInt32(&sink.n))
}

func TestRecommendForMood_WeatherReorders(t *testing.T) {
	e := newEngine(t, testConfig(), WithAdvisor(&stubAdvisor{}))

	candidates := []models.Product{
		{ID: "latte", Name: "Latte", Rating: 4.0, Temperature: models.ServeHot},
		{ID: "cold-brew", Name: "Cold Brew", Rating: 4.0, Temperature: models.ServeIced},
		{ID: "espresso", Name: "Espresso", Rating: 4.6, Temperature: models.ServeHot},
	}
	req := models.RecommendationRequest{Mood: "energized", Candidates: candidates}

	plain := e.RecommendForMood(context.Background(), req, nil)
	require.Len(t, plain.Products, 3)
	assert.Equal(t, []string{"cold-brew", "espresso", "latte"}, recommendedIDs(plain))

	hot := e.RecommendForMood(context.Background(), req, &models.WeatherReading{Temperature: 30, Condition: "clear"})
	assert.Equal(t, []string{"espresso", "cold-brew", "latte"}, recommendedIDs(hot))

	rainy := e.RecommendForMood(context.Background(), req, &models.WeatherReading{Temperature: 12, Condition: "Light rain"})
	assert.Equal(t, []string{"espresso", "latte", "cold-brew"}, recommendedIDs(rainy))
}

func TestApplyLocalBoost_UnknownProductsTrail(t *testing.T) {
	e := newEngine(t, testConfig(), WithAdvisor(&stubAdvisor{}))

	result := models.MoodRecommendationResult{Products: []models.RecommendedProduct{
		{ID: "ghost", Name: "Ghost"},
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
	}}
	catalog := []models.Product{
		{ID: "a", Rating: 3.0},
		{ID: "b", Rating: 4.5},
	}

	boosted := e.ApplyLocalBoost(result, catalog, &models.WeatherReading{Temperature: 20})
	assert.Equal(t, []string{"b", "a", "ghost"}, recommendedIDs(boosted))
	assert.Equal(t, "ghost", result.Products[0].ID, "input is untouched")
}

func TestTrending(t *testing.T) {
	e := newEngine(t, testConfig(), WithAdvisor(&stubAdvisor{}))

	scored := e.Trending([]models.Product{
		{ID: "a", Tags: []string{"cozy"}, Rating: 4.0},
		{ID: "b", Tags: []string{"cozy"}, Rating: 4.2, WeeklyOrders: 300},
		{ID: "c", Tags: []string{"happy"}, Rating: 5.0},
	}, "cozy", nil)

	require.Len(t, scored, 2)
	assert.Equal(t, "b", scored[0].Product.ID)
	assert.Equal(t, "#1 Trending", scored[0].TrendingBadge)
	assert.Equal(t, 0.95, scored[0].Confidence)
}

func TestMatchFlavors(t *testing.T) {
	e := newEngine(t, testConfig(), WithAdvisor(&stubAdvisor{}))

	products := []models.Product{
		{ID: "mocha", Tags: []string{"chocolate", "sweet"}},
		{ID: "latte", Tags: []string{"vanilla"}},
		{ID: "turtle", Tags: []string{"chocolate", "caramel", "nutty"}},
	}

	match := e.MatchFlavors(products, []string{"chocolate", "caramel", "kale", "nutty", "vanilla"})
	assert.Equal(t, []string{"chocolate", "caramel", "nutty"}, match.Selected)
	assert.Len(t, match.Matches, 2)
	require.Len(t, match.PerfectMatches, 1)
	assert.Equal(t, "turtle", match.PerfectMatches[0].ID)
	assert.NotEmpty(t, match.Narrative)

	empty := e.MatchFlavors(products, nil)
	assert.Equal(t, []string{}, empty.Selected)
	assert.Empty(t, empty.Matches)
	assert.Empty(t, empty.Narrative)
}

func TestClose_ReportsDrainTimeout(t *testing.T) {
	e, err := New(testConfig(), logger.NewTestLogger(t), WithAdvisor(&stubAdvisor{}), WithSink(slowSink{}))
	require.NoError(t, err)

	e.RankCafes(context.Background(), models.CafeRankingRequest{Candidates: []models.Cafe{{ID: "c1"}}})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.True(t, errors.Is(e.Close(ctx), context.DeadlineExceeded))
}

type slowSink struct{}

func (slowSink) Name() string { return "slow" }

func (slowSink) Record(ctx context.Context, _ analytics.Record) error {
	<-ctx.Done()
	return ctx.Err()
}

func recommendedIDs(r models.MoodRecommendationResult) []string {
	out := make([]string, len(r.Products))
	for i, p := range r.Products {
		out[i] = p.ID
	}
	return out
}
