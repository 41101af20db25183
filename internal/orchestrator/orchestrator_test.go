package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"moodbrew/internal/advisory"
	"moodbrew/internal/analytics"
	"moodbrew/internal/cache"
	"moodbrew/internal/common/logger"
	"moodbrew/internal/fallback"
	"moodbrew/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAdvisor struct {
	mock.Mock
}

func (m *mockAdvisor) RequestMoodRecommendations(ctx context.Context, mood string, candidates []models.Product) (models.MoodRecommendationResult, error) {
	args := m.Called(ctx, mood, candidates)
	return args.Get(0).(models.MoodRecommendationResult), args.Error(1)
}

func (m *mockAdvisor) RequestCafeRanking(ctx context.Context, cafes []models.Cafe, filter string) (models.CafeRankingResult, error) {
	args := m.Called(ctx, cafes, filter)
	return args.Get(0).(models.CafeRankingResult), args.Error(1)
}

func (m *mockAdvisor) RequestReviewSummary(ctx context.Context, reviews []models.Review) (models.ReviewSummaryResult, error) {
	args := m.Called(ctx, reviews)
	return args.Get(0).(models.ReviewSummaryResult), args.Error(1)
}

type recordingEmitter struct {
	mu      sync.Mutex
	records []analytics.Record
}

func (r *recordingEmitter) Emit(rec analytics.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *recordingEmitter) outcomes() []analytics.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]analytics.Outcome, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Outcome
	}
	return out
}

type fixture struct {
	advisor *mockAdvisor
	clock   *cache.ManualClock
	emitter *recordingEmitter
	deps    Deps
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		advisor: &mockAdvisor{},
		clock:   cache.NewManualClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
		emitter: &recordingEmitter{},
	}
	f.deps = Deps{
		Analytics:       f.emitter,
		Logger:          logger.NewTestLogger(t),
		Clock:           f.clock,
		AdvisoryTimeout: time.Second,
	}
	return f
}

func newCache[T any](t *testing.T, f *fixture, kind models.Kind, ttl time.Duration) (*cache.Cache[T], *cache.MemoryStore[T]) {
	store := cache.NewMemoryStore[T]()
	return cache.New[T](string(kind), store, ttl, logger.NewTestLogger(t), cache.WithClock(f.clock)), store
}

func products(n int) []models.Product {
	out := make([]models.Product, n)
	for i := range out {
		out[i] = models.Product{ID: fmt.Sprintf("p%02d", i+1), Name: fmt.Sprintf("House Blend %d", i+1), Rating: 4}
	}
	return out
}

var unavailable = fmt.Errorf("%w: connection refused", advisory.ErrUnavailable)

func TestRecommendations_CacheHitSkipsAdvisory(t *testing.T) {
	f := newFixture(t)
	c, _ := newCache[models.MoodRecommendationResult](t, f, models.KindRecommendations, 5*time.Minute)
	rec := NewRecommendations(f.advisor, c, f.deps)

	answer := models.MoodRecommendationResult{
		Products:    []models.RecommendedProduct{{ID: "p01", Name: "House Blend 1", MoodMatch: 0.9}},
		Explanation: "Bright and bold.",
		Source:      models.SourceAdvisory,
	}
	f.advisor.On("RequestMoodRecommendations", mock.Anything, "energized", mock.Anything).Return(answer, nil).Once()

	req := models.RecommendationRequest{Mood: "energized", Candidates: products(3)}
	first := rec.Get(context.Background(), req)

	// Same identity with candidates in another order.
	req.Candidates = []models.Product{req.Candidates[2], req.Candidates[0], req.Candidates[1]}
	req.Mood = "Energized"
	second := rec.Get(context.Background(), req)

	assert.Equal(t, answer, first)
	assert.Equal(t, first, second)
	f.advisor.AssertNumberOfCalls(t, "RequestMoodRecommendations", 1)
	assert.Equal(t, []analytics.Outcome{analytics.OutcomeAdvisory, analytics.OutcomeCacheHit}, f.emitter.outcomes())
}

func TestRecommendations_FallbackOnUnavailable(t *testing.T) {
	f := newFixture(t)
	c, store := newCache[models.MoodRecommendationResult](t, f, models.KindRecommendations, 5*time.Minute)
	rec := NewRecommendations(f.advisor, c, f.deps)

	f.advisor.On("RequestMoodRecommendations", mock.Anything, mock.Anything, mock.Anything).
		Return(models.MoodRecommendationResult{}, unavailable)

	candidates := products(12)
	result := rec.Get(context.Background(), models.RecommendationRequest{Mood: "energized", Candidates: candidates})

	require.Len(t, result.Products, 4)
	assert.Equal(t, []float64{0.8, 0.7, 0.6, 0.5}, []float64{
		result.Products[0].MoodMatch, result.Products[1].MoodMatch,
		result.Products[2].MoodMatch, result.Products[3].MoodMatch,
	})
	assert.Equal(t, "p01", result.Products[0].ID)
	assert.Equal(t, models.SourceFallback, result.Source)
	assert.Equal(t, fallback.MoodRecommendations("energized", candidates), result)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, []analytics.Outcome{analytics.OutcomeFallback}, f.emitter.outcomes())
}

func TestRecommendations_EmptyCandidatesIsSentinel(t *testing.T) {
	f := newFixture(t)
	c, store := newCache[models.MoodRecommendationResult](t, f, models.KindRecommendations, 5*time.Minute)
	rec := NewRecommendations(f.advisor, c, f.deps)

	result := rec.Get(context.Background(), models.RecommendationRequest{Mood: "cozy"})

	assert.Empty(t, result.Products)
	assert.Equal(t, models.SourceEmpty, result.Source)
	f.advisor.AssertNotCalled(t, "RequestMoodRecommendations", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, []analytics.Outcome{analytics.OutcomeSentinel}, f.emitter.outcomes())
}

func TestRecommendations_TagsNarrowCandidates(t *testing.T) {
	f := newFixture(t)
	c, _ := newCache[models.MoodRecommendationResult](t, f, models.KindRecommendations, 5*time.Minute)
	rec := NewRecommendations(f.advisor, c, f.deps)

	candidates := []models.Product{
		{ID: "a", Name: "Mocha", Tags: []string{"chocolate"}},
		{ID: "b", Name: "Flat White", Tags: []string{"nutty"}},
		{ID: "c", Name: "Caramel Latte", Tags: []string{"caramel", "sweet"}},
	}
	var sent []models.Product
	f.advisor.On("RequestMoodRecommendations", mock.Anything, "craving chocolate, caramel", mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).([]models.Product) }).
		Return(models.MoodRecommendationResult{}, unavailable)

	result := rec.Get(context.Background(), models.RecommendationRequest{Tags: []string{"chocolate", "caramel"}, Candidates: candidates})

	assert.Equal(t, []string{"a", "c"}, models.ProductIDs(sent))
	require.Len(t, result.Products, 2)
	assert.Equal(t, "a", result.Products[0].ID)
	assert.Equal(t, "c", result.Products[1].ID)
}

func TestRecommendations_AdvisoryDetachedFromCaller(t *testing.T) {
	f := newFixture(t)
	c, store := newCache[models.MoodRecommendationResult](t, f, models.KindRecommendations, 5*time.Minute)
	rec := NewRecommendations(f.advisor, c, f.deps)

	ctx, cancel := context.WithCancel(context.Background())
	answer := models.MoodRecommendationResult{
		Products: []models.RecommendedProduct{{ID: "p01", Name: "House Blend 1", MoodMatch: 0.9}},
		Source:   models.SourceAdvisory,
	}
	f.advisor.On("RequestMoodRecommendations", mock.Anything, "focused", mock.Anything).
		Run(func(args mock.Arguments) {
			cancel()
			actx := args.Get(0).(context.Context)
			assert.NoError(t, actx.Err())
			_, hasDeadline := actx.Deadline()
			assert.True(t, hasDeadline)
		}).
		Return(answer, nil)

	result := rec.Get(ctx, models.RecommendationRequest{Mood: "focused", Candidates: products(2)})
	assert.Equal(t, answer, result)
	assert.Equal(t, 1, store.Len())
}

func TestRankings_FallbackTieScenario(t *testing.T) {
	f := newFixture(t)
	c, _ := newCache[models.CafeRankingResult](t, f, models.KindRankings, 10*time.Minute)
	rank := NewRankings(f.advisor, c, f.deps)

	f.advisor.On("RequestCafeRanking", mock.Anything, mock.Anything, "").
		Return(models.CafeRankingResult{}, unavailable)

	cafes := []models.Cafe{
		{ID: "A", Name: "A", Rating: 4.5, ReviewCount: 100},
		{ID: "B", Name: "B", Rating: 4.5, ReviewCount: 100},
		{ID: "C", Name: "C", Rating: 5.0, ReviewCount: 0},
		{ID: "D", Name: "D", Rating: 3.0, ReviewCount: 100},
		{ID: "E", Name: "E", Rating: 4.0, ReviewCount: 50},
	}
	result := rank.Get(context.Background(), models.CafeRankingRequest{Candidates: cafes})

	ids := make([]string, len(result.Cafes))
	for i, rc := range result.Cafes {
		ids[i] = rc.CafeID
		assert.Equal(t, i+1, rc.Rank)
	}
	assert.Equal(t, []string{"A", "B", "C", "E", "D"}, ids)
	assert.Equal(t, 100.0, result.Cafes[0].AIScore)
	assert.Equal(t, 85.0, result.Cafes[3].AIScore)
	assert.Equal(t, 70.0, result.Cafes[4].AIScore)
}

func TestRankings_FilterTagNarrowsCafes(t *testing.T) {
	f := newFixture(t)
	c, _ := newCache[models.CafeRankingResult](t, f, models.KindRankings, 10*time.Minute)
	rank := NewRankings(f.advisor, c, f.deps)

	cafes := []models.Cafe{
		{ID: "c1", Name: "Bean There", PopularItem: "Matcha Latte"},
		{ID: "c2", Name: "Grind House", PopularItem: "Espresso"},
	}
	f.advisor.On("RequestCafeRanking", mock.Anything, []models.Cafe{cafes[0]}, "matcha").
		Return(models.CafeRankingResult{}, unavailable).Once()
	f.advisor.On("RequestCafeRanking", mock.Anything, cafes, "oolong").
		Return(models.CafeRankingResult{}, unavailable).Once()

	narrowed := rank.Get(context.Background(), models.CafeRankingRequest{FilterTag: "matcha", Candidates: cafes})
	require.Len(t, narrowed.Cafes, 1)
	assert.Equal(t, "c1", narrowed.Cafes[0].CafeID)

	all := rank.Get(context.Background(), models.CafeRankingRequest{FilterTag: "oolong", Candidates: cafes})
	assert.Len(t, all.Cafes, 2)
	f.advisor.AssertExpectations(t)
}

func TestRankings_EmptyCandidatesIsSentinel(t *testing.T) {
	f := newFixture(t)
	c, _ := newCache[models.CafeRankingResult](t, f, models.KindRankings, 10*time.Minute)
	result := NewRankings(f.advisor, c, f.deps).Get(context.Background(), models.CafeRankingRequest{})

	assert.Empty(t, result.Cafes)
	assert.Equal(t, models.SourceEmpty, result.Source)
	f.advisor.AssertNotCalled(t, "RequestCafeRanking", mock.Anything, mock.Anything, mock.Anything)
}

func TestSummaries_ZeroReviewsNeverCallsAdvisory(t *testing.T) {
	f := newFixture(t)
	c, store := newCache[models.ReviewSummaryResult](t, f, models.KindSummaries, 15*time.Minute)
	sum := NewSummaries(f.advisor, c, f.deps)

	result := sum.Get(context.Background(), models.ReviewSummaryRequest{SubjectID: "cafe-1"})

	assert.Equal(t, fallback.NoReviewsSummary(), result)
	f.advisor.AssertNumberOfCalls(t, "RequestReviewSummary", 0)
	assert.Equal(t, 0, store.Len())
}

func TestSummaries_ExpiredEntryIsRecomputed(t *testing.T) {
	f := newFixture(t)
	c, _ := newCache[models.ReviewSummaryResult](t, f, models.KindSummaries, 15*time.Minute)
	sum := NewSummaries(f.advisor, c, f.deps)

	answer := models.ReviewSummaryResult{
		OverallSentiment: models.SentimentPositive,
		SentimentScore:   0.9,
		Summary:          "Loved.",
		Source:           models.SourceAdvisory,
	}
	f.advisor.On("RequestReviewSummary", mock.Anything, mock.Anything).Return(answer, nil)

	req := models.ReviewSummaryRequest{SubjectID: "cafe-1", Reviews: []models.Review{{ID: "r1", Rating: 5}}}
	sum.Get(context.Background(), req)

	f.clock.Advance(15*time.Minute - time.Second)
	sum.Get(context.Background(), req)
	f.advisor.AssertNumberOfCalls(t, "RequestReviewSummary", 1)

	f.clock.Advance(time.Second)
	sum.Get(context.Background(), req)
	f.advisor.AssertNumberOfCalls(t, "RequestReviewSummary", 2)
}

func TestSummaries_FallbackTTL(t *testing.T) {
	f := newFixture(t)
	f.deps.FallbackTTL = time.Minute
	c, _ := newCache[models.ReviewSummaryResult](t, f, models.KindSummaries, 15*time.Minute)
	sum := NewSummaries(f.advisor, c, f.deps)

	f.advisor.On("RequestReviewSummary", mock.Anything, mock.Anything).
		Return(models.ReviewSummaryResult{}, errors.New("ADVISORY_UNAVAILABLE"))

	req := models.ReviewSummaryRequest{SubjectID: "cafe-1", Reviews: []models.Review{{ID: "r1", Rating: 2}, {ID: "r2", Rating: 3}}}
	result := sum.Get(context.Background(), req)
	assert.Equal(t, models.SentimentNegative, result.OverallSentiment)
	assert.Equal(t, 0.5, result.SentimentScore)

	f.clock.Advance(30 * time.Second)
	sum.Get(context.Background(), req)
	f.advisor.AssertNumberOfCalls(t, "RequestReviewSummary", 1)

	f.clock.Advance(30 * time.Second)
	sum.Get(context.Background(), req)
	f.advisor.AssertNumberOfCalls(t, "RequestReviewSummary", 2)
}

func TestSummaries_InvalidateOnlyTouchesSubject(t *testing.T) {
	f := newFixture(t)
	c, store := newCache[models.ReviewSummaryResult](t, f, models.KindSummaries, 15*time.Minute)
	sum := NewSummaries(f.advisor, c, f.deps)

	f.advisor.On("RequestReviewSummary", mock.Anything, mock.Anything).
		Return(models.ReviewSummaryResult{Summary: "ok", Source: models.SourceAdvisory}, nil)

	reviews := []models.Review{{ID: "r1", Rating: 4}}
	sum.Get(context.Background(), models.ReviewSummaryRequest{SubjectID: "cafe-1", Reviews: reviews})
	sum.Get(context.Background(), models.ReviewSummaryRequest{SubjectID: "cafe-1", Reviews: append(reviews, models.Review{ID: "r2", Rating: 5})})
	sum.Get(context.Background(), models.ReviewSummaryRequest{SubjectID: "cafe-10", Reviews: reviews})
	require.Equal(t, 3, store.Len())

	n, err := sum.Invalidate(context.Background(), "cafe-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, store.Len())

	sum.Get(context.Background(), models.ReviewSummaryRequest{SubjectID: "cafe-10", Reviews: reviews})
	f.advisor.AssertNumberOfCalls(t, "RequestReviewSummary", 3)
}

func TestMoodPhrase(t *testing.T) {
	tests := []struct {
		name string
		mood string
		tags []string
		want string
	}{
		{name: "mood only", mood: " relaxed ", want: "relaxed"},
		{name: "tags only", tags: []string{"vanilla", "nutty"}, want: "craving vanilla, nutty"},
		{name: "both", mood: "cozy", tags: []string{"caramel"}, want: "cozy, craving caramel"},
		{name: "unknown tags", mood: "happy", tags: []string{"kale"}, want: "happy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, moodPhrase(tt.mood, tt.tags))
		})
	}
}
