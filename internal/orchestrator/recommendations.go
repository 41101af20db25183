// internal/orchestrator/recommendations.go
package orchestrator

import (
	"context"
	"strings"

	"moodbrew/internal/advisory"
	"moodbrew/internal/cache"
	"moodbrew/internal/fallback"
	"moodbrew/internal/flavor"
	"moodbrew/internal/models"
)

type Recommendations struct {
	advisor advisory.Advisor
	p       pipeline[models.MoodRecommendationResult]
}

func NewRecommendations(advisor advisory.Advisor, c *cache.Cache[models.MoodRecommendationResult], deps Deps) *Recommendations {
	return &Recommendations{
		advisor: advisor,
		p:       newPipeline(models.KindRecommendations, c, deps),
	}
}

// Get returns mood and/or tag recommendations over req.Candidates. Active
// tags narrow the candidates unless no candidate carries any of them.
func (r *Recommendations) Get(ctx context.Context, req models.RecommendationRequest) models.MoodRecommendationResult {
	if len(req.Candidates) == 0 {
		return r.p.sentinel(ctx, fallback.EmptyRecommendations())
	}

	candidates := req.Candidates
	if len(req.Tags) > 0 {
		if filtered := flavor.FilterByTags(candidates, req.Tags); len(filtered) > 0 {
			candidates = filtered
		}
	}

	mood := moodPhrase(req.Mood, req.Tags)
	key := cache.RecommendationKey(req.Mood, req.Tags, models.ProductIDs(req.Candidates))

	return r.p.run(ctx, key, len(req.Candidates),
		func(ctx context.Context) (models.MoodRecommendationResult, error) {
			return r.advisor.RequestMoodRecommendations(ctx, mood, candidates)
		},
		func() models.MoodRecommendationResult {
			return fallback.MoodRecommendations(req.Mood, candidates)
		},
	)
}

// moodPhrase is the mood sent to the advisory service; tag names stand in
// when no mood was given.
func moodPhrase(mood string, tags []string) string {
	mood = strings.TrimSpace(mood)
	if len(tags) == 0 {
		return mood
	}

	names := make([]string, 0, len(tags))
	for _, id := range tags {
		if t, ok := flavor.Lookup(id); ok {
			names = append(names, strings.ToLower(t.Name))
		}
	}
	if len(names) == 0 {
		return mood
	}
	flavors := "craving " + strings.Join(names, ", ")
	if mood == "" {
		return flavors
	}
	return mood + ", " + flavors
}
