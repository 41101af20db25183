// internal/orchestrator/rankings.go
package orchestrator

import (
	"context"
	"strings"

	"moodbrew/internal/advisory"
	"moodbrew/internal/cache"
	"moodbrew/internal/fallback"
	"moodbrew/internal/models"
)

type Rankings struct {
	advisor advisory.Advisor
	p       pipeline[models.CafeRankingResult]
}

func NewRankings(advisor advisory.Advisor, c *cache.Cache[models.CafeRankingResult], deps Deps) *Rankings {
	return &Rankings{
		advisor: advisor,
		p:       newPipeline(models.KindRankings, c, deps),
	}
}

// Get ranks req.Candidates. A filter tag narrows the cafes to those whose
// name or popular item mentions it, unless that leaves none.
func (r *Rankings) Get(ctx context.Context, req models.CafeRankingRequest) models.CafeRankingResult {
	if len(req.Candidates) == 0 {
		return r.p.sentinel(ctx, fallback.EmptyRanking())
	}

	cafes := filterCafes(req.Candidates, req.FilterTag)
	key := cache.RankingKey(req.FilterTag, models.CafeIDs(req.Candidates))

	return r.p.run(ctx, key, len(req.Candidates),
		func(ctx context.Context) (models.CafeRankingResult, error) {
			return r.advisor.RequestCafeRanking(ctx, cafes, req.FilterTag)
		},
		func() models.CafeRankingResult {
			return fallback.CafeRanking(cafes)
		},
	)
}

func filterCafes(cafes []models.Cafe, tag string) []models.Cafe {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return cafes
	}

	out := make([]models.Cafe, 0, len(cafes))
	for _, c := range cafes {
		if strings.Contains(strings.ToLower(c.Name), tag) || strings.Contains(strings.ToLower(c.PopularItem), tag) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return cafes
	}
	return out
}
