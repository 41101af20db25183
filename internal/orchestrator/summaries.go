// internal/orchestrator/summaries.go
package orchestrator

import (
	"context"

	"moodbrew/internal/advisory"
	"moodbrew/internal/cache"
	"moodbrew/internal/fallback"
	"moodbrew/internal/models"
)

type Summaries struct {
	advisor advisory.Advisor
	p       pipeline[models.ReviewSummaryResult]
}

func NewSummaries(advisor advisory.Advisor, c *cache.Cache[models.ReviewSummaryResult], deps Deps) *Summaries {
	return &Summaries{
		advisor: advisor,
		p:       newPipeline(models.KindSummaries, c, deps),
	}
}

// Get summarises req.Reviews. Zero reviews yield the no-reviews sentinel
// without touching the advisory service or the cache.
func (s *Summaries) Get(ctx context.Context, req models.ReviewSummaryRequest) models.ReviewSummaryResult {
	if len(req.Reviews) == 0 {
		return s.p.sentinel(ctx, fallback.NoReviewsSummary())
	}

	key := cache.ReviewKey(req.SubjectID, models.ReviewIDs(req.Reviews))

	return s.p.run(ctx, key, len(req.Reviews),
		func(ctx context.Context) (models.ReviewSummaryResult, error) {
			return s.advisor.RequestReviewSummary(ctx, req.Reviews)
		},
		func() models.ReviewSummaryResult {
			return fallback.ReviewSummary(req.Reviews)
		},
	)
}

// Invalidate drops every cached summary of subjectID, whatever review set it
// was computed from.
func (s *Summaries) Invalidate(ctx context.Context, subjectID string) (int, error) {
	n, err := s.p.cache.InvalidatePrefix(ctx, cache.ReviewPrefix(subjectID))
	if err == nil {
		s.p.log.Info("review summaries invalidated", map[string]interface{}{
			"subjectId": subjectID,
			"deleted":   n,
		})
	}
	return n, err
}
