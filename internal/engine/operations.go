// internal/engine/operations.go
package engine

import (
	"context"

	"moodbrew/internal/flavor"
	"moodbrew/internal/models"
	"moodbrew/internal/scoring"
)

// RecommendForMood returns recommendations for req. With weather present
// the products are re-ordered by local scoring.
func (e *Engine) RecommendForMood(ctx context.Context, req models.RecommendationRequest, weather *models.WeatherReading) models.MoodRecommendationResult {
	result := e.recommendations.Get(ctx, req)
	if weather != nil {
		result = e.ApplyLocalBoost(result, req.Candidates, weather)
	}
	return result
}

// ApplyLocalBoost orders result products by weather fit and boosted rating.
// Products without a catalog record keep their relative order at the end.
func (e *Engine) ApplyLocalBoost(result models.MoodRecommendationResult, catalog []models.Product, weather *models.WeatherReading) models.MoodRecommendationResult {
	if len(result.Products) < 2 {
		return result
	}

	byID := make(map[string]models.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	known := make([]models.Product, 0, len(result.Products))
	recommended := make(map[string]models.RecommendedProduct, len(result.Products))
	var unknown []models.RecommendedProduct
	for _, rp := range result.Products {
		p, ok := byID[rp.ID]
		if !ok {
			unknown = append(unknown, rp)
			continue
		}
		known = append(known, p)
		recommended[rp.ID] = rp
	}

	products := make([]models.RecommendedProduct, 0, len(result.Products))
	for _, p := range e.scorer.Order(known, weather) {
		products = append(products, recommended[p.ID])
	}
	products = append(products, unknown...)

	result.Products = products
	return result
}

// RankCafes returns the ranking for req.
func (e *Engine) RankCafes(ctx context.Context, req models.CafeRankingRequest) models.CafeRankingResult {
	return e.rankings.Get(ctx, req)
}

func (e *Engine) SummarizeReviews(ctx context.Context, req models.ReviewSummaryRequest) models.ReviewSummaryResult {
	return e.summaries.Get(ctx, req)
}

// InvalidateReviews drops cached summaries of subjectID after its reviews change.
func (e *Engine) InvalidateReviews(ctx context.Context, subjectID string) (int, error) {
	return e.summaries.Invalidate(ctx, subjectID)
}

// Trending ranks products for a mood using local signals only.
func (e *Engine) Trending(products []models.Product, mood string, weather *models.WeatherReading) []scoring.ScoredProduct {
	return e.scorer.Rank(products, mood, weather)
}

// FlavorMatch is the outcome of matching products against a tag selection.
type FlavorMatch struct {
	Selected       []string         `json:"selected"`
	Matches        []models.Product `json:"matches"`
	PerfectMatches []models.Product `json:"perfectMatches"`
	Narrative      string           `json:"narrative,omitempty"`
}

// MatchFlavors caps tags to the configured selection size, dropping unknown
// ids, and matches products against the resulting selection.
func (e *Engine) MatchFlavors(products []models.Product, tags []string) FlavorMatch {
	selection := flavor.SelectionOf(e.maxSelected, tags...)
	selected := selection.Tags()
	if selected == nil {
		selected = []string{}
	}

	return FlavorMatch{
		Selected:       selected,
		Matches:        flavor.FilterByTags(products, selected),
		PerfectMatches: flavor.PerfectMatches(products, selected),
		Narrative:      flavor.NarrativeFor(selected),
	}
}

// MaxSelected is the flavor selection cap.
func (e *Engine) MaxSelected() int { return e.maxSelected }
