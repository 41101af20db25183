// internal/fallback/ranking.go
package fallback

import (
	"fmt"
	"math"
	"sort"

	"moodbrew/internal/models"
)

// CafeScore is the local ranking signal: rating*20 + reviewCount*0.1.
func CafeScore(c models.Cafe) float64 {
	return c.Rating*20 + float64(c.ReviewCount)*0.1
}

// AIScoreFromScore maps a raw score onto the 0..100 aiScore scale.
func AIScoreFromScore(score float64) float64 {
	return math.Max(0, math.Min(100, math.Round(score)))
}

// SortByScore returns a copy of cafes ordered by CafeScore descending; ties
// keep input order.
func SortByScore(cafes []models.Cafe) []models.Cafe {
	sorted := append([]models.Cafe(nil), cafes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return CafeScore(sorted[i]) > CafeScore(sorted[j])
	})
	return sorted
}

// CafeRanking ranks cafes by CafeScore with dense ranks from 1.
func CafeRanking(cafes []models.Cafe) models.CafeRankingResult {
	if len(cafes) == 0 {
		return EmptyRanking()
	}

	sorted := SortByScore(cafes)
	ranked := make([]models.RankedCafe, len(sorted))
	for i, c := range sorted {
		ranked[i] = RankedFromCafe(c, i+1)
	}

	return models.CafeRankingResult{
		Cafes:   ranked,
		Summary: fmt.Sprintf("Ranked %d cafes by rating and review volume.", len(ranked)),
		Source:  models.SourceFallback,
	}
}

// RankedFromCafe builds the templated ranking entry for a cafe at rank.
func RankedFromCafe(c models.Cafe, rank int) models.RankedCafe {
	return models.RankedCafe{
		CafeID:    c.ID,
		CafeName:  c.Name,
		Rank:      rank,
		AIScore:   AIScoreFromScore(CafeScore(c)),
		Reasoning: fmt.Sprintf("Rated %.1f across %d reviews.", c.Rating, c.ReviewCount),
		Strengths: []string{
			"Consistently well rated",
			"Trusted by regulars",
		},
		Improvements: []string{
			"More seating during peak hours",
		},
	}
}
