// internal/fallback/sentinels.go
package fallback

import "moodbrew/internal/models"

// EmptyRecommendations is returned when there is nothing to recommend from.
func EmptyRecommendations() models.MoodRecommendationResult {
	return models.MoodRecommendationResult{
		Products:    []models.RecommendedProduct{},
		Explanation: "No drinks are available to recommend right now.",
		Source:      models.SourceEmpty,
	}
}

// EmptyRanking is returned when there are no cafes to rank.
func EmptyRanking() models.CafeRankingResult {
	return models.CafeRankingResult{
		Cafes:   []models.RankedCafe{},
		Summary: "No cafes to rank yet.",
		Source:  models.SourceEmpty,
	}
}

// NoReviewsSummary is the fixed summary for a subject without reviews.
func NoReviewsSummary() models.ReviewSummaryResult {
	return models.ReviewSummaryResult{
		OverallSentiment: models.SentimentNeutral,
		SentimentScore:   0,
		KeyPoints:        []string{"No reviews yet"},
		Pros:             []string{},
		Cons:             []string{},
		Summary:          "No reviews yet. Be the first to share your experience!",
		Recommendation:   "Be the first to leave a review.",
		Source:           models.SourceEmpty,
	}
}
