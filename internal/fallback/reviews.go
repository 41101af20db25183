// internal/fallback/reviews.go
package fallback

import (
	"fmt"

	"moodbrew/internal/models"
)

// SentimentForMean buckets a mean star rating.
func SentimentForMean(mean float64) models.Sentiment {
	switch {
	case mean >= 4:
		return models.SentimentPositive
	case mean >= 3:
		return models.SentimentNeutral
	default:
		return models.SentimentNegative
	}
}

// MeanRating is the arithmetic mean of review ratings, 0 for no reviews.
func MeanRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	return float64(total) / float64(len(reviews))
}

// ReviewSummary summarises reviews from their ratings alone.
func ReviewSummary(reviews []models.Review) models.ReviewSummaryResult {
	if len(reviews) == 0 {
		return NoReviewsSummary()
	}

	mean := MeanRating(reviews)
	sentiment := SentimentForMean(mean)

	result := models.ReviewSummaryResult{
		OverallSentiment: sentiment,
		SentimentScore:   round2(clamp01(mean / 5)),
		KeyPoints: []string{
			fmt.Sprintf("Average rating of %.1f from %d reviews", mean, len(reviews)),
		},
		Summary: fmt.Sprintf("Customers rate this %.1f out of 5 on average.", mean),
		Source:  models.SourceFallback,
	}

	switch sentiment {
	case models.SentimentPositive:
		result.Pros = []string{"Highly rated by customers", "Reliable quality"}
		result.Cons = []string{"Can get busy"}
		result.Recommendation = "Well worth a visit."
	case models.SentimentNeutral:
		result.Pros = []string{"Decent overall experience"}
		result.Cons = []string{"Mixed experiences reported"}
		result.Recommendation = "Worth trying if you are nearby."
	default:
		result.Pros = []string{"Some customers enjoyed their visit"}
		result.Cons = []string{"Frequent complaints in recent reviews"}
		result.Recommendation = "You may want to compare alternatives first."
	}

	return result
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
