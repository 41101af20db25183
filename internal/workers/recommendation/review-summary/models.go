// internal/workers/recommendation/review-summary/models.go
package reviewsummary

import "moodbrew/internal/models"

// Input.Reviews nil means "load from the catalog"; an empty list is a
// subject without reviews.
type Input struct {
	SubjectID string           `json:"subjectId"`
	Reviews   *[]models.Review `json:"reviews,omitempty"`
}

type Output struct {
	ReviewSummary models.ReviewSummaryResult `json:"reviewSummary"`
	ReviewCount   int                        `json:"reviewCount"`
}
