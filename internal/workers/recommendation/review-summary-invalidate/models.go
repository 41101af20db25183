// internal/workers/recommendation/review-summary-invalidate/models.go
package reviewsummaryinvalidate

type Input struct {
	SubjectID string `json:"subjectId"`
}

type Output struct {
	SubjectID   string `json:"subjectId"`
	Invalidated int    `json:"invalidatedSummaries"`
}
